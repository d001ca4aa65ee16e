package merit

import (
	"math"
	"sort"

	"github.com/twpayne/go-geos"
)

// gridIndex is a cell-hash spatial index over item envelopes. Items are
// inserted into every cell their envelope touches; queries gather the cells
// under a search window and screen by envelope overlap.
type gridIndex struct {
	cell  float64
	cells map[[2]int][]int
	envs  map[int][4]float64 // minx, miny, maxx, maxy
}

func newGridIndex(cell float64) *gridIndex {
	return &gridIndex{
		cell:  cell,
		cells: make(map[[2]int][]int),
		envs:  make(map[int][4]float64),
	}
}

func (gi *gridIndex) insert(id int, env [4]float64) {
	gi.envs[id] = env
	c0, r0 := int(math.Floor(env[0]/gi.cell)), int(math.Floor(env[1]/gi.cell))
	c1, r1 := int(math.Floor(env[2]/gi.cell)), int(math.Floor(env[3]/gi.cell))
	for c := c0; c <= c1; c++ {
		for r := r0; r <= r1; r++ {
			k := [2]int{c, r}
			gi.cells[k] = append(gi.cells[k], id)
		}
	}
}

func (gi *gridIndex) query(minx, miny, maxx, maxy float64) []int {
	c0, r0 := int(math.Floor(minx/gi.cell)), int(math.Floor(miny/gi.cell))
	c1, r1 := int(math.Floor(maxx/gi.cell)), int(math.Floor(maxy/gi.cell))
	seen := make(map[int]bool)
	var out []int
	for c := c0; c <= c1; c++ {
		for r := r0; r <= r1; r++ {
			for _, id := range gi.cells[[2]int{c, r}] {
				if seen[id] {
					continue
				}
				seen[id] = true
				e := gi.envs[id]
				if e[0] <= maxx && e[2] >= minx && e[1] <= maxy && e[3] >= miny {
					out = append(out, id)
				}
			}
		}
	}
	return out
}

// Network is a worker-private view of the reach table: planar (Web-Mercator)
// line geometries in the worker's own GEOS context, plus the spatial index
// over their envelopes. Built once at pool startup, reused across tasks.
type Network struct {
	tab    *ReachTable
	gctx   *geos.Context
	planar []*geos.Geom // parallel to tab.Reaches
	idx    *gridIndex
}

func newNetwork(gctx *geos.Context, rt *ReachTable, cellM float64) *Network {
	n := &Network{
		tab:    rt,
		gctx:   gctx,
		planar: make([]*geos.Geom, len(rt.Reaches)),
		idx:    newGridIndex(cellM),
	}
	for i, r := range rt.Reaches {
		env := [4]float64{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
		parts := make([]*geos.Geom, 0, len(r.Paths))
		for _, p := range r.Paths {
			pp := projectPath(p, webMercator)
			for _, v := range pp {
				env[0] = math.Min(env[0], v[0])
				env[1] = math.Min(env[1], v[1])
				env[2] = math.Max(env[2], v[0])
				env[3] = math.Max(env[3], v[1])
			}
			parts = append(parts, gctx.NewLineString(pp))
		}
		if len(parts) == 1 {
			n.planar[i] = parts[0]
		} else {
			n.planar[i] = gctx.NewCollection(geos.TypeIDMultiLineString, parts)
		}
		n.idx.insert(i, env)
	}
	return n
}

// SnapResult identifies the reach a station was matched to.
type SnapResult struct {
	COMID  int
	DistM  float64
	Order  int
	UpArea float64
}

// SnapToReach matches a geographic coordinate to the best reach near the
// point. radiusM bounds the envelope query, not the exact distance: every
// reach whose envelope intersects the square window of half-width radiusM
// around the projected point is ranked, by a 3-key sort on distance, stream
// order and upstream area, with the order key promoted ahead of distance
// when orderFirst is set. SnapFailure only when the window is empty.
func (n *Network) SnapToReach(lon, lat, radiusM float64, orderFirst bool) (SnapResult, error) {
	x, y := webMercator(lon, lat)
	cand := n.idx.query(x-radiusM, y-radiusM, x+radiusM, y+radiusM)
	if len(cand) == 0 {
		return SnapResult{}, &SnapFailure{RadiusM: radiusM}
	}

	pt := n.gctx.NewPoint([]float64{x, y})
	type scored struct {
		i int
		d float64
	}
	ss := make([]scored, len(cand))
	for k, i := range cand {
		ss[k] = scored{i: i, d: n.planar[i].Distance(pt)}
	}
	sort.Slice(ss, func(a, b int) bool {
		ra, rb := n.tab.Reaches[ss[a].i], n.tab.Reaches[ss[b].i]
		if orderFirst {
			if ra.Order != rb.Order {
				return ra.Order > rb.Order
			}
			if ss[a].d != ss[b].d {
				return ss[a].d < ss[b].d
			}
			return ra.UpArea > rb.UpArea
		}
		if ss[a].d != ss[b].d {
			return ss[a].d < ss[b].d
		}
		if ra.Order != rb.Order {
			return ra.Order > rb.Order
		}
		return ra.UpArea > rb.UpArea
	})

	best := n.tab.Reaches[ss[0].i]
	return SnapResult{COMID: best.ID, DistM: ss[0].d, Order: best.Order, UpArea: best.UpArea}, nil
}
