package merit

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/twpayne/go-geos"
)

// Extractor processes one station end-to-end: snap → trace → merge → area
// check. Each pool worker owns one; the GEOS context and every geometry in
// it are private to that worker, so extraction needs no locking.
type Extractor struct {
	cfg      *Config
	gctx     *geos.Context
	net      *Network
	cat      *CatchmentTable
	catGeoms []*geos.Geom // geographic, parallel to cat.Catchments
	g        TopoGraph
	proj     func(lon, lat float64) (float64, float64)
}

// NewExtractor materializes the shared coordinate tables into a private GEOS
// context. Called once per worker at pool startup, not per task.
func NewExtractor(cfg *Config, rt *ReachTable, ct *CatchmentTable, g TopoGraph) (*Extractor, error) {
	proj, err := projectorFor(cfg.AreaEPSG)
	if err != nil {
		return nil, err
	}
	gctx := geos.NewContext()
	x := &Extractor{
		cfg:      cfg,
		gctx:     gctx,
		net:      newNetwork(gctx, rt, cfg.SnapDistM),
		cat:      ct,
		catGeoms: make([]*geos.Geom, len(ct.Catchments)),
		g:        g,
		proj:     proj,
	}
	for i, c := range ct.Catchments {
		gm, err := gctx.NewGeomFromGeoJSON(string(c.Geom))
		if err != nil {
			return nil, fmt.Errorf("NewExtractor: unit catchment %d: %v", c.ID, err)
		}
		x.catGeoms[i] = gm
	}
	return x, nil
}

// ExtractSite delineates one station's watershed. Every failure mode is
// converted to a structured fail result; nothing raises past this boundary.
func (x *Extractor) ExtractSite(st StationRecord) (res ExtractionResult) {
	defer func() {
		if r := recover(); r != nil {
			res = failResult(st.Code, fmt.Sprintf("unexpected: %v", r))
		}
	}()

	snp, err := x.net.SnapToReach(st.Lon, st.Lat, x.cfg.SnapDistM, x.cfg.OrderFirst)
	if err != nil {
		return failResult(st.Code, err.Error())
	}

	up := TraceUpstream(x.g, snp.COMID)
	if x.cfg.MaxUpReach > 0 && len(up) > x.cfg.MaxUpReach {
		e := &TraversalLimitError{N: len(up), Max: x.cfg.MaxUpReach}
		return failResult(st.Code, e.Error())
	}

	ids := make([]int, 0, len(up))
	for id := range up {
		if _, ok := x.cat.XR[id]; ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return failResult(st.Code, fmt.Sprintf("no unit catchments for outlet %d", snp.COMID))
	}
	sort.Ints(ids) // deterministic merge order
	geoms := make([]*geos.Geom, len(ids))
	for i, id := range ids {
		geoms[i] = x.catGeoms[x.cat.XR[id]]
	}

	merged, err := MergeCatchments(x.gctx, geoms, x.cfg.BufferDeg, x.cfg.MinHoleKm2)
	if err != nil {
		return failResult(st.Code, err.Error())
	}

	areaM2, err := x.areaM2(merged)
	if err != nil {
		return failResult(st.Code, err.Error())
	}

	res = ExtractionResult{
		Code:     st.Code,
		Status:   StatusOK,
		COMID:    snp.COMID,
		SnapDist: snp.DistM,
		Order:    snp.Order,
		UpArea:   snp.UpArea,
		AreaM2:   areaM2,
		RelErr:   math.NaN(),
		Geom:     json.RawMessage(merged.ToGeoJSON(-1)),
	}
	if st.HasRef() {
		res.RelErr = math.Abs(areaM2-st.RefAreaM2) / st.RefAreaM2
		if res.RelErr > x.cfg.AreaTol {
			res.Status = StatusReject
		}
	}
	return res
}

// areaM2 measures a geographic polygon in m² through the configured
// equal-area projection.
func (x *Extractor) areaM2(g *geos.Geom) (float64, error) {
	b, err := transformGeoJSON([]byte(g.ToGeoJSON(-1)), x.proj)
	if err != nil {
		return 0., err
	}
	pg, err := x.gctx.NewGeomFromGeoJSON(string(b))
	if err != nil {
		return 0., err
	}
	return pg.Area(), nil
}
