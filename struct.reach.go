package merit

import "encoding/json"

// Reach is a single river-network segment. Geometry is carried as raw
// lon-lat vertex runs (one per line part) so that each pool worker can
// materialize it in a private GEOS context.
type Reach struct {
	ID     int           // COMID, positive
	Paths  [][][]float64 // lon-lat vertices, one run per line part
	Down   int           // NextDownID as read; 0 when absent
	Up     []int         // up1..up4 as read, invalid slots dropped upstream of validation
	Order  int           // stream order; 0 when absent
	UpArea float64       // upstream accumulated drainage area; 0 when absent
}

// ReachTable is the loaded river-network layer. Immutable once loaded.
type ReachTable struct {
	Reaches []Reach
	XR      map[int]int // COMID to array index
	HasDown bool        // NextDownID field present in the source layer
	HasUp   bool        // any of up1..up4 present in the source layer
}

func NewReachTable(reaches []Reach, hasDown, hasUp bool) *ReachTable {
	xr := make(map[int]int, len(reaches))
	for i, r := range reaches {
		xr[r.ID] = i
	}
	return &ReachTable{Reaches: reaches, XR: xr, HasDown: hasDown, HasUp: hasUp}
}

// UnitCatchment is the drainage polygon owned by one reach. Geom is the
// GeoJSON Polygon/MultiPolygon payload in geographic degrees.
type UnitCatchment struct {
	ID   int // owning reach COMID
	Geom json.RawMessage
}

// CatchmentTable is the loaded unit-catchment layer. One-to-one with the
// reach id space; not every reach need carry a catchment.
type CatchmentTable struct {
	Catchments []UnitCatchment
	XR         map[int]int // COMID to array index
}

func NewCatchmentTable(catchments []UnitCatchment) *CatchmentTable {
	xr := make(map[int]int, len(catchments))
	for i, c := range catchments {
		xr[c.ID] = i
	}
	return &CatchmentTable{Catchments: catchments, XR: xr}
}
