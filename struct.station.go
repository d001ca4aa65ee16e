package merit

import (
	"encoding/json"
	"math"
)

// StationRecord is one gauging station to be delineated.
type StationRecord struct {
	Code      string  // unique key, non-empty
	Lon, Lat  float64 // geographic degrees
	RefAreaM2 float64 // reference drainage area in m²; NaN when not supplied
}

// HasRef reports whether a reference drainage area was supplied.
func (s StationRecord) HasRef() bool { return !math.IsNaN(s.RefAreaM2) && s.RefAreaM2 > 0 }

// Status of one station's extraction.
type Status string

const (
	StatusOK     Status = "ok"     // extracted, relative error within tolerance
	StatusReject Status = "reject" // extracted, relative error beyond tolerance
	StatusFail   Status = "fail"   // extraction could not complete
)

// ExtractionResult is the structured outcome of one station. On fail, Geom
// is nil and Msg describes the cause.
type ExtractionResult struct {
	Code     string
	Status   Status
	COMID    int     // snapped outlet reach
	SnapDist float64 // planar snap distance, m
	Order    int     // diagnostic
	UpArea   float64 // diagnostic
	AreaM2   float64 // computed watershed area
	RelErr   float64 // |computed-ref|/ref; NaN when no reference
	Geom     json.RawMessage
	Msg      string
}

func failResult(code, msg string) ExtractionResult {
	return ExtractionResult{Code: code, Status: StatusFail, RelErr: math.NaN(), Msg: msg}
}
