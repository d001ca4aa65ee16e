package merit

import (
	"encoding/json"
	"fmt"
	"math"
)

const rEarth = 6378137. // WGS84 semi-major axis, m

// webMercator projects geographic degrees to EPSG:3857 metres. Latitudes are
// clamped to the projection's valid band.
func webMercator(lon, lat float64) (x, y float64) {
	if lat > 85.05113 {
		lat = 85.05113
	} else if lat < -85.05113 {
		lat = -85.05113
	}
	x = rEarth * lon * math.Pi / 180.
	y = rEarth * math.Log(math.Tan(math.Pi/4.+lat*math.Pi/360.))
	return
}

// cylindricalEqualArea projects geographic degrees to EPSG:6933 metres
// (NSIDC EASE-Grid 2.0 global, standard parallel 30°). Areas measured in
// this system are true.
func cylindricalEqualArea(lon, lat float64) (x, y float64) {
	k0 := math.Cos(30. * math.Pi / 180.)
	x = rEarth * lon * math.Pi / 180. * k0
	y = rEarth * math.Sin(lat*math.Pi/180.) / k0
	return
}

// projectorFor returns the forward transform for a supported EPSG code.
func projectorFor(epsg int) (func(lon, lat float64) (float64, float64), error) {
	switch epsg {
	case 6933:
		return cylindricalEqualArea, nil
	case 3857:
		return webMercator, nil
	default:
		return nil, &ConfigurationError{Msg: fmt.Sprintf("unsupported projection EPSG:%d", epsg)}
	}
}

func projectPath(path [][]float64, tf func(float64, float64) (float64, float64)) [][]float64 {
	out := make([][]float64, len(path))
	for i, v := range path {
		x, y := tf(v[0], v[1])
		out[i] = []float64{x, y}
	}
	return out
}

// geojsonGeom is the wire form of a GeoJSON geometry; Coordinates stays raw
// until the type is known.
type geojsonGeom struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// transformGeoJSON rewrites every coordinate of a GeoJSON Polygon or
// MultiPolygon through tf.
func transformGeoJSON(raw []byte, tf func(float64, float64) (float64, float64)) ([]byte, error) {
	var g geojsonGeom
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("transformGeoJSON: %v", err)
	}
	switch g.Type {
	case "Polygon":
		var rings [][][]float64
		if err := json.Unmarshal(g.Coordinates, &rings); err != nil {
			return nil, fmt.Errorf("transformGeoJSON: %v", err)
		}
		for i, r := range rings {
			rings[i] = projectPath(r, tf)
		}
		return marshalGeom("Polygon", rings)
	case "MultiPolygon":
		var polys [][][][]float64
		if err := json.Unmarshal(g.Coordinates, &polys); err != nil {
			return nil, fmt.Errorf("transformGeoJSON: %v", err)
		}
		for i, p := range polys {
			for j, r := range p {
				polys[i][j] = projectPath(r, tf)
			}
		}
		return marshalGeom("MultiPolygon", polys)
	default:
		return nil, fmt.Errorf("transformGeoJSON: unsupported geometry type %q", g.Type)
	}
}

func marshalGeom(typ string, coords interface{}) ([]byte, error) {
	b, err := json.Marshal(struct {
		Type        string      `json:"type"`
		Coordinates interface{} `json:"coordinates"`
	}{typ, coords})
	if err != nil {
		return nil, fmt.Errorf("marshalGeom: %v", err)
	}
	return b, nil
}

// ringAreaDeg2 is the unsigned shoelace area of a closed lon-lat ring, in
// square degrees.
func ringAreaDeg2(ring [][]float64) float64 {
	n := len(ring)
	if n < 3 {
		return 0.
	}
	s := 0.
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		s += ring[i][0]*ring[j][1] - ring[j][0]*ring[i][1]
	}
	return math.Abs(s) / 2.
}

// deg2ToKm2 converts square degrees to km² with the fixed mid-latitude
// approximation (1 deg² ≈ 10,000 km²) used to filter hole artifacts.
const deg2ToKm2 = 10000.
