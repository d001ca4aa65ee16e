package prep

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	merit "github.com/licm13/Merit-catchment-extract"
	"golang.org/x/sync/errgroup"
)

type feature struct {
	Type       string                 `json:"type"`
	Geometry   json.RawMessage        `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type rawGeom struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

func readFeatureCollection(fp string) (*featureCollection, error) {
	b, err := os.ReadFile(fp)
	if err != nil {
		return nil, err
	}
	var fc featureCollection
	if err := json.Unmarshal(b, &fc); err != nil {
		return nil, fmt.Errorf("%s: %v", fp, err)
	}
	return &fc, nil
}

// propInt coerces a GeoJSON property to an int; bool=false when the value is
// absent or not numeric. Positivity is judged downstream by the graph
// builder, not here.
func propInt(props map[string]interface{}, key string) (int, bool) {
	v, ok := props[key]
	if !ok || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return int(t), true
	case string:
		if i, err := strconv.Atoi(t); err == nil {
			return i, true
		}
	}
	return 0, false
}

func propFloat(props map[string]interface{}, key string) float64 {
	v, ok := props[key]
	if !ok || v == nil {
		return 0.
	}
	switch t := v.(type) {
	case float64:
		return t
	case string:
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return f
		}
	}
	return 0.
}

var upFields = [4]string{"up1", "up2", "up3", "up4"}

// LoadNetwork reads the river-network GeoJSON layer. COMID is required on
// every feature; NextDownID, up1..up4, stream order and upstream area are
// carried when present. Which topology field families exist is recorded on
// the table so the graph builder can abort when both are missing.
func LoadNetwork(fp string) (*merit.ReachTable, error) {
	fc, err := readFeatureCollection(fp)
	if err != nil {
		return nil, fmt.Errorf("LoadNetwork: %v", err)
	}

	var hasDown, hasUp bool
	reaches := make([]merit.Reach, 0, len(fc.Features))
	for i, ft := range fc.Features {
		comid, ok := propInt(ft.Properties, "COMID")
		if !ok {
			return nil, &merit.ConfigurationError{Msg: fmt.Sprintf("%s: feature %d lacks required field COMID", fp, i)}
		}
		paths, err := linePaths(ft.Geometry)
		if err != nil {
			return nil, fmt.Errorf("LoadNetwork: COMID %d: %v", comid, err)
		}

		r := merit.Reach{ID: comid, Paths: paths, UpArea: propFloat(ft.Properties, "uparea")}
		if d, ok := propInt(ft.Properties, "NextDownID"); ok {
			r.Down = d
			hasDown = true
		} else if _, present := ft.Properties["NextDownID"]; present {
			hasDown = true
		}
		for _, uf := range upFields {
			if u, ok := propInt(ft.Properties, uf); ok {
				r.Up = append(r.Up, u)
				hasUp = true
			} else if _, present := ft.Properties[uf]; present {
				hasUp = true
			}
		}
		if o, ok := propInt(ft.Properties, "order"); ok {
			r.Order = o
		} else if o, ok := propInt(ft.Properties, "strmOrder"); ok {
			r.Order = o
		}
		reaches = append(reaches, r)
	}
	return merit.NewReachTable(reaches, hasDown, hasUp), nil
}

func linePaths(raw json.RawMessage) ([][][]float64, error) {
	var g rawGeom
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, err
	}
	switch g.Type {
	case "LineString":
		var p [][]float64
		if err := json.Unmarshal(g.Coordinates, &p); err != nil {
			return nil, err
		}
		return [][][]float64{p}, nil
	case "MultiLineString":
		var ps [][][]float64
		if err := json.Unmarshal(g.Coordinates, &ps); err != nil {
			return nil, err
		}
		return ps, nil
	default:
		return nil, fmt.Errorf("unsupported reach geometry %q", g.Type)
	}
}

// LoadCatchments reads the unit-catchment GeoJSON layer; one polygon per
// COMID, geometry kept as its raw GeoJSON payload.
func LoadCatchments(fp string) (*merit.CatchmentTable, error) {
	fc, err := readFeatureCollection(fp)
	if err != nil {
		return nil, fmt.Errorf("LoadCatchments: %v", err)
	}
	cats := make([]merit.UnitCatchment, 0, len(fc.Features))
	for i, ft := range fc.Features {
		comid, ok := propInt(ft.Properties, "COMID")
		if !ok {
			return nil, &merit.ConfigurationError{Msg: fmt.Sprintf("%s: feature %d lacks required field COMID", fp, i)}
		}
		var g rawGeom
		if err := json.Unmarshal(ft.Geometry, &g); err != nil {
			return nil, fmt.Errorf("LoadCatchments: COMID %d: %v", comid, err)
		}
		if g.Type != "Polygon" && g.Type != "MultiPolygon" {
			return nil, fmt.Errorf("LoadCatchments: COMID %d: unsupported catchment geometry %q", comid, g.Type)
		}
		cats = append(cats, merit.UnitCatchment{ID: comid, Geom: ft.Geometry})
	}
	return merit.NewCatchmentTable(cats), nil
}

// LoadBoundary reads the administrative-boundary layer, kept opaque; an
// empty path yields nil.
func LoadBoundary(fp string) (json.RawMessage, error) {
	if fp == "" {
		return nil, nil
	}
	b, err := os.ReadFile(fp)
	if err != nil {
		return nil, fmt.Errorf("LoadBoundary: %v", err)
	}
	var v json.RawMessage
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("LoadBoundary %s: %v", fp, err)
	}
	return v, nil
}

// LoadLayers reads the three spatial layers concurrently.
func LoadLayers(rivFP, catFP, bndFP string) (*merit.ReachTable, *merit.CatchmentTable, json.RawMessage, error) {
	var (
		rt  *merit.ReachTable
		ct  *merit.CatchmentTable
		bnd json.RawMessage
	)
	g, _ := errgroup.WithContext(context.Background())
	g.Go(func() (err error) { rt, err = LoadNetwork(rivFP); return })
	g.Go(func() (err error) { ct, err = LoadCatchments(catFP); return })
	g.Go(func() (err error) { bnd, err = LoadBoundary(bndFP); return })
	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return rt, ct, bnd, nil
}
