// Package postpro writes the batch's geometry collections and summary chart.
package postpro

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	merit "github.com/licm13/Merit-catchment-extract"
	"github.com/maseology/mmio"
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

func resultFeature(r merit.ExtractionResult) feature {
	props := map[string]interface{}{
		"station_id":  r.Code,
		"status":      string(r.Status),
		"comid":       r.COMID,
		"snap_dist_m": r.SnapDist,
		"area_m2":     r.AreaM2,
	}
	if !math.IsNaN(r.RelErr) {
		props["rel_err"] = r.RelErr
	}
	return feature{Type: "Feature", Geometry: r.Geom, Properties: props}
}

// WriteCombined writes one FeatureCollection holding every extracted
// (ok or reject) watershed polygon. Returns the feature count.
func WriteCombined(fp string, results []merit.ExtractionResult) (int, error) {
	fc := featureCollection{Type: "FeatureCollection"}
	for _, r := range results {
		if r.Geom == nil {
			continue
		}
		fc.Features = append(fc.Features, resultFeature(r))
	}
	if len(fc.Features) == 0 {
		return 0, nil
	}
	b, err := json.Marshal(fc)
	if err != nil {
		return 0, fmt.Errorf("WriteCombined: %v", err)
	}
	if err := os.WriteFile(fp, b, 0644); err != nil {
		return 0, fmt.Errorf("WriteCombined: %v", err)
	}
	return len(fc.Features), nil
}

// WriteBoundary copies the administrative-boundary layer into the output
// root; map context alongside the combined collection, never part of the
// extraction itself. A nil boundary writes nothing.
func WriteBoundary(fp string, boundary json.RawMessage) error {
	if boundary == nil {
		return nil
	}
	if err := os.WriteFile(fp, boundary, 0644); err != nil {
		return fmt.Errorf("WriteBoundary: %v", err)
	}
	return nil
}

// WriteSites writes one FeatureCollection per station under
// <root>/sites/<code>/<code>_catchment.geojson.
func WriteSites(root string, results []merit.ExtractionResult) error {
	for _, r := range results {
		if r.Geom == nil {
			continue
		}
		dir := filepath.Join(root, "sites", r.Code)
		mmio.MakeDir(dir)
		fc := featureCollection{Type: "FeatureCollection", Features: []feature{resultFeature(r)}}
		b, err := json.Marshal(fc)
		if err != nil {
			return fmt.Errorf("WriteSites %s: %v", r.Code, err)
		}
		fp := filepath.Join(dir, r.Code+"_catchment.geojson")
		if err := os.WriteFile(fp, b, 0644); err != nil {
			return fmt.Errorf("WriteSites %s: %v", r.Code, err)
		}
	}
	return nil
}
