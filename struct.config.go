package merit

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries every tunable of a batch run. Build one with DefaultConfig,
// optionally overlay a YAML file, and pass it by pointer; nothing here is
// package-level state.
type Config struct {
	RivPath      string `yaml:"riv_path"`      // river-network GeoJSON
	CatPath      string `yaml:"cat_path"`      // unit-catchment GeoJSON
	BoundaryPath string `yaml:"boundary_path"` // administrative boundary GeoJSON (optional)
	StationPath  string `yaml:"station_csv"`   // station table CSV
	OutRoot      string `yaml:"out_root"`      // output directory

	SnapDistM  float64 `yaml:"snap_dist_m"`  // snap search radius, m
	OrderFirst bool    `yaml:"order_first"`  // rank candidates by stream order before distance
	MaxUpReach int     `yaml:"max_up_reach"` // upstream reach-count cap
	AreaTol    float64 `yaml:"area_tol"`     // relative-error tolerance, fraction
	AreaEPSG   int     `yaml:"area_epsg"`    // area-computation projection (6933 or 3857)
	BufferDeg  float64 `yaml:"buffer_deg"`   // merge closing distance ε, degrees
	MinHoleKm2 float64 `yaml:"min_hole_km2"` // interior rings below this are artifacts

	SaveIndividual   bool `yaml:"save_individual"`        // one GeoJSON per station
	MemCheckInterval int  `yaml:"memory_check_interval"`  // completed stations between memory checks
	MemThresholdMB   int  `yaml:"memory_threshold_mb"`    // heap size that forces a collection pass
	NWorkers         int  `yaml:"workers"`                // 0 = min(NumCPU-1, 4)
}

func DefaultConfig() *Config {
	return &Config{
		OutRoot:          "out",
		SnapDistM:        5000.,
		OrderFirst:       false,
		MaxUpReach:       100000,
		AreaTol:          0.20,
		AreaEPSG:         6933,
		BufferDeg:        0.0001, // ~11 m, bridges typical raster-to-vector gaps
		MinHoleKm2:       1.0,
		SaveIndividual:   false,
		MemCheckInterval: 50,
		MemThresholdMB:   8192,
	}
}

// LoadConfig overlays the YAML file at fp onto the defaults. A missing file
// is not an error; a malformed one is.
func LoadConfig(fp string) (*Config, error) {
	cfg := DefaultConfig()
	if fp == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(fp)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("LoadConfig: %v", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("LoadConfig %s: %v", fp, err)
	}
	return cfg, cfg.check()
}

func (c *Config) check() error {
	if c.SnapDistM <= 0 {
		return &ConfigurationError{Msg: "snap_dist_m must be positive"}
	}
	if c.AreaTol < 0 {
		return &ConfigurationError{Msg: "area_tol must not be negative"}
	}
	if c.AreaEPSG != 6933 && c.AreaEPSG != 3857 {
		return &ConfigurationError{Msg: fmt.Sprintf("unsupported area_epsg %d (use 6933 or 3857)", c.AreaEPSG)}
	}
	if c.BufferDeg < 0 || c.MinHoleKm2 < 0 {
		return &ConfigurationError{Msg: "buffer_deg and min_hole_km2 must not be negative"}
	}
	return nil
}
