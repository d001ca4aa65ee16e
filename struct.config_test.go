package merit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileKeepsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 5000., cfg.SnapDistM)
	assert.Equal(t, 6933, cfg.AreaEPSG)
	assert.Equal(t, 0.20, cfg.AreaTol)
	assert.Equal(t, 50, cfg.MemCheckInterval)
}

func TestLoadConfigOverlay(t *testing.T) {
	fp := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(fp, []byte(`
riv_path: riv.geojson
cat_path: cat.geojson
station_csv: stations.csv
snap_dist_m: 2500
order_first: true
area_tol: 0.1
workers: 2
`), 0644))

	cfg, err := LoadConfig(fp)
	require.NoError(t, err)
	assert.Equal(t, "riv.geojson", cfg.RivPath)
	assert.Equal(t, 2500., cfg.SnapDistM)
	assert.True(t, cfg.OrderFirst)
	assert.Equal(t, 0.1, cfg.AreaTol)
	assert.Equal(t, 2, cfg.NWorkers)
	// untouched keys keep their defaults
	assert.Equal(t, 1.0, cfg.MinHoleKm2)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	for name, body := range map[string]string{
		"zero snap radius": "snap_dist_m: 0",
		"negative tol":     "area_tol: -0.1",
		"bad epsg":         "area_epsg: 4326",
		"negative hole":    "min_hole_km2: -1",
	} {
		t.Run(name, func(t *testing.T) {
			fp := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(fp, []byte(body), 0644))
			_, err := LoadConfig(fp)
			var cfgErr *ConfigurationError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}
