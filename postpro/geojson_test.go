package postpro

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	merit "github.com/licm13/Merit-catchment-extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPoly = json.RawMessage(`{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}`)

func testResults() []merit.ExtractionResult {
	return []merit.ExtractionResult{
		{Code: "100", Status: merit.StatusOK, COMID: 11, AreaM2: 2.5e9, RelErr: 0.05, Geom: testPoly},
		{Code: "200", Status: merit.StatusReject, COMID: 22, AreaM2: 9.1e8, RelErr: 0.41, Geom: testPoly},
		{Code: "300", Status: merit.StatusFail, RelErr: math.NaN(), Msg: "snap failed"},
	}
}

func TestWriteCombined(t *testing.T) {
	fp := filepath.Join(t.TempDir(), "all_catchments.geojson")
	n, err := WriteCombined(fp, testResults())
	require.NoError(t, err)
	assert.Equal(t, 2, n) // failed stations carry no geometry

	b, err := os.ReadFile(fp)
	require.NoError(t, err)
	var fc featureCollection
	require.NoError(t, json.Unmarshal(b, &fc))
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "100", fc.Features[0].Properties["station_id"])
	assert.Equal(t, "reject", fc.Features[1].Properties["status"])
}

func TestWriteCombinedNothingToWrite(t *testing.T) {
	fp := filepath.Join(t.TempDir(), "all_catchments.geojson")
	n, err := WriteCombined(fp, []merit.ExtractionResult{{Code: "300", Status: merit.StatusFail}})
	require.NoError(t, err)
	assert.Zero(t, n)
	_, err = os.Stat(fp)
	assert.True(t, os.IsNotExist(err))
}

func TestWriteSites(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, WriteSites(root, testResults()))

	for _, code := range []string{"100", "200"} {
		fp := filepath.Join(root, "sites", code, code+"_catchment.geojson")
		b, err := os.ReadFile(fp)
		require.NoError(t, err)
		var fc featureCollection
		require.NoError(t, json.Unmarshal(b, &fc))
		assert.Len(t, fc.Features, 1)
	}
	_, err := os.Stat(filepath.Join(root, "sites", "300"))
	assert.True(t, os.IsNotExist(err))
}

func TestWriteBoundary(t *testing.T) {
	fp := filepath.Join(t.TempDir(), "boundary.geojson")
	bnd := json.RawMessage(`{"type":"FeatureCollection","features":[]}`)
	require.NoError(t, WriteBoundary(fp, bnd))
	b, err := os.ReadFile(fp)
	require.NoError(t, err)
	assert.Equal(t, []byte(bnd), b)
}

func TestWriteBoundaryAbsentLayer(t *testing.T) {
	fp := filepath.Join(t.TempDir(), "boundary.geojson")
	require.NoError(t, WriteBoundary(fp, nil))
	_, err := os.Stat(fp)
	assert.True(t, os.IsNotExist(err))
}

func TestSummaryChart(t *testing.T) {
	fp := filepath.Join(t.TempDir(), "summary_chart.png")
	rows := []merit.LedgerRow{
		{Code: "100", Status: merit.StatusOK},
		{Code: "200", Status: merit.StatusReject},
		{Code: "300", Status: merit.StatusFail},
	}
	require.NoError(t, SummaryChart(fp, rows))
	fi, err := os.Stat(fp)
	require.NoError(t, err)
	assert.Positive(t, fi.Size())
}
