package merit

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCoordinator(t *testing.T, outRoot string) *Coordinator {
	t.Helper()
	rt, ct := testTables()
	g, err := BuildUpstreamGraph(rt)
	require.NoError(t, err)
	cfg := DefaultConfig()
	cfg.OutRoot = outRoot
	cfg.NWorkers = 2
	return &Coordinator{Cfg: cfg, Riv: rt, Cat: ct, Graph: g}
}

func TestCoordinatorRun(t *testing.T) {
	out := t.TempDir()
	b := testCoordinator(t, out)

	stations := []StationRecord{
		{Code: "100", Lon: 0.5, Lat: 0.51, RefAreaM2: tiledBlockAreaM2() * 1.05},
		{Code: "200", Lon: 1.5, Lat: 0.51, RefAreaM2: math.NaN()},
		{Code: "300", Lon: 5., Lat: 5., RefAreaM2: math.NaN()}, // unsnappable
	}
	results, rows, err := b.Run(stations)
	require.NoError(t, err)
	assert.Len(t, results, 3)
	require.Len(t, rows, 3)

	byCode := make(map[string]Status)
	for _, r := range rows {
		byCode[r.Code] = r.Status
	}
	assert.Equal(t, StatusOK, byCode["100"])
	assert.Equal(t, StatusOK, byCode["200"])
	assert.Equal(t, StatusFail, byCode["300"])

	// ledger checkpoint was written
	rows2, err := LoadLedger(filepath.Join(out, "summary.csv"))
	require.NoError(t, err)
	assert.Len(t, rows2, 3)
}

func TestCoordinatorResume(t *testing.T) {
	out := t.TempDir()

	// first pass completes 100 and 200, fails 300
	b := testCoordinator(t, out)
	stations := []StationRecord{
		{Code: "100", Lon: 0.5, Lat: 0.51, RefAreaM2: math.NaN()},
		{Code: "200", Lon: 1.5, Lat: 0.51, RefAreaM2: math.NaN()},
		{Code: "300", Lon: 5., Lat: 5., RefAreaM2: math.NaN()},
	}
	_, _, err := b.Run(stations)
	require.NoError(t, err)

	// second pass retries only the failed station
	b2 := testCoordinator(t, out)
	results, rows, err := b2.Run(stations)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "300", results[0].Code)
	assert.Len(t, rows, 3) // prior ok rows carried forward
}

func TestCoordinatorAllComplete(t *testing.T) {
	out := t.TempDir()
	require.NoError(t, WriteLedger(filepath.Join(out, "summary.csv"), []LedgerRow{
		{Code: "100", Status: StatusOK, RelErr: math.NaN()},
	}))

	b := testCoordinator(t, out)
	results, rows, err := b.Run([]StationRecord{{Code: "100", Lon: 0.5, Lat: 0.51, RefAreaM2: math.NaN()}})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Len(t, rows, 1)
}
