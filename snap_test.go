package merit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geos"
)

// ~500 m of longitude at the equator
const lon500m = 500. / 111319.49

func vline(lon float64) [][][]float64 {
	return [][][]float64{{{lon, -0.01}, {lon, 0.01}}}
}

func testNetwork(t *testing.T, reaches []Reach) *Network {
	t.Helper()
	rt := NewReachTable(reaches, true, false)
	return newNetwork(geos.NewContext(), rt, 5000.)
}

func TestSnapNearestWins(t *testing.T) {
	n := testNetwork(t, []Reach{
		{ID: 10, Paths: vline(lon500m), Order: 1, UpArea: 100.},
		{ID: 20, Paths: vline(2 * lon500m), Order: 3, UpArea: 900.},
	})

	s, err := n.SnapToReach(0., 0., 5000., false)
	require.NoError(t, err)
	assert.Equal(t, 10, s.COMID)
	assert.InDelta(t, 500., s.DistM, 1.)
	assert.Equal(t, 1, s.Order)
}

func TestSnapOrderFirst(t *testing.T) {
	// same layout; order preference promotes the farther, higher-order reach
	n := testNetwork(t, []Reach{
		{ID: 10, Paths: vline(lon500m), Order: 1, UpArea: 100.},
		{ID: 20, Paths: vline(2 * lon500m), Order: 3, UpArea: 900.},
	})

	s, err := n.SnapToReach(0., 0., 5000., true)
	require.NoError(t, err)
	assert.Equal(t, 20, s.COMID)
	assert.InDelta(t, 1000., s.DistM, 2.)
}

func TestSnapUpAreaBreaksTies(t *testing.T) {
	// coincident geometry and order; larger upstream area wins
	n := testNetwork(t, []Reach{
		{ID: 10, Paths: vline(lon500m), Order: 2, UpArea: 100.},
		{ID: 20, Paths: vline(lon500m), Order: 2, UpArea: 900.},
	})

	s, err := n.SnapToReach(0., 0., 5000., false)
	require.NoError(t, err)
	assert.Equal(t, 20, s.COMID)
}

func TestSnapNothingInWindow(t *testing.T) {
	n := testNetwork(t, []Reach{
		{ID: 10, Paths: vline(lon500m), Order: 1},
	})

	_, err := n.SnapToReach(1., 0., 5000., false)
	var sf *SnapFailure
	require.ErrorAs(t, err, &sf)
	assert.Equal(t, 5000., sf.RadiusM)
}

func TestSnapWindowAdmitsEdgeCandidates(t *testing.T) {
	// the radius bounds the envelope query, not the exact distance: a reach
	// whose envelope clips the 600 m window is ranked and returned even
	// though its nearest vertex sits ~707 m out
	n := testNetwork(t, []Reach{
		{ID: 10, Paths: [][][]float64{{{lon500m, lon500m}, {0.02, 0.02}}}},
	})

	s, err := n.SnapToReach(0., 0., 600., false)
	require.NoError(t, err)
	assert.Equal(t, 10, s.COMID)
	assert.InDelta(t, 707., s.DistM, 5.)
}
