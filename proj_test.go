package merit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebMercatorKnownValues(t *testing.T) {
	x, y := webMercator(0., 0.)
	assert.InDelta(t, 0., x, 1e-6)
	assert.InDelta(t, 0., y, 1e-6)

	x, _ = webMercator(180., 0.)
	assert.InDelta(t, 20037508.34, x, 1.)

	// poleward latitudes clamp instead of diverging
	_, y = webMercator(0., 90.)
	assert.False(t, math.IsInf(y, 1))
}

func TestCylindricalEqualAreaIsAreaTrue(t *testing.T) {
	// projected area of a lon-lat quad equals its spherical area
	// R²·Δλ·Δ(sin φ) regardless of the standard parallel
	quadArea := func(lat0 float64) float64 {
		x0, y0 := cylindricalEqualArea(0., lat0)
		x1, _ := cylindricalEqualArea(1., lat0)
		_, y1 := cylindricalEqualArea(0., lat0+1.)
		return (x1 - x0) * (y1 - y0)
	}
	sphere := func(lat0 float64) float64 {
		r0, r1 := lat0*math.Pi/180., (lat0+1.)*math.Pi/180.
		return rEarth * rEarth * (math.Pi / 180.) * (math.Sin(r1) - math.Sin(r0))
	}
	for _, lat0 := range []float64{0., 30., 60.} {
		assert.InEpsilon(t, sphere(lat0), quadArea(lat0), 1e-9)
	}
}

func TestProjectorFor(t *testing.T) {
	for _, epsg := range []int{6933, 3857} {
		tf, err := projectorFor(epsg)
		require.NoError(t, err)
		require.NotNil(t, tf)
	}
	_, err := projectorFor(4326)
	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestTransformGeoJSONPolygon(t *testing.T) {
	in := []byte(`{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}`)
	double := func(lon, lat float64) (float64, float64) { return 2 * lon, 2 * lat }
	out, err := transformGeoJSON(in, double)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Polygon","coordinates":[[[0,0],[2,0],[2,2],[0,2],[0,0]]]}`, string(out))
}

func TestTransformGeoJSONRejectsOtherTypes(t *testing.T) {
	_, err := transformGeoJSON([]byte(`{"type":"Point","coordinates":[0,0]}`), webMercator)
	assert.Error(t, err)
}

func TestRingAreaDeg2(t *testing.T) {
	unit := [][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}
	assert.InDelta(t, 1., ringAreaDeg2(unit), 1e-12)

	// winding direction does not matter
	rev := [][]float64{{0, 0}, {0, 1}, {1, 1}, {1, 0}, {0, 0}}
	assert.InDelta(t, 1., ringAreaDeg2(rev), 1e-12)

	assert.Zero(t, ringAreaDeg2([][]float64{{0, 0}, {1, 1}}))
}
