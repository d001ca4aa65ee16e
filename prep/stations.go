// Package prep loads and conditions the tabular and spatial inputs consumed
// by the extraction core.
package prep

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	merit "github.com/licm13/Merit-catchment-extract"
	"github.com/maseology/mmaths/slice"
)

// areaUnitThreshold splits km² from m² readings: station tables in either
// unit sit on opposite sides of 1e6.
const areaUnitThreshold = 1e6

// stationAliases maps each canonical station column to the header spellings
// accepted in the wild (Chinese hydrological yearbooks and English exports).
// Consulted once at load; the core never sees raw headers.
var stationAliases = map[string][]string{
	"code": {"code", "station_id", "测站编码", "测站代码", "站码", "站号"},
	"lon":  {"lon", "longitude", "经度"},
	"lat":  {"lat", "latitude", "纬度"},
	"area": {"area", "catchment_area", "drainage_area", "集水区面积", "面积"},
}

func findColumn(header []string, canonical string) int {
	for i, h := range header {
		h = strings.TrimSpace(h)
		for _, a := range stationAliases[canonical] {
			if strings.EqualFold(h, a) {
				return i
			}
		}
	}
	return -1
}

// LoadStations reads the station table. code/lon/lat are required columns;
// rows missing any of them are dropped. The reference-area column is
// optional and, when present, normalized to m² (see NormalizeAreaM2).
func LoadStations(fp string) ([]merit.StationRecord, error) {
	f, err := os.Open(fp)
	if err != nil {
		return nil, fmt.Errorf("LoadStations: %v", err)
	}
	defer f.Close()

	// the raw header row is needed for alias resolution, so the csv reader
	// is used directly here
	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	recs, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("LoadStations %s: %v", fp, err)
	}
	if len(recs) < 1 {
		return nil, &merit.ConfigurationError{Msg: fp + ": empty station table"}
	}

	header := recs[0]
	ic, ilon, ilat := findColumn(header, "code"), findColumn(header, "lon"), findColumn(header, "lat")
	iar := findColumn(header, "area")
	if ic < 0 || ilon < 0 || ilat < 0 {
		return nil, &merit.ConfigurationError{Msg: fp + ": station table needs code, longitude and latitude columns"}
	}

	var out []merit.StationRecord
	var areas []float64
	for _, rec := range recs[1:] {
		get := func(i int) string {
			if i < 0 || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		code := get(ic)
		lon, elon := strconv.ParseFloat(get(ilon), 64)
		lat, elat := strconv.ParseFloat(get(ilat), 64)
		if code == "" || elon != nil || elat != nil {
			continue
		}
		area := math.NaN()
		if v, err := strconv.ParseFloat(get(iar), 64); err == nil {
			area = v
		}
		out = append(out, merit.StationRecord{Code: code, Lon: lon, Lat: lat, RefAreaM2: area})
		areas = append(areas, area)
	}

	for i, a := range NormalizeAreaM2(areas) {
		out[i].RefAreaM2 = a
	}
	return out, nil
}

// NormalizeAreaM2 returns the input areas in m². The unit is inferred from
// the median of the non-missing values: below the threshold the column is
// taken as km² and scaled by 1e6, otherwise left unchanged. NaNs pass
// through.
func NormalizeAreaM2(areas []float64) []float64 {
	var obs []float64
	for _, a := range areas {
		if !math.IsNaN(a) {
			obs = append(obs, a)
		}
	}
	out := make([]float64, len(areas))
	copy(out, areas)
	if len(obs) == 0 {
		return out
	}
	if slice.Median(obs) < areaUnitThreshold {
		for i, a := range out {
			if !math.IsNaN(a) {
				out[i] = a * 1e6
			}
		}
	}
	return out
}
