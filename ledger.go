package merit

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/maseology/mmio"
)

// LedgerRow is one station's line in summary.csv, the batch's final output
// and its resume checkpoint.
type LedgerRow struct {
	Code     string
	Status   Status
	COMID    int
	SnapDist float64
	Order    int
	UpArea   float64
	AreaM2   float64
	RelErr   float64 // NaN when no reference area
	Msg      string
}

const ledgerHead = "code,status,comid,snap_dist_m,strm_order,uparea,area_m2,rel_err,msg"

func rowFromResult(r ExtractionResult) LedgerRow {
	return LedgerRow{
		Code:     r.Code,
		Status:   r.Status,
		COMID:    r.COMID,
		SnapDist: r.SnapDist,
		Order:    r.Order,
		UpArea:   r.UpArea,
		AreaM2:   r.AreaM2,
		RelErr:   r.RelErr,
		Msg:      r.Msg,
	}
}

// LoadLedger reads a prior summary.csv. A missing file is an empty ledger,
// not an error.
func LoadLedger(fp string) ([]LedgerRow, error) {
	if _, ok := mmio.FileExists(fp); !ok {
		return nil, nil
	}
	f, err := os.Open(fp)
	if err != nil {
		return nil, fmt.Errorf("LoadLedger: %v", err)
	}
	defer f.Close()

	var rows []LedgerRow
	for rec := range mmio.LoadCSV(io.Reader(f), 0) {
		if len(rec) < 9 || rec[0] == "code" {
			continue
		}
		comid, _ := strconv.Atoi(rec[2])
		ord, _ := strconv.Atoi(rec[4])
		rows = append(rows, LedgerRow{
			Code:     rec[0],
			Status:   Status(rec[1]),
			COMID:    comid,
			SnapDist: parseFloatNA(rec[3]),
			Order:    ord,
			UpArea:   parseFloatNA(rec[5]),
			AreaM2:   parseFloatNA(rec[6]),
			RelErr:   parseFloatNA(rec[7]),
			Msg:      rec[8],
		})
	}
	return rows, nil
}

// WriteLedger rewrites summary.csv in full; the batch writes it exclusively
// after the parallel phase completes.
func WriteLedger(fp string, rows []LedgerRow) error {
	csvw := mmio.NewCSVwriter(fp)
	defer csvw.Close()
	if err := csvw.WriteHead(ledgerHead); err != nil {
		return fmt.Errorf("WriteLedger: %v", err)
	}
	for _, r := range rows {
		csvw.WriteLine(
			r.Code,
			string(r.Status),
			r.COMID,
			fmt.Sprintf("%.1f", r.SnapDist),
			r.Order,
			fmt.Sprintf("%.1f", r.UpArea),
			fmt.Sprintf("%.0f", r.AreaM2),
			formatFloatNA(r.RelErr),
			r.Msg,
		)
	}
	return nil
}

// CompletedCodes lists the stations the resume policy skips: a prior ok is
// final, rejects and fails are retried.
func CompletedCodes(rows []LedgerRow) map[string]bool {
	done := make(map[string]bool, len(rows))
	for _, r := range rows {
		if r.Status == StatusOK {
			done[r.Code] = true
		}
	}
	return done
}

func parseFloatNA(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func formatFloatNA(v float64) string {
	if math.IsNaN(v) {
		return "NA"
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}
