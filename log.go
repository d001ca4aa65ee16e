package merit

import (
	"fmt"
	"math"
	"time"

	"github.com/maseology/mmio"
)

// RunLog mirrors every timestamped line to the console and, when opened with
// a file path, to the run log. A nil RunLog is safe and prints only to the
// console.
type RunLog struct {
	write func(string)
	close func()
}

func NewRunLog(fp string) (*RunLog, error) {
	tw, err := mmio.NewTXTwriter(fp)
	if err != nil {
		return nil, fmt.Errorf("NewRunLog: %v", err)
	}
	return &RunLog{
		write: func(s string) { tw.WriteLine(s) },
		close: func() { tw.Close() },
	}, nil
}

func (l *RunLog) Printf(format string, a ...interface{}) {
	line := "[" + time.Now().Format("2006-01-02 15:04:05") + "] " + fmt.Sprintf(format, a...)
	fmt.Println(line)
	if l != nil && l.write != nil {
		l.write(line)
	}
}

func (l *RunLog) Close() {
	if l != nil && l.close != nil {
		l.close()
	}
}

// FmtPct renders a fraction as a percentage, "NA" when undefined.
func FmtPct(x float64) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return "NA"
	}
	return fmt.Sprintf("%.1f%%", x*100.)
}
