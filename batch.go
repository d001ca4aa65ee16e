package merit

import (
	"path/filepath"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/gosuri/uiprogress"
	"github.com/maseology/mmio"
)

const maxPoolWorkers = 4

// Coordinator fans the per-site extractor out across stations. Workers are
// initialized once; each builds its own Extractor (private GEOS context,
// private geometries) at startup and reuses it for every task. The shared
// coordinate tables and the topology graph are immutable after load, so the
// only synchronization is the task/result channel pair; results arrive in
// completion order.
type Coordinator struct {
	Cfg   *Config
	Riv   *ReachTable
	Cat   *CatchmentTable
	Graph TopoGraph
	Log   *RunLog
}

// Run executes the batch with checkpoint-based resume: stations already ok
// in the prior ledger are skipped; rejects and fails are retried. Returns
// the results of this run and the full rewritten ledger. One station's
// failure never affects another; the ledger is written only after the
// parallel phase completes.
func (b *Coordinator) Run(stations []StationRecord) ([]ExtractionResult, []LedgerRow, error) {
	mmio.MakeDir(b.Cfg.OutRoot)
	ledgerFP := filepath.Join(b.Cfg.OutRoot, "summary.csv")

	prior, err := LoadLedger(ledgerFP)
	if err != nil {
		return nil, nil, err
	}
	done := CompletedCodes(prior)
	var pending []StationRecord
	for _, st := range stations {
		if !done[st.Code] {
			pending = append(pending, st)
		}
	}
	if len(done) > 0 {
		b.Log.Printf("resume: %d stations already ok, %d pending", len(done), len(pending))
	}
	if len(pending) == 0 {
		b.Log.Printf("all stations complete")
		return nil, prior, nil
	}

	nw := b.Cfg.NWorkers
	if nw <= 0 {
		nw = runtime.NumCPU() - 1
		if nw > maxPoolWorkers {
			nw = maxPoolWorkers
		}
	}
	if nw < 1 {
		nw = 1
	}
	b.Log.Printf("processing %s stations on %d workers", mmio.Thousands(int64(len(pending))), nw)

	tasks := make(chan StationRecord)
	out := make(chan ExtractionResult)
	var wg sync.WaitGroup
	for w := 0; w < nw; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ex, err := NewExtractor(b.Cfg, b.Riv, b.Cat, b.Graph)
			for st := range tasks {
				if err != nil {
					out <- failResult(st.Code, "worker init: "+err.Error())
					continue
				}
				out <- ex.ExtractSite(st)
			}
		}()
	}
	go func() {
		for _, st := range pending {
			tasks <- st
		}
		close(tasks)
	}()
	go func() {
		wg.Wait()
		close(out)
	}()

	// a fresh Progress per run: the package-level singleton panics when
	// restarted after Stop (uiprogress v0.0.1 closes its done channel twice)
	progress := uiprogress.New()
	progress.Start()
	bar := progress.AddBar(len(pending)).AppendCompleted().PrependElapsed()

	results := make([]ExtractionResult, 0, len(pending))
	for res := range out {
		bar.Incr()
		results = append(results, res)
		switch res.Status {
		case StatusOK:
			b.Log.Printf("  ok     %s | rel_err=%s", res.Code, FmtPct(res.RelErr))
		case StatusReject:
			b.Log.Printf("  reject %s | rel_err=%s", res.Code, FmtPct(res.RelErr))
		default:
			b.Log.Printf("  fail   %s | %s", res.Code, res.Msg)
		}
		if b.Cfg.MemCheckInterval > 0 && len(results)%b.Cfg.MemCheckInterval == 0 {
			b.checkMemory()
		}
	}
	progress.Stop()

	// carry prior ok rows forward, then this run's rows
	rows := make([]LedgerRow, 0, len(prior)+len(results))
	for _, r := range prior {
		if r.Status == StatusOK {
			rows = append(rows, r)
		}
	}
	for _, res := range results {
		rows = append(rows, rowFromResult(res))
	}
	if err := WriteLedger(ledgerFP, rows); err != nil {
		return results, rows, err
	}
	b.Log.Printf("ledger: %s", ledgerFP)
	return results, rows, nil
}

// checkMemory samples the heap and forces a collection pass above the
// threshold. Soft mitigation only; scheduling is never throttled.
func (b *Coordinator) checkMemory() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	allocMB := int(ms.Alloc / 1024 / 1024)
	if b.Cfg.MemThresholdMB > 0 && allocMB > b.Cfg.MemThresholdMB {
		b.Log.Printf("heap at %d MB, forcing collection", allocMB)
		debug.FreeOSMemory()
	}
}
