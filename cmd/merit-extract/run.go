package main

import (
	"path/filepath"

	merit "github.com/licm13/Merit-catchment-extract"
	"github.com/licm13/Merit-catchment-extract/postpro"
	"github.com/licm13/Merit-catchment-extract/prep"
	"github.com/maseology/mmio"
	"github.com/spf13/cobra"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a batch extraction",
		Long: `Run executes a full batch: load the station table and spatial layers,
build the upstream topology, extract every pending station in parallel,
then write summary.csv, the combined GeoJSON and the summary chart.

Example:
  merit-extract run -c config.yaml`,
		RunE: runBatchCmd,
	}
	cmd.Flags().StringP("config", "c", "config.yaml", "Configuration file path")
	cmd.Flags().StringP("out", "o", "", "Output directory (overrides config)")
	return cmd
}

func runBatchCmd(cmd *cobra.Command, args []string) error {
	cfgFP, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg, err := merit.LoadConfig(cfgFP)
	if err != nil {
		return err
	}
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		cfg.OutRoot = out
	}
	return runBatch(cfg)
}

func runBatch(cfg *merit.Config) error {
	mmio.MakeDir(cfg.OutRoot)
	lg, err := merit.NewRunLog(filepath.Join(cfg.OutRoot, "run_log.txt"))
	if err != nil {
		return err
	}
	defer lg.Close()
	tt := mmio.NewTimer()

	lg.Printf("[1/6] reading station table %s", cfg.StationPath)
	stations, err := prep.LoadStations(cfg.StationPath)
	if err != nil {
		return err
	}
	lg.Printf("      %d stations", len(stations))

	lg.Printf("[2/6] reading spatial layers")
	rt, ct, bnd, err := prep.LoadLayers(cfg.RivPath, cfg.CatPath, cfg.BoundaryPath)
	if err != nil {
		return err
	}
	lg.Printf("      %s reaches, %s unit catchments",
		mmio.Thousands(int64(len(rt.Reaches))), mmio.Thousands(int64(len(ct.Catchments))))

	lg.Printf("[3/6] building upstream topology")
	g, err := merit.BuildUpstreamGraph(rt)
	if err != nil {
		return err
	}
	tt.Lap("load complete")

	lg.Printf("[4/6] extracting watersheds")
	b := &merit.Coordinator{Cfg: cfg, Riv: rt, Cat: ct, Graph: g, Log: lg}
	results, rows, err := b.Run(stations)
	if err != nil {
		return err
	}
	tt.Lap("extraction complete")

	lg.Printf("[5/6] writing geometry collections")
	n, err := postpro.WriteCombined(filepath.Join(cfg.OutRoot, "all_catchments.geojson"), results)
	if err != nil {
		return err
	}
	lg.Printf("      %d polygons written", n)
	if err := postpro.WriteBoundary(filepath.Join(cfg.OutRoot, "boundary.geojson"), bnd); err != nil {
		return err
	}
	if cfg.SaveIndividual {
		if err := postpro.WriteSites(cfg.OutRoot, results); err != nil {
			return err
		}
	}

	lg.Printf("[6/6] writing summary chart")
	if err := postpro.SummaryChart(filepath.Join(cfg.OutRoot, "summary_chart.png"), rows); err != nil {
		return err
	}

	var nok, nrej, nfail int
	for _, r := range rows {
		switch r.Status {
		case merit.StatusOK:
			nok++
		case merit.StatusReject:
			nrej++
		default:
			nfail++
		}
	}
	lg.Printf("done: %d ok | %d reject | %d fail", nok, nrej, nfail)
	tt.Print("batch complete")
	return nil
}
