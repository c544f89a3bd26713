package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hamk-uas/logistics-sim/sim"
	"github.com/hamk-uas/logistics-sim/sim/matrix"
	"github.com/hamk-uas/logistics-sim/sim/optimizer"
	"github.com/hamk-uas/logistics-sim/sim/trace"
)

// runCmd executes one simulation run and writes its telemetry.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the waste collection simulation",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := scenarioFromFlags()
		if err != nil {
			logrus.Fatalf("Could not load scenario: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		summary, err := runScenario(ctx, cfg, viper.GetString("out"))
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		logrus.Warnf("Run %s finished: collected %s, drove %.1f km, %d overflow days, %d warnings",
			summary.RunID, sim.FormatTons(summary.TotalCollected), summary.TotalDistance/1000, summary.OverflowDays, summary.Warnings)
	},
}

func init() {
	runCmd.Flags().Int("days", 0, "Simulated days overriding sim.runtime_days")
	runCmd.Flags().String("out", "output", "Directory receiving positions, logs, monitoring, routing and summary files")
	for _, name := range []string{"days", "out"} {
		_ = viper.BindPFlag(name, runCmd.Flags().Lookup(name))
	}
}

// applyOverrides copies the flag and environment values that were explicitly
// set onto cfg.
func applyOverrides(cfg *sim.Config, v *viper.Viper) {
	if v.IsSet("seed") {
		cfg.Seed = v.GetUint64("seed")
		logrus.Infof("Seed overridden: %d", cfg.Seed)
	}
	if v.IsSet("days") {
		cfg.Sim.RuntimeDays = v.GetInt("days")
		logrus.Infof("Runtime overridden: %d days", cfg.Sim.RuntimeDays)
	}
}

// buildSimulator wires the location table, matrix provider and optimizer
// into a ready-to-run simulator.
func buildSimulator(ctx context.Context, cfg sim.Config) (*sim.Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Seed))
	table := sim.BuildLocationTable(cfg.Area, rng.ForSubsystem(sim.SubsystemArea))

	m, err := fetchMatrix(ctx, cfg.Matrix, table)
	if err != nil {
		return nil, err
	}
	opt, err := optimizer.New(cfg)
	if err != nil {
		return nil, err
	}
	return sim.NewSimulator(cfg, table, m, opt, rng)
}

func fetchMatrix(ctx context.Context, cfg sim.MatrixConfig, table *sim.LocationTable) (*sim.Matrix, error) {
	provider, closeCache, err := matrix.New(cfg, matrix.Options{})
	if err != nil {
		return nil, fmt.Errorf("matrix provider: %w", err)
	}
	defer func() {
		if err := closeCache(); err != nil {
			logrus.Warnf("closing matrix cache: %v", err)
		}
	}()
	logrus.Infof("Fetching %d×%d matrix from %s provider", table.Len(), table.Len(), cfg.Provider)
	m, err := provider.Matrix(ctx, table.Coordinates())
	if err != nil {
		return nil, fmt.Errorf("fetching matrix: %w", err)
	}
	return m, nil
}

// runScenario runs cfg to completion and, when outDir is not empty, writes
// the telemetry files there.
func runScenario(ctx context.Context, cfg sim.Config, outDir string) (*trace.RunSummary, error) {
	s, err := buildSimulator(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logrus.Infof("Run %s: %d pickup sites, %d vehicles, %d days", s.RunID, len(s.Sites), len(s.Vehicles), cfg.Sim.RuntimeDays)
	if err := s.Run(ctx); err != nil {
		return nil, err
	}
	summary := s.Summary()
	if outDir != "" {
		if err := trace.WriteDir(outDir, s.Trace, summary); err != nil {
			return nil, err
		}
		logrus.Infof("Telemetry written to %s", outDir)
	}
	return summary, nil
}
