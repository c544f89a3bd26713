package cmd

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hamk-uas/logistics-sim/sim"
	"github.com/hamk-uas/logistics-sim/sim/matrix"
)

var matrixOut string // Destination of the matrix JSON

// matrixCmd fetches (and caches) the matrix of a scenario without simulating.
// The output records the coordinates it was built for and can be fed back
// with matrix.provider: file by runs using the same scenario and seed.
var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Fetch the distance and duration matrix of a scenario",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := scenarioFromFlags()
		if err != nil {
			logrus.Fatalf("Could not load scenario: %v", err)
		}
		if err := exportMatrix(cmd.Context(), cfg, matrixOut); err != nil {
			logrus.Fatalf("Matrix export failed: %v", err)
		}
	},
}

func init() {
	matrixCmd.Flags().StringVar(&matrixOut, "out", "matrix.json", "Matrix JSON output path")
}

func exportMatrix(ctx context.Context, cfg sim.Config, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Seed))
	table := sim.BuildLocationTable(cfg.Area, rng.ForSubsystem(sim.SubsystemArea))
	m, err := fetchMatrix(ctx, cfg.Matrix, table)
	if err != nil {
		return err
	}
	if err := matrix.WriteFile(path, table.Coordinates(), m); err != nil {
		return err
	}
	logrus.Infof("Matrix for seed %d written to %s", cfg.Seed, path)
	return nil
}
