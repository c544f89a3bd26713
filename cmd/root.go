package cmd

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hamk-uas/logistics-sim/sim"
)

// EnvPrefix prefixes the environment variables that override run flags,
// e.g. LOGISTICS_SIM_SEED.
const EnvPrefix = "LOGISTICS_SIM"

var (
	configPath string // Scenario YAML file
	logLevel   string // Log verbosity level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "logistics-sim",
	Short: "Discrete-event simulator for waste collection fleets",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(viper.GetString("log"))
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", viper.GetString("log"))
		}
		logrus.SetLevel(level)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}

func init() {
	cobra.OnInitialize(initEnv)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Scenario YAML file (defaults are used when empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().Uint64("seed", 0, "Seed overriding the scenario seed (location placement and site draws)")
	for _, name := range []string{"log", "seed"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(matrixCmd)
}

// initEnv loads .env (for ORS_API_KEY and friends) and enables LOGISTICS_SIM_*
// overrides of bound flags.
func initEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logrus.Warnf("could not load .env: %v", err)
	}
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// scenarioFromFlags loads --config and applies the flag and LOGISTICS_SIM_*
// overrides, so every command sees the same locations for the same seed.
func scenarioFromFlags() (sim.Config, error) {
	cfg, err := loadScenario(configPath)
	if err != nil {
		return cfg, err
	}
	applyOverrides(&cfg, viper.GetViper())
	return cfg, nil
}

// loadScenario reads the scenario at path, or the defaults when path is empty.
func loadScenario(path string) (sim.Config, error) {
	if path == "" {
		logrus.Infof("No --config given, using the default scenario")
		return sim.DefaultConfig(), nil
	}
	if _, err := os.Stat(path); err != nil {
		return sim.Config{}, err
	}
	return sim.LoadConfig(path)
}
