package optimizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hamk-uas/logistics-sim/sim"
)

// File names of the external optimizer protocol, relative to the work directory.
const (
	InputFile  = "routing_input.json"
	OutputFile = "routing_output.json"
)

// Exec runs an external optimizer process. Before each call the routing input
// is written to WorkDir/routing_input.json; the process runs with WorkDir as
// its working directory and must leave its answer in routing_output.json.
type Exec struct {
	Command []string
	WorkDir string
	Timeout time.Duration // zero means no limit beyond ctx
}

// Optimize implements sim.RouteOptimizer.
func (e *Exec) Optimize(ctx context.Context, in *sim.RoutingInput) (*sim.RoutingOutput, error) {
	if len(e.Command) == 0 {
		return nil, errors.New("exec optimizer: command is empty")
	}
	dir := e.WorkDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("exec optimizer: create work dir: %w", err)
	}

	inputPath := filepath.Join(dir, InputFile)
	outputPath := filepath.Join(dir, OutputFile)
	data, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("exec optimizer: encode routing input: %w", err)
	}
	if err := os.WriteFile(inputPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("exec optimizer: write routing input: %w", err)
	}
	if err := os.Remove(outputPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("exec optimizer: remove stale output: %w", err)
	}

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, e.Command[0], e.Command[1:]...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	logrus.Debugf("exec optimizer: running %s in %s", strings.Join(e.Command, " "), dir)
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("exec optimizer: %s: %w: %s", e.Command[0], err, strings.TrimSpace(stderr.String()))
	}
	logrus.Debugf("exec optimizer: finished in %s", time.Since(start))

	raw, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, fmt.Errorf("exec optimizer: read routing output: %w", err)
	}
	var out sim.RoutingOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("exec optimizer: decode routing output: %w", err)
	}
	return &out, nil
}
