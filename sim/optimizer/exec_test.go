package optimizer

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamk-uas/logistics-sim/sim"
)

func TestExec_WritesInputAndReadsOutput(t *testing.T) {
	// GIVEN a process that answers with a fixed two-day plan
	dir := t.TempDir()
	e := &Exec{
		Command: []string{"sh", "-c", `printf '{"days":[{"vehicles":[{"route":[1,0,1]}]},{"vehicles":[{"route":[]}]}]}' > routing_output.json`},
		WorkDir: dir,
	}
	in := lineInput([]float64{9}, 10)

	// WHEN optimizing
	out, err := e.Optimize(context.Background(), in)

	// THEN the plan is decoded and the input file uses the protocol keys
	require.NoError(t, err)
	require.Len(t, out.Days, 2)
	assert.Equal(t, []int{1, 0, 1}, out.Days[0].RouteFor(0))
	assert.Empty(t, out.Days[1].RouteFor(0))

	raw, err := os.ReadFile(filepath.Join(dir, InputFile))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	for _, key := range []string{"pickup_sites", "depots", "terminals", "vehicles", "distance_matrix", "duration_matrix"} {
		assert.Contains(t, doc, key)
	}
}

func TestExec_StaleOutputIsNotReused(t *testing.T) {
	// GIVEN an output file left by a previous call and a process that writes nothing
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, OutputFile), []byte(`{"days":[]}`), 0o644))
	e := &Exec{Command: []string{"true"}, WorkDir: dir}

	// WHEN optimizing
	_, err := e.Optimize(context.Background(), lineInput([]float64{9}, 10))

	// THEN the missing output is an error
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read routing output")
}

func TestExec_ProcessFailure_IncludesStderr(t *testing.T) {
	e := &Exec{Command: []string{"sh", "-c", "echo solver exploded >&2; exit 3"}, WorkDir: t.TempDir()}

	_, err := e.Optimize(context.Background(), lineInput([]float64{9}, 10))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "solver exploded")
}

func TestExec_Timeout(t *testing.T) {
	e := &Exec{Command: []string{"sleep", "5"}, WorkDir: t.TempDir(), Timeout: 50 * time.Millisecond}

	start := time.Now()
	_, err := e.Optimize(context.Background(), lineInput([]float64{9}, 10))

	require.Error(t, err)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestNew_SelectsOptimizer(t *testing.T) {
	cfg := sim.DefaultConfig()
	opt, err := New(cfg)
	require.NoError(t, err)
	g, ok := opt.(*Greedy)
	require.True(t, ok)
	assert.Equal(t, 0.8, g.Threshold)
	assert.Equal(t, 3, g.HorizonDays)

	cfg.Routing.Optimizer = "exec"
	_, err = New(cfg)
	assert.Error(t, err, "exec without command")

	cfg.Routing.Command = []string{"./optimizer"}
	cfg.Routing.TimeoutSeconds = 1.5
	opt, err = New(cfg)
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, opt.(*Exec).Timeout)

	cfg.Routing.Optimizer = "ortools"
	_, err = New(cfg)
	assert.Error(t, err)
}
