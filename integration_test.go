//go:build integration

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalnine/solverbench/cmd"
	"github.com/signalnine/solverbench/internal/report"
	"github.com/signalnine/solverbench/internal/result"
	"github.com/signalnine/solverbench/internal/runner"
)

const integrationConfig = `name: integration
sub_run_count: 2
parallel_benchmark_count: 2
timeout_seconds: 30

solvers:
  - name: baseline
    command: ["sh", "%[1]s"]
    environment_mode: reproducible
  - name: improved
    command: ["sh", "%[1]s"]
    environment_mode: reproducible
    env:
      SOLVER_SCORE: "-20"
  - name: fragile
    command: ["sh", "%[1]s"]
    env:
      SOLVER_FAIL_ON: second

problems:
  - name: first
    problem_scale: 10
  - name: second

results:
  dir: %[2]s
`

func TestRunExecSolversEndToEnd(t *testing.T) {
	script, err := filepath.Abs("solvers/constant.sh")
	require.NoError(t, err)
	resultsDir := t.TempDir()
	configPath := filepath.Join(t.TempDir(), "solverbench.yaml")
	require.NoError(t, os.WriteFile(configPath, fmt.Appendf(nil, integrationConfig, script, resultsDir), 0o644))

	var stdout bytes.Buffer
	root := cmd.NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"run", "--config", configPath, "--format", "markdown"})
	require.NoError(t, root.Execute())
	assert.Contains(t, stdout.String(), "improved")

	latest := filepath.Join(resultsDir, "latest")
	dir, err := filepath.EvalSymlinks(latest)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, runner.MetricsFileName))
	for _, name := range []string{"first", "second"} {
		assert.FileExists(t, filepath.Join(dir, name, report.ProblemFileName))
	}

	r, err := result.ReadResult(filepath.Join(dir, result.ResultFileName))
	require.NoError(t, err)
	require.True(t, r.IsAccumulated())
	require.NotNil(t, r.Favorite())
	assert.Equal(t, "improved", r.Favorite().Name())
	assert.Equal(t, 2, r.FailureCount())
	assert.Equal(t, 2, r.MaximumSubSingleCount())

	for _, s := range r.Solvers() {
		_, ranked := s.Ranking()
		assert.Equal(t, s.Name() != "fragile", ranked, s.Name())
	}
	for _, p := range r.Problems() {
		scale, ok := p.ProblemScale()
		require.True(t, ok, p.Name())
		if p.Name() == "first" {
			assert.Equal(t, int64(10), scale)
		} else {
			assert.Equal(t, int64(42), scale)
		}
	}
}
