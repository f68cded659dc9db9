package app

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/runexp/internal/config"
	"github.com/vk/runexp/internal/executor"
	"github.com/vk/runexp/internal/hcl"
	"github.com/vk/runexp/internal/launcher"
	"github.com/vk/runexp/internal/resultstore"
	"github.com/vk/runexp/internal/testutil"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return recs
}

func envValue(env []string, name string) string {
	for i := len(env) - 1; i >= 0; i-- {
		if v, ok := strings.CutPrefix(env[i], name+"="); ok {
			return v
		}
	}
	return ""
}

func newTestApp(t *testing.T, cfg Config, opts ...Option) (*App, *testutil.SafeBuffer, *testutil.SafeBuffer) {
	t.Helper()
	appCfg, err := NewConfig(cfg)
	require.NoError(t, err)
	out, errOut := &testutil.SafeBuffer{}, &testutil.SafeBuffer{}
	a, err := NewApp(out, errOut, appCfg, hcl.NewLoader(), opts...)
	require.NoError(t, err)
	return a, out, errOut
}

func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg, err := NewConfig(Config{LogLevel: "debug", LogFormat: "json"})
	require.NoError(t, err)
	assert.NotNil(t, cfg.Overrides)

	_, err = NewConfig(Config{LogLevel: "loud"})
	require.ErrorContains(t, err, "invalid log level")
	_, err = NewConfig(Config{LogFormat: "xml"})
	require.ErrorContains(t, err, "invalid log format")
}

func TestNewApp_MergesFileAndOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "sweep.hcl")
	require.NoError(t, os.WriteFile(file, []byte(`
concurrency = 2
metrics     = ["loss"]
command     = ["./train"]
param "gpu" { values = [1, 2] }
`), 0o644))

	a, _, _ := newTestApp(t, Config{
		DefinitionPaths: []string{file},
		Overrides: &config.Model{
			Params:      []config.ParamDef{{Name: "BATCH", Expr: "32GPU"}},
			Concurrency: 6,
		},
	})

	want := &config.Model{
		Params:      []config.ParamDef{{Name: "gpu", Expr: "1,2"}, {Name: "BATCH", Expr: "32GPU"}},
		Command:     []string{"./train"},
		Metrics:     []string{"loss"},
		Output:      config.DefaultOutput,
		Concurrency: 6,
	}
	if diff := cmp.Diff(want, a.Model()); diff != "" {
		t.Errorf("model mismatch (-want +got):\n%s", diff)
	}
	assert.NotEmpty(t, a.RunID())
}

func TestNewApp_ValidationErrors(t *testing.T) {
	t.Parallel()

	cfg, err := NewConfig(Config{Overrides: &config.Model{Command: []string{"true"}, Metrics: []string{"x"}}})
	require.NoError(t, err)
	_, err = NewApp(&testutil.SafeBuffer{}, &testutil.SafeBuffer{}, cfg, hcl.NewLoader())
	require.ErrorIs(t, err, config.ErrInvalidConfig)

	cfg, err = NewConfig(Config{DefinitionPaths: []string{filepath.Join(t.TempDir(), "missing.hcl")}})
	require.NoError(t, err)
	_, err = NewApp(&testutil.SafeBuffer{}, &testutil.SafeBuffer{}, cfg, hcl.NewLoader())
	require.ErrorContains(t, err, "failed to load sweep definition")
}

func TestApp_RunWritesResultsAndResumes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	output := filepath.Join(dir, "results.csv")
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("SEED=7\nGPU=overridden\n"), 0o644))

	l := launcher.Func(func(_ context.Context, spec launcher.Spec) (*launcher.Result, error) {
		gpu, batch := envValue(spec.Env, "GPU"), envValue(spec.Env, "BATCH")
		if gpu == "2" && batch == "64" {
			return &launcher.Result{Stdout: "diverged\n", Stderr: "nan loss\n", ExitCode: 1}, nil
		}
		out := fmt.Sprintf("seed %s\naccuracy: 0.%s%s\n", envValue(spec.Env, "SEED"), gpu, batch)
		return &launcher.Result{Stdout: out}, nil
	})

	overrides := &config.Model{
		Params:      []config.ParamDef{{Name: "gpu", Expr: "1,2"}, {Name: "batch", Expr: "32gpu"}},
		Command:     []string{"./train"},
		Metrics:     []string{"accuracy"},
		Output:      output,
		Concurrency: 2,
		EnvFile:     envFile,
	}
	a, out, errOut := newTestApp(t, Config{Overrides: overrides}, WithLauncher(l))

	summary, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, executor.Summary{
		Total:     2,
		Succeeded: 1,
		Failed:    1,
		Samples:   map[string][]float64{"accuracy": {0.132}},
	}, summary)

	assert.Equal(t, [][]string{
		{"GPU", "BATCH", "accuracy"},
		{"1", "32", "0.132"},
	}, readCSV(t, output))

	assert.Contains(t, out.String(), "Generated 2 parameter combinations")
	assert.Contains(t, out.String(), "Running combination 1/2: GPU=1 BATCH=32")
	assert.Contains(t, out.String(), "Completed 1 out of 2")
	assert.Contains(t, errOut.String(), "Combination 2/2 failed: GPU=2 BATCH=64")
	assert.Contains(t, errOut.String(), "=== stdout ===\ndiverged\n")
	assert.Contains(t, errOut.String(), "=== stderr ===\nnan loss\n")

	// The second run only retries the failed combination.
	a2, out2, _ := newTestApp(t, Config{Overrides: overrides}, WithLauncher(l))
	summary, err = a2.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.Failed)
	assert.Contains(t, out2.String(), "Skipping combination 1/2 (already exists)")
}

func TestApp_RunSchemaMismatch(t *testing.T) {
	t.Parallel()

	output := filepath.Join(t.TempDir(), "results.csv")
	require.NoError(t, os.WriteFile(output, []byte("A,B,value\n1,2,3\n"), 0o644))

	a, _, _ := newTestApp(t, Config{Overrides: &config.Model{
		Params:  []config.ParamDef{{Name: "x", Expr: "1"}},
		Command: []string{"true"},
		Metrics: []string{"value"},
		Output:  output,
	}})

	_, err := a.Run(context.Background())
	require.ErrorIs(t, err, resultstore.ErrSchemaIncompatible)
}

func TestApp_RunResolveErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		params []config.ParamDef
	}{
		{name: "unknown variable", params: []config.ParamDef{{Name: "a", Expr: "2*missing"}}},
		{name: "cycle", params: []config.ParamDef{{Name: "a", Expr: "b+1"}, {Name: "b", Expr: "a+1"}}},
		{name: "invalid range", params: []config.ParamDef{{Name: "a", Expr: "1:5:0"}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			output := filepath.Join(t.TempDir(), "results.csv")
			a, _, _ := newTestApp(t, Config{Overrides: &config.Model{
				Params:  tc.params,
				Command: []string{"true"},
				Metrics: []string{"value"},
				Output:  output,
			}})
			_, err := a.Run(context.Background())
			require.ErrorContains(t, err, "failed to resolve parameters")
			assert.NoFileExists(t, output)
		})
	}
}

func TestApp_RunScriptEndToEnd(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a POSIX shell")
	}
	t.Parallel()

	output := filepath.Join(t.TempDir(), "results.csv")
	a, _, _ := newTestApp(t, Config{Overrides: &config.Model{
		Params:   []config.ParamDef{{Name: "n", Expr: "1:4"}, {Name: "sq", Expr: "n^2"}},
		Script:   "echo \"square: $SQ\"\necho note >&2\n",
		Metrics:  []string{"square"},
		Preserve: true,
		Stream:   "stdout",
		Output:   output,
	}})

	summary, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Succeeded)
	assert.Equal(t, [][]string{
		{"N", "SQ", "square", "stdout"},
		{"1", "1", "1", "square: 1\n"},
		{"2", "4", "4", "square: 4\n"},
		{"3", "9", "9", "square: 9\n"},
	}, readCSV(t, output))
}
