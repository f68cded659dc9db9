package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/runexp/internal/cli"
	"github.com/vk/runexp/internal/testutil"
)

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(context.Background(), strings.NewReader(""), out, &bytes.Buffer{}, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	err := run(context.Background(), strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{}, []string{"--this-is-not-a-valid-parameter"})

	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}

func TestRun_InvalidDefinitionFile(t *testing.T) {
	t.Parallel()

	filePath := filepath.Join(t.TempDir(), "sweep.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(`param "x" {`), 0o600))

	err := run(context.Background(), strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{}, []string{"-f", filePath})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestRun_EndToEnd(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a POSIX shell")
	}
	t.Parallel()

	dir := t.TempDir()
	output := filepath.Join(dir, "results.csv")
	script := testutil.WriteScript(t, "exp.sh", `echo "throughput: $(( GPU * BATCH ))"`+"\n")

	out, errOut := &testutil.SafeBuffer{}, &testutil.SafeBuffer{}
	args := []string{"--gpu", "1,2", "--batch", "16gpu", "-m", "throughput", "-c", "2", "-o", output, script}
	require.NoError(t, run(context.Background(), strings.NewReader(""), out, errOut, args))
	assert.Contains(t, out.String(), "Completed 2 out of 2")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "GPU,BATCH,throughput", lines[0])
	assert.ElementsMatch(t, []string{"1,16,16", "2,32,64"}, lines[1:])

	// A rerun finds nothing to do.
	out = &testutil.SafeBuffer{}
	require.NoError(t, run(context.Background(), strings.NewReader(""), out, errOut, args))
	assert.Equal(t, 2, strings.Count(out.String(), "already exists"))
}

func TestRun_InterruptExitsWith130(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a POSIX shell")
	}
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		time.Sleep(300 * time.Millisecond)
		cancel()
	}()

	output := filepath.Join(t.TempDir(), "results.csv")
	script := "trap 'exit 1' INT\nwhile :; do sleep 0.05; done\n"
	args := []string{"--x", "1:4", "-m", "v", "-c", "3", "-o", output}

	err := run(ctx, strings.NewReader(script), &testutil.SafeBuffer{}, &testutil.SafeBuffer{}, args)
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 130, exitErr.Code)
}
