package main

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-liveness/engine"
	"github.com/nvr-ai/go-liveness/engine/enginetest"
)

const resultJSON = `{"faces":[]}`

func testApp(rec *enginetest.Recorder) *app {
	return &app{
		newEngine: func() engine.Engine { return rec },
		lookup:    func(string) (string, bool) { return "", false },
	}
}

func writeImage(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 20, 20)), nil))
	path := filepath.Join(t.TempDir(), "face.jpg")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func execute(t *testing.T, rec *enginetest.Recorder, argv ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), argv, &stdout, &stderr, testApp(rec))
	return code, stdout.String(), stderr.String()
}

func TestRunLiveness(t *testing.T) {
	img := writeImage(t)

	for _, argv := range [][]string{
		{"--image", img},
		{"liveness", "--image", img, "--assets", "/opt/assets"},
	} {
		rec := enginetest.New(resultJSON)
		code, stdout, _ := execute(t, rec, argv...)

		assert.Equal(t, exitOK, code)
		assert.Equal(t, "result: "+resultJSON+"\n", stdout)
		assert.Equal(t, []string{engine.CallInit, engine.CallWarmUp, engine.CallProcess, engine.CallDeInit}, rec.Names())
	}
}

func TestRunUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		msg  string
	}{
		{"odd", []string{"liveness", "--image"}, "Number of args must be even: 1"},
		{"invalid key", []string{"image", "face.jpg"}, "Invalid key: image"},
		{"missing image", []string{"--assets", "/a"}, "--image required"},
		{"benchmark loops", []string{"benchmark", "--image", "a.jpg", "--assets", "/a", "--loops", "0"}, "--loops must be within"},
		{"trailing subcommand", []string{"--image", "a.jpg", "liveness"}, "Number of args must be even: 3"},
		{"trailing version", []string{"--image", "a.jpg", "version"}, "Number of args must be even: 3"},
		{"subcommand as value", []string{"--image", "benchmark", "--assets"}, "Number of args must be even: 3"},
		{"runtime key assets", []string{"runtime-key", "--json", "true"}, "--assets required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := enginetest.New(resultJSON)
			code, stdout, stderr := execute(t, rec, tt.argv...)

			assert.Equal(t, exitUsage, code)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, tt.msg)
			assert.Contains(t, stderr, "Options surrounded with [] are optional.")
			assert.Empty(t, rec.Names())
		})
	}
}

func TestRunEngineFailure(t *testing.T) {
	rec := enginetest.New(resultJSON).FailOn(engine.CallInit, 7, `{"error":"no assets"}`)
	code, stdout, stderr := execute(t, rec, "--image", writeImage(t))

	assert.Equal(t, exitError, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, `Init: Execution failed: {"error":"no assets"}`)
	assert.NotContains(t, stderr, "Options surrounded")
}

func TestRunMissingFile(t *testing.T) {
	rec := enginetest.New(resultJSON)
	code, _, stderr := execute(t, rec, "--image", filepath.Join(t.TempDir(), "nope.jpg"))

	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "file not found")
}

func TestRunBenchmark(t *testing.T) {
	rec := enginetest.New(resultJSON)
	report := filepath.Join(t.TempDir(), "report.json")
	code, stdout, _ := execute(t, rec, "benchmark", "--image", writeImage(t), "--assets", "/a",
		"--loops", "3", "--parallel", "false", "--output", report)

	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "result: "+resultJSON)
	assert.Contains(t, stdout, "estimatedFps")
	assert.Equal(t, 3, rec.Count(engine.CallProcess))
	assert.FileExists(t, report)
}

func TestRunRuntimeKey(t *testing.T) {
	rec := enginetest.New("")
	code, stdout, _ := execute(t, rec, "runtime-key", "--assets", "/a", "--json", "false")

	assert.Equal(t, exitOK, code)
	assert.Equal(t, "RUNTIME-KEY\n", stdout)
}

func TestRunHelpAndVersion(t *testing.T) {
	rec := enginetest.New(resultJSON)

	code, stdout, _ := execute(t, rec, "benchmark", "--help")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "--loops")

	code, stdout, _ = execute(t, rec, "version")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "fld "+version)
	assert.Empty(t, rec.Names())
}
