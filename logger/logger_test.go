package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in       string
		expected logrus.Level
		wantErr  bool
	}{
		{"", logrus.InfoLevel, false},
		{"debug", logrus.DebugLevel, false},
		{"verbose", logrus.DebugLevel, false},
		{"INFO", logrus.InfoLevel, false},
		{"warning", logrus.WarnLevel, false},
		{"error", logrus.ErrorLevel, false},
		{"loud", logrus.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			level, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestSetup(t *testing.T) {
	var out bytes.Buffer
	entry, closeFn, err := Setup(Options{Level: "warn", Output: &out, NoColors: true})
	require.NoError(t, err)
	defer closeFn()

	entry.Info("hidden")
	entry.Warn("shown")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "shown")
	assert.Contains(t, out.String(), RunIDKey)

	_, err = uuid.Parse(entry.Data[RunIDKey].(string))
	assert.NoError(t, err)
}

func TestSetupFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "fld.log")
	var out bytes.Buffer
	entry, closeFn, err := Setup(Options{File: file, Output: &out, NoColors: true})
	require.NoError(t, err)

	entry.Info("to both")
	closeFn()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to both")
	assert.Contains(t, out.String(), "to both")
}

func TestSetupInvalidLevel(t *testing.T) {
	_, _, err := Setup(Options{Level: "loud"})
	assert.Error(t, err)
}

func TestFromEnv(t *testing.T) {
	env := map[string]string{EnvLevel: "debug", EnvFile: "/tmp/fld.log"}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	opts := FromEnv(Options{}, lookup)
	assert.Equal(t, "debug", opts.Level)
	assert.Equal(t, "/tmp/fld.log", opts.File)

	opts = FromEnv(Options{Level: "error"}, lookup)
	assert.Equal(t, "error", opts.Level)
}
