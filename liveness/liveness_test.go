package liveness

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-liveness/args"
	"github.com/nvr-ai/go-liveness/config"
	"github.com/nvr-ai/go-liveness/engine"
	"github.com/nvr-ai/go-liveness/engine/enginetest"
	"github.com/nvr-ai/go-liveness/images"
)

const faceJSON = `{"faces":[{"liveness_code":"s_genuine"}]}`

func writeJPEG(t *testing.T, width, height int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))

	path := filepath.Join(t.TempDir(), "face.jpg")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func options(path string) Options {
	return Options{ImagePath: path, Config: config.Default(), Wait: 50 * time.Millisecond}
}

func TestRun(t *testing.T) {
	rec := enginetest.New(faceJSON)
	var out bytes.Buffer

	require.NoError(t, Run(context.Background(), rec, options(writeJPEG(t, 101, 40)), &out))

	assert.Equal(t, "result: "+faceJSON+"\n", out.String())
	assert.Equal(t, []string{engine.CallInit, engine.CallWarmUp, engine.CallProcess, engine.CallDeInit}, rec.Names())

	calls := rec.Calls()
	assert.False(t, calls[0].Parallel)
	assert.Contains(t, calls[0].Config, `"detect_minscore":0.9`)
	assert.Equal(t, engine.ImageTypeRGB24, calls[1].ImageType)

	process := calls[2]
	assert.Equal(t, engine.ImageTypeRGB24, process.ImageType)
	assert.Equal(t, 104, process.Width)
	assert.Equal(t, 40, process.Height)
	assert.Equal(t, 104, process.StrideInSamples)
	assert.Equal(t, 1, process.Orientation)
	assert.Equal(t, 104*3*40, process.DataLen)
}

func TestRunFailures(t *testing.T) {
	path := writeJPEG(t, 32, 32)

	tests := []struct {
		name     string
		fail     string
		expected []string
	}{
		{"init", engine.CallInit, []string{engine.CallInit}},
		{"warm up", engine.CallWarmUp, []string{engine.CallInit, engine.CallWarmUp, engine.CallDeInit}},
		{"process", engine.CallProcess, []string{engine.CallInit, engine.CallWarmUp, engine.CallProcess, engine.CallDeInit}},
		{"deinit", engine.CallDeInit, []string{engine.CallInit, engine.CallWarmUp, engine.CallProcess, engine.CallDeInit}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := enginetest.New(faceJSON).FailOn(tt.fail, 3, `{"error":"boom"}`)
			var out bytes.Buffer

			err := Run(context.Background(), rec, options(path), &out)
			require.Error(t, err)

			var callErr *engine.CallError
			require.True(t, errors.As(err, &callErr))
			assert.Equal(t, tt.fail, callErr.Call)
			assert.Equal(t, tt.fail+`: Execution failed: {"error":"boom"}`, err.Error())
			assert.Equal(t, tt.expected, rec.Names())

			if tt.fail == engine.CallDeInit {
				assert.True(t, strings.HasPrefix(out.String(), "result: "))
			} else {
				assert.Empty(t, out.String())
			}
		})
	}
}

func TestRunMissingImage(t *testing.T) {
	rec := enginetest.New(faceJSON)
	err := Run(context.Background(), rec, options(filepath.Join(t.TempDir(), "nope.jpg")), &bytes.Buffer{})

	require.Error(t, err)
	assert.ErrorIs(t, err, images.ErrNotFound)
	assert.Equal(t, []string{engine.CallInit, engine.CallDeInit}, rec.Names())
}

func TestRunParallel(t *testing.T) {
	rec := enginetest.New(faceJSON)
	rec.Deliver = true
	opts := options(writeJPEG(t, 16, 16))
	opts.Parallel = true
	var out bytes.Buffer

	require.NoError(t, Run(context.Background(), rec, opts, &out))
	assert.True(t, rec.Calls()[0].Parallel)
	assert.Equal(t, "result: "+faceJSON+"\n", out.String())
}

func TestRunParallelFailedDelivery(t *testing.T) {
	rec := enginetest.New(faceJSON)
	rec.Deliver = true
	rec.DeliverAs = &engine.Result{Code: 4, Phrase: "failed", JSON: `{"error":"late"}`}
	opts := options(writeJPEG(t, 16, 16))
	opts.Parallel = true
	var out bytes.Buffer

	err := Run(context.Background(), rec, opts, &out)
	require.Error(t, err)

	var callErr *engine.CallError
	require.True(t, errors.As(err, &callErr))
	assert.Equal(t, `Process: Execution failed: {"error":"late"}`, err.Error())
	assert.Empty(t, out.String())
	assert.Equal(t, 1, rec.Count(engine.CallDeInit))
}

func TestRunEncodedFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "face.heic")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o600))

	t.Run("sequential", func(t *testing.T) {
		rec := enginetest.New(faceJSON)
		var out bytes.Buffer

		require.NoError(t, Run(context.Background(), rec, options(path), &out))
		assert.Equal(t, "result: "+faceJSON+"\n", out.String())
		assert.Equal(t, []string{engine.CallInit, engine.CallWarmUp, engine.CallEncoded, engine.CallDeInit}, rec.Names())
		assert.Equal(t, len("not an image"), rec.Calls()[2].DataLen)
		assert.Equal(t, engine.ImageTypeRGB24, rec.Calls()[1].ImageType)
	})

	t.Run("parallel", func(t *testing.T) {
		rec := enginetest.New(faceJSON)
		rec.Deliver = true
		opts := options(path)
		opts.Parallel = true
		var out bytes.Buffer

		require.NoError(t, Run(context.Background(), rec, opts, &out))
		assert.Equal(t, "result: "+faceJSON+"\n", out.String())
	})

	t.Run("engine rejects", func(t *testing.T) {
		rec := enginetest.New(faceJSON).FailOn(engine.CallEncoded, 5, `{"error":"format"}`)

		err := Run(context.Background(), rec, options(path), &bytes.Buffer{})
		require.Error(t, err)
		assert.Equal(t, `ProcessEncoded: Execution failed: {"error":"format"}`, err.Error())
		assert.Equal(t, 1, rec.Count(engine.CallDeInit))
	})
}

func TestRunParallelTimeout(t *testing.T) {
	rec := enginetest.New(faceJSON)
	opts := options(writeJPEG(t, 16, 16))
	opts.Parallel = true
	var out bytes.Buffer

	start := time.Now()
	require.NoError(t, Run(context.Background(), rec, opts, &out))
	assert.GreaterOrEqual(t, time.Since(start), opts.Wait)
	assert.Equal(t, "result: "+faceJSON+"\n", out.String())
}

func TestAwait(t *testing.T) {
	_, ok := Await(context.Background(), nil, time.Millisecond)
	assert.False(t, ok)

	ch := make(chan engine.Result, 1)
	ch <- engine.Result{JSON: "x"}
	r, ok := Await(context.Background(), ch, time.Second)
	assert.True(t, ok)
	assert.Equal(t, "x", r.JSON)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok = Await(ctx, make(chan engine.Result), time.Minute)
	assert.False(t, ok)
}

func TestOptionsFromArgs(t *testing.T) {
	t.Run("missing image", func(t *testing.T) {
		a, err := args.Parse([]string{"--assets", "/nowhere"})
		require.NoError(t, err)
		_, err = OptionsFromArgs(a, config.Default(), nil)
		assert.ErrorIs(t, err, args.ErrMissing)
	})

	t.Run("full", func(t *testing.T) {
		a, err := args.Parse([]string{"--image", "face.jpg", "--assets", "/opt/assets", "--parallel", "true"})
		require.NoError(t, err)
		opts, err := OptionsFromArgs(a, config.Default(), nil)
		require.NoError(t, err)
		assert.Equal(t, "face.jpg", opts.ImagePath)
		assert.Equal(t, "/opt/assets", opts.Config.AssetsFolder)
		assert.True(t, opts.Parallel)
		assert.Equal(t, DefaultWait, opts.Wait)
	})
}

func TestSessionWarmUpOnce(t *testing.T) {
	rec := enginetest.New(faceJSON)
	s, err := Open(rec, config.Default(), false, nil)
	require.NoError(t, err)

	require.NoError(t, s.WarmUp(engine.ImageTypeRGB24))
	require.NoError(t, s.WarmUp(engine.ImageTypeRGB24))
	require.NoError(t, s.WarmUp(engine.ImageTypeBGR24))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.Equal(t, 2, rec.Count(engine.CallWarmUp))
	assert.Equal(t, 1, rec.Count(engine.CallDeInit))
}

func TestOpenInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.DetectMinScore = 3
	_, err := Open(enginetest.New(faceJSON), cfg, false, nil)
	assert.Error(t, err)
}
