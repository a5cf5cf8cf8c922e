// Package liveness - Single image liveness check: init, decode, warm up, process, print, deinit.
package liveness

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-liveness/args"
	"github.com/nvr-ai/go-liveness/config"
	"github.com/nvr-ai/go-liveness/engine"
	"github.com/nvr-ai/go-liveness/images"
)

// DefaultWait bounds the wait for the asynchronous result in parallel mode.
const DefaultWait = 1500 * time.Millisecond

// ResultPrefix precedes the result payload on the output.
const ResultPrefix = "result: "

// Options configures a single image run.
type Options struct {
	// ImagePath is the image to check.
	ImagePath string
	// Config is the engine configuration.
	Config config.Config
	// Parallel enables asynchronous result delivery.
	Parallel bool
	// Wait bounds the wait for the asynchronous result.
	Wait time.Duration
	// Log is the logger of the run, nil for the standard logger.
	Log *logrus.Entry
}

// OptionsFromArgs builds the options of a run from the command line.
//
// Arguments:
//   - a: The parsed command line.
//   - base: The configuration defaults.
//   - lookup: The environment lookup function, nil to ignore the environment.
//
// Returns:
//   - Options: The run options.
//   - error: args.ErrMissing when --image is absent, or a configuration error.
func OptionsFromArgs(a args.Args, base config.Config, lookup func(string) (string, bool)) (Options, error) {
	if _, err := a.Require(args.KeyImage); err != nil {
		return Options{}, err
	}

	cfg, err := config.Resolve(base, a, lookup)
	if err != nil {
		return Options{}, err
	}

	return Options{
		ImagePath: a.Path(args.KeyImage),
		Config:    cfg,
		Parallel:  a.Bool(args.KeyParallel, false),
		Wait:      DefaultWait,
	}, nil
}

// Run checks one image and writes "result: <json>" to out.
//
// Arguments:
//   - ctx: Bounds the wait for the asynchronous result.
//   - eng: The engine.
//   - opts: The run options.
//   - out: Receives the result line.
//
// Returns:
//   - error: The first failure. The engine is deinitialized in every case once init succeeded.
func Run(ctx context.Context, eng engine.Engine, opts Options, out io.Writer) error {
	log := opts.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithField("image", opts.ImagePath)

	s, err := Open(eng, opts.Config, opts.Parallel, log)
	if err != nil {
		return err
	}

	res, err := check(ctx, s, opts, log)
	if err != nil {
		s.Abort()
		return err
	}

	if _, err := fmt.Fprintf(out, "%s%s\n", ResultPrefix, res.JSON); err != nil {
		s.Abort()
		return errors.Wrap(err, "failed to write result")
	}

	return s.Close()
}

func check(ctx context.Context, s *Session, opts Options, log *logrus.Entry) (engine.Result, error) {
	data, err := images.ReadFile(opts.ImagePath)
	if err != nil {
		return engine.Result{}, err
	}

	buf, err := images.Decode(data)
	if errors.Is(err, images.ErrInvalidImage) {
		log.WithError(err).Debug("image not decodable here, handing the encoded bytes to the engine")
		return checkEncoded(ctx, s, data, opts, log)
	}
	if err != nil {
		return engine.Result{}, errors.Wrapf(err, "can't process %s", opts.ImagePath)
	}
	log.WithFields(logrus.Fields{
		"format":      buf.Format,
		"type":        buf.Type.String(),
		"width":       buf.Width,
		"height":      buf.Height,
		"orientation": buf.Orientation,
	}).Debug("image decoded")

	if err := s.WarmUp(buf.Type); err != nil {
		return engine.Result{}, err
	}

	res, err := s.Process(buf.Type, buf.Data, buf.Width, buf.Height, buf.StrideInSamples(), buf.Orientation)
	if err != nil {
		return engine.Result{}, err
	}
	return awaitDelivered(ctx, s, engine.CallProcess, res, opts, log)
}

// checkEncoded lets the engine decode formats the image package rejects.
func checkEncoded(ctx context.Context, s *Session, data []byte, opts Options, log *logrus.Entry) (engine.Result, error) {
	if err := s.WarmUp(engine.ImageTypeRGB24); err != nil {
		return engine.Result{}, err
	}
	res, err := s.ProcessEncoded(data)
	if err != nil {
		return engine.Result{}, err
	}
	return awaitDelivered(ctx, s, engine.CallEncoded, res, opts, log)
}

// awaitDelivered replaces res with the asynchronous result in parallel mode.
func awaitDelivered(ctx context.Context, s *Session, call string, res engine.Result, opts Options, log *logrus.Entry) (engine.Result, error) {
	if !s.Parallel() {
		return res, nil
	}
	delivered, ok := Await(ctx, s.Engine().Results(), opts.Wait)
	if !ok {
		log.WithField("wait", opts.Wait).Warn("no asynchronous result delivered in time")
		return res, nil
	}
	return engine.Check(call, delivered)
}

// Await waits for a delivered result.
//
// Arguments:
//   - ctx: Cancels the wait.
//   - results: The delivery channel, nil means nothing will ever be delivered.
//   - wait: The maximum wait, DefaultWait when zero.
//
// Returns:
//   - engine.Result: The delivered result.
//   - bool: Whether a result was delivered.
func Await(ctx context.Context, results <-chan engine.Result, wait time.Duration) (engine.Result, bool) {
	if results == nil {
		return engine.Result{}, false
	}
	if wait <= 0 {
		wait = DefaultWait
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case r, ok := <-results:
		return r, ok
	case <-timer.C:
		return engine.Result{}, false
	case <-ctx.Done():
		return engine.Result{}, false
	}
}
