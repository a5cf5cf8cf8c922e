package benchmark

import (
	"context"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-liveness/args"
	"github.com/nvr-ai/go-liveness/config"
	"github.com/nvr-ai/go-liveness/engine"
	"github.com/nvr-ai/go-liveness/images"
	"github.com/nvr-ai/go-liveness/liveness"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultLoops is the number of process calls when --loops is absent.
const DefaultLoops = 100

// ErrInvalidLoops is returned when the loop count is lower than 1.
var ErrInvalidLoops = errors.New("--loops must be within [1, inf]")

// Options configures a benchmark run.
type Options struct {
	// ImagePath is the image processed on every loop.
	ImagePath string
	// Config is the engine configuration.
	Config config.Config
	// Loops is the number of process calls.
	Loops int
	// Parallel enables asynchronous result delivery.
	Parallel bool
	// Wait bounds the wait for the pending deliveries once the loop is over.
	Wait time.Duration
	// Log is the logger of the run, nil for the standard logger.
	Log *logrus.Entry
}

// OptionsFromArgs builds the benchmark options from the command line.
//
// --image and --assets are required, --parallel defaults to true and --loops to DefaultLoops.
//
// Arguments:
//   - a: The parsed command line.
//   - base: The configuration defaults.
//   - lookup: The environment lookup function, nil to ignore the environment.
//
// Returns:
//   - Options: The benchmark options.
//   - error: args.ErrMissing, ErrInvalidLoops or a configuration error.
func OptionsFromArgs(a args.Args, base config.Config, lookup func(string) (string, bool)) (Options, error) {
	for _, key := range []string{args.KeyImage, args.KeyAssets} {
		if _, err := a.Require(key); err != nil {
			return Options{}, err
		}
	}

	loops, err := a.Int(args.KeyLoops, DefaultLoops)
	if err != nil {
		return Options{}, errors.Wrap(ErrInvalidLoops, err.Error())
	}
	if loops < 1 {
		return Options{}, errors.Wrapf(ErrInvalidLoops, "got %d", loops)
	}

	cfg, err := config.Resolve(base, a, lookup)
	if err != nil {
		return Options{}, err
	}

	return Options{
		ImagePath: a.Path(args.KeyImage),
		Config:    cfg,
		Loops:     loops,
		Parallel:  a.Bool(args.KeyParallel, true),
		Wait:      liveness.DefaultWait,
	}, nil
}

// Run decodes the image once then processes it opts.Loops times.
//
// Arguments:
//   - ctx: Cancels the loop between two process calls.
//   - eng: The engine.
//   - opts: The benchmark options.
//
// Returns:
//   - *Report: The timings of the loop and the last result.
//   - error: The first failure. The engine is deinitialized in every case once init succeeded.
func Run(ctx context.Context, eng engine.Engine, opts Options) (*Report, error) {
	if opts.Loops < 1 {
		return nil, errors.Wrapf(ErrInvalidLoops, "got %d", opts.Loops)
	}

	log := opts.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithFields(logrus.Fields{"image": opts.ImagePath, "loops": opts.Loops})

	buf, err := images.Load(opts.ImagePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read image file")
	}

	log.Info("starting benchmark")
	s, err := liveness.Open(eng, opts.Config, opts.Parallel, log)
	if err != nil {
		return nil, err
	}

	report, err := loop(ctx, s, buf, opts, log)
	if err != nil {
		s.Abort()
		return nil, err
	}

	log.Info("ending benchmark")
	if err := s.Close(); err != nil {
		return report, err
	}
	return report, nil
}

func loop(ctx context.Context, s *liveness.Session, buf *images.Buffer, opts Options, log *logrus.Entry) (*Report, error) {
	if err := s.WarmUp(buf.Type); err != nil {
		return nil, err
	}

	report := &Report{
		Image:     opts.ImagePath,
		Timestamp: time.Now(),
		Loops:     opts.Loops,
		Parallel:  opts.Parallel,
		CPUStats:  CPUMetrics{NumCPU: runtime.NumCPU(), GOMAXPROCS: runtime.GOMAXPROCS(0)},
	}

	var counter *deliveryCounter
	if s.Parallel() {
		counter = countDeliveries(ctx, s.Engine().Results(), opts.Loops)
	}

	startMem := snapshot()
	start := time.Now()

	var last engine.Result
	for i := 0; i < opts.Loops; i++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "benchmark interrupted after %d loops", i)
		}
		res, err := s.Process(buf.Type, buf.Data, buf.Width, buf.Height, buf.StrideInSamples(), buf.Orientation)
		if err != nil {
			return nil, err
		}
		last = res
	}

	report.Elapsed = time.Since(start)
	report.MemoryStats = memoryDelta(startMem, snapshot())
	report.FPS = fps(opts.Loops, report.Elapsed)
	report.LastResult = last.JSON

	log.WithField("elapsed_ms", report.ElapsedMillis()).Info("processing loop done")

	if counter != nil {
		report.Delivered = counter.wait(opts.Wait)
		if dc, ok := s.Engine().(engine.DropCounter); ok {
			report.Dropped = dc.Dropped()
		}
		if report.Delivered < opts.Loops {
			log.WithFields(logrus.Fields{
				"delivered": report.Delivered,
				"dropped":   report.Dropped,
			}).Warn("not every asynchronous result was delivered in time")
		}
	}

	return report, nil
}

// deliveryCounter reads the delivery channel while the loop is running so the engine queue never
// fills up.
type deliveryCounter struct {
	n    atomic.Int64
	done chan struct{}
}

// countDeliveries reads results until want arrived, the channel closed or ctx is done.
func countDeliveries(ctx context.Context, results <-chan engine.Result, want int) *deliveryCounter {
	d := &deliveryCounter{done: make(chan struct{})}
	if results == nil {
		close(d.done)
		return d
	}

	go func() {
		defer close(d.done)
		for d.n.Load() < int64(want) {
			select {
			case _, ok := <-results:
				if !ok {
					return
				}
				d.n.Add(1)
			case <-ctx.Done():
				return
			}
		}
	}()
	return d
}

// wait blocks until every delivery was counted or the timeout elapsed, and returns the count.
func (d *deliveryCounter) wait(timeout time.Duration) int {
	if timeout <= 0 {
		timeout = liveness.DefaultWait
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-d.done:
	case <-timer.C:
	}
	return int(d.n.Load())
}

// Save writes the report as indented JSON.
//
// Arguments:
//   - path: The output file.
//
// Returns:
//   - error: An error if the file cannot be written.
func (r *Report) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal benchmark report")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write benchmark report %s", path)
	}
	return nil
}
