// Package video - Frame by frame deepfake detection over a video file.
package video

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-liveness/args"
	"github.com/nvr-ai/go-liveness/config"
	"github.com/nvr-ai/go-liveness/deepfake"
	"github.com/nvr-ai/go-liveness/engine"
	"github.com/nvr-ai/go-liveness/images"
	"github.com/nvr-ai/go-liveness/liveness"
)

// DefaultOutput is the annotated video written when --output is absent.
const DefaultOutput = "./output.mp4"

// WindowName is the title of the preview window.
const WindowName = "Frame"

// Options configures a video run.
type Options struct {
	// VideoPath is the video to process.
	VideoPath string
	// OutputPath receives the annotated video.
	OutputPath string
	// Config is the engine configuration, usually derived from config.DeepfakeDefault.
	Config config.Config
	// Window shows every annotated frame in a preview window.
	Window bool
	// QueueSize is the number of frames the deepfake score is averaged over.
	QueueSize int
	// Log is the logger of the run, nil for the standard logger.
	Log *logrus.Entry
}

// Summary describes a finished run.
type Summary struct {
	Frames         int    `json:"frames"`
	FramesWithFace int    `json:"frames_with_face"`
	DeepfakeFrames int    `json:"deepfake_frames"`
	Faces          int    `json:"faces"`
	LastLabel      string `json:"last_label"`
	Output         string `json:"output"`
}

// OptionsFromArgs reads --video (required), --output, --window and the engine overrides.
func OptionsFromArgs(a args.Args, base config.Config, lookup func(string) (string, bool)) (Options, error) {
	if _, err := a.Require(args.KeyVideo); err != nil {
		return Options{}, err
	}
	cfg, err := config.Resolve(base, a, lookup)
	if err != nil {
		return Options{}, err
	}

	out := DefaultOutput
	if a.Has(args.KeyOutput) {
		out = a.Path(args.KeyOutput)
	}

	return Options{
		VideoPath:  a.Path(args.KeyVideo),
		OutputPath: out,
		Config:     cfg,
		Window:     a.Bool(args.KeyWindow, false),
		QueueSize:  deepfake.DefaultQueueSize,
	}, nil
}

// Run processes every frame of the video, writes the annotated frames and deinitializes the engine.
//
// Arguments:
//   - ctx: Stops the run between two frames.
//   - eng: The engine.
//   - opts: The run options.
//
// Returns:
//   - *Summary: The frame counters.
//   - error: The first failure.
func Run(ctx context.Context, eng engine.Engine, opts Options) (*Summary, error) {
	log := opts.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithField("video", opts.VideoPath)

	if _, err := os.Stat(opts.VideoPath); err != nil {
		return nil, errors.Wrap(images.ErrNotFound, opts.VideoPath)
	}

	capture, err := gocv.VideoCaptureFile(opts.VideoPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open video %s", opts.VideoPath)
	}
	defer capture.Close()

	s, err := liveness.Open(eng, opts.Config, false, log)
	if err != nil {
		return nil, err
	}

	summary, err := frames(ctx, s, capture, opts, log)
	if err != nil {
		s.Abort()
		return summary, err
	}
	return summary, s.Close()
}

func frames(ctx context.Context, s *liveness.Session, capture *gocv.VideoCapture, opts Options, log *logrus.Entry) (*Summary, error) {
	if err := s.WarmUp(engine.ImageTypeBGR24); err != nil {
		return nil, err
	}

	width := int(capture.Get(gocv.VideoCaptureFrameWidth))
	height := int(capture.Get(gocv.VideoCaptureFrameHeight))
	fps := capture.Get(gocv.VideoCaptureFPS)
	if fps <= 0 {
		fps = 25
	}

	writer, err := gocv.VideoWriterFile(opts.OutputPath, "mp4v", fps, width, height, true)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create %s", opts.OutputPath)
	}
	defer writer.Close()

	var window *gocv.Window
	if opts.Window {
		window = gocv.NewWindow(WindowName)
		defer window.Close()
	}

	img := gocv.NewMat()
	defer img.Close()

	tracker := deepfake.NewTracker(opts.QueueSize, opts.Config.DeepfakeMinScore)
	summary := &Summary{Output: opts.OutputPath}

	for {
		if ctx.Err() != nil {
			log.Info("interrupted")
			break
		}
		if ok := capture.Read(&img); !ok || img.Empty() {
			log.Info("done reading the video")
			break
		}

		frame, err := FrameFromMat(img)
		if err != nil {
			return summary, err
		}
		res, err := s.Process(frame.Type, frame.Data, frame.Width, frame.Height, frame.StrideInSamples(), frame.Orientation)
		if err != nil {
			return summary, err
		}
		result, err := deepfake.ParseResult(res.JSON)
		if err != nil {
			return summary, err
		}

		if tracker.Update(result) {
			log.WithField("face_id", tracker.FaceID()).Debug("got new face")
		}
		summary.count(result, tracker)

		Draw(&img, Annotate(result, tracker))

		if window != nil {
			window.IMShow(img)
			if window.WaitKey(1)&0xFF == 'q' {
				break
			}
		}
		if err := writer.Write(img); err != nil {
			return summary, errors.Wrap(err, "failed to write frame")
		}
	}

	log.WithFields(logrus.Fields{
		"frames":   summary.Frames,
		"deepfake": summary.DeepfakeFrames,
	}).Info("video processed")
	return summary, nil
}

func (s *Summary) count(r *deepfake.Result, t *deepfake.Tracker) {
	s.Frames++
	if len(r.Faces) == 0 {
		return
	}
	s.FramesWithFace++
	s.Faces = t.FaceID() - 1
	if t.IsDeepfake() {
		s.DeepfakeFrames++
	}
	s.LastLabel = t.Label()
}
