package liveness

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-liveness/config"
	"github.com/nvr-ai/go-liveness/engine"
)

// Session is an initialized engine. Close must be called once the work is done.
type Session struct {
	eng      engine.Engine
	log      *logrus.Entry
	parallel bool

	warmed map[engine.ImageType]bool
	once   sync.Once
	err    error
}

// Open initializes the engine with cfg.
//
// Arguments:
//   - eng: The engine to initialize.
//   - cfg: The configuration serialized as the init payload.
//   - parallel: Whether results are delivered asynchronously.
//   - log: The logger of the run, nil for the standard logger.
//
// Returns:
//   - *Session: The session, to be closed by the caller.
//   - error: The validation error or the *engine.CallError of init.
func Open(eng engine.Engine, cfg config.Config, parallel bool, log *logrus.Entry) (*Session, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	payload, err := cfg.JSON()
	if err != nil {
		return nil, errors.Wrap(err, "invalid engine configuration")
	}

	log.WithField("parallel", parallel).Debug("initializing engine")
	if _, err := engine.Check(engine.CallInit, eng.Init(payload, parallel)); err != nil {
		return nil, err
	}

	return &Session{
		eng:      eng,
		log:      log,
		parallel: parallel,
		warmed:   map[engine.ImageType]bool{},
	}, nil
}

// Engine returns the underlying engine.
func (s *Session) Engine() engine.Engine {
	return s.eng
}

// Parallel reports whether the engine was initialized in parallel delivery mode.
func (s *Session) Parallel() bool {
	return s.parallel
}

// WarmUp warms the engine up for imageType, once per type.
func (s *Session) WarmUp(imageType engine.ImageType) error {
	if s.warmed[imageType] {
		return nil
	}
	s.log.WithField("type", imageType.String()).Debug("warming up engine")
	if _, err := engine.Check(engine.CallWarmUp, s.eng.WarmUp(imageType)); err != nil {
		return err
	}
	s.warmed[imageType] = true
	return nil
}

// Process hands one packed buffer to the engine.
//
// Arguments:
//   - imageType: The pixel layout of data.
//   - data: The pixels.
//   - width: The width in pixels.
//   - height: The height in pixels.
//   - strideInSamples: The row stride in pixels.
//   - orientation: The EXIF orientation within [1, 8].
//
// Returns:
//   - engine.Result: The result of the call.
//   - error: A *engine.CallError if the call failed.
func (s *Session) Process(imageType engine.ImageType, data []byte, width, height, strideInSamples, orientation int) (engine.Result, error) {
	return engine.Check(engine.CallProcess, s.eng.Process(imageType, data, width, height, strideInSamples, orientation))
}

// ProcessEncoded hands a still encoded image to the engine, which decodes it itself.
func (s *Session) ProcessEncoded(data []byte) (engine.Result, error) {
	return engine.Check(engine.CallEncoded, s.eng.ProcessEncoded(data))
}

// Close deinitializes the engine. Later calls return the first outcome.
func (s *Session) Close() error {
	s.once.Do(func() {
		s.log.Debug("deinitializing engine")
		_, s.err = engine.Check(engine.CallDeInit, s.eng.DeInit())
	})
	return s.err
}

// Abort closes the session after a failure, logging but not returning the close error.
func (s *Session) Abort() {
	if err := s.Close(); err != nil {
		s.log.WithError(err).Warn("failed to deinitialize engine after error")
	}
}
