// Package logger - Construction of the process logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"strings"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Environment variables read by FromEnv.
const (
	EnvLevel = "FLD_LOG_LEVEL"
	EnvFile  = "FLD_LOG_FILE"
)

// RunIDKey is the field carrying the identifier of the current run.
const RunIDKey = "run_id"

// Fields is an alias of logrus.Fields so callers do not need to import logrus.
type Fields = logrus.Fields

// Options configures the logger.
type Options struct {
	// Level is one of debug, info, warn or error. Empty means info.
	Level string
	// File enables a rotating file sink next to stderr when set.
	File string
	// Output replaces stderr, used by tests.
	Output io.Writer
	// NoColors disables the ANSI colours of the formatter.
	NoColors bool
	// Caller prefixes entries with the calling file and function.
	Caller bool
}

// FromEnv fills the empty fields of opts from FLD_LOG_LEVEL and FLD_LOG_FILE.
func FromEnv(opts Options, lookup func(string) (string, bool)) Options {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup(EnvLevel); ok && opts.Level == "" {
		opts.Level = v
	}
	if v, ok := lookup(EnvFile); ok && opts.File == "" {
		opts.File = v
	}
	return opts
}

// ParseLevel maps the command line level names onto logrus levels.
//
// Arguments:
//   - level: The level name, "warning" is accepted as an alias of "warn".
//
// Returns:
//   - logrus.Level: The parsed level, info when empty.
//   - error: If the level is unknown.
func ParseLevel(level string) (logrus.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "":
		return logrus.InfoLevel, nil
	case "debug", "verbose":
		return logrus.DebugLevel, nil
	case "info":
		return logrus.InfoLevel, nil
	case "warn", "warning":
		return logrus.WarnLevel, nil
	case "error":
		return logrus.ErrorLevel, nil
	default:
		return logrus.InfoLevel, errors.Errorf("invalid log level %q", level)
	}
}

// Setup configures the standard logrus logger and returns an entry tagged with a fresh run id.
//
// Arguments:
//   - opts: The logger options.
//
// Returns:
//   - *logrus.Entry: The entry to log the run with.
//   - func(): Closes the file sink, if any.
//   - error: If the level is invalid.
func Setup(opts Options) (*logrus.Entry, func(), error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	log := logrus.StandardLogger()
	log.SetLevel(level)
	log.SetReportCaller(opts.Caller)

	f := &formatter.Formatter{
		NoColors:        opts.NoColors,
		TimestampFormat: "02 Jan 06 - 15:04:05",
		HideKeys:        false,
		CallerFirst:     true,
		CustomCallerFormatter: func(f *runtime.Frame) string {
			s := strings.Split(f.Function, ".")
			return fmt.Sprintf(" [%s:%d][%s()]", path.Base(f.File), f.Line, s[len(s)-1])
		},
	}
	log.SetFormatter(f)

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	closer := func() {}
	if opts.File != "" {
		sink := &lumberjack.Logger{
			Filename:   opts.File,
			LocalTime:  true,
			Compress:   true,
			MaxSize:    100,
			MaxAge:     7,
			MaxBackups: 3,
		}
		out = io.MultiWriter(out, sink)
		closer = func() { _ = sink.Close() }
	}
	log.SetOutput(out)

	return log.WithField(RunIDKey, NewRunID()), closer, nil
}

// NewRunID returns a random identifier, "unknown" if the system random source fails.
func NewRunID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return "unknown"
	}
	return id.String()
}
