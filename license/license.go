// Package license - Request of runtime license keys used to activate a host.
package license

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-liveness/args"
	"github.com/nvr-ai/go-liveness/config"
	"github.com/nvr-ai/go-liveness/engine"
)

// Options configures a runtime key request.
type Options struct {
	// AssetsFolder is the folder holding the engine assets.
	AssetsFolder string
	// HostType attaches the license to a cloud host: aws-instance, aws-byol, azure-instance or azure-byol.
	HostType string
	// Raw requests the bare key instead of a JSON document.
	Raw bool
}

// OptionsFromArgs reads --assets (required), --type and --json (default true).
func OptionsFromArgs(a args.Args) (Options, error) {
	if _, err := a.Require(args.KeyAssets); err != nil {
		return Options{}, err
	}

	return Options{
		AssetsFolder: a.Path(args.KeyAssets),
		HostType:     a.Get(args.KeyType),
		Raw:          !a.Bool(args.KeyJSON, true),
	}, nil
}

// RequestRuntimeKey initializes the engine with a minimal configuration and requests a runtime key.
//
// Arguments:
//   - eng: The engine.
//   - opts: The request options.
//   - log: The logger of the run, nil for the standard logger.
//
// Returns:
//   - string: The key, raw or as JSON.
//   - error: A configuration error or the *engine.CallError of the failing call.
func RequestRuntimeKey(eng engine.Engine, opts Options, log *logrus.Entry) (string, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	payload, err := config.RuntimeKeyConfig{AssetsFolder: opts.AssetsFolder, HostType: opts.HostType}.JSON()
	if err != nil {
		return "", err
	}

	if _, err := engine.Check(engine.CallInit, eng.Init(payload, false)); err != nil {
		return "", err
	}

	res, err := engine.Check(engine.CallRuntimeKey, eng.RequestRuntimeLicenseKey(opts.Raw))
	if err != nil {
		if _, derr := engine.Check(engine.CallDeInit, eng.DeInit()); derr != nil {
			log.WithError(derr).Warn("failed to deinitialize engine after error")
		}
		return "", err
	}
	log.WithFields(logrus.Fields{"raw": opts.Raw, "host_type": opts.HostType}).Debug("runtime key issued")

	if _, err := engine.Check(engine.CallDeInit, eng.DeInit()); err != nil {
		return "", errors.Wrap(err, "runtime key issued but engine shutdown failed")
	}
	return res.JSON, nil
}
