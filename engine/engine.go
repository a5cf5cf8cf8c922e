// Package engine - Contract and bindings for the FaceLivenessDetection engine.
//
// The engine is a precompiled native library. Its lifecycle is fixed: Init must be the first call
// and DeInit the last one, WarmUp should precede the first Process call.
package engine

// Engine defines the calls exposed by the native face liveness detection engine.
type Engine interface {
	// Init loads the models described by the JSON configuration. When parallel is true the
	// engine delivers results asynchronously on Results.
	Init(config string, parallel bool) Result
	// WarmUp forces the models to be loaded in memory for the given image type.
	WarmUp(imageType ImageType) Result
	// Process runs face detection, liveness, deepfake and disguise checks on a raw pixel buffer.
	Process(imageType ImageType, data []byte, width, height, strideInSamples, orientation int) Result
	// ProcessEncoded runs the same checks on an encoded image, decoded and oriented by the engine.
	ProcessEncoded(data []byte) Result
	// RequestRuntimeLicenseKey builds the runtime license key bound to this host.
	RequestRuntimeLicenseKey(raw bool) Result
	// DeInit releases every resource allocated by Init.
	DeInit() Result
	// Results returns the parallel delivery channel, nil in sequential mode.
	Results() <-chan Result
}

// Calls names used when reporting failed engine calls.
const (
	CallInit       = "Init"
	CallWarmUp     = "warmUp"
	CallProcess    = "Process"
	CallEncoded    = "ProcessEncoded"
	CallRuntimeKey = "requestRuntimeLicenseKey"
	CallDeInit     = "DeInit"
)

// DropCounter is implemented by engines whose parallel delivery queue can overflow.
type DropCounter interface {
	// Dropped returns the number of results lost since the last Init.
	Dropped() int
}

var (
	_ Engine      = (*Native)(nil)
	_ DropCounter = (*Native)(nil)
)
