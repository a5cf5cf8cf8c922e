//go:build fldsdk && cgo

package engine

/*
#cgo CXXFLAGS: -std=c++11 -I${SRCDIR}/../third_party/fld/include
#cgo LDFLAGS: -L${SRCDIR}/../third_party/fld/lib -lFaceLivenessDetectionSDK
#include <stdlib.h>
#include "bridge.h"
*/
import "C"

import (
	"runtime"
	"unsafe"
)

// Native is the Engine implemented by the FaceLivenessDetection shared library.
type Native struct {
	results <-chan Result
}

// New returns the engine backed by the native library.
//
// Returns:
//   - *Native: The native engine. No call is made until Init.
func New() *Native {
	return &Native{}
}

// Linked reports whether the native library is part of this build.
func Linked() bool {
	return true
}

// fromC copies a native result into Go memory and releases the native strings.
func fromC(r C.fld_result) Result {
	defer C.fld_result_free(&r)

	out := Result{
		Code:     int(r.code),
		NumFaces: int(r.num_faces),
	}
	if r.phrase != nil {
		out.Phrase = C.GoString(r.phrase)
	}
	if r.json != nil {
		out.JSON = C.GoString(r.json)
	}
	return out
}

// Init initializes the engine.
//
// Arguments:
//   - config: The JSON configuration.
//   - parallel: Whether results are also delivered asynchronously on Results.
//
// Returns:
//   - Result: The engine result.
func (n *Native) Init(config string, parallel bool) Result {
	cConfig := C.CString(config)
	defer C.free(unsafe.Pointer(cConfig))

	var cParallel C.int
	if parallel {
		n.results = deliveries.open(deliveryQueueSize)
		cParallel = 1
	}
	return fromC(C.fld_init(cConfig, cParallel))
}

// WarmUp loads the models for the given image type.
func (n *Native) WarmUp(imageType ImageType) Result {
	return fromC(C.fld_warm_up(C.int(imageType)))
}

// Process runs the engine on a raw pixel buffer.
//
// The buffer is pinned for the duration of the native call only.
//
// Arguments:
//   - imageType: The pixel layout of data.
//   - data: The pixels.
//   - width: The width in samples.
//   - height: The height in samples.
//   - strideInSamples: The row stride in samples, 0 when rows are not padded.
//   - orientation: The EXIF orientation within [1, 8].
//
// Returns:
//   - Result: The engine result.
func (n *Native) Process(imageType ImageType, data []byte, width, height, strideInSamples, orientation int) Result {
	if len(data) == 0 {
		return Failure(-1, "empty image buffer")
	}

	var pinner runtime.Pinner
	pinner.Pin(&data[0])
	defer pinner.Unpin()

	return fromC(C.fld_process(
		C.int(imageType),
		unsafe.Pointer(&data[0]),
		C.size_t(width),
		C.size_t(height),
		C.size_t(strideInSamples),
		C.int(orientation),
	))
}

// ProcessEncoded runs the engine on an encoded image.
func (n *Native) ProcessEncoded(data []byte) Result {
	if len(data) == 0 {
		return Failure(-1, "empty encoded buffer")
	}

	var pinner runtime.Pinner
	pinner.Pin(&data[0])
	defer pinner.Unpin()

	return fromC(C.fld_process_encoded(unsafe.Pointer(&data[0]), C.size_t(len(data))))
}

// RequestRuntimeLicenseKey builds the runtime license key for this host.
func (n *Native) RequestRuntimeLicenseKey(raw bool) Result {
	var cRaw C.int
	if raw {
		cRaw = 1
	}
	return fromC(C.fld_request_runtime_license_key(cRaw))
}

// DeInit releases the engine resources and closes the delivery channel.
func (n *Native) DeInit() Result {
	r := fromC(C.fld_deinit())
	if n.results != nil {
		deliveries.close()
	}
	return r
}

// Dropped returns the number of parallel results lost because the queue was full.
func (n *Native) Dropped() int {
	return deliveries.droppedCount()
}

// Results returns the parallel delivery channel.
func (n *Native) Results() <-chan Result {
	return n.results
}
