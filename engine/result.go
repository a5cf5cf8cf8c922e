package engine

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNotLinked is reported by every call when the binary was built without the native engine.
var ErrNotLinked = errors.New("FaceLivenessDetection SDK not linked (rebuild with -tags fldsdk)")

// Result is the outcome of an engine call.
type Result struct {
	// Code is 0 on success, nonzero otherwise.
	Code int `json:"code"`
	// Phrase is a short description of Code.
	Phrase string `json:"phrase"`
	// JSON is the payload produced by the call, may be empty.
	JSON string `json:"json"`
	// NumFaces is the number of faces described in JSON.
	NumFaces int `json:"num_faces"`
}

// IsOK reports whether the call succeeded.
func (r Result) IsOK() bool {
	return r.Code == 0
}

// OK returns a bodyless successful result.
func OK() Result {
	return Result{Code: 0, Phrase: "OK"}
}

// Failure returns a bodyless failed result.
func Failure(code int, phrase string) Result {
	return Result{Code: code, Phrase: phrase}
}

// CallError reports a non successful engine call.
type CallError struct {
	Call   string
	Code   int
	Phrase string
	JSON   string
}

// Error implements the error interface.
func (e *CallError) Error() string {
	payload := e.JSON
	if payload == "" {
		payload = e.Phrase
	}
	return fmt.Sprintf("%s: Execution failed: %s", e.Call, payload)
}

// Check converts a failed result into a *CallError naming the call.
//
// Arguments:
//   - call: The name of the engine call that produced the result.
//   - r: The result to inspect.
//
// Returns:
//   - Result: The result, unchanged.
//   - error: A *CallError when the result is not OK.
func Check(call string, r Result) (Result, error) {
	if r.IsOK() {
		return r, nil
	}
	return r, &CallError{Call: call, Code: r.Code, Phrase: r.Phrase, JSON: r.JSON}
}
