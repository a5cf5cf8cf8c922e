// Package deepfake - Parsing of engine results and per-face deepfake score averaging over video frames.
package deepfake

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Liveness codes reported by the engine.
const (
	CodeGenuine  = "s_genuine"
	CodeSpoof    = "s_spoof"
	CodeDeepfake = "s_deepfake"
	CodeDisguise = "s_disguise"
	CodeDisputed = "s_disputed"
)

// Face is one detected face.
type Face struct {
	// WarpedBox holds the four corners x0,y0 ... x3,y3, clockwise from the top-left one.
	WarpedBox      [8]float32 `json:"warpedBox"`
	Confidence     float32    `json:"confidence"`
	LivenessCode   string     `json:"liveness_code"`
	LivenessScore  *float32   `json:"liveness_score,omitempty"`
	DeepfakeScore  *float32   `json:"deepfake_score,omitempty"`
	DisguiseScore  *float32   `json:"disguise_score,omitempty"`
	DisguiseReason string     `json:"disguise_reason,omitempty"`
}

// TopLeft returns the first corner of the box.
func (f Face) TopLeft() (float32, float32) {
	return f.WarpedBox[0], f.WarpedBox[1]
}

// BottomRight returns the third corner of the box.
func (f Face) BottomRight() (float32, float32) {
	return f.WarpedBox[4], f.WarpedBox[5]
}

// Result is the decoded payload of a process call.
type Result struct {
	Duration  int    `json:"duration"`
	FrameID   int    `json:"frame_id"`
	Faces     []Face `json:"faces"`
	Latency   int    `json:"latency,omitempty"`
	NumFaces  int    `json:"-"`
	RawString string `json:"-"`
}

// Main returns the first face, the one the tracker follows.
func (r *Result) Main() (Face, bool) {
	if len(r.Faces) == 0 {
		return Face{}, false
	}
	return r.Faces[0], true
}

// ParseResult decodes the JSON payload of a process call. An empty payload has no faces.
//
// Arguments:
//   - payload: The JSON payload.
//
// Returns:
//   - *Result: The decoded result.
//   - error: An error if the payload is not valid JSON.
func ParseResult(payload string) (*Result, error) {
	r := &Result{RawString: payload}
	if payload == "" {
		return r, nil
	}
	if err := json.UnmarshalFromString(payload, r); err != nil {
		return nil, errors.Wrap(err, "failed to parse engine result")
	}
	r.NumFaces = len(r.Faces)
	return r, nil
}
