package deepfake

import (
	"fmt"

	"github.com/chewxy/math32"
)

// DefaultQueueSize is the number of frames the deepfake score is averaged over.
const DefaultQueueSize = 25

// boxPadding is the fraction of the box size the main face corner may move between two frames.
const boxPadding = 0.2

// Tracker follows the main face across frames and averages its deepfake score.
//
// It only matches faces by the position of their top-left corner. A face whose corner moves
// further than boxPadding of its box size is considered new and the average restarts.
type Tracker struct {
	queue    []float32
	minScore float32

	corner   [2]float32
	index    int
	faceID   int
	avg      float32
	deepfake bool
}

// NewTracker returns a tracker averaging over queueSize frames.
//
// Arguments:
//   - queueSize: The averaging window, DefaultQueueSize when lower than 1.
//   - minScore: The deepfake_minscore of the engine configuration within [0, 1].
//
// Returns:
//   - *Tracker: The tracker, with a first face id of 1.
func NewTracker(queueSize int, minScore float64) *Tracker {
	if queueSize < 1 {
		queueSize = DefaultQueueSize
	}
	t := &Tracker{
		queue:    make([]float32, queueSize),
		minScore: float32(minScore) * 100,
	}
	t.Reset()
	return t
}

// Reset forgets the current face and starts a new one.
func (t *Tracker) Reset() {
	for i := range t.queue {
		t.queue[i] = t.minScore
	}
	t.avg = mean(t.queue)
	t.corner = [2]float32{-1000, -1000}
	t.deepfake = false
	t.index = 0
	t.faceID++
}

// Update feeds the result of one frame.
//
// Arguments:
//   - r: The decoded result, frames without faces leave the tracker untouched.
//
// Returns:
//   - bool: Whether the main face was considered a new face.
func (t *Tracker) Update(r *Result) bool {
	face, ok := r.Main()
	if !ok {
		return false
	}

	x0, y0 := face.TopLeft()
	x1, y1 := face.BottomRight()
	padX := (x1 - x0) * boxPadding
	padY := (y1 - y0) * boxPadding

	same := math32.Abs(t.corner[0]-x0) <= math32.Abs(padX) &&
		math32.Abs(t.corner[1]-y0) <= math32.Abs(padY)
	if !same {
		t.Reset()
	}

	if face.DeepfakeScore != nil && !math32.IsNaN(*face.DeepfakeScore) {
		t.queue[t.index%len(t.queue)] = *face.DeepfakeScore
	}
	t.avg = mean(t.queue)
	t.deepfake = t.deepfake || (face.LivenessCode == CodeDeepfake && t.avg >= t.minScore)
	t.corner = [2]float32{x0, y0}
	t.index++

	return !same
}

// IsDeepfake reports whether the current face has been flagged.
func (t *Tracker) IsDeepfake() bool {
	return t.deepfake
}

// AverageScore returns the averaged deepfake score of the current face, in percent.
func (t *Tracker) AverageScore() float32 {
	return t.avg
}

// FaceID returns the identifier of the current face, incremented on every reset.
func (t *Tracker) FaceID() int {
	return t.faceID
}

// Frames returns the number of frames fed since the last reset.
func (t *Tracker) Frames() int {
	return t.index
}

// Label returns the caption drawn next to the main face.
func (t *Tracker) Label() string {
	verdict := "Real"
	if t.deepfake {
		verdict = "DeepFake"
	}
	return fmt.Sprintf("%s (%.2f%%)", verdict, t.avg)
}

func mean(values []float32) float32 {
	var sum float32
	for _, v := range values {
		sum += v
	}
	return sum / float32(len(values))
}
