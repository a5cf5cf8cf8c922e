package deepfake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func score(v float32) *float32 { return &v }

func frame(x, y, size float32, code string, s *float32) *Result {
	return &Result{Faces: []Face{{
		WarpedBox:     [8]float32{x, y, x + size, y, x + size, y + size, x, y + size},
		LivenessCode:  code,
		DeepfakeScore: s,
	}}}
}

func TestParseResult(t *testing.T) {
	r, err := ParseResult(`{"duration":12,"frame_id":3,"faces":[{"warpedBox":[1,2,3,4,5,6,7,8],` +
		`"confidence":0.99,"liveness_code":"s_deepfake","deepfake_score":87.5}]}`)
	require.NoError(t, err)

	assert.Equal(t, 12, r.Duration)
	assert.Equal(t, 3, r.FrameID)
	assert.Equal(t, 1, r.NumFaces)

	face, ok := r.Main()
	require.True(t, ok)
	assert.Equal(t, CodeDeepfake, face.LivenessCode)
	require.NotNil(t, face.DeepfakeScore)
	assert.InDelta(t, 87.5, *face.DeepfakeScore, 0.001)
	assert.Nil(t, face.LivenessScore)

	x, y := face.BottomRight()
	assert.Equal(t, float32(5), x)
	assert.Equal(t, float32(6), y)

	empty, err := ParseResult("")
	require.NoError(t, err)
	_, ok = empty.Main()
	assert.False(t, ok)

	_, err = ParseResult("{")
	assert.Error(t, err)
}

func TestTrackerAverage(t *testing.T) {
	tr := NewTracker(4, 0.5)
	assert.Equal(t, 1, tr.FaceID())
	assert.InDelta(t, 50, tr.AverageScore(), 0.001)

	assert.True(t, tr.Update(frame(100, 100, 50, CodeGenuine, score(90))))
	assert.Equal(t, 2, tr.FaceID())
	assert.InDelta(t, 60, tr.AverageScore(), 0.001)
	assert.False(t, tr.IsDeepfake())

	assert.False(t, tr.Update(frame(105, 104, 50, CodeDeepfake, score(90))))
	assert.InDelta(t, 70, tr.AverageScore(), 0.001)
	assert.True(t, tr.IsDeepfake())
	assert.Equal(t, 2, tr.Frames())
	assert.Equal(t, "DeepFake (70.00%)", tr.Label())

	// The flag sticks while the same face is followed.
	tr.Update(frame(106, 104, 50, CodeGenuine, score(0)))
	assert.True(t, tr.IsDeepfake())
}

func TestTrackerNewFace(t *testing.T) {
	tr := NewTracker(DefaultQueueSize, 0.5)
	tr.Update(frame(100, 100, 50, CodeDeepfake, score(99)))
	require.Equal(t, 2, tr.FaceID())

	// Outside 20% of the 50 pixels box.
	assert.True(t, tr.Update(frame(111, 100, 50, CodeGenuine, score(10))))
	assert.Equal(t, 3, tr.FaceID())
	assert.False(t, tr.IsDeepfake())
	assert.Equal(t, 1, tr.Frames())
	assert.Equal(t, "Real", tr.Label()[:4])
}

func TestTrackerNoFace(t *testing.T) {
	tr := NewTracker(0, 0.5)
	assert.False(t, tr.Update(&Result{}))
	assert.Equal(t, 0, tr.Frames())
	assert.Len(t, tr.queue, DefaultQueueSize)
}

func TestTrackerMissingScore(t *testing.T) {
	tr := NewTracker(2, 0.5)
	tr.Update(frame(0, 0, 10, CodeDeepfake, nil))
	assert.InDelta(t, 50, tr.AverageScore(), 0.001)
	assert.True(t, tr.IsDeepfake())
}
