package video

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-liveness/engine"
	"github.com/nvr-ai/go-liveness/images"
)

// FrameFromMat wraps a decoded BGR frame into a buffer. The stride is taken from the Mat step.
//
// Arguments:
//   - m: A CV_8UC3 frame.
//
// Returns:
//   - *images.Buffer: The BGR24 buffer, orientation 1.
//   - error: If the frame is empty or not 8 bits 3 channels.
func FrameFromMat(m gocv.Mat) (*images.Buffer, error) {
	if m.Empty() {
		return nil, errors.New("empty frame")
	}
	if m.Type() != gocv.MatTypeCV8UC3 {
		return nil, errors.Wrapf(images.ErrUnsupportedBPP, "frame type %v", m.Type())
	}
	return &images.Buffer{
		Type:          engine.ImageTypeBGR24,
		Data:          m.ToBytes(),
		Width:         m.Cols(),
		Height:        m.Rows(),
		Stride:        m.Step(),
		BytesPerPixel: 3,
		Orientation:   1,
	}, nil
}

// Draw renders the annotations on the frame.
func Draw(m *gocv.Mat, annotations []Annotation) {
	for _, a := range annotations {
		gocv.Rectangle(m, a.Box, a.Color, a.Thickness)
		if a.Label == "" {
			continue
		}
		size := gocv.GetTextSize(a.Label, gocv.FontHersheyPlain, 1, 2)
		bg := image.Rect(a.Box.Min.X, a.Box.Min.Y-size.Y, a.Box.Min.X+size.X, a.Box.Min.Y)
		gocv.Rectangle(m, bg, a.Color, -1)
		gocv.PutText(m, a.Label, a.Box.Min, gocv.FontHersheyPlain, 1, colorText, 2)
	}
}
