package video

import (
	"image"
	"image/color"

	"github.com/nvr-ai/go-liveness/deepfake"
)

var (
	colorReal     = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	colorDeepfake = color.RGBA{R: 255, G: 0, B: 0, A: 0}
	colorOther    = color.RGBA{R: 255, G: 255, B: 0, A: 0}
	colorText     = color.RGBA{R: 0, G: 0, B: 0, A: 0}
)

// Annotation is a box drawn around a face, with an optional caption.
type Annotation struct {
	Box       image.Rectangle
	Color     color.RGBA
	Thickness int
	Label     string
}

// Annotate computes the boxes of a frame. The main face is green when real and red when flagged,
// the others are yellow and carry no caption.
//
// Arguments:
//   - r: The decoded result of the frame.
//   - t: The tracker already updated with r.
//
// Returns:
//   - []Annotation: One annotation per face.
func Annotate(r *deepfake.Result, t *deepfake.Tracker) []Annotation {
	out := make([]Annotation, 0, len(r.Faces))
	for i, face := range r.Faces {
		x0, y0 := face.TopLeft()
		x1, y1 := face.BottomRight()
		a := Annotation{
			Box:       image.Rect(int(x0), int(y0), int(x1), int(y1)),
			Color:     colorOther,
			Thickness: 1,
		}
		if i == 0 {
			a.Color = colorReal
			if t.IsDeepfake() {
				a.Color = colorDeepfake
			}
			a.Thickness = 2
			a.Label = t.Label()
		}
		out = append(out, a)
	}
	return out
}
