package images

import (
	"bytes"

	"github.com/rwcarlsen/goexif/exif"
)

// Orientation returns the EXIF orientation of an encoded image.
//
// Arguments:
//   - data: The encoded image.
//
// Returns:
//   - int: The orientation within [1, 8], 1 when the tag is absent, unreadable or out of range.
func Orientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil || v < 1 || v > 8 {
		return 1
	}
	return v
}
