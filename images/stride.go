package images

import (
	"image"

	"github.com/nfnt/resize"
)

// Aligned reports whether a row of width pixels of bpp bytes is a multiple of 4 bytes.
func Aligned(width, bpp int) bool {
	return (width*bpp)&3 == 0
}

// AlignedWidth rounds width up to the next multiple of 4.
func AlignedWidth(width int) int {
	return (width + 3) &^ 3
}

// AlignWidth resizes img to the next multiple of 4 pixels in width, keeping its height.
//
// Arguments:
//   - img: The image to resize.
//
// Returns:
//   - image.Image: The resized image, or img itself when its width is already a multiple of 4.
func AlignWidth(img image.Image) image.Image {
	b := img.Bounds()
	width := AlignedWidth(b.Dx())
	if width == b.Dx() {
		return img
	}
	return resize.Resize(uint(width), uint(b.Dy()), img, resize.Bicubic)
}
