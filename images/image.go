// Package images - Decoding of image files into raw pixel buffers for the engine.
package images

import "github.com/nvr-ai/go-liveness/engine"

// Buffer is a decoded image laid out the way the engine reads it.
type Buffer struct {
	// The encoding the image was decoded from.
	Format ImageFormat `json:"format" yaml:"format"`
	// The pixel layout of Data.
	Type engine.ImageType `json:"type" yaml:"type"`
	// The pixels, Height rows of Stride bytes.
	Data []byte `json:"-" yaml:"-"`
	// The width of the image in pixels.
	Width int `json:"width" yaml:"width"`
	// The height of the image in pixels.
	Height int `json:"height" yaml:"height"`
	// The number of bytes per row.
	Stride int `json:"stride" yaml:"stride"`
	// The number of bytes per pixel: 1, 3 or 4.
	BytesPerPixel int `json:"bytes_per_pixel" yaml:"bytes_per_pixel"`
	// The EXIF orientation within [1, 8].
	Orientation int `json:"orientation" yaml:"orientation"`
	// The width of the encoded image when it had to be resized to align rows.
	SourceWidth int `json:"source_width,omitempty" yaml:"source_width,omitempty"`
}

// StrideInSamples returns the row stride expressed in pixels, as expected by the engine.
func (b *Buffer) StrideInSamples() int {
	if b.BytesPerPixel == 0 {
		return 0
	}
	return b.Stride / b.BytesPerPixel
}

// Resized reports whether the image was resized to align its rows on 4 bytes.
func (b *Buffer) Resized() bool {
	return b.SourceWidth != 0 && b.SourceWidth != b.Width
}
