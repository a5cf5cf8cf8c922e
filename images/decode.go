package images

import (
	"bytes"
	"image"
	"image/draw"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-liveness/engine"
)

var (
	// ErrNotFound is returned when the image file does not exist.
	ErrNotFound = errors.New("file not found")
	// ErrInvalidImage is returned when the file cannot be decoded or is empty.
	ErrInvalidImage = errors.New("invalid image")
	// ErrUnsupportedBPP is returned when the decoded pixels are not 1, 3 or 4 bytes wide.
	ErrUnsupportedBPP = errors.New("invalid BPP")
)

// ReadFile reads an encoded image from disk.
//
// Arguments:
//   - path: The path to the image file.
//
// Returns:
//   - []byte: The encoded bytes.
//   - error: ErrNotFound if the file does not exist.
func ReadFile(path string) ([]byte, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(ErrNotFound, abs)
		}
		return nil, errors.Wrapf(err, "failed to stat %s", abs)
	}
	if info.IsDir() {
		return nil, errors.Wrapf(ErrInvalidImage, "%s is a directory", abs)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", abs)
	}
	if len(data) == 0 {
		return nil, errors.Wrapf(ErrInvalidImage, "%s is empty", abs)
	}
	return data, nil
}

// Load reads, decodes and orients an image file.
//
// Arguments:
//   - path: The path to the image file.
//
// Returns:
//   - *Buffer: The decoded buffer.
//   - error: ErrNotFound, ErrInvalidImage or ErrUnsupportedBPP.
func Load(path string) (*Buffer, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	buf, err := Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "can't process %s", path)
	}
	return buf, nil
}

// Decode decodes an encoded image into a packed pixel buffer.
//
// 3 bytes per pixel images whose rows are not a multiple of 4 bytes are resized to the next
// multiple of 4 pixels in width so the stride can be expressed in samples.
//
// Arguments:
//   - data: The encoded image (JPEG, PNG, GIF, BMP or WebP).
//
// Returns:
//   - *Buffer: The decoded buffer with its EXIF orientation.
//   - error: ErrInvalidImage or ErrUnsupportedBPP.
func Decode(data []byte) (*Buffer, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(ErrInvalidImage, err.Error())
	}

	buf, err := FromImage(img)
	if err != nil {
		return nil, err
	}
	buf.Format = ImageFormat(format)
	buf.Orientation = Orientation(data)
	return buf, nil
}

// FromImage packs a decoded image into a buffer with orientation 1.
//
// Arguments:
//   - img: The decoded image.
//
// Returns:
//   - *Buffer: The packed buffer.
//   - error: ErrInvalidImage or ErrUnsupportedBPP.
func FromImage(img image.Image) (*Buffer, error) {
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, errors.Wrapf(ErrInvalidImage, "empty bounds %v", bounds)
	}

	bpp, imageType := pixelLayout(img)
	switch bpp {
	case 1, 3, 4:
	default:
		return nil, errors.Wrapf(ErrUnsupportedBPP, "%d", bpp)
	}

	buf := &Buffer{
		Type:          imageType,
		BytesPerPixel: bpp,
		Orientation:   1,
	}

	if bpp == 3 && !Aligned(bounds.Dx(), bpp) {
		buf.SourceWidth = bounds.Dx()
		img = AlignWidth(img)
		bounds = img.Bounds()
		logrus.WithFields(logrus.Fields{
			"width":   buf.SourceWidth,
			"resized": bounds.Dx(),
		}).Warn("row stride is not a multiple of 4 bytes, resizing image")
	}

	buf.Width = bounds.Dx()
	buf.Height = bounds.Dy()
	buf.Stride = buf.Width * bpp

	switch bpp {
	case 1:
		buf.Data = packGray(img)
	case 3:
		buf.Data = packRGB(img)
	case 4:
		buf.Data = packRGBA(img)
	}
	return buf, nil
}

// pixelLayout maps the decoded colour model to the bytes per pixel and engine image type.
func pixelLayout(img image.Image) (int, engine.ImageType) {
	switch img.(type) {
	case *image.Gray:
		return 1, engine.ImageTypeY
	case *image.YCbCr, *image.CMYK:
		return 3, engine.ImageTypeRGB24
	case *image.RGBA, *image.NRGBA, *image.Paletted, *image.NYCbCrA:
		return 4, engine.ImageTypeRGBA32
	case *image.Gray16, *image.Alpha16:
		return 2, engine.ImageTypeY
	case *image.RGBA64, *image.NRGBA64:
		return 8, engine.ImageTypeRGBA32
	default:
		return 0, engine.ImageTypeRGBA32
	}
}

func packGray(img image.Image) []byte {
	b := img.Bounds()
	gray, ok := img.(*image.Gray)
	if !ok {
		gray = image.NewGray(b)
		draw.Draw(gray, b, img, b.Min, draw.Src)
	}
	out := make([]byte, 0, b.Dx()*b.Dy())
	for y := 0; y < b.Dy(); y++ {
		off := y * gray.Stride
		out = append(out, gray.Pix[off:off+b.Dx()]...)
	}
	return out
}

func packRGB(img image.Image) []byte {
	b := img.Bounds()
	rgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	out := make([]byte, 0, b.Dx()*b.Dy()*3)
	for i := 0; i < len(rgba.Pix); i += 4 {
		out = append(out, rgba.Pix[i], rgba.Pix[i+1], rgba.Pix[i+2])
	}
	return out
}

func packRGBA(img image.Image) []byte {
	b := img.Bounds()
	rgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba.Pix
}
