package engine

import "fmt"

// ImageType is the pixel layout of a buffer handed to the engine.
//
// The values match the native FLD_SDK_IMAGE_TYPE enumeration and must not be reordered.
type ImageType int

// ImageType constants.
const (
	// ImageTypeRGB24 packs R, G then B on 3 bytes.
	ImageTypeRGB24 ImageType = iota
	// ImageTypeRGBA32 packs R, G, B then A on 4 bytes.
	ImageTypeRGBA32
	// ImageTypeBGRA32 packs B, G, R then A on 4 bytes.
	ImageTypeBGRA32
	// ImageTypeBGR24 packs B, G then R on 3 bytes (OpenCV frames).
	ImageTypeBGR24
	// ImageTypeNV12 is YUV 4:2:0 with an interleaved U/V plane.
	ImageTypeNV12
	// ImageTypeNV21 is YUV 4:2:0 with an interleaved V/U plane.
	ImageTypeNV21
	// ImageTypeYUV420P is planar YUV 4:2:0.
	ImageTypeYUV420P
	// ImageTypeYVU420P is planar YVU 4:2:0.
	ImageTypeYVU420P
	// ImageTypeYUV422P is planar YUV 4:2:2.
	ImageTypeYUV422P
	// ImageTypeYUV444P is planar YUV 4:4:4.
	ImageTypeYUV444P
	// ImageTypeY is a single 8-bit luminance channel.
	ImageTypeY
)

var imageTypeNames = map[ImageType]string{
	ImageTypeRGB24:   "RGB24",
	ImageTypeRGBA32:  "RGBA32",
	ImageTypeBGRA32:  "BGRA32",
	ImageTypeBGR24:   "BGR24",
	ImageTypeNV12:    "NV12",
	ImageTypeNV21:    "NV21",
	ImageTypeYUV420P: "YUV420P",
	ImageTypeYVU420P: "YVU420P",
	ImageTypeYUV422P: "YUV422P",
	ImageTypeYUV444P: "YUV444P",
	ImageTypeY:       "Y",
}

// String returns the short name of the image type.
func (t ImageType) String() string {
	if name, ok := imageTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ImageType(%d)", int(t))
}

// BytesPerPixel returns the number of bytes used by one pixel of a packed image type.
//
// Returns:
//   - int: 1, 3 or 4 for packed types, 0 for planar/semi-planar YUV types.
func (t ImageType) BytesPerPixel() int {
	switch t {
	case ImageTypeY:
		return 1
	case ImageTypeRGB24, ImageTypeBGR24:
		return 3
	case ImageTypeRGBA32, ImageTypeBGRA32:
		return 4
	default:
		return 0
	}
}

// Packed reports whether the pixels of the image type are stored interleaved in a single plane.
func (t ImageType) Packed() bool {
	return t.BytesPerPixel() != 0
}
