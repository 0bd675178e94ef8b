package imaging

import (
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	exif "github.com/dsoprea/go-exif/v3"
)

// orientationTag is the EXIF tag naming how the stored pixels must be turned.
const orientationTag = "Orientation"

// Orientation values as defined by EXIF 2.3.
const (
	OrientationNormal     = 1
	OrientationMirrored   = 2
	OrientationRotate180  = 3
	OrientationFlipped    = 4
	OrientationTranspose  = 5
	OrientationRotate90   = 6
	OrientationTransverse = 7
	OrientationRotate270  = 8
)

// ReadOrientation returns the EXIF orientation of data, or OrientationNormal
// when the image carries no EXIF block or no usable Orientation tag.
func ReadOrientation(data []byte) int {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		return OrientationNormal
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return OrientationNormal
	}

	for _, entry := range entries {
		if entry.TagName != orientationTag {
			continue
		}
		if o, ok := orientationValue(entry.Value, entry.Formatted); ok {
			return o
		}
	}
	return OrientationNormal
}

func orientationValue(value any, formatted string) (int, bool) {
	o := 0
	switch v := value.(type) {
	case []uint16:
		if len(v) > 0 {
			o = int(v[0])
		}
	case uint16:
		o = int(v)
	default:
		n, err := strconv.Atoi(strings.Trim(formatted, "[] "))
		if err != nil {
			return 0, false
		}
		o = n
	}
	if o < OrientationNormal || o > OrientationRotate270 {
		return 0, false
	}
	return o, true
}

// Orient returns a copy of src turned upright for the given EXIF orientation.
// Transparent areas are composited onto white. Unknown orientations leave the
// pixels as stored.
func Orient(src image.Image, orientation int) *image.NRGBA {
	upright := transform(src, orientation)
	b := upright.Bounds()
	canvas := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(canvas, upright, image.Point{}, 1.0)
}

func transform(src image.Image, orientation int) *image.NRGBA {
	switch orientation {
	case OrientationMirrored:
		return imaging.FlipH(src)
	case OrientationRotate180:
		return imaging.Rotate180(src)
	case OrientationFlipped:
		return imaging.FlipV(src)
	case OrientationTranspose:
		return imaging.Transpose(src)
	case OrientationRotate90:
		return imaging.Rotate270(src)
	case OrientationTransverse:
		return imaging.Transverse(src)
	case OrientationRotate270:
		return imaging.Rotate90(src)
	default:
		return imaging.Clone(src)
	}
}
