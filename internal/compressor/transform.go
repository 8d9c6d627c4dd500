package compressor

import (
	"image"
	"image/color"

	"image-optimizer-go/internal/extractor"

	"github.com/disintegration/imaging"
)

// isOpaque reports whether every pixel of img is fully opaque.
func isOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	return false
}

// flattenOnWhite alpha-composites img onto an opaque white canvas of the same size.
func flattenOnWhite(img image.Image) *image.NRGBA {
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}

// fitWithin returns the dimensions of a uniform downscale that makes the larger
// side equal maxDim. The smaller side is truncated. ok is false when no resize is needed.
func fitWithin(width, height, maxDim int) (w, h int, ok bool) {
	if width <= maxDim && height <= maxDim {
		return width, height, false
	}
	if width >= height {
		h = int(float64(height) * float64(maxDim) / float64(width))
		return maxDim, max(h, 1), true
	}
	w = int(float64(width) * float64(maxDim) / float64(height))
	return max(w, 1), maxDim, true
}

// applyOrientation transforms img so that it displays upright without EXIF metadata.
func applyOrientation(img image.Image, o extractor.Orientation) image.Image {
	switch o {
	case extractor.OrientationFlipH:
		return imaging.FlipH(img)
	case extractor.OrientationRotate180:
		return imaging.Rotate180(img)
	case extractor.OrientationFlipV:
		return imaging.FlipV(img)
	case extractor.OrientationTranspose:
		return imaging.Transpose(img)
	case extractor.OrientationRotate270:
		return imaging.Rotate270(img)
	case extractor.OrientationTransverse:
		return imaging.Transverse(img)
	case extractor.OrientationRotate90:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
