package compressor

import (
	"image"
	"io"

	"github.com/gen2brain/jpegli"
)

// jpegProgressiveLevel is jpegli's full progressive scan script.
const jpegProgressiveLevel = 2

// jpegEncoder writes img as a JPEG stream.
type jpegEncoder interface {
	Encode(w io.Writer, img image.Image) error
	Name() string
}

// jpegliEncoder is the in-process encoder used when cjpeg is not installed.
// Output is progressive with optimized Huffman tables.
type jpegliEncoder struct {
	quality int
}

func (e jpegliEncoder) Encode(w io.Writer, img image.Image) error {
	return jpegli.Encode(w, img, &jpegli.EncodingOptions{
		Quality:              e.quality,
		ChromaSubsampling:    image.YCbCrSubsampleRatio420,
		ProgressiveLevel:     jpegProgressiveLevel,
		OptimizeCoding:       true,
		AdaptiveQuantization: true,
		FancyDownsampling:    true,
	})
}

func (e jpegliEncoder) Name() string {
	return "jpegli"
}
