package compressor

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"

	"github.com/disintegration/imaging"
)

// mozjpegEncoder pipes pixels through mozjpeg's cjpeg for progressive,
// Huffman-optimized output.
type mozjpegEncoder struct {
	cjpeg   string
	quality int
}

// lookupMozJPEG resolves the cjpeg binary, returning false when it is unavailable.
func lookupMozJPEG(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", false
	}
	return path, true
}

func (e mozjpegEncoder) Encode(w io.Writer, img image.Image) error {
	var ppm bytes.Buffer
	if err := writePPM(&ppm, img); err != nil {
		return fmt.Errorf("write ppm: %w", err)
	}

	cmd := exec.Command(
		e.cjpeg,
		"-quality", strconv.Itoa(e.quality),
		"-optimize",
		"-progressive",
	)
	cmd.Stdin = &ppm
	cmd.Stdout = w
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("cjpeg failed: %w (%s)", err, stderr.String())
	}
	return nil
}

func (e mozjpegEncoder) Name() string {
	return "cjpeg"
}

// writePPM writes img as a binary P6 pixmap. Alpha is dropped, so callers flatten first.
func writePPM(w io.Writer, img image.Image) error {
	nrgba := imaging.Clone(img)
	width := nrgba.Bounds().Dx()
	height := nrgba.Bounds().Dy()

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P6\n%d %d\n255\n", width, height); err != nil {
		return err
	}

	row := make([]byte, width*3)
	for y := 0; y < height; y++ {
		src := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+width*4]
		for x := 0; x < width; x++ {
			row[x*3+0] = src[x*4+0]
			row[x*3+1] = src[x*4+1]
			row[x*3+2] = src[x*4+2]
		}
		if _, err := bw.Write(row); err != nil {
			return err
		}
	}
	return bw.Flush()
}
