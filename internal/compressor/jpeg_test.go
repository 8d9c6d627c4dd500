package compressor

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"image-optimizer-go/internal/extractor"
)

// isProgressiveJPEG walks the marker segments up to the first scan and
// reports whether the frame header is SOF2.
func isProgressiveJPEG(data []byte) bool {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return false
	}
	i := 2
	for i+3 < len(data) {
		if data[i] != 0xFF {
			return false
		}
		marker := data[i+1]
		switch marker {
		case 0xFF:
			i++
			continue
		case 0xC2:
			return true
		case 0xC0, 0xC1, 0xC3, 0xDA:
			return false
		}
		length := int(data[i+2])<<8 | int(data[i+3])
		i += 2 + length
	}
	return false
}

// withOrientation splices an EXIF APP1 segment carrying orientation o
// right after the SOI marker of a JPEG stream.
func withOrientation(jpg []byte, o uint16) []byte {
	payload := []byte("Exif\x00\x00")
	payload = append(payload, 'M', 'M', 0x00, 0x2A, 0x00, 0x00, 0x00, 0x08)
	payload = append(payload, 0x00, 0x01)             // one IFD entry
	payload = append(payload, 0x01, 0x12, 0x00, 0x03) // Orientation, SHORT
	payload = append(payload, 0x00, 0x00, 0x00, 0x01) // count
	payload = append(payload, byte(o>>8), byte(o), 0x00, 0x00)
	payload = append(payload, 0x00, 0x00, 0x00, 0x00) // no next IFD

	size := len(payload) + 2
	out := []byte{0xFF, 0xD8, 0xFF, 0xE1, byte(size >> 8), byte(size)}
	out = append(out, payload...)
	return append(out, jpg[2:]...)
}

func TestJPEGEncodersProduceProgressive(t *testing.T) {
	encoders := []jpegEncoder{jpegliEncoder{quality: 85}}
	if path, err := exec.LookPath("cjpeg"); err == nil {
		encoders = append(encoders, mozjpegEncoder{cjpeg: path, quality: 85})
	} else {
		t.Log("cjpeg not installed, only checking jpegli")
	}

	for _, enc := range encoders {
		t.Run(enc.Name(), func(t *testing.T) {
			var buf bytes.Buffer
			if err := enc.Encode(&buf, gradient(320, 200)); err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if !isProgressiveJPEG(buf.Bytes()) {
				t.Error("Expected a progressive (SOF2) JPEG")
			}
			cfg, err := jpeg.DecodeConfig(bytes.NewReader(buf.Bytes()))
			if err != nil {
				t.Fatalf("Output does not decode: %v", err)
			}
			if cfg.Width != 320 || cfg.Height != 200 {
				t.Errorf("Expected 320x200, got %dx%d", cfg.Width, cfg.Height)
			}
		})
	}
}

func TestMozJPEGEncoder(t *testing.T) {
	path, err := exec.LookPath("cjpeg")
	if err != nil {
		t.Skip("cjpeg not installed")
	}

	enc := mozjpegEncoder{cjpeg: path, quality: 85}
	var buf bytes.Buffer
	if err := enc.Encode(&buf, flattenOnWhite(gradient(64, 48))); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Output does not decode: %v", err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 48 {
		t.Errorf("Expected 64x48, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
	if !isProgressiveJPEG(buf.Bytes()) {
		t.Error("Expected cjpeg -progressive output")
	}
}

func TestIsProgressiveJPEG(t *testing.T) {
	var baseline bytes.Buffer
	if err := jpeg.Encode(&baseline, gradient(16, 16), nil); err != nil {
		t.Fatal(err)
	}
	if isProgressiveJPEG(baseline.Bytes()) {
		t.Error("image/jpeg output is baseline, not progressive")
	}
	if isProgressiveJPEG([]byte("not a jpeg")) {
		t.Error("Expected false for non-JPEG data")
	}
}

func TestOptimizeAppliesEXIFOrientation(t *testing.T) {
	cfg := testConfig()
	c := newTestCompressor(cfg)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, gradient(2400, 1200), &jpeg.Options{Quality: 100}); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "portrait.jpg")
	if err := os.WriteFile(path, withOrientation(buf.Bytes(), 6), 0644); err != nil {
		t.Fatal(err)
	}

	res := c.Optimize(path)
	if !res.Success || res.Action != ActionCompressed {
		t.Fatalf("Expected a compressed rewrite, got %s: %s", res.Action, res.Message)
	}

	img, _ := decodeFile(t, path)
	if img.Bounds().Dx() != 960 || img.Bounds().Dy() != 1920 {
		t.Errorf("Expected rotated 960x1920, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
	assertNoTemp(t, path, cfg)
}

func TestApplyOrientation(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	marked := color.NRGBA{R: 255, A: 255}
	src.SetNRGBA(0, 0, marked)

	tests := []struct {
		orientation extractor.Orientation
		wantW       int
		wantH       int
		markX       int
		markY       int
	}{
		{extractor.OrientationNormal, 3, 2, 0, 0},
		{extractor.OrientationFlipH, 3, 2, 2, 0},
		{extractor.OrientationRotate180, 3, 2, 2, 1},
		{extractor.OrientationFlipV, 3, 2, 0, 1},
		{extractor.OrientationTranspose, 2, 3, 0, 0},
		{extractor.OrientationRotate270, 2, 3, 1, 0},
		{extractor.OrientationTransverse, 2, 3, 1, 2},
		{extractor.OrientationRotate90, 2, 3, 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.orientation.String(), func(t *testing.T) {
			got := applyOrientation(src, tt.orientation)
			b := got.Bounds()
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Fatalf("Expected %dx%d, got %dx%d", tt.wantW, tt.wantH, b.Dx(), b.Dy())
			}
			r, _, _, _ := got.At(b.Min.X+tt.markX, b.Min.Y+tt.markY).RGBA()
			if r>>8 != 255 {
				t.Errorf("Expected top-left pixel at (%d, %d)", tt.markX, tt.markY)
			}
		})
	}
}
