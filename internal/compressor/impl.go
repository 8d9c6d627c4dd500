package compressor

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"image-optimizer-go/internal/config"
	"image-optimizer-go/internal/extractor"
	"image-optimizer-go/internal/logger"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/webp"
	"github.com/sirupsen/logrus"
)

// webpMethod is libwebp's slowest, smallest-output compression effort.
const webpMethod = 6

// DefaultCompressor is the default implementation of the Compressor interface.
type DefaultCompressor struct {
	cfg         config.Config
	log         *logrus.Logger
	orientation extractor.OrientationReader
	jpeg        jpegEncoder
}

// NewDefaultCompressor creates a new DefaultCompressor instance.
// orientation may be nil, in which case EXIF orientation is not applied.
func NewDefaultCompressor(cfg config.Config, log *logrus.Logger, orientation extractor.OrientationReader) *DefaultCompressor {
	var enc jpegEncoder = jpegliEncoder{quality: cfg.JPEGQuality}
	if path, ok := lookupMozJPEG(cfg.JPEG.Encoder); ok {
		enc = mozjpegEncoder{cjpeg: path, quality: cfg.JPEGQuality}
	}
	log.Debugf("Using %s JPEG encoder", enc.Name())

	return &DefaultCompressor{
		cfg:         cfg,
		log:         log,
		orientation: orientation,
		jpeg:        enc,
	}
}

// Assess checks the file against the size and dimension thresholds.
func (c *DefaultCompressor) Assess(path string) Verdict {
	info, err := os.Stat(path)
	if err != nil {
		return Verdict{Reason: fmt.Sprintf("Error: %v", err), Err: err}
	}

	kb := sizeKB(info.Size())
	if info.Size() > c.cfg.MaxSizeBytes() {
		return Verdict{
			NeedsOptimization: true,
			Reason:            fmt.Sprintf("%.1fKB > %dKB", kb, c.cfg.MaxSizeKB),
		}
	}

	width, height, err := decodeDimensions(path)
	if err != nil {
		logger.WithFileOperation(c.log, path, "assess").Debugf("Decode failed: %v", err)
		return Verdict{Reason: fmt.Sprintf("Error: %v", err), Err: err}
	}

	if width > c.cfg.MaxDimension || height > c.cfg.MaxDimension {
		return Verdict{
			NeedsOptimization: true,
			Reason:            fmt.Sprintf("%dx%d exceeds %dpx", width, height, c.cfg.MaxDimension),
		}
	}

	return Verdict{Reason: fmt.Sprintf("%.1fKB - OK", kb)}
}

// decodeDimensions reads only the image header.
func decodeDimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// Optimize re-encodes a single file next to the original and swaps it in when smaller.
func (c *DefaultCompressor) Optimize(path string) CompressionResult {
	res := CompressionResult{InputPath: path}
	log := logger.WithFileOperation(c.log, path, "optimize")

	format := FormatFromPath(path)
	if format == FormatUnknown {
		return c.fail(res, ErrorKindUnsupported, fmt.Errorf("unsupported image format %q", filepath.Ext(path)))
	}

	info, err := os.Stat(path)
	if err != nil {
		return c.fail(res, ErrorKindStat, err)
	}
	res.OriginalSize = info.Size()

	img, err := imaging.Open(path)
	if err != nil {
		return c.fail(res, ErrorKindDecode, err)
	}
	log.Debugf("Decoded %dx%d image", img.Bounds().Dx(), img.Bounds().Dy())

	img = c.prepare(path, img, format)

	tmpPath := path + c.cfg.TempSuffix
	if err := c.writeTemp(tmpPath, img, format, info.Mode().Perm()); err != nil {
		_ = os.Remove(tmpPath)
		return c.fail(res, ErrorKindEncode, err)
	}

	compInfo, err := os.Stat(tmpPath)
	if err != nil {
		_ = os.Remove(tmpPath)
		return c.fail(res, ErrorKindStat, err)
	}
	compSize := compInfo.Size()
	origKB := sizeKB(res.OriginalSize)

	if compSize < res.OriginalSize {
		if err := os.Rename(tmpPath, path); err != nil {
			_ = os.Remove(tmpPath)
			return c.fail(res, ErrorKindReplace, err)
		}
		res.CompressedSize = compSize
		res.PercentageSaved = float64(res.OriginalSize-compSize) * 100 / float64(res.OriginalSize)
		res.Action = ActionCompressed
		res.Message = fmt.Sprintf("%.1fKB → %.1fKB (%.0f%% reduction)", origKB, sizeKB(compSize), res.PercentageSaved)
		log.Debugf("Replaced original (%d -> %d bytes)", res.OriginalSize, compSize)
	} else {
		if err := os.Remove(tmpPath); err != nil {
			log.Warnf("Could not remove temporary file %s: %v", tmpPath, err)
		}
		// The file on disk is untouched.
		res.CompressedSize = res.OriginalSize
		res.Action = ActionAlreadyOptimal
		res.Message = fmt.Sprintf("%.1fKB (already optimal)", origKB)
		log.Debugf("Re-encoded size %d not smaller than %d, kept original", compSize, res.OriginalSize)
	}

	res.Success = true
	return res
}

// prepare applies orientation, flattening and downscaling ahead of encoding.
func (c *DefaultCompressor) prepare(path string, img image.Image, format Format) image.Image {
	if c.orientation != nil && c.orientation.SupportsFile(path) {
		o, err := c.orientation.ReadOrientation(path)
		if err != nil {
			c.log.Warnf("Could not read orientation of %s: %v", path, err)
		} else if o.NeedsTransform() {
			img = applyOrientation(img, o)
		}
	}

	if format == FormatJPEG && !isOpaque(img) {
		img = flattenOnWhite(img)
	}

	b := img.Bounds()
	if w, h, ok := fitWithin(b.Dx(), b.Dy(), c.cfg.MaxDimension); ok {
		c.log.Debugf("Resizing %s from %dx%d to %dx%d", path, b.Dx(), b.Dy(), w, h)
		img = imaging.Resize(img, w, h, imaging.Lanczos)
	}
	return img
}

func (c *DefaultCompressor) writeTemp(tmpPath string, img image.Image, format Format, perm os.FileMode) error {
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if err := c.encode(f, img, format); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", format, err)
	}
	return f.Close()
}

func (c *DefaultCompressor) encode(w io.Writer, img image.Image, format Format) error {
	switch format {
	case FormatJPEG:
		return c.jpeg.Encode(w, img)
	case FormatPNG:
		return imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
	case FormatWebP:
		return webp.Encode(w, img, webp.Options{
			Quality: c.cfg.WebPQuality,
			Method:  webpMethod,
		})
	default:
		return fmt.Errorf("no encoder for format %s", format)
	}
}

func (c *DefaultCompressor) fail(res CompressionResult, kind ErrorKind, err error) CompressionResult {
	res.Action = ActionError
	res.Success = false
	res.Error = &OptimizeError{Kind: kind, Path: res.InputPath, Err: err}
	res.Message = fmt.Sprintf("Error: %v", err)
	logger.WithFileOperation(c.log, res.InputPath, string(kind)).Debugf("Optimization failed: %v", err)
	return res
}
