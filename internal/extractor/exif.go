package extractor

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"image-optimizer-go/internal/logger"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/sirupsen/logrus"
)

// EXIFExtractor reads the orientation of JPEG files from EXIF metadata.
type EXIFExtractor struct {
	logger *logrus.Logger
}

// NewEXIFExtractor returns a new EXIFExtractor.
func NewEXIFExtractor(logger *logrus.Logger) *EXIFExtractor {
	return &EXIFExtractor{logger: logger}
}

// SupportsFile reports whether the file is supported by this extractor.
func (e *EXIFExtractor) SupportsFile(filePath string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	return slices.Contains([]string{".jpg", ".jpeg"}, ext)
}

// ReadOrientation returns the EXIF orientation of filePath.
// Files without EXIF data or without the tag report OrientationNormal and no error.
func (e *EXIFExtractor) ReadOrientation(filePath string) (Orientation, error) {
	if !e.SupportsFile(filePath) {
		return OrientationNormal, nil
	}

	file, err := os.Open(filePath)
	if err != nil {
		return OrientationUnknown, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	log := logger.WithFile(e.logger, filePath)

	x, err := exif.Decode(file)
	if err != nil {
		log.Debugf("No EXIF data: %v", err)
		return OrientationNormal, nil
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return OrientationNormal, nil
	}

	val, err := tag.Int(0)
	if err != nil {
		return OrientationUnknown, fmt.Errorf("failed to read orientation tag: %w", err)
	}

	o := Orientation(val)
	if o < OrientationNormal || o > OrientationRotate90 {
		log.Debugf("Ignoring out-of-range orientation %d", val)
		return OrientationNormal, nil
	}

	log.Debugf("Extracted orientation %s from EXIF", o)
	return o, nil
}
