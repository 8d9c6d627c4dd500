package compressor

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Verdict is the outcome of assessing a single file against the thresholds.
type Verdict struct {
	NeedsOptimization bool
	Reason            string
	// Err is set when the file could not be read or decoded; the file is then skipped.
	Err error
}

// Action values reported in CompressionResult.
const (
	ActionCompressed     = "compressed"
	ActionAlreadyOptimal = "already_optimal"
	ActionError          = "error"
)

// CompressionResult describes the result of rewriting a single file.
type CompressionResult struct {
	InputPath       string
	OriginalSize    int64
	CompressedSize  int64
	PercentageSaved float64
	Action          string
	Message         string
	Success         bool
	Error           *OptimizeError
}

// ErrorKind classifies a rewrite failure.
type ErrorKind string

const (
	ErrorKindStat        ErrorKind = "stat"
	ErrorKindDecode      ErrorKind = "decode"
	ErrorKindEncode      ErrorKind = "encode"
	ErrorKindReplace     ErrorKind = "replace"
	ErrorKindUnsupported ErrorKind = "unsupported"
)

// OptimizeError is the structured failure carried by a CompressionResult.
type OptimizeError struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *OptimizeError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Path, e.Err)
}

func (e *OptimizeError) Unwrap() error {
	return e.Err
}

// Compressor defines the interface for image assessment and rewrite.
type Compressor interface {
	// Assess reports whether the file exceeds the configured thresholds.
	// It never modifies the file.
	Assess(path string) Verdict
	// Optimize re-encodes the file and replaces it only when the result is smaller.
	Optimize(path string) CompressionResult
}

// Format is the target encoding of a rewrite, chosen by file extension.
type Format int

const (
	FormatUnknown Format = iota
	FormatJPEG
	FormatPNG
	FormatWebP
)

// String returns the string representation of the Format.
func (f Format) String() string {
	switch f {
	case FormatJPEG:
		return "JPEG"
	case FormatPNG:
		return "PNG"
	case FormatWebP:
		return "WebP"
	default:
		return "Unknown"
	}
}

// FormatFromPath maps a file extension to its target Format.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return FormatJPEG
	case ".png":
		return FormatPNG
	case ".webp":
		return FormatWebP
	default:
		return FormatUnknown
	}
}

func sizeKB(size int64) float64 {
	return float64(size) / 1024
}
