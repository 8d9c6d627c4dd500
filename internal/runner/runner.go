package runner

import (
	"fmt"
	"io"
	"path/filepath"

	"image-optimizer-go/internal/compressor"
	"image-optimizer-go/internal/config"
	"image-optimizer-go/internal/discovery"
	"image-optimizer-go/internal/statistics"
	"image-optimizer-go/internal/vcs"

	"github.com/sirupsen/logrus"
)

// Process exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
)

// Mode selects what a run does with the discovered files.
type Mode int

const (
	ModeOptimize Mode = iota
	ModeCheck
	ModeHook
)

// String returns the string representation of the Mode.
func (m Mode) String() string {
	switch m {
	case ModeCheck:
		return "check"
	case ModeHook:
		return "hook"
	default:
		return "optimize"
	}
}

// Options describes a single invocation.
type Options struct {
	Mode Mode
	// Path is an explicit file or directory; empty means the configured images directory.
	Path string
	// ShowSummary prints the statistics block after optimize and hook runs.
	ShowSummary bool
}

// Runner drives discovery, assessment and rewrite, and writes the console report.
type Runner struct {
	cfg        config.Config
	log        *logrus.Logger
	out        io.Writer
	finder     *discovery.Finder
	compressor compressor.Compressor
	stager     vcs.Stager
	stats      *statistics.Statistics
}

// New returns a new Runner.
func New(
	cfg config.Config,
	log *logrus.Logger,
	out io.Writer,
	finder *discovery.Finder,
	comp compressor.Compressor,
	stager vcs.Stager,
	stats *statistics.Statistics,
) *Runner {
	return &Runner{
		cfg:        cfg,
		log:        log,
		out:        out,
		finder:     finder,
		compressor: comp,
		stager:     stager,
		stats:      stats,
	}
}

// Run executes the requested mode and returns the process exit code.
func (r *Runner) Run(opts Options) int {
	r.log.Debugf("Starting %s run", opts.Mode)

	var code int
	switch opts.Mode {
	case ModeHook:
		code = r.runHook()
	case ModeCheck:
		code = r.runCheck(opts.Path)
	default:
		code = r.runOptimize(opts.Path)
	}

	r.stats.Finalize()
	if opts.ShowSummary && opts.Mode != ModeCheck && r.stats.TotalFilesFound > 0 {
		r.printf("\n%s\n", r.stats.GetSummary())
		if r.stats.FilesWithErrors > 0 {
			r.printf("\n%s", r.stats.GetErrorSummary())
		}
	}
	return code
}

func (r *Runner) discover(path string) []string {
	images := r.finder.FindImages(path)
	r.stats.SetFilesFound(len(images))
	if len(images) == 0 {
		r.printf("No images found in %s\n", r.finder.SearchRoot(path))
		return nil
	}
	r.printf("Found %d image(s)\n\n", len(images))
	return images
}

// runCheck assesses every file and fails when any of them needs work.
func (r *Runner) runCheck(path string) int {
	images := r.discover(path)
	if len(images) == 0 {
		return ExitOK
	}

	r.printf("Checking images (max: %dKB, %dpx):\n\n", r.cfg.MaxSizeKB, r.cfg.MaxDimension)

	needed := 0
	for _, img := range images {
		v := r.assess(img)
		status := "✅ OK"
		if v.NeedsOptimization {
			status = "⚠️  OPTIMIZE"
			needed++
		}
		r.printf("%s: %s - %s\n", status, filepath.Base(img), v.Reason)
	}

	r.printf("\nSummary: %d need optimization\n", needed)
	if needed > 0 {
		return ExitFailure
	}
	return ExitOK
}

// runOptimize rewrites every file over a threshold and stops at the first failure.
func (r *Runner) runOptimize(path string) int {
	images := r.discover(path)
	if len(images) == 0 {
		return ExitOK
	}

	r.printf("Optimizing images...\n\n")

	successCount := 0
	for _, img := range images {
		name := filepath.Base(img)
		if !r.needsWork(img, name) {
			continue
		}

		res := r.optimize(img)
		if !res.Success {
			r.printf("❌ %s: %s\n", name, res.Message)
			return ExitFailure
		}
		r.printf("✅ %s: %s\n", name, res.Message)
		successCount++
	}

	r.printf("\n✨ Optimized %d image(s)\n", successCount)
	return ExitOK
}

// runHook optimizes staged images and re-stages the rewritten files.
func (r *Runner) runHook() int {
	staged := r.finder.StagedImages(r.stager)
	r.stats.SetFilesFound(len(staged))
	if len(staged) == 0 {
		return ExitOK
	}

	r.printf("\n🖼️  Optimizing %d staged image(s)...\n\n", len(staged))

	successCount := 0
	for _, img := range staged {
		if !r.needsWork(img, img) {
			continue
		}

		res := r.optimize(img)
		if !res.Success {
			r.printf("❌ %s: %s\n", img, res.Message)
			return ExitFailure
		}
		r.printf("✅ %s: %s\n", img, res.Message)

		if err := r.stager.Add(img); err != nil {
			r.stats.AddError(img, "restage", err.Error())
			r.printf("❌ %s: could not re-stage: %v\n", img, err)
			return ExitFailure
		}
		r.stats.IncrementFilesRestaged()
		successCount++
	}

	if successCount > 0 {
		r.printf("\n✨ Optimized %d image(s) and re-staged\n\n", successCount)
	}
	return ExitOK
}

// needsWork assesses img and prints the skip line when no rewrite is needed.
func (r *Runner) needsWork(img, label string) bool {
	v := r.assess(img)
	if v.NeedsOptimization {
		return true
	}
	r.stats.IncrementFilesSkipped()
	if v.Err != nil {
		r.printf("⏭️  %s: skipped (%s)\n", label, v.Reason)
	} else {
		r.printf("⏭️  %s: already optimized\n", label)
	}
	return false
}

func (r *Runner) assess(img string) compressor.Verdict {
	v := r.compressor.Assess(img)
	r.stats.IncrementFilesChecked()
	if v.NeedsOptimization {
		r.stats.IncrementFilesNeedingWork()
	}
	if v.Err != nil {
		r.stats.IncrementFilesUnreadable()
		r.log.Debugf("Could not assess %s: %v", img, v.Err)
	}
	return v
}

func (r *Runner) optimize(img string) compressor.CompressionResult {
	res := r.compressor.Optimize(img)
	if !res.Success {
		op := "optimize"
		if res.Error != nil {
			op = string(res.Error.Kind)
		}
		r.stats.AddError(img, op, res.Message)
		return res
	}
	r.stats.RecordRewrite(res.OriginalSize, res.CompressedSize, res.Action == compressor.ActionCompressed)
	return res
}

func (r *Runner) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}
