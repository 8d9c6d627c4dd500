package statistics

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

// Statistics contains the counters of one optimization run.
type Statistics struct {
	TotalFilesFound  int64
	FilesChecked     int64
	FilesNeedingWork int64
	FilesOptimized   int64
	FilesAlreadyOK   int64
	FilesSkipped     int64
	FilesUnreadable  int64
	FilesWithErrors  int64
	FilesRestaged    int64
	BytesBefore      int64
	BytesAfter       int64

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	Errors []StatError

	mutex sync.RWMutex
}

// StatError represents an error that occurred during processing.
type StatError struct {
	FilePath  string
	Operation string
	Error     string
	Timestamp time.Time
}

// NewStatistics returns a new Statistics instance.
func NewStatistics() *Statistics {
	return &Statistics{
		StartTime: time.Now(),
		Errors:    make([]StatError, 0),
	}
}

// SetFilesFound records how many candidate files discovery returned.
func (s *Statistics) SetFilesFound(n int) {
	atomic.StoreInt64(&s.TotalFilesFound, int64(n))
}

// IncrementFilesChecked increases the count of assessed files by 1.
func (s *Statistics) IncrementFilesChecked() {
	atomic.AddInt64(&s.FilesChecked, 1)
}

// IncrementFilesNeedingWork increases the count of files over a threshold by 1.
func (s *Statistics) IncrementFilesNeedingWork() {
	atomic.AddInt64(&s.FilesNeedingWork, 1)
}

// IncrementFilesSkipped increases the count of files left alone by 1.
func (s *Statistics) IncrementFilesSkipped() {
	atomic.AddInt64(&s.FilesSkipped, 1)
}

// IncrementFilesUnreadable increases the count of files that could not be assessed by 1.
func (s *Statistics) IncrementFilesUnreadable() {
	atomic.AddInt64(&s.FilesUnreadable, 1)
}

// IncrementFilesRestaged increases the count of files re-added to the index by 1.
func (s *Statistics) IncrementFilesRestaged() {
	atomic.AddInt64(&s.FilesRestaged, 1)
}

// RecordRewrite accounts a successful rewrite. replaced is false when the
// original was kept because the re-encoded file was not smaller.
func (s *Statistics) RecordRewrite(before, after int64, replaced bool) {
	if replaced {
		atomic.AddInt64(&s.FilesOptimized, 1)
	} else {
		atomic.AddInt64(&s.FilesAlreadyOK, 1)
	}
	atomic.AddInt64(&s.BytesBefore, before)
	atomic.AddInt64(&s.BytesAfter, after)
}

// AddError records an error that occurred during processing.
func (s *Statistics) AddError(filePath, operation, errorMsg string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	atomic.AddInt64(&s.FilesWithErrors, 1)
	s.Errors = append(s.Errors, StatError{
		FilePath:  filePath,
		Operation: operation,
		Error:     errorMsg,
		Timestamp: time.Now(),
	})
}

// Finalize records the end time and duration.
func (s *Statistics) Finalize() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.EndTime = time.Now()
	s.Duration = s.EndTime.Sub(s.StartTime)
}

// BytesSaved returns how many bytes the rewrites removed.
func (s *Statistics) BytesSaved() int64 {
	return atomic.LoadInt64(&s.BytesBefore) - atomic.LoadInt64(&s.BytesAfter)
}

// GetSummary returns a formatted summary of the run.
func (s *Statistics) GetSummary() string {
	s.mutex.RLock()
	duration := s.Duration
	s.mutex.RUnlock()

	before := atomic.LoadInt64(&s.BytesBefore)
	after := atomic.LoadInt64(&s.BytesAfter)

	return fmt.Sprintf(`Image Optimization Summary:

Files:
		Found: %d
		Checked: %d
		Over Threshold: %d
		Optimized: %d
		Already Optimal: %d
		Skipped: %d
		Unreadable: %d
		Errors: %d
		Re-staged: %d

Size:
		Before: %s
		After: %s
		Saved: %s (%.1f%%)

Duration: %v`,
		atomic.LoadInt64(&s.TotalFilesFound),
		atomic.LoadInt64(&s.FilesChecked),
		atomic.LoadInt64(&s.FilesNeedingWork),
		atomic.LoadInt64(&s.FilesOptimized),
		atomic.LoadInt64(&s.FilesAlreadyOK),
		atomic.LoadInt64(&s.FilesSkipped),
		atomic.LoadInt64(&s.FilesUnreadable),
		atomic.LoadInt64(&s.FilesWithErrors),
		atomic.LoadInt64(&s.FilesRestaged),
		humanize.IBytes(uint64(before)),
		humanize.IBytes(uint64(after)),
		humanize.IBytes(uint64(max(before-after, 0))),
		percentSaved(before, after),
		duration.Truncate(time.Millisecond))
}

// GetErrorSummary returns a summary of errors that occurred during processing.
func (s *Statistics) GetErrorSummary() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if len(s.Errors) == 0 {
		return "No errors occurred during processing"
	}

	result := fmt.Sprintf("Errors (%d total):\n", len(s.Errors))
	for i, err := range s.Errors {
		if i >= 10 {
			result += fmt.Sprintf("  ... and %d more errors\n", len(s.Errors)-10)
			break
		}
		result += fmt.Sprintf("  [%s] %s: %s - %s\n",
			err.Timestamp.Format("15:04:05"),
			err.Operation,
			err.FilePath,
			err.Error)
	}
	return result
}

func percentSaved(before, after int64) float64 {
	if before <= 0 {
		return 0
	}
	return float64(before-after) * 100 / float64(before)
}
