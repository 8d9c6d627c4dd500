package discovery

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"image-optimizer-go/internal/config"
	"image-optimizer-go/internal/vcs"

	"github.com/sirupsen/logrus"
)

// Finder enumerates candidate image files.
type Finder struct {
	cfg       config.Config
	log       *logrus.Logger
	recursive bool
}

// NewFinder returns a new Finder. recursive makes directory scans descend into subdirectories.
func NewFinder(cfg config.Config, log *logrus.Logger, recursive bool) *Finder {
	return &Finder{cfg: cfg, log: log, recursive: recursive}
}

// SearchRoot returns the location FindImages scans for path.
func (f *Finder) SearchRoot(path string) string {
	if path == "" {
		return f.cfg.ImagesDirectory
	}
	return path
}

// FindImages returns the sorted, deduplicated images for path.
// An explicit file is returned only when it is a supported, non-temporary
// image; a directory (or the configured images directory when path is empty)
// is scanned for supported extensions. A missing location yields an empty result.
func (f *Finder) FindImages(path string) []string {
	root := f.SearchRoot(path)

	info, err := os.Stat(root)
	if err != nil {
		f.log.Debugf("Nothing to scan at %s: %v", root, err)
		return nil
	}
	if !info.IsDir() {
		if !f.isCandidate(info.Name()) {
			f.log.Debugf("Ignoring %s: not a supported image", root)
			return nil
		}
		return []string{root}
	}

	var files []string
	if f.recursive {
		_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				f.log.Warnf("Error accessing path %s: %v", p, err)
				return nil
			}
			if !d.IsDir() && f.isCandidate(d.Name()) {
				files = append(files, p)
			}
			return nil
		})
	} else {
		entries, err := os.ReadDir(root)
		if err != nil {
			f.log.Warnf("Could not read directory %s: %v", root, err)
			return nil
		}
		for _, entry := range entries {
			if !entry.IsDir() && f.isCandidate(entry.Name()) {
				files = append(files, filepath.Join(root, entry.Name()))
			}
		}
	}

	return normalize(files)
}

// StagedImages returns staged image files that still exist on disk.
// A failing stager is treated as having nothing staged.
func (f *Finder) StagedImages(stager vcs.Stager) []string {
	staged, err := stager.StagedFiles()
	if err != nil {
		f.log.Warnf("Could not list staged files: %v", err)
		return nil
	}

	var files []string
	for _, p := range staged {
		if !f.isCandidate(filepath.Base(p)) {
			continue
		}
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, p)
	}
	return normalize(files)
}

func (f *Finder) isCandidate(name string) bool {
	if f.cfg.IsTempFile(name) {
		return false
	}
	return f.cfg.IsImageExtension(filepath.Ext(name))
}

func normalize(files []string) []string {
	if len(files) == 0 {
		return nil
	}
	slices.Sort(files)
	return slices.Compact(files)
}
