package vcs

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// Runner executes an external command and returns its standard output.
type Runner interface {
	Run(name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands as blocking subprocesses.
type ExecRunner struct{}

// Run executes name with args and captures stdout. Stderr is folded into the error.
func (ExecRunner) Run(name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), fmt.Errorf("%s %s: %w (%s)", name, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// Stager lists and stages files in the version-control index.
type Stager interface {
	StagedFiles() ([]string, error)
	Add(path string) error
}

// Git talks to the git CLI.
type Git struct {
	runner Runner
	binary string
	log    *logrus.Logger
}

// NewGit returns a Git client using runner. A nil runner means ExecRunner.
func NewGit(runner Runner, log *logrus.Logger) *Git {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Git{runner: runner, binary: "git", log: log}
}

// StagedFiles returns the added, copied and modified paths in the index.
// Paths are NUL-separated so names with non-ASCII bytes are not C-quoted.
func (g *Git) StagedFiles() ([]string, error) {
	args := []string{"diff", "--cached", "--name-only", "-z", "--diff-filter=ACM"}
	g.log.Debugf("Running %s %s", g.binary, strings.Join(args, " "))

	out, err := g.runner.Run(g.binary, args...)
	if err != nil {
		return nil, fmt.Errorf("list staged files: %w", err)
	}

	var files []string
	for _, name := range strings.Split(string(out), "\x00") {
		if name != "" {
			files = append(files, name)
		}
	}
	return files, nil
}

// Add stages path.
func (g *Git) Add(path string) error {
	g.log.Debugf("Running %s add %s", g.binary, path)
	if _, err := g.runner.Run(g.binary, "add", "--", path); err != nil {
		return fmt.Errorf("stage %s: %w", path, err)
	}
	return nil
}
