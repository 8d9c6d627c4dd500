package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"image-optimizer-go/internal/compressor"
	"image-optimizer-go/internal/config"
	"image-optimizer-go/internal/discovery"
	"image-optimizer-go/internal/extractor"
	"image-optimizer-go/internal/logger"
	"image-optimizer-go/internal/runner"
	"image-optimizer-go/internal/statistics"
	"image-optimizer-go/internal/vcs"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type cliOptions struct {
	check     bool
	hook      bool
	recursive bool
	verbose   bool
	quiet     bool
	logFile   string
}

// newRootCmd builds the root command. argv0 is the name the binary was invoked
// under and code receives the exit status of the run.
func newRootCmd(argv0 string, stdout io.Writer, code *int) *cobra.Command {
	var opts cliOptions
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "optimize-images [path]",
		Short: "Shrink oversized PNG, JPEG and WebP assets in place",
		Long: `optimize-images scans an image directory (or a single file) and re-encodes
every image that is larger than 500KB or wider or taller than 1920px.
A rewritten file replaces the original only when it is smaller.

Modes:
- default: optimize every image over a threshold
- --check: report only, exit 1 if any image needs optimization
- --hook:  optimize staged images and re-stage them (pre-commit)

Installed as .git/hooks/pre-commit (for example via a symlink), the tool
runs in hook mode automatically.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			log, err := setupLogger(cfg, opts, cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("failed to set up logging: %w", err)
			}

			mode := runner.ModeOptimize
			switch {
			case opts.hook || isHookInvocation(argv0, cfg.HookName):
				mode = runner.ModeHook
			case opts.check:
				mode = runner.ModeCheck
			}

			var path string
			if len(args) > 0 {
				path = args[0]
			}
			if mode == runner.ModeHook && path != "" {
				log.Warnf("Ignoring path %s in hook mode", path)
				path = ""
			}

			r := newRunner(cfg, log, stdout, opts.recursive)
			*code = r.Run(runner.Options{
				Mode:        mode,
				Path:        path,
				ShowSummary: !opts.quiet,
			})
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.check, "check", false, "only report images that need optimization")
	flags.BoolVar(&opts.hook, "hook", false, "optimize staged images and re-stage them")
	flags.BoolVarP(&opts.recursive, "recursive", "r", false, "also scan subdirectories")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "log errors only and skip the summary")
	flags.StringVar(&opts.logFile, "log-file", "", "write JSON logs to this file (rotated)")
	_ = v.BindPFlag("logging.file_path", flags.Lookup("log-file"))

	return cmd
}

// isHookInvocation reports whether the binary was started under the hook's file name.
func isHookInvocation(argv0, hookName string) bool {
	return hookName != "" && filepath.Base(argv0) == hookName
}

// setupLogger configures and returns a logger.
func setupLogger(cfg config.Config, opts cliOptions, stderr io.Writer) (*logrus.Logger, error) {
	loggerCfg := logger.LoggerConfig{
		Level:      cfg.Logging.Level,
		FilePath:   cfg.Logging.FilePath,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
		Compress:   cfg.Logging.Compress,
		Console:    true,
		Stderr:     stderr,
	}

	if opts.verbose {
		loggerCfg.Level = "debug"
	}
	if opts.quiet {
		loggerCfg.Level = "error"
	}

	return logger.NewLogger(loggerCfg)
}

func newRunner(cfg config.Config, log *logrus.Logger, stdout io.Writer, recursive bool) *runner.Runner {
	orientation := extractor.NewEXIFExtractor(log)
	comp := compressor.NewDefaultCompressor(cfg, log, orientation)
	finder := discovery.NewFinder(cfg, log, recursive)
	git := vcs.NewGit(nil, log)

	return runner.New(cfg, log, stdout, finder, comp, git, statistics.NewStatistics())
}

// execute runs the command line args and returns the process exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	code := runner.ExitOK
	cmd := newRootCmd(args[0], stdout, &code)
	cmd.SetArgs(args[1:])
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return runner.ExitFailure
	}
	return code
}

func main() {
	os.Exit(execute(os.Args, os.Stdout, os.Stderr))
}
