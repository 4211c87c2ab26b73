package main

import (
	"context"
	"io"
	"io/fs"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/transfat/transfat/pkg/config"
	"github.com/transfat/transfat/pkg/convert"
	"github.com/transfat/transfat/pkg/fatsort"
	"github.com/transfat/transfat/pkg/prompt"
	"github.com/transfat/transfat/pkg/transfer"
	"github.com/transfat/transfat/pkg/userlog"
	"gitlab.com/tozd/go/errors"
)

// defaultConfigName is looked up in the working directory when --config is
// not given; its absence is not an error.
const defaultConfigName = ".transfat"

var (
	// Flags
	configFile     string
	nonInteractive bool
	verbose        bool
	quiet          bool
	debugMode      bool
	noFatsort      bool
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfat SOURCE... DEST_ROOT",
		Short: "Copy media onto a FAT device and sort its directory tables",
		Long: `transfat copies files onto a FAT-formatted device the way car stereos
and portable players expect: unwanted extensions filtered out, audio
converted to a playable format, and the device's directory tables sorted
afterwards so playback order matches name order.

The last argument is the destination root on the mounted device; every
argument before it is a source file or directory.`,
		Version:       FormatVersion(),
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			h := &handler{
				sources:        args[:len(args)-1],
				destRoot:       args[len(args)-1],
				configFile:     configFile,
				configExplicit: cmd.Flags().Changed("config"),
				nonInteractive: nonInteractive,
				verbose:        verbose,
				quiet:          quiet,
				noFatsort:      noFatsort,
			}
			return h.run(cmd.Context())
		},
	}

	addRootFlags(cmd)
	return cmd
}

// addRootFlags adds the shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&configFile, "config", "c", defaultConfigName, "config file path")
	cmd.Flags().BoolVarP(&nonInteractive, "non-interactive", "n", false, "never prompt; every question resolves to its safe default")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show per-stage progress")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only report problems")
	cmd.Flags().BoolVarP(&debugMode, "debug", "d", false, "enable debug logging")
	cmd.Flags().BoolVar(&noFatsort, "no-fatsort", false, "skip unmounting and FAT sorting")
}

// setupLogging configures zerolog based on flags
func setupLogging() {
	if debugMode {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &log
}

// handler carries one parsed invocation, separated from cobra so tests can
// drive it directly.
type handler struct {
	sources        []string
	destRoot       string
	configFile     string
	configExplicit bool
	nonInteractive bool
	verbose        bool
	quiet          bool
	noFatsort      bool

	stdout io.Writer // defaults to os.Stdout
}

func (h *handler) run(ctx context.Context) error {
	out := h.stdout
	if out == nil {
		out = os.Stdout
	}
	ulog := userlog.New(out, *zerolog.Ctx(ctx), h.verbose, h.quiet)

	ulog.Headerf("%d source(s) -> %s", len(h.sources), h.destRoot)

	cfg, err := h.loadConfig(ctx, ulog)
	if err != nil {
		ulog.Errorf("%v", err)
		return err
	}

	if !h.noFatsort {
		if err := ensureRoot(ctx, cfg, ulog); err != nil {
			ulog.Errorf("%v", err)
			return err
		}
	}

	ulog.Info("this may take a few minutes")

	// Fail before writing anything if the fatsort phase cannot happen.
	var (
		tool   *fatsort.Tool
		device string
		mount  string
	)
	if !h.noFatsort {
		tool = fatsort.New(cfg.Fatsort.Path, cfg.Fatsort.Args)
		if h.verbose {
			tool.Output = out
		}
		if !tool.Available() {
			err := errors.Errorf("fatsort binary %q not found; install it or pass --no-fatsort", cfg.Fatsort.Path)
			ulog.Errorf("%v", err)
			return err
		}
		ulog.Statusf("fatsort is available")

		device, mount, err = fatsort.FindDeviceLocations(ctx, h.destRoot)
		if err != nil {
			ulog.Errorf("%v", err)
			return err
		}
		ulog.Statusf("device %s mounted at %s", device, mount)
	}

	runner, err := transfer.New(transfer.Options{
		Config:    cfg,
		Sources:   h.sources,
		DestRoot:  h.destRoot,
		Converter: convert.NewFFmpeg(cfg.Convert.Path),
		Prompter:  prompt.New(cfg.NonInteractive),
		UserLog:   ulog,
	})
	if err != nil {
		return err
	}

	report, err := runner.Run(ctx)
	if err != nil {
		ulog.Errorf("%v", err)
		return err
	}

	if !h.noFatsort {
		ulog.Statusf("unmounting %s", mount)
		if err := fatsort.Unmount(ctx, device); err != nil {
			ulog.Errorf("%v", err)
			return err
		}
		ulog.Successf("%s unmounted", mount)

		ulog.Statusf("fatsorting %s", device)
		if err := tool.Sort(ctx, device); err != nil {
			ulog.Errorf("%v", err)
			return err
		}
		ulog.Successf("%s fatsorted", device)
	}

	summarize(ulog, report)
	if report.HasFailures() {
		return errors.Errorf("completed with %d failed operations", len(report.Failures))
	}
	return nil
}

// loadConfig reads the config file and folds the run-mode flags into it. A
// missing default config is fine; a missing explicit one is not.
func (h *handler) loadConfig(ctx context.Context, ulog *userlog.Logger) (*config.Config, error) {
	cfg, err := config.Load(ctx, h.configFile)
	switch {
	case err == nil:
		ulog.Statusf("read config %s", h.configFile)
	case errors.Is(err, fs.ErrNotExist) && !h.configExplicit:
		cfg = config.Default()
		ulog.Statusf("no %s, running with defaults", h.configFile)
	default:
		return nil, err
	}

	cfg.NonInteractive = h.nonInteractive
	cfg.Verbose = h.verbose
	cfg.Quiet = h.quiet
	return cfg, nil
}

func summarize(ulog *userlog.Logger, report *transfer.Report) {
	ulog.Newline()
	ulog.Infof("%d copied, %d converted, %d skipped, %d filtered",
		report.Copied, report.Converted, report.Skipped, report.Filtered)
	if report.Renamed > 0 {
		ulog.Infof("%d directories renamed", report.Renamed)
	}
	if report.DeletedSources > 0 {
		ulog.Infof("%d source paths deleted", report.DeletedSources)
	}
	if len(report.Failures) > 0 {
		ulog.Errorf("%d operations failed", len(report.Failures))
		for _, f := range report.Failures {
			ulog.FileOp(userlog.FileOperation{
				Path:   f.Path,
				Action: userlog.ActionFailed,
				Detail: f.Stage + ": " + f.Err.Error(),
			})
		}
	} else {
		ulog.Success("all done")
	}
}
