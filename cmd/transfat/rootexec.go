package main

import (
	"context"
	"os"
	"os/exec"

	"github.com/transfat/transfat/pkg/config"
	"github.com/transfat/transfat/pkg/userlog"
	"gitlab.com/tozd/go/errors"
)

// ensureRoot makes sure the process can unmount and fatsort the device.
// When not already root it re-runs the exact invocation under sudo and
// exits with the child's status, so it only returns in a root process or
// when sudo could not be launched. Non-interactive runs pass -n so sudo
// fails instead of prompting for a password.
func ensureRoot(ctx context.Context, cfg *config.Config, ulog *userlog.Logger) error {
	if os.Geteuid() == 0 {
		ulog.Statusf("running as root")
		return nil
	}

	exe, err := os.Executable()
	if err != nil {
		return errors.Errorf("locating executable for sudo re-exec: %w", err)
	}

	args := sudoArgs(cfg.NonInteractive, exe, os.Args[1:])

	ulog.Info("restarting with sudo to allow unmounting and fatsorting")

	cmd := exec.CommandContext(ctx, "sudo", args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		return errors.Errorf("restarting with sudo: %w", err)
	}
	os.Exit(0)
	return nil
}

// sudoArgs assembles the sudo invocation: -n in non-interactive runs so
// sudo fails instead of prompting for a password, then the executable
// and the original arguments.
func sudoArgs(nonInteractive bool, exe string, argv []string) []string {
	args := make([]string, 0, len(argv)+2)
	if nonInteractive {
		args = append(args, "-n")
	}
	args = append(args, exe)
	args = append(args, argv...)
	return args
}
