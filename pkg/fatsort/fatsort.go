// Copyright 2025 the transfat authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package fatsort wraps the maintenance phase that follows a transfer:
// finding the FAT device backing the destination, unmounting it, and
// running the external fatsort tool to order its directory tables.
package fatsort

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ErrNoFATDevice means no FAT-formatted mount contains the destination.
var ErrNoFATDevice = errors.Base("no FAT device found")

// Tool invokes the external fatsort binary.
type Tool struct {
	Path   string    // binary name or path, "fatsort" when empty
	Args   []string  // extra arguments placed before the device
	Output io.Writer // optional, receives the tool's progress output
}

// New returns a Tool for the given binary and arguments.
func New(path string, args []string) *Tool {
	return &Tool{Path: path, Args: args}
}

func (t *Tool) binary() string {
	if t.Path == "" {
		return "fatsort"
	}
	return t.Path
}

// Available reports whether the fatsort binary can be found.
func (t *Tool) Available() bool {
	_, err := exec.LookPath(t.binary())
	return err == nil
}

// Sort runs fatsort against the device. The device must be unmounted
// first; fatsort operates on the block device directly.
func (t *Tool) Sort(ctx context.Context, device string) error {
	zerolog.Ctx(ctx).Debug().Str("device", device).Strs("args", t.Args).Msg("running fatsort")

	args := append(append([]string{}, t.Args...), device)
	cmd := exec.CommandContext(ctx, t.binary(), args...)

	var stderr bytes.Buffer
	cmd.Stdout = t.Output
	cmd.Stderr = &stderr
	if t.Output != nil {
		cmd.Stderr = io.MultiWriter(t.Output, &stderr)
	}

	if err := cmd.Run(); err != nil {
		if msg := tail(stderr.String()); msg != "" {
			return errors.Errorf("fatsorting %s: %w: %s", device, err, msg)
		}
		return errors.Errorf("fatsorting %s: %w", device, err)
	}
	return nil
}

// Unmount unmounts the device so fatsort can safely rewrite it.
func Unmount(ctx context.Context, device string) error {
	zerolog.Ctx(ctx).Debug().Str("device", device).Msg("unmounting")

	cmd := exec.CommandContext(ctx, "umount", device)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := tail(stderr.String()); msg != "" {
			return errors.Errorf("unmounting %s: %w: %s", device, err, msg)
		}
		return errors.Errorf("unmounting %s: %w", device, err)
	}
	return nil
}

// tail returns the last non-empty line of command output.
func tail(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
