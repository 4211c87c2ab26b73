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

package convert

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	"gitlab.com/tozd/go/errors"
)

const ffmpegCommand = "ffmpeg"

// FFmpeg converts audio by invoking the ffmpeg binary. The zero value
// uses "ffmpeg" from PATH.
type FFmpeg struct {
	Path string
}

// NewFFmpeg returns a converter invoking the given binary, or "ffmpeg"
// from PATH when path is empty.
func NewFFmpeg(path string) *FFmpeg {
	if path == "" {
		path = ffmpegCommand
	}
	return &FFmpeg{Path: path}
}

func (f *FFmpeg) binary() string {
	if f.Path == "" {
		return ffmpegCommand
	}
	return f.Path
}

// Convert runs ffmpeg on req.Input producing req.Output. The output
// extension selects the container; req.ExtraArgs tune the codec. A failed
// or cancelled run removes whatever partial output was written.
func (f *FFmpeg) Convert(ctx context.Context, req Request) error {
	if req.Input == "" || req.Output == "" {
		return errors.New("conversion request needs input and output paths")
	}
	if _, err := os.Stat(req.Input); err != nil {
		return errors.Errorf("input file: %w", err)
	}

	cmd := exec.CommandContext(ctx, f.binary(), buildArgs(req)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// No partial-output guarantee from ffmpeg; discard what it left.
		_ = os.Remove(req.Output)
		if msg := lastLine(stderr.String()); msg != "" {
			return errors.Errorf("%s: %w: %s", f.binary(), err, msg)
		}
		return errors.Errorf("%s: %w", f.binary(), err)
	}

	info, err := os.Stat(req.Output)
	if err != nil {
		return errors.Errorf("converter produced no output: %w", err)
	}
	if info.Size() == 0 {
		_ = os.Remove(req.Output)
		return errors.Errorf("converter produced an empty file at %s", req.Output)
	}

	return nil
}

// buildArgs assembles the ffmpeg invocation for req.
func buildArgs(req Request) []string {
	args := []string{
		"-y", // replace a leftover temp file from an earlier attempt
		"-loglevel", "error",
		"-nostats",
		"-i", req.Input,
	}
	args = append(args, req.ExtraArgs...)
	args = append(args, req.Output)
	return args
}

// lastLine returns the final non-empty line of ffmpeg's stderr, which is
// where it puts the actual reason for failure.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
