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

package transfer

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/transfat/transfat/pkg/config"
	"github.com/transfat/transfat/pkg/userlog"
	"gitlab.com/tozd/go/errors"
)

// 📦 CopyFiles ships every planned entry to its destination, honoring the
// overwrite policy for files that already exist. A failed copy is
// recorded and the run moves on; only prompter errors and cancellation
// stop the stage.
func (r *Runner) CopyFiles(ctx context.Context, plan *Plan) error {
	policy := r.cfg.Overwrite.Resolve(r.cfg.NonInteractive)

	for _, entry := range plan.Entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		if _, err := os.Lstat(entry.DestFile); err == nil {
			switch policy {
			case config.OverwriteSkip:
				r.report.addSkipped()
				r.ulog.FileOp(userlog.FileOperation{
					Path:   entry.DestFile,
					Action: userlog.ActionSkipped,
					Detail: "exists",
				})
				continue
			case config.OverwritePrompt:
				question := fmt.Sprintf("Overwrite %s?", entry.DestFile)
				proceed, perr := r.ask.Confirm(ctx, question, false)
				if perr != nil {
					return errors.Errorf("confirming overwrite of %s: %w", entry.DestFile, perr)
				}
				if !proceed {
					r.report.addSkipped()
					r.ulog.FileOp(userlog.FileOperation{
						Path:   entry.DestFile,
						Action: userlog.ActionSkipped,
						Detail: "kept existing",
					})
					continue
				}
			}
		}

		if err := copyFile(entry.Source, entry.DestFile); err != nil {
			r.fail("copy", entry.Source, errors.Errorf("%w: %w", ErrCopy, err))
			continue
		}
		r.report.addCopied()
		r.ulog.FileOp(userlog.FileOperation{
			Path:   entry.DestFile,
			Action: userlog.ActionCopied,
		})
	}
	return nil
}

// copyFile writes source to dest through a temporary sibling so an
// interrupted copy never leaves a half-written file under the final name.
func copyFile(source, dest string) error {
	in, err := os.Open(source)
	if err != nil {
		return errors.Errorf("opening %s: %w", source, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return errors.Errorf("inspecting %s: %w", source, err)
	}

	tmp := dest + ".part"
	out, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Errorf("creating %s: %w", tmp, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return errors.Errorf("writing %s: %w", tmp, err)
	}
	// Flush to the device before rename; unmount follows soon after.
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(tmp)
		return errors.Errorf("syncing %s: %w", tmp, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return errors.Errorf("closing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return errors.Errorf("renaming %s: %w", tmp, err)
	}

	// FAT has no permission bits worth preserving; timestamps matter for
	// players that sort by them.
	_ = os.Chmod(dest, info.Mode().Perm())
	_ = os.Chtimes(dest, time.Now(), info.ModTime())

	return nil
}
