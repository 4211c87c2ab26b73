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
	"os"

	"github.com/transfat/transfat/pkg/config"
	"github.com/transfat/transfat/pkg/userlog"
	"gitlab.com/tozd/go/errors"
)

// 🧹 DeleteTempFiles removes every temp file conversion produced, plus
// the private directory holding them. It runs even when earlier stages
// failed and never returns an error; a temp file that is already gone is
// not a problem. The set is drained, so calling it twice is harmless.
func (r *Runner) DeleteTempFiles(ctx context.Context, temps *TempSet) {
	if temps == nil {
		return
	}
	paths, dir := temps.drain()
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			r.warnf("removing temp file %s: %v", path, err)
		}
	}
	if dir != "" {
		if err := os.RemoveAll(dir); err != nil {
			r.warnf("removing temp directory %s: %v", dir, err)
		}
	}
	if len(paths) > 0 {
		r.ulog.Statusf("removed %d temporary files", len(paths))
	}
}

// 🗑️ DeleteSources removes the original source paths according to the
// deletion policy. Prompting happens per top-level source path; the
// always policy deletes without looking at how the copy went.
func (r *Runner) DeleteSources(ctx context.Context) error {
	policy := r.cfg.DeleteSources.Resolve(r.cfg.NonInteractive)
	if policy == config.DeleteNever {
		return nil
	}

	for _, source := range r.sources {
		if err := ctx.Err(); err != nil {
			return err
		}

		if policy == config.DeletePrompt {
			question := fmt.Sprintf("Delete source %s?", source)
			proceed, err := r.ask.Confirm(ctx, question, false)
			if err != nil {
				return errors.Errorf("confirming deletion of %s: %w", source, err)
			}
			if !proceed {
				r.ulog.FileOp(userlog.FileOperation{
					Path:   source,
					Action: userlog.ActionSkipped,
					Detail: "kept",
				})
				continue
			}
		}

		// Cleanup errors are warnings only; the transfer itself has
		// already succeeded.
		if err := os.RemoveAll(source); err != nil {
			r.warnf("deleting source %s: %v", source, err)
			continue
		}
		r.report.addDeletedSource()
		r.ulog.FileOp(userlog.FileOperation{
			Path:   source,
			Action: userlog.ActionDeleted,
		})
	}
	return nil
}
