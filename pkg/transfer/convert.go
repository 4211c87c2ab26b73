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
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/transfat/transfat/pkg/config"
	"github.com/transfat/transfat/pkg/convert"
	"github.com/transfat/transfat/pkg/userlog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 🧺 TempSet owns the temporary files produced by conversion. Every
// member is deleted exactly once by DeleteTempFiles, which also removes
// the private directory holding them.
type TempSet struct {
	mu    sync.Mutex
	dir   string
	paths []string
}

func (t *TempSet) add(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paths = append(t.paths, path)
}

// Paths returns a copy of the recorded temp file paths.
func (t *TempSet) Paths() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.paths...)
}

// Len returns the number of recorded temp files.
func (t *TempSet) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.paths)
}

// Dir returns the private directory holding the temp files, "" when no
// conversion ran.
func (t *TempSet) Dir() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dir
}

// drain empties the set and hands its contents to the caller, making
// cleanup idempotent.
func (t *TempSet) drain() ([]string, string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	paths, dir := t.paths, t.dir
	t.paths, t.dir = nil, ""
	return paths, dir
}

// 🎵 ConvertAudio transcodes every entry matched by a conversion rule
// into a temp file, then rewrites the entry so the copy stage ships the
// converted bytes to the original destination under the target extension.
// Files already in the target format are left alone. A failed conversion
// leaves its entry untouched so the original ships unconverted, recorded
// as a warning, unless abort_on_error is set, in which case the whole
// stage fails. Conversions run on a bounded worker pool; each worker
// writes only its own plan index. The returned TempSet is non-nil even
// on error so cleanup always has the full picture.
func (r *Runner) ConvertAudio(ctx context.Context, plan *Plan) (*TempSet, error) {
	temps := &TempSet{}
	if len(r.cfg.Convert.Rules) == 0 {
		return temps, nil
	}

	type job struct {
		index int
		rule  config.ConversionRule
	}

	var jobs []job
	for i, entry := range plan.Entries {
		rule, ok := r.ruleFor(entry.Source)
		if !ok {
			continue
		}
		if r.cfg.Convert.Prompt && !r.cfg.NonInteractive {
			question := fmt.Sprintf("Convert %s to %s?", filepath.Base(entry.Source), rule.To)
			proceed, err := r.ask.Confirm(ctx, question, true)
			if err != nil {
				return temps, errors.Errorf("confirming conversion of %s: %w", entry.Source, err)
			}
			if !proceed {
				r.ulog.FileOp(userlog.FileOperation{
					Path:   entry.Source,
					Action: userlog.ActionSkipped,
					Detail: "conversion declined",
				})
				continue
			}
		}
		jobs = append(jobs, job{index: i, rule: rule})
	}
	if len(jobs) == 0 {
		return temps, nil
	}

	dir, err := os.MkdirTemp("", "transfat-")
	if err != nil {
		return temps, errors.Errorf("%w: creating temp directory: %w", ErrConversion, err)
	}
	temps.dir = dir

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Convert.Jobs)

	for _, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			entry := plan.Entries[j.index]
			output := filepath.Join(dir, tempName(entry.Source, j.rule.To))

			err := r.conv.Convert(gctx, convert.Request{
				Input:     entry.Source,
				Output:    output,
				Format:    j.rule.To,
				ExtraArgs: j.rule.Args,
			})
			if err != nil {
				// The converter contract removes partial output; cover
				// implementations that do not.
				_ = os.Remove(output)
				if r.cfg.Convert.AbortOnError {
					return errors.Errorf("%w: %s: %w", ErrConversion, entry.Source, err)
				}
				// The entry stays as is, so the original file ships
				// unconverted.
				r.warnf("converting %s: %v; copying the original instead", entry.Source, err)
				return nil
			}

			temps.add(output)
			plan.Entries[j.index] = Entry{
				Source:   output,
				DestDir:  entry.DestDir,
				DestFile: replaceExt(entry.DestFile, j.rule.To),
			}
			r.report.addConverted()
			r.ulog.FileOp(userlog.FileOperation{
				Path:   entry.Source,
				Action: userlog.ActionConverted,
				Detail: j.rule.From + " -> " + j.rule.To,
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return temps, err
	}

	return temps, nil
}

// ruleFor returns the first conversion rule matching the file's
// extension. A file already carrying the rule's target extension needs no
// conversion.
func (r *Runner) ruleFor(source string) (config.ConversionRule, bool) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(source)), ".")
	if ext == "" {
		return config.ConversionRule{}, false
	}
	for _, rule := range r.cfg.Convert.Rules {
		if rule.From == ext && rule.To != ext {
			return rule, true
		}
	}
	return config.ConversionRule{}, false
}

// tempName builds a collision-free name for a converted file, keeping the
// original base name for debuggability.
func tempName(source, targetExt string) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf("%s-%d.%s", base, time.Now().UnixNano(), targetExt)
	}
	return fmt.Sprintf("%s-%s.%s", base, id, targetExt)
}

// replaceExt swaps the extension of path for ext (without dot).
func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + "." + ext
}
