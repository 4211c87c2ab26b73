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
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/transfat/transfat/pkg/config"
	"gitlab.com/tozd/go/errors"
)

// 🗺️ Entry is one file of the transfer plan. Conversion may rewrite
// Source to a temp file and DestFile to carry the target extension;
// DestDir never changes after planning.
type Entry struct {
	Source   string
	DestDir  string
	DestFile string
}

// 🗺️ Plan is the ordered set of entries plus the destination directories
// they require, deduplicated in order of first appearance.
type Plan struct {
	Entries []Entry
	Dirs    []string
}

// planBuilder collects entries and directories during the walk.
type planBuilder struct {
	plan     Plan
	dirsSeen map[string]bool
}

func (b *planBuilder) addFile(source, destFile string) {
	destDir := filepath.Dir(destFile)
	b.plan.Entries = append(b.plan.Entries, Entry{
		Source:   source,
		DestDir:  destDir,
		DestFile: destFile,
	})
	b.addDir(destDir)
}

func (b *planBuilder) addDir(dir string) {
	if b.dirsSeen[dir] {
		return
	}
	b.dirsSeen[dir] = true
	b.plan.Dirs = append(b.plan.Dirs, dir)
}

// 🗺️ ComputePlan maps every source onto the destination root. A file
// source lands directly under the root; a directory source is walked in
// lexicographic order and lands under root/basename(source). The plan is
// deterministic for identical inputs. Fails if a source does not exist or
// the destination root is not a directory; nothing is written.
func (r *Runner) ComputePlan(ctx context.Context) (*Plan, error) {
	destRoot := filepath.Clean(r.destRoot)

	info, err := os.Stat(destRoot)
	if err != nil {
		return nil, errors.Errorf("%w: destination root %s: %w", ErrPathResolution, destRoot, err)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("%w: destination root %s is not a directory", ErrPathResolution, destRoot)
	}

	b := &planBuilder{dirsSeen: map[string]bool{}}

	for _, source := range r.sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		source = filepath.Clean(source)

		info, err := os.Lstat(source)
		if err != nil {
			return nil, errors.Errorf("%w: source %s: %w", ErrPathResolution, source, err)
		}

		switch {
		case info.Mode()&fs.ModeSymlink != 0:
			if !r.resolveSymlink(source) {
				continue
			}
			b.addFile(source, filepath.Join(destRoot, filepath.Base(source)))

		case info.IsDir():
			if err := r.walkSourceDir(ctx, b, source, destRoot); err != nil {
				return nil, err
			}

		case info.Mode().IsRegular():
			b.addFile(source, filepath.Join(destRoot, filepath.Base(source)))

		default:
			r.warnf("skipping %s: not a regular file", source)
		}
	}

	zerolog.Ctx(ctx).Debug().
		Int("entries", len(b.plan.Entries)).
		Int("dirs", len(b.plan.Dirs)).
		Str("dest_root", destRoot).
		Msg("computed transfer plan")

	return &b.plan, nil
}

// walkSourceDir adds every regular file under sourceDir to the plan,
// mirroring the tree below destRoot/basename(sourceDir).
func (r *Runner) walkSourceDir(ctx context.Context, b *planBuilder, sourceDir, destRoot string) error {
	base := filepath.Base(sourceDir)

	return filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Errorf("%w: walking %s: %w", ErrPathResolution, path, err)
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if d.IsDir() {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			if !r.resolveSymlink(path) {
				return nil
			}
		} else if !d.Type().IsRegular() {
			r.warnf("skipping %s: not a regular file", path)
			return nil
		}

		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return errors.Errorf("%w: relativizing %s: %w", ErrPathResolution, path, err)
		}

		b.addFile(path, filepath.Join(destRoot, base, rel))
		return nil
	})
}

// resolveSymlink decides whether a symlink participates in the transfer.
// Links are skipped unless the config says to copy them, and links to
// directories are always skipped to keep the walk cycle-free.
func (r *Runner) resolveSymlink(path string) bool {
	if r.cfg.Symlinks != config.SymlinkCopy {
		r.warnf("skipping symlink %s", path)
		return false
	}

	info, err := os.Stat(path)
	if err != nil {
		r.warnf("skipping broken symlink %s: %v", path, err)
		return false
	}
	if info.IsDir() {
		r.warnf("skipping symlink to directory %s", path)
		return false
	}
	return true
}
