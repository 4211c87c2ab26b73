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
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/transfat/transfat/pkg/config"
)

func entryFor(src, destRoot, name string) Entry {
	return Entry{
		Source:   filepath.Join(src, name),
		DestDir:  destRoot,
		DestFile: filepath.Join(destRoot, name),
	}
}

func TestCopyFilesCopiesBytes(t *testing.T) {
	ctx := testContext(t)
	src := t.TempDir()
	dest := t.TempDir()

	writeFile(t, filepath.Join(src, "a.mp3"), "audio bytes")

	cfg := config.Default()
	cfg.Overwrite = config.OverwriteSkip

	r := newTestRunner(t, cfg, []string{"unused"}, dest, nil, nil)
	plan := &Plan{Entries: []Entry{entryFor(src, dest, "a.mp3")}}

	require.NoError(t, r.CopyFiles(ctx, plan))

	assert.Equal(t, "audio bytes", readFile(t, filepath.Join(dest, "a.mp3")))
	assert.Equal(t, 1, r.report.Copied)

	// no staging leftovers
	leftovers, err := filepath.Glob(filepath.Join(dest, "*.part"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestCopyFilesOverwrite(t *testing.T) {
	ctx := testContext(t)

	tests := []struct {
		name           string
		policy         config.OverwritePolicy
		nonInteractive bool
		answers        []bool
		wantContent    string
		wantCopied     int
		wantSkipped    int
		wantAsked      int
	}{
		{name: "skip_keeps_existing", policy: config.OverwriteSkip, wantContent: "old", wantSkipped: 1},
		{name: "overwrite_replaces", policy: config.OverwriteReplace, wantContent: "new", wantCopied: 1},
		{name: "prompt_yes_replaces", policy: config.OverwritePrompt, answers: []bool{true}, wantContent: "new", wantCopied: 1, wantAsked: 1},
		{name: "prompt_no_keeps", policy: config.OverwritePrompt, answers: []bool{false}, wantContent: "old", wantSkipped: 1, wantAsked: 1},
		{name: "prompt_non_interactive_skips", policy: config.OverwritePrompt, nonInteractive: true, wantContent: "old", wantSkipped: 1, wantAsked: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := t.TempDir()
			dest := t.TempDir()
			writeFile(t, filepath.Join(src, "a.txt"), "new")
			writeFile(t, filepath.Join(dest, "a.txt"), "old")

			cfg := config.Default()
			cfg.Overwrite = tt.policy
			cfg.NonInteractive = tt.nonInteractive

			ask := &scriptedPrompter{t: t, answers: tt.answers}
			r := newTestRunner(t, cfg, []string{"unused"}, dest, nil, ask)
			plan := &Plan{Entries: []Entry{entryFor(src, dest, "a.txt")}}

			require.NoError(t, r.CopyFiles(ctx, plan))

			assert.Equal(t, tt.wantContent, readFile(t, filepath.Join(dest, "a.txt")))
			assert.Equal(t, tt.wantCopied, r.report.Copied)
			assert.Equal(t, tt.wantSkipped, r.report.Skipped)
			assert.Len(t, ask.asked, tt.wantAsked)
		})
	}
}

func TestCopyFilesFreshDestinationNeverAsks(t *testing.T) {
	ctx := testContext(t)
	src := t.TempDir()
	dest := t.TempDir()

	writeFile(t, filepath.Join(src, "a.txt"), "new")

	cfg := config.Default()
	cfg.Overwrite = config.OverwritePrompt

	r := newTestRunner(t, cfg, []string{"unused"}, dest, nil, forbidPrompts(t))
	plan := &Plan{Entries: []Entry{entryFor(src, dest, "a.txt")}}

	require.NoError(t, r.CopyFiles(ctx, plan))
	assert.Equal(t, "new", readFile(t, filepath.Join(dest, "a.txt")))
}

func TestCopyFilesRecordsFailures(t *testing.T) {
	ctx := testContext(t)
	src := t.TempDir()
	dest := t.TempDir()

	writeFile(t, filepath.Join(src, "ok.txt"), "ok")

	cfg := config.Default()
	cfg.Overwrite = config.OverwriteSkip

	r := newTestRunner(t, cfg, []string{"unused"}, dest, nil, nil)
	plan := &Plan{Entries: []Entry{
		{
			Source:   filepath.Join(src, "missing.txt"),
			DestDir:  dest,
			DestFile: filepath.Join(dest, "missing.txt"),
		},
		{
			Source:   filepath.Join(src, "ok.txt"),
			DestDir:  filepath.Join(dest, "nodir"),
			DestFile: filepath.Join(dest, "nodir", "ok.txt"),
		},
		entryFor(src, dest, "ok.txt"),
	}}

	require.NoError(t, r.CopyFiles(ctx, plan))

	require.Len(t, r.report.Failures, 2)
	for _, f := range r.report.Failures {
		assert.Equal(t, "copy", f.Stage)
		assert.ErrorIs(t, f.Err, ErrCopy)
	}

	// the healthy entry still lands
	assert.Equal(t, "ok", readFile(t, filepath.Join(dest, "ok.txt")))
	assert.Equal(t, 1, r.report.Copied)

	leftovers, err := filepath.Glob(filepath.Join(dest, "*", "*.part"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestCopyFilesPreservesModTime(t *testing.T) {
	ctx := testContext(t)
	src := t.TempDir()
	dest := t.TempDir()

	srcPath := filepath.Join(src, "a.mp3")
	writeFile(t, srcPath, "audio")

	cfg := config.Default()
	cfg.Overwrite = config.OverwriteSkip

	r := newTestRunner(t, cfg, []string{"unused"}, dest, nil, nil)
	plan := &Plan{Entries: []Entry{entryFor(src, dest, "a.mp3")}}

	require.NoError(t, r.CopyFiles(ctx, plan))

	srcInfo := statFile(t, srcPath)
	destInfo := statFile(t, filepath.Join(dest, "a.mp3"))
	assert.WithinDuration(t, srcInfo.ModTime(), destInfo.ModTime(), time.Second)
}
