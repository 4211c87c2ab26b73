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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/transfat/transfat/pkg/config"
	"gitlab.com/tozd/go/errors"
)

func TestDeleteTempFiles(t *testing.T) {
	ctx := testContext(t)
	r := newTestRunner(t, config.Default(), []string{"unused"}, t.TempDir(), nil, nil)

	dir, err := os.MkdirTemp("", "transfat-")
	require.NoError(t, err)
	kept := filepath.Join(dir, "a.mp3")
	writeFile(t, kept, "x")
	missing := filepath.Join(dir, "gone.mp3")

	temps := &TempSet{dir: dir, paths: []string{kept, missing}}
	r.DeleteTempFiles(ctx, temps)

	assert.NoFileExists(t, kept)
	assert.NoDirExists(t, dir)
	// an already-missing temp file is not worth a warning
	assert.Empty(t, r.report.Warnings)

	// drained set makes repeated cleanup a no-op
	r.DeleteTempFiles(ctx, temps)
	r.DeleteTempFiles(ctx, nil)
	assert.Empty(t, r.report.Warnings)
}

func TestDeleteSourcesPolicies(t *testing.T) {
	ctx := testContext(t)

	tests := []struct {
		name           string
		policy         config.DeletionPolicy
		nonInteractive bool
		answers        []bool
		wantFileGone   bool
		wantDirGone    bool
		wantAsked      int
	}{
		{
			name:   "never_keeps_everything",
			policy: config.DeleteNever,
		},
		{
			name:         "always_deletes_without_asking",
			policy:       config.DeleteAlways,
			wantFileGone: true,
			wantDirGone:  true,
		},
		{
			name:         "prompt_asks_per_source",
			policy:       config.DeletePrompt,
			answers:      []bool{true, false},
			wantFileGone: true,
			wantDirGone:  false,
			wantAsked:    2,
		},
		{
			name:           "prompt_non_interactive_keeps",
			policy:         config.DeletePrompt,
			nonInteractive: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := t.TempDir()
			file := filepath.Join(src, "single.mp3")
			writeFile(t, file, "audio")
			dir := filepath.Join(src, "album")
			writeFile(t, filepath.Join(dir, "track.mp3"), "audio")

			cfg := config.Default()
			cfg.DeleteSources = tt.policy
			cfg.NonInteractive = tt.nonInteractive

			ask := &scriptedPrompter{t: t, answers: tt.answers}
			r := newTestRunner(t, cfg, []string{file, dir}, t.TempDir(), nil, ask)

			require.NoError(t, r.DeleteSources(ctx))

			assert.Equal(t, tt.wantFileGone, !fileExists(file))
			assert.Equal(t, tt.wantDirGone, !fileExists(dir))
			assert.Len(t, ask.asked, tt.wantAsked)

			wantDeleted := 0
			if tt.wantFileGone {
				wantDeleted++
			}
			if tt.wantDirGone {
				wantDeleted++
			}
			assert.Equal(t, wantDeleted, r.report.DeletedSources)
		})
	}
}

func TestDeleteSourcesAlwaysIgnoresCopyFailures(t *testing.T) {
	ctx := testContext(t)
	src := t.TempDir()
	file := filepath.Join(src, "a.mp3")
	writeFile(t, file, "audio")

	cfg := config.Default()
	cfg.DeleteSources = config.DeleteAlways

	r := newTestRunner(t, cfg, []string{file}, t.TempDir(), nil, forbidPrompts(t))
	r.report.addFailure("copy", file, errors.Errorf("%w: simulated", ErrCopy))

	require.NoError(t, r.DeleteSources(ctx))

	assert.NoFileExists(t, file)
	assert.Equal(t, 1, r.report.DeletedSources)
}

func fileExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
