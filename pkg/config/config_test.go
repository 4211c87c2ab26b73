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

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		config      string
		wantErr     bool
		errContains string
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name:     "full_config",
			filename: "transfat.yaml",
			config: `
filter:
  exclude:
    - cue
    - "*.log"
  ask:
    - zip
convert:
  rules:
    - from: flac
      to: mp3
      args: ["-q:a", "0"]
  prompt: true
  jobs: 2
directories:
  prompt: true
overwrite: skip
delete_sources: 2
symlinks: copy
renames:
  - match: "^A State of Trance (\\d+)$"
    replace: "ASOT $1"
fatsort:
  path: /usr/local/bin/fatsort
  args: ["-c"]
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"*.cue", "*.log"}, cfg.Filter.Exclude, "exclude patterns should be normalized")
				assert.Equal(t, []string{"*.zip"}, cfg.Filter.Ask, "ask patterns should be normalized")
				require.Len(t, cfg.Convert.Rules, 1, "should have one conversion rule")
				assert.Equal(t, "flac", cfg.Convert.Rules[0].From, "rule source should match")
				assert.Equal(t, "mp3", cfg.Convert.Rules[0].To, "rule target should match")
				assert.Equal(t, []string{"-q:a", "0"}, cfg.Convert.Rules[0].Args, "rule args should match")
				assert.True(t, cfg.Convert.Prompt, "convert prompt should be enabled")
				assert.Equal(t, 2, cfg.Convert.Jobs, "jobs should match")
				assert.True(t, cfg.Directories.Prompt, "directory prompt should be enabled")
				assert.Equal(t, OverwriteSkip, cfg.Overwrite, "overwrite policy should match")
				assert.Equal(t, DeleteAlways, cfg.DeleteSources, "deletion policy should match")
				assert.Equal(t, SymlinkCopy, cfg.Symlinks, "symlink mode should match")
				require.Len(t, cfg.Renames, 1, "should have one rename rule")
				assert.Equal(t, "/usr/local/bin/fatsort", cfg.Fatsort.Path, "fatsort path should match")
				assert.Equal(t, []string{"-c"}, cfg.Fatsort.Args, "fatsort args should match")
			},
		},
		{
			name:     "minimal_config_gets_defaults",
			filename: "transfat.yaml",
			config:   `overwrite: overwrite`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, OverwriteReplace, cfg.Overwrite, "overwrite policy should match")
				assert.Equal(t, DeleteNever, cfg.DeleteSources, "deletion should default to never")
				assert.Equal(t, SymlinkSkip, cfg.Symlinks, "symlinks should default to skip")
				assert.NotNil(t, cfg.Filter, "filter section should be materialized")
				assert.NotNil(t, cfg.Convert, "convert section should be materialized")
				assert.Positive(t, cfg.Convert.Jobs, "jobs should default to a positive value")
				assert.Equal(t, "ffmpeg", cfg.Convert.Path, "converter path should default")
				assert.Equal(t, "fatsort", cfg.Fatsort.Path, "fatsort path should default")
				assert.Equal(t, []string{"-n"}, cfg.Fatsort.Args, "fatsort args should default")
			},
		},
		{
			name:        "unknown_field_rejected",
			filename:    "transfat.yaml",
			config:      `owerwrite: skip`,
			wantErr:     true,
			errContains: "parsing YAML",
		},
		{
			name:        "invalid_overwrite_policy",
			filename:    "transfat.yaml",
			config:      `overwrite: maybe`,
			wantErr:     true,
			errContains: "overwrite must be one of",
		},
		{
			name:        "deletion_policy_out_of_range",
			filename:    "transfat.yaml",
			config:      `delete_sources: 3`,
			wantErr:     true,
			errContains: "delete_sources must be 0",
		},
		{
			name:     "bad_filter_pattern",
			filename: "transfat.yaml",
			config: `
filter:
  exclude: ["[oops"]
`,
			wantErr:     true,
			errContains: "invalid glob pattern",
		},
		{
			name:     "conversion_rule_to_itself",
			filename: "transfat.yaml",
			config: `
convert:
  rules:
    - from: MP3
      to: .mp3
`,
			wantErr:     true,
			errContains: "converts to itself",
		},
		{
			name:     "bad_rename_regexp",
			filename: "transfat.yaml",
			config: `
renames:
  - match: "("
    replace: "x"
`,
			wantErr:     true,
			errContains: "compiling",
		},
		{
			name:        "unsupported_extension",
			filename:    "transfat.ini",
			config:      `[transfat]`,
			wantErr:     true,
			errContains: "unsupported config file extension",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.filename)
			require.NoError(t, os.WriteFile(path, []byte(tt.config), 0644), "writing config file")

			cfg, err := Load(testContext(t), path)
			if tt.wantErr {
				require.Error(t, err, "expected an error")
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains, "error should contain expected message")
				}
				return
			}

			require.NoError(t, err, "unexpected error")
			require.NotNil(t, cfg, "config should not be nil")
			assert.Equal(t, path, cfg.Location(), "location should record the source path")
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoadFormats(t *testing.T) {
	jsonConfig := `{
		"filter": {"exclude": ["wav"]},
		"overwrite": "skip",
		"delete_sources": 1
	}`

	hclConfig := `
filter {
  exclude = ["wav"]
}

overwrite      = "skip"
delete_sources = 1
`

	yamlConfig := `
filter:
  exclude: [wav]
overwrite: skip
delete_sources: 1
`

	tests := []struct {
		name     string
		filename string
		config   string
	}{
		{name: "json", filename: "transfat.json", config: jsonConfig},
		{name: "hcl", filename: "transfat.hcl", config: hclConfig},
		{name: "yaml", filename: "transfat.yml", config: yamlConfig},
		{name: "dotfile_yaml", filename: ".transfat", config: yamlConfig},
		{name: "dotfile_hcl", filename: ".transfat", config: hclConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.filename)
			require.NoError(t, os.WriteFile(path, []byte(tt.config), 0644), "writing config file")

			cfg, err := Load(testContext(t), path)
			require.NoError(t, err, "unexpected error")
			assert.Equal(t, []string{"*.wav"}, cfg.Filter.Exclude, "exclude should be parsed and normalized")
			assert.Equal(t, OverwriteSkip, cfg.Overwrite, "overwrite should be parsed")
			assert.Equal(t, DeletePrompt, cfg.DeleteSources, "deletion policy should be parsed")
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(testContext(t), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err, "missing file should error")
	assert.Contains(t, err.Error(), "reading config file", "error should mention the read")
}

func TestDeletionPolicyResolve(t *testing.T) {
	tests := []struct {
		name           string
		policy         DeletionPolicy
		nonInteractive bool
		want           DeletionPolicy
	}{
		{name: "never_stays_never", policy: DeleteNever, nonInteractive: true, want: DeleteNever},
		{name: "always_survives_non_interactive", policy: DeleteAlways, nonInteractive: true, want: DeleteAlways},
		{name: "prompt_interactive_stays_prompt", policy: DeletePrompt, nonInteractive: false, want: DeletePrompt},
		{name: "prompt_non_interactive_downgrades", policy: DeletePrompt, nonInteractive: true, want: DeleteNever},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.Resolve(tt.nonInteractive))
		})
	}
}

func TestOverwritePolicyResolve(t *testing.T) {
	assert.Equal(t, OverwriteSkip, OverwritePrompt.Resolve(true), "prompt should downgrade to skip")
	assert.Equal(t, OverwritePrompt, OverwritePrompt.Resolve(false), "prompt should survive interactive mode")
	assert.Equal(t, OverwriteReplace, OverwriteReplace.Resolve(true), "explicit overwrite should survive")
	assert.Equal(t, OverwriteSkip, OverwriteSkip.Resolve(false), "explicit skip should survive")
}

func TestRenameRuleApply(t *testing.T) {
	cfg := &Config{
		Renames: []RenameRule{
			{Match: `^A State of Trance (\d+)$`, Replace: "ASOT $1"},
		},
	}
	require.NoError(t, cfg.Validate(), "validating config")

	got, ok := cfg.Renames[0].Apply("A State of Trance 750")
	assert.True(t, ok, "rule should match")
	assert.Equal(t, "ASOT 750", got, "capture group should be expanded")

	got, ok = cfg.Renames[0].Apply("Group Therapy 100")
	assert.False(t, ok, "rule should not match")
	assert.Equal(t, "Group Therapy 100", got, "name should be unchanged")
}

func TestNormalizePattern(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "bare_extension", in: "cue", want: "*.cue"},
		{name: "dotted_extension", in: ".WAV", want: "*.wav"},
		{name: "glob_kept", in: "*.Log", want: "*.log"},
		{name: "brace_glob_kept", in: "*.{jpg,png}", want: "*.{jpg,png}"},
		{name: "empty", in: "  ", wantErr: true},
		{name: "broken_glob", in: "[oops", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizePattern(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
