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
	"fmt"
	"regexp"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// 🗑️ DeletionPolicy controls whether source paths are removed after a
// successful transfer. Stored in config files as an integer.
type DeletionPolicy int

const (
	DeleteNever  DeletionPolicy = 0
	DeletePrompt DeletionPolicy = 1
	DeleteAlways DeletionPolicy = 2
)

// 📝 String returns the policy name used in logs and summaries
func (p DeletionPolicy) String() string {
	switch p {
	case DeleteNever:
		return "never"
	case DeletePrompt:
		return "prompt"
	case DeleteAlways:
		return "always"
	default:
		return fmt.Sprintf("invalid(%d)", int(p))
	}
}

// 🎯 Resolve applies the non-interactive override: a prompting policy
// downgrades to never (don't delete, don't ask) when no user is present.
// Explicit never/always are returned unchanged.
func (p DeletionPolicy) Resolve(nonInteractive bool) DeletionPolicy {
	if p == DeletePrompt && nonInteractive {
		return DeleteNever
	}
	return p
}

// ♻️ OverwritePolicy controls what happens when a destination file
// already exists.
type OverwritePolicy string

const (
	OverwriteSkip    OverwritePolicy = "skip"
	OverwriteReplace OverwritePolicy = "overwrite"
	OverwritePrompt  OverwritePolicy = "prompt"
)

// 🎯 Resolve applies the non-interactive override: a prompting policy
// downgrades to skip, the conservative default.
func (p OverwritePolicy) Resolve(nonInteractive bool) OverwritePolicy {
	if p == OverwritePrompt && nonInteractive {
		return OverwriteSkip
	}
	return p
}

// 🔗 SymlinkMode controls how symbolic links found among the sources are
// handled. Directory symlinks are always skipped regardless of mode.
type SymlinkMode string

const (
	SymlinkSkip SymlinkMode = "skip"
	SymlinkCopy SymlinkMode = "copy"
)

// 🔍 FilterRules describes which files are dropped from a transfer.
// Patterns are matched case-insensitively against destination basenames.
// A bare extension like "cue" is shorthand for the glob "*.cue".
type FilterRules struct {
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty" hcl:"exclude,optional"` // always dropped
	Ask     []string `json:"ask,omitempty" yaml:"ask,omitempty" hcl:"ask,optional"`             // confirmed per file; dropped when non-interactive
}

// 🎵 ConversionRule maps one audio extension to another, with optional
// extra arguments for the external converter.
type ConversionRule struct {
	From string   `json:"from" yaml:"from" hcl:"from"`
	To   string   `json:"to" yaml:"to" hcl:"to"`
	Args []string `json:"args,omitempty" yaml:"args,omitempty" hcl:"args,optional"`
}

// 🔧 ConvertSettings governs the audio conversion stage.
type ConvertSettings struct {
	Rules        []ConversionRule `json:"rules,omitempty" yaml:"rules,omitempty" hcl:"rule,block"`
	Path         string           `json:"path,omitempty" yaml:"path,omitempty" hcl:"path,optional"`                               // converter binary, defaults to ffmpeg
	Prompt       bool             `json:"prompt,omitempty" yaml:"prompt,omitempty" hcl:"prompt,optional"`                         // confirm each conversion
	AbortOnError bool             `json:"abort_on_error,omitempty" yaml:"abort_on_error,omitempty" hcl:"abort_on_error,optional"` // failed conversion aborts the run instead of copying the original
	Jobs         int              `json:"jobs,omitempty" yaml:"jobs,omitempty" hcl:"jobs,optional"`                               // parallel conversions, defaults to NumCPU
}

// 📁 DirSettings governs destination directory creation.
type DirSettings struct {
	Prompt bool `json:"prompt,omitempty" yaml:"prompt,omitempty" hcl:"prompt,optional"` // confirm each missing directory
}

// 🏷️ RenameRule rewrites top-level destination directory names after the
// copy stage. Match is a regular expression, Replace may reference capture
// groups ($1, ${name}).
type RenameRule struct {
	Match   string `json:"match" yaml:"match" hcl:"match"`
	Replace string `json:"replace" yaml:"replace" hcl:"replace"`

	re *regexp.Regexp
}

// 🔄 Apply returns the renamed form of name, reporting whether the rule
// matched. Rules must have been compiled by Config.Validate first.
func (r *RenameRule) Apply(name string) (string, bool) {
	if r.re == nil || !r.re.MatchString(name) {
		return name, false
	}
	return r.re.ReplaceAllString(name, r.Replace), true
}

// 🧹 FatsortSettings locates and parameterizes the external fatsort tool.
type FatsortSettings struct {
	Path string   `json:"path,omitempty" yaml:"path,omitempty" hcl:"path,optional"` // binary name or path, defaults to "fatsort"
	Args []string `json:"args,omitempty" yaml:"args,omitempty" hcl:"args,optional"` // extra arguments, defaults to natural ordering
}

// 📚 Config is the complete transfat configuration. It is constructed once
// at startup from a config file plus command-line flags and passed by value
// through every stage; nothing mutates it after Validate.
type Config struct {
	Filter        *FilterRules     `json:"filter,omitempty" yaml:"filter,omitempty" hcl:"filter,block"`
	Convert       *ConvertSettings `json:"convert,omitempty" yaml:"convert,omitempty" hcl:"convert,block"`
	Directories   *DirSettings     `json:"directories,omitempty" yaml:"directories,omitempty" hcl:"directories,block"`
	Overwrite     OverwritePolicy  `json:"overwrite,omitempty" yaml:"overwrite,omitempty" hcl:"overwrite,optional"`
	DeleteSources DeletionPolicy   `json:"delete_sources,omitempty" yaml:"delete_sources,omitempty" hcl:"delete_sources,optional"`
	Symlinks      SymlinkMode      `json:"symlinks,omitempty" yaml:"symlinks,omitempty" hcl:"symlinks,optional"`
	Renames       []RenameRule     `json:"renames,omitempty" yaml:"renames,omitempty" hcl:"rename,block"`
	Fatsort       *FatsortSettings `json:"fatsort,omitempty" yaml:"fatsort,omitempty" hcl:"fatsort,block"`

	// Runtime flags, merged in by the command layer. Never read from files.
	NonInteractive bool `json:"-" yaml:"-"`
	Verbose        bool `json:"-" yaml:"-"`
	Quiet          bool `json:"-" yaml:"-"`

	location string
}

// 🎯 Default returns the configuration used when no config file is present:
// copy everything, prompt on overwrite, keep sources, skip symlinks.
func Default() *Config {
	cfg := &Config{}
	_ = cfg.Validate() // cannot fail on an empty config
	return cfg
}

// 📍 Location returns the path the config was loaded from, or "" for the
// built-in defaults.
func (cfg *Config) Location() string {
	return cfg.location
}

// 🔍 Validate checks the configuration and normalizes it in place: nil
// sections become empty ones, filter shorthands become globs, extensions
// are lowercased, rename patterns are compiled, and defaults are filled in.
func (cfg *Config) Validate() error {
	if cfg.Filter == nil {
		cfg.Filter = &FilterRules{}
	}
	if cfg.Convert == nil {
		cfg.Convert = &ConvertSettings{}
	}
	if cfg.Directories == nil {
		cfg.Directories = &DirSettings{}
	}
	if cfg.Fatsort == nil {
		cfg.Fatsort = &FatsortSettings{}
	}

	for i, pat := range cfg.Filter.Exclude {
		norm, err := normalizePattern(pat)
		if err != nil {
			return errors.Errorf("filter.exclude[%d]: %w", i, err)
		}
		cfg.Filter.Exclude[i] = norm
	}
	for i, pat := range cfg.Filter.Ask {
		norm, err := normalizePattern(pat)
		if err != nil {
			return errors.Errorf("filter.ask[%d]: %w", i, err)
		}
		cfg.Filter.Ask[i] = norm
	}

	for i := range cfg.Convert.Rules {
		rule := &cfg.Convert.Rules[i]
		rule.From = normalizeExt(rule.From)
		rule.To = normalizeExt(rule.To)
		if rule.From == "" || rule.To == "" {
			return errors.Errorf("convert.rules[%d]: from and to are required", i)
		}
		if rule.From == rule.To {
			return errors.Errorf("convert.rules[%d]: %q converts to itself", i, rule.From)
		}
	}
	if cfg.Convert.Jobs < 0 {
		return errors.Errorf("convert.jobs must not be negative, got %d", cfg.Convert.Jobs)
	}
	if cfg.Convert.Jobs == 0 {
		cfg.Convert.Jobs = runtime.NumCPU()
	}
	if cfg.Convert.Path == "" {
		cfg.Convert.Path = "ffmpeg"
	}

	switch cfg.Overwrite {
	case "":
		cfg.Overwrite = OverwritePrompt
	case OverwriteSkip, OverwriteReplace, OverwritePrompt:
	default:
		return errors.Errorf("overwrite must be one of skip, overwrite, prompt; got %q", cfg.Overwrite)
	}

	if cfg.DeleteSources < DeleteNever || cfg.DeleteSources > DeleteAlways {
		return errors.Errorf("delete_sources must be 0 (never), 1 (prompt) or 2 (always); got %d", int(cfg.DeleteSources))
	}

	switch cfg.Symlinks {
	case "":
		cfg.Symlinks = SymlinkSkip
	case SymlinkSkip, SymlinkCopy:
	default:
		return errors.Errorf("symlinks must be one of skip, copy; got %q", cfg.Symlinks)
	}

	for i := range cfg.Renames {
		rule := &cfg.Renames[i]
		if rule.Match == "" {
			return errors.Errorf("renames[%d]: match is required", i)
		}
		re, err := regexp.Compile(rule.Match)
		if err != nil {
			return errors.Errorf("renames[%d]: compiling %q: %w", i, rule.Match, err)
		}
		rule.re = re
	}

	if cfg.Fatsort.Path == "" {
		cfg.Fatsort.Path = "fatsort"
	}
	if cfg.Fatsort.Args == nil {
		cfg.Fatsort.Args = []string{"-n"}
	}

	return nil
}

// 📝 String returns a one-line summary of the effective policies
func (cfg *Config) String() string {
	return fmt.Sprintf("exclude=%d ask=%d convert=%d overwrite=%s delete_sources=%s symlinks=%s renames=%d",
		len(cfg.Filter.Exclude), len(cfg.Filter.Ask), len(cfg.Convert.Rules),
		cfg.Overwrite, cfg.DeleteSources, cfg.Symlinks, len(cfg.Renames))
}

// normalizeExt lowercases an extension and strips any leading dot, so
// ".FLAC" and "flac" configure the same rule.
func normalizeExt(ext string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
}

// normalizePattern turns a filter entry into a doublestar glob. Bare
// extensions become "*.ext"; anything containing glob metacharacters is
// validated and kept as written.
func normalizePattern(pat string) (string, error) {
	pat = strings.ToLower(strings.TrimSpace(pat))
	if pat == "" {
		return "", errors.New("empty pattern")
	}
	if !strings.ContainsAny(pat, "*?[{") {
		pat = "*." + strings.TrimPrefix(pat, ".")
	}
	if !doublestar.ValidatePattern(pat) {
		return "", errors.Errorf("invalid glob pattern %q", pat)
	}
	return pat, nil
}
