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
	"path/filepath"

	"github.com/transfat/transfat/pkg/config"
	"github.com/transfat/transfat/pkg/convert"
	"github.com/transfat/transfat/pkg/prompt"
	"github.com/transfat/transfat/pkg/userlog"
	"gitlab.com/tozd/go/errors"
)

// ⚙️ Options configures a Runner. All fields are required.
type Options struct {
	Config    *config.Config
	Sources   []string
	DestRoot  string
	Converter convert.Converter
	Prompter  prompt.Prompter
	UserLog   *userlog.Logger
}

// 🚂 Runner drives one transfer from sources to a destination root.
type Runner struct {
	cfg      *config.Config
	sources  []string
	destRoot string
	conv     convert.Converter
	ask      prompt.Prompter
	ulog     *userlog.Logger
	report   *Report
}

// New validates opts and builds a Runner.
func New(opts Options) (*Runner, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if len(opts.Sources) == 0 {
		return nil, errors.New("at least one source is required")
	}
	if opts.DestRoot == "" {
		return nil, errors.New("destination root is required")
	}
	if opts.Converter == nil {
		return nil, errors.New("converter is required")
	}
	if opts.Prompter == nil {
		return nil, errors.New("prompter is required")
	}
	if opts.UserLog == nil {
		return nil, errors.New("user logger is required")
	}

	return &Runner{
		cfg:      opts.Config,
		sources:  append([]string(nil), opts.Sources...),
		destRoot: filepath.Clean(opts.DestRoot),
		conv:     opts.Converter,
		ask:      opts.Prompter,
		ulog:     opts.UserLog,
		report:   &Report{},
	}, nil
}

// Report returns the accumulated outcome. Valid after Run returns,
// including on error.
func (r *Runner) Report() *Report {
	return r.report
}

// 🏃 Run executes the full pipeline: plan, filter, convert, create
// directories, copy, rename, clean up temps, delete sources. Temp files
// are deleted no matter which stage fails. Per-file problems land in the
// report; the returned error is reserved for conditions that stop the
// run.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	plan, err := r.ComputePlan(ctx)
	if err != nil {
		return r.report, err
	}
	r.report.setPlanned(len(plan.Entries))
	r.ulog.Statusf("planned %d files into %d directories", len(plan.Entries), len(plan.Dirs))

	if err := r.FilterExtensions(ctx, plan); err != nil {
		return r.report, err
	}

	temps, err := r.ConvertAudio(ctx, plan)
	defer r.DeleteTempFiles(ctx, temps)
	if err != nil {
		return r.report, err
	}

	if err := r.CreateDirectories(ctx, plan); err != nil {
		return r.report, err
	}
	if err := r.CopyFiles(ctx, plan); err != nil {
		return r.report, err
	}
	if err := r.RenameDirs(ctx, plan); err != nil {
		return r.report, err
	}

	r.DeleteTempFiles(ctx, temps)

	if err := r.DeleteSources(ctx); err != nil {
		return r.report, err
	}

	return r.report, nil
}

// warnf records a non-fatal oddity in the report and tells the user.
func (r *Runner) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.report.addWarning(msg)
	r.ulog.Warning(msg)
}

// fail records a per-file failure in the report and shows it as a failed
// file row.
func (r *Runner) fail(stage, path string, err error) {
	r.report.addFailure(stage, path, err)
	r.ulog.FileOp(userlog.FileOperation{
		Path:   path,
		Action: userlog.ActionFailed,
		Detail: err.Error(),
	})
}
