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

// Package prompt is the single seam through which transfat asks the user
// yes/no questions. Every stage that might block on a human goes through a
// Prompter, so swapping in NonInteractive (or a scripted Func in tests)
// removes all interactivity at once.
package prompt

import (
	"context"

	"github.com/pterm/pterm"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Prompter answers yes/no questions. def is the answer a call site
// documents as its safe default; implementations unable or unwilling to
// ask must return it.
type Prompter interface {
	Confirm(ctx context.Context, question string, def bool) (bool, error)
}

// 🗣️ Interactive asks the user on the terminal.
type Interactive struct{}

func (Interactive) Confirm(ctx context.Context, question string, def bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return def, errors.Errorf("prompt cancelled: %w", err)
	}

	answer, err := pterm.DefaultInteractiveConfirm.
		WithDefaultValue(def).
		Show(question)
	if err != nil {
		return def, errors.Errorf("reading confirmation: %w", err)
	}
	return answer, nil
}

// 🤖 NonInteractive never asks; every question resolves to its default.
type NonInteractive struct{}

func (NonInteractive) Confirm(ctx context.Context, question string, def bool) (bool, error) {
	return def, nil
}

// 🧪 Func adapts a function to the Prompter interface, used for scripted
// decisions in tests.
type Func func(ctx context.Context, question string, def bool) (bool, error)

func (f Func) Confirm(ctx context.Context, question string, def bool) (bool, error) {
	return f(ctx, question, def)
}

// 🎯 New returns the Prompter matching the run mode.
func New(nonInteractive bool) Prompter {
	if nonInteractive {
		return NonInteractive{}
	}
	return Interactive{}
}
