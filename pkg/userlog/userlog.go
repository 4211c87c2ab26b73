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

// Package userlog is the user-facing voice of transfat. It writes colored
// console lines gated by the verbose/quiet flags and mirrors everything
// into zerolog for structured logs. Stage progress is verbose-only,
// warnings and errors print unless quiet, failures always reach zerolog.
package userlog

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 40 // base width for file names
	actionWidth = 12 // width for the action column
)

// 🎯 Action classifies a per-file row
type Action string

const (
	ActionCopied    Action = "copied"
	ActionConverted Action = "converted"
	ActionSkipped   Action = "skipped"
	ActionFailed    Action = "failed"
	ActionRenamed   Action = "renamed"
	ActionDeleted   Action = "deleted"
)

// 🎯 FileOperation represents one per-file outcome for display
type FileOperation struct {
	Path   string // file path as shown to the user
	Action Action // what happened to it
	Detail string // extra context: "exists", "flac -> mp3", error text
}

// 🎯 Logger handles user-facing output with a structured mirror
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
	verbose bool
	quiet   bool
}

// 🏭 New creates a logger writing user lines to console and structured
// records to zlog. quiet wins over verbose when both are set.
func New(console io.Writer, zlog zerolog.Logger, verbose, quiet bool) *Logger {
	if quiet {
		verbose = false
	}
	return &Logger{
		zlog:    zlog,
		console: console,
		verbose: verbose,
		quiet:   quiet,
	}
}

// 📝 formatFileOperation formats one file row for display
func (l *Logger) formatFileOperation(op FileOperation) string {
	var symbol rune
	var symbolColor color.Attribute
	switch op.Action {
	case ActionCopied:
		symbol = '✓'
		symbolColor = color.FgGreen
	case ActionConverted:
		symbol = '⟳'
		symbolColor = color.FgBlue
	case ActionRenamed:
		symbol = '•'
		symbolColor = color.FgCyan
	case ActionDeleted:
		symbol = '✗'
		symbolColor = color.FgMagenta
	case ActionFailed:
		symbol = '✗'
		symbolColor = color.FgRed
	default:
		symbol = '-'
		symbolColor = color.FgYellow
	}

	line := fmt.Sprintf("%s%s %-*s %-*s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		nameWidth, op.Path,
		actionWidth, string(op.Action))
	if op.Detail != "" {
		line += " " + color.New(color.Faint).Sprint(op.Detail)
	}
	return line
}

// 📝 FileOp logs a per-file outcome. Rows are verbose-only except
// failures, which print unless quiet.
func (l *Logger) FileOp(op FileOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	show := l.verbose || (op.Action == ActionFailed && !l.quiet)
	if show {
		fmt.Fprintln(l.console, l.formatFileOperation(op))
	}

	evt := l.zlog.Info()
	if op.Action == ActionFailed {
		evt = l.zlog.Warn()
	}
	evt.Str("file", op.Path).
		Str("action", string(op.Action)).
		Str("detail", op.Detail).
		Msg("file operation")
}

// 📝 Header prints the program banner
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.quiet {
		brand := color.New(color.Bold, color.FgCyan).Sprint("transfat")
		fmt.Fprintf(l.console, "\n%s %s\n\n", brand, color.New(color.Faint).Sprint("• "+msg))
	}
	l.zlog.Info().Msg(msg)
}

// 📝 Status prints a stage progress line, verbose-only
func (l *Logger) Status(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.verbose {
		fmt.Fprintf(l.console, "%s\n", color.New(color.Faint).Sprint("· "+msg))
	}
	l.zlog.Debug().Msg(msg)
}

// 📝 Success prints a stage completion line, verbose-only
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.verbose {
		fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	}
	l.zlog.Info().Msg(msg)
}

// 📝 Info prints a notice the user should normally see
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.quiet {
		fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	}
	l.zlog.Info().Msg(msg)
}

// 📝 Warning prints a non-fatal problem unless quiet
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.quiet {
		fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	}
	l.zlog.Warn().Msg(msg)
}

// 📝 Error prints a fatal problem unless quiet
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.quiet {
		fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	}
	l.zlog.Error().Msg(msg)
}

// 📝 Newline prints a blank separator line unless quiet
func (l *Logger) Newline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.quiet {
		fmt.Fprintln(l.console)
	}
}

// 📝 Headerf prints a formatted run banner
func (l *Logger) Headerf(format string, args ...interface{}) {
	l.Header(fmt.Sprintf(format, args...))
}

// 📝 Statusf logs a formatted stage progress line
func (l *Logger) Statusf(format string, args ...interface{}) {
	l.Status(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted stage completion line
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}

// 📝 Infof logs a formatted notice
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}
