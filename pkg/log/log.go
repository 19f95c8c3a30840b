// Copyright 2025 walteh LLC
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

package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/walteh/guardfix/pkg/status"
)

// 🎨 Display configuration
const (
	fileIndent = 4  // spaces to indent file entries
	nameWidth  = 45 // Base width for filename
	noteIndent = 8  // spaces to indent notes under a file
)

// 🎯 FileOperation represents the outcome of one file for logging
type FileOperation struct {
	Path          string            // File path
	Status        status.FileStatus // Outcome
	Modifications int               // Number of rewrites
	Notes         []string          // Lines shown under the file, e.g. review warnings
	Err           error             // Failure, if any
}

// 📊 RunTotals is the aggregate line printed at the end of a run
type RunTotals struct {
	Files              int
	FilesTouched       int
	TotalModifications int
	NotFound           int
	Failed             int
	NeedsReview        int
	DryRun             bool
}

// 🎯 Logger prints one line per file and mirrors it to zerolog
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
}

// 🏭 New creates a new logger
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// statusText is the human-readable outcome, e.g. "fixed, 3 changes".
func statusText(op FileOperation) string {
	switch {
	case op.Status.Touched():
		return fmt.Sprintf("%s, %s", op.Status, plural(op.Modifications, "change"))
	case op.Status == status.StatusNeedsReview && op.Modifications > 0:
		return fmt.Sprintf("%s, %s applied", op.Status, plural(op.Modifications, "change"))
	case op.Status == status.StatusFailed && op.Err != nil:
		return fmt.Sprintf("%s: %v", op.Status, op.Err)
	default:
		return op.Status.String()
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// 📝 formatFileOperation formats a file operation for display
func (l *Logger) formatFileOperation(op FileOperation) string {
	var symbol rune
	var symbolColor color.Attribute
	switch op.Status {
	case status.StatusFixed:
		symbol = '✓'
		symbolColor = color.FgGreen
	case status.StatusWouldFix:
		symbol = '⟳'
		symbolColor = color.FgBlue
	case status.StatusNeedsReview:
		symbol = '!'
		symbolColor = color.FgYellow
	case status.StatusNotFound, status.StatusFailed:
		symbol = '✗'
		symbolColor = color.FgRed
	default:
		symbol = '•'
		symbolColor = color.FgCyan
	}

	return fmt.Sprintf("%s%s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, op.Path),
		statusText(op))
}

// 📝 LogFileOperation logs the outcome of one file
func (l *Logger) LogFileOperation(ctx context.Context, op FileOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.console, l.formatFileOperation(op))
	for _, note := range op.Notes {
		fmt.Fprintf(l.console, "%*s%s\n", noteIndent, "", color.New(color.FgYellow).Sprint(note))
	}

	event := l.zlog.Info()
	switch op.Status {
	case status.StatusFailed:
		event = l.zlog.Error().Err(op.Err)
	case status.StatusNotFound, status.StatusNeedsReview:
		event = l.zlog.Warn()
	}
	event.
		Str("file", op.Path).
		Str("status", op.Status.String()).
		Int("modifications", op.Modifications).
		Strs("notes", op.Notes).
		Msg("file processed")
}

// 📝 LogTotals logs the aggregate line for a run
func (l *Logger) LogTotals(ctx context.Context, t RunTotals) {
	l.mu.Lock()
	defer l.mu.Unlock()

	verb := "fixed"
	if t.DryRun {
		verb = "to fix"
	}
	msg := fmt.Sprintf("total: %s %s in %s (%d scanned)",
		plural(t.TotalModifications, "change"), verb, plural(t.FilesTouched, "file"), t.Files)
	fmt.Fprintf(l.console, "\n📊 %s\n", color.New(color.Bold).Sprint(msg))

	l.zlog.Info().
		Int("files", t.Files).
		Int("files_touched", t.FilesTouched).
		Int("modifications", t.TotalModifications).
		Int("not_found", t.NotFound).
		Int("failed", t.Failed).
		Int("needs_review", t.NeedsReview).
		Bool("dry_run", t.DryRun).
		Msg("run complete")
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("guardfix")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Console returns the writer user-facing output goes to
func (l *Logger) Console() io.Writer {
	return l.console
}
