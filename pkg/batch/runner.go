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

// Package batch runs the rewrite engine over a set of files.
package batch

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/guardfix/pkg/log"
	"github.com/walteh/guardfix/pkg/rewrite"
	"github.com/walteh/guardfix/pkg/status"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 🔧 Options configures a run. There are no defaults here; callers supply
// every target explicitly.
type Options struct {
	Targets   []string // Files or root directories
	Extension string   // Extension matched when walking directories, e.g. ".dart"
	Exclude   []string // doublestar globs, relative to the walked root
	Jobs      int      // Files processed concurrently; <= 1 is sequential
	DryRun    bool     // Report without writing
}

// Validate checks the options.
func (o Options) Validate() error {
	if len(o.Targets) == 0 {
		return errors.New("no targets given")
	}
	if strings.ContainsAny(o.Extension, `*?[]{}\/`) {
		return errors.Errorf("extension %q must not contain glob characters or separators", o.Extension)
	}
	for _, pattern := range o.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid exclude pattern %q", pattern)
		}
	}
	return nil
}

// 💾 Store is what the runner needs from the file layer
type Store interface {
	ReadFile(ctx context.Context, path string) ([]byte, fs.FileMode, error)
	WriteFileAtomic(ctx context.Context, path string, content []byte, mode fs.FileMode) error
}

var _ Store = (*status.Store)(nil)

// 📄 FileRecord is the outcome of one file
type FileRecord struct {
	Path          string
	Status        status.FileStatus
	Modifications int
	PerRule       map[string]int
	Warnings      []rewrite.Warning
	Err           error
}

// Notes renders the warnings one per line.
func (f FileRecord) Notes() []string {
	notes := make([]string, 0, len(f.Warnings))
	for _, w := range f.Warnings {
		notes = append(notes, fmt.Sprintf("line %d: %s (%s)", w.Line, w.Message, w.Rule))
	}
	return notes
}

// 📊 Summary aggregates a run
type Summary struct {
	Files              int
	FilesTouched       int
	TotalModifications int
	NotFound           int
	Failed             int
	NeedsReview        int

	Records []FileRecord
	DryRun  bool
}

// WouldChange reports whether any file has or would have rewrites.
func (s *Summary) WouldChange() bool {
	return s.FilesTouched > 0
}

// Totals converts the summary for the console logger.
func (s *Summary) Totals() log.RunTotals {
	return log.RunTotals{
		Files:              s.Files,
		FilesTouched:       s.FilesTouched,
		TotalModifications: s.TotalModifications,
		NotFound:           s.NotFound,
		Failed:             s.Failed,
		NeedsReview:        s.NeedsReview,
		DryRun:             s.DryRun,
	}
}

func (s *Summary) add(rec FileRecord) {
	s.Records = append(s.Records, rec)
	s.Files++
	switch rec.Status {
	case status.StatusNotFound:
		s.NotFound++
		return
	case status.StatusFailed:
		s.Failed++
		return
	case status.StatusNeedsReview:
		s.NeedsReview++
	}
	if rec.Modifications > 0 {
		s.FilesTouched++
		s.TotalModifications += rec.Modifications
	}
}

// Target is one resolved input. Missing is set for explicit paths that do
// not exist so they are reported in their original position.
type Target struct {
	Path    string
	Missing bool
	Err     error
}

// 🏃 Runner processes files one at a time or with a bounded worker pool
type Runner struct {
	opts     Options
	rewriter rewrite.Rewriter
	store    Store
	logger   *log.Logger
}

// 🏭 New creates a new runner
func New(opts Options, rewriter rewrite.Rewriter, store Store, logger *log.Logger) *Runner {
	return &Runner{
		opts:     opts,
		rewriter: rewriter,
		store:    store,
		logger:   logger,
	}
}

// 🔍 Resolve expands the targets into the concrete file list. Explicit files
// are kept whatever their extension; directories are walked recursively for
// files with the configured extension. Duplicates keep their first position.
func (r *Runner) Resolve(ctx context.Context) ([]Target, error) {
	logger := zerolog.Ctx(ctx)

	var out []Target
	seen := make(map[string]bool)
	push := func(t Target) {
		key := filepath.Clean(t.Path)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, t)
	}

	for _, root := range r.opts.Targets {
		info, err := os.Stat(root)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				logger.Debug().Str("path", root).Msg("target not found")
				push(Target{Path: root, Missing: true})
				continue
			}
			push(Target{Path: root, Err: errors.Errorf("checking target: %w", err)})
			continue
		}

		if !info.IsDir() {
			push(Target{Path: root})
			continue
		}

		files, err := r.walk(root)
		if err != nil {
			return nil, errors.Errorf("walking %s: %w", root, err)
		}
		logger.Debug().Str("root", root).Int("files", len(files)).Msg("directory walked")
		for _, f := range files {
			push(Target{Path: f})
		}
	}

	return out, nil
}

// walk lists files under root with the configured extension, minus excludes.
func (r *Runner) walk(root string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(root), "**/*"+r.opts.Extension, doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.Errorf("globbing: %w", err)
	}
	slices.Sort(matches)

	files := make([]string, 0, len(matches))
	for _, rel := range matches {
		excluded, err := r.excluded(rel)
		if err != nil {
			return nil, err
		}
		if excluded {
			continue
		}
		files = append(files, filepath.Join(root, filepath.FromSlash(rel)))
	}
	return files, nil
}

func (r *Runner) excluded(rel string) (bool, error) {
	for _, pattern := range r.opts.Exclude {
		matched, err := doublestar.Match(pattern, rel)
		if err != nil {
			return false, errors.Errorf("matching exclude pattern %q: %w", pattern, err)
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}

// 🚀 Run processes every resolved file and returns the summary. A missing or
// failing file is recorded and the run continues. Cancellation stops the run
// between files; files already written stay written.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	if err := r.opts.Validate(); err != nil {
		return nil, errors.Errorf("validating options: %w", err)
	}

	targets, err := r.Resolve(ctx)
	if err != nil {
		return nil, errors.Errorf("resolving targets: %w", err)
	}

	zerolog.Ctx(ctx).Debug().
		Int("files", len(targets)).
		Int("jobs", r.opts.Jobs).
		Bool("dry_run", r.opts.DryRun).
		Msg("starting run")

	summary := &Summary{DryRun: r.opts.DryRun}
	if r.opts.Jobs > 1 {
		err = r.runParallel(ctx, targets, summary)
	} else {
		err = r.runSequential(ctx, targets, summary)
	}
	if err != nil {
		return summary, errors.Errorf("run interrupted: %w", err)
	}
	return summary, nil
}

func (r *Runner) runSequential(ctx context.Context, targets []Target, summary *Summary) error {
	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec := r.processFile(ctx, t)
		r.report(ctx, rec)
		summary.add(rec)
	}
	return nil
}

// runParallel fans files out over an errgroup. Records land in a slice
// indexed by input position and are reported in that order afterwards.
func (r *Runner) runParallel(ctx context.Context, targets []Target, summary *Summary) error {
	records := make([]FileRecord, len(targets))
	done := make([]bool, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Jobs)
	for i, t := range targets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records[i] = r.processFile(gctx, t)
			done[i] = true
			return nil
		})
	}
	err := g.Wait()

	for i, rec := range records {
		if !done[i] {
			continue
		}
		r.report(ctx, rec)
		summary.add(rec)
	}
	return err
}

// 📝 processFile reads, rewrites and writes back a single file
func (r *Runner) processFile(ctx context.Context, t Target) FileRecord {
	rec := FileRecord{Path: t.Path}

	if t.Missing {
		rec.Status = status.StatusNotFound
		return rec
	}
	if t.Err != nil {
		rec.Status = status.StatusFailed
		rec.Err = t.Err
		return rec
	}

	content, mode, err := r.store.ReadFile(ctx, t.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			rec.Status = status.StatusNotFound
			return rec
		}
		rec.Status = status.StatusFailed
		rec.Err = err
		return rec
	}

	result, err := r.rewriter.Rewrite(ctx, bytes.NewReader(content))
	if err != nil {
		rec.Status = status.StatusFailed
		rec.Err = errors.Errorf("rewriting: %w", err)
		return rec
	}

	rec.Modifications = result.ModificationCount
	rec.PerRule = result.PerRule
	rec.Warnings = result.Warnings

	if result.WasModified && !r.opts.DryRun {
		if err := r.store.WriteFileAtomic(ctx, t.Path, result.ModifiedContent, mode); err != nil {
			rec.Status = status.StatusFailed
			rec.Err = err
			rec.Modifications = 0
			return rec
		}
	}

	switch {
	case len(result.Warnings) > 0:
		rec.Status = status.StatusNeedsReview
	case !result.WasModified:
		rec.Status = status.StatusUnchanged
	case r.opts.DryRun:
		rec.Status = status.StatusWouldFix
	default:
		rec.Status = status.StatusFixed
	}
	return rec
}

func (r *Runner) report(ctx context.Context, rec FileRecord) {
	r.logger.LogFileOperation(ctx, log.FileOperation{
		Path:          rec.Path,
		Status:        rec.Status,
		Modifications: rec.Modifications,
		Notes:         rec.Notes(),
		Err:           rec.Err,
	})
}
