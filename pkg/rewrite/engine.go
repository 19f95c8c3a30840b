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

// Package rewrite applies catalog rules to source text.
package rewrite

import (
	"cmp"
	"context"
	"io"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/guardfix/pkg/catalog"
	"github.com/walteh/guardfix/pkg/inspect"
	"gitlab.com/tozd/go/errors"
)

// maxPasses bounds the fixed-point loop in Apply. A window narrower than the
// guard line the block template emits would otherwise never settle.
const maxPasses = 16

// 📊 Outcome summarizes one rule applied to one text
type Outcome struct {
	Count    int       // occurrences rewritten
	Skipped  int       // occurrences already guarded
	Warnings []Warning // occurrences left for manual review
	Passes   int       // splice passes until nothing changed

	shifts [][]lineShift // one entry per pass, in order
}

func (o *Outcome) merge(other Outcome) {
	o.Count += other.Count
	o.Skipped += other.Skipped
	o.Warnings = append(o.Warnings, other.Warnings...)
}

// lineShift records that output lines after `after` sit `total` lines below
// their input position.
type lineShift struct {
	after int
	total int
}

// inputLine maps a line of the rule's output back to its input.
func (o Outcome) inputLine(line int) int {
	for j := len(o.shifts) - 1; j >= 0; j-- {
		line = unshift(o.shifts[j], line)
	}
	return line
}

func unshift(shifts []lineShift, line int) int {
	total := 0
	for _, s := range shifts {
		if line <= s.after {
			break
		}
		total = s.total
	}
	return line - total
}

// ⚙️ Engine applies an ordered rule set. It holds no mutable state and is
// safe for concurrent use.
type Engine struct {
	rules     []catalog.Rule
	inspector inspect.Inspector
}

var _ Rewriter = (*Engine)(nil)

// 🏭 New creates an engine for the catalog's rules
func New(c *catalog.Catalog, inspector inspect.Inspector) *Engine {
	return &Engine{
		rules:     c.Rules(),
		inspector: inspector,
	}
}

// 🔄 Apply rewrites every unguarded occurrence of rule in text.
//
// Each pass finds all matches on its unmodified input and splices them in
// offset order, so replacements of a different length never shift the offsets
// of later matches. A match starting inside an earlier replacement is skipped;
// an extended match has the rule applied to its body first instead.
//
// Re-indenting a block moves the text after it, which can move a guard
// marker in or out of a later match's window. Passes repeat until one
// rewrites nothing, so the result is a fixed point of the rule and a second
// Apply never changes it.
func (e *Engine) Apply(rule catalog.Rule, text string) (string, Outcome) {
	var out Outcome
	seen := make(map[Warning]bool)

	for out.Passes < maxPasses {
		next, pass := e.apply(rule, text, 0)
		out.Passes++

		// warnings are in this pass's input lines; earlier passes map them back
		for _, w := range pass.Warnings {
			w.Line = out.inputLine(w.Line)
			if !seen[w] {
				seen[w] = true
				out.Warnings = append(out.Warnings, w)
			}
		}
		out.Count += pass.Count
		out.Skipped = pass.Skipped
		out.shifts = append(out.shifts, pass.shifts...)
		text = next

		if pass.Count == 0 {
			break
		}
	}

	slices.SortStableFunc(out.Warnings, func(a, b Warning) int { return cmp.Compare(a.Line, b.Line) })
	return text, out
}

// apply is one splice pass. A pass that rewrote something carries a single
// shifts entry.
func (e *Engine) apply(rule catalog.Rule, text string, lineOffset int) (string, Outcome) {
	var out Outcome
	var shifts []lineShift

	locs := rule.Pattern.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return text, out
	}

	var sb strings.Builder
	last, outLines, delta := 0, 0, 0
	for _, loc := range locs {
		if loc[0] < last {
			continue
		}

		m := rule.Match(text, loc)
		if e.inspector.Guarded(text, m.Start, rule.GuardMarkers) {
			out.Skipped++
			continue
		}

		if rule.Extent != nil {
			if err := rule.Extent(text, &m); err != nil {
				out.Warnings = append(out.Warnings, Warning{
					Rule:    rule.Name,
					Line:    lineOffset + strings.Count(text[:m.Start], "\n") + 1,
					Message: err.Error(),
				})
				continue
			}
			if body, ok := m.Groups[catalog.GroupBody]; ok {
				nested, sub := e.apply(rule, body, lineOffset+strings.Count(text[:loc[1]], "\n"))
				m.Groups[catalog.GroupBody] = nested
				out.merge(sub)
			}
		}

		replacement := rule.Template(m)
		added := strings.Count(replacement, "\n")
		outLines += strings.Count(text[last:m.Start], "\n") + added
		delta += added - strings.Count(text[m.Start:m.End], "\n")
		shifts = append(shifts, lineShift{after: outLines + 1, total: delta})

		sb.WriteString(text[last:m.Start])
		sb.WriteString(replacement)
		last = m.End
		out.Count++
	}

	if out.Count == 0 {
		return text, out
	}
	out.shifts = [][]lineShift{shifts}
	sb.WriteString(text[last:])
	return sb.String(), out
}

// ApplyAll runs every rule in order, each over the previous rule's output.
// Warning lines are mapped back to lines of the original text.
func (e *Engine) ApplyAll(text string) (string, map[string]Outcome) {
	outcomes := make(map[string]Outcome, len(e.rules))
	applied := make([]Outcome, 0, len(e.rules))
	for _, rule := range e.rules {
		var o Outcome
		text, o = e.Apply(rule, text)
		for i := range o.Warnings {
			for j := len(applied) - 1; j >= 0; j-- {
				o.Warnings[i].Line = applied[j].inputLine(o.Warnings[i].Line)
			}
		}
		applied = append(applied, o)
		outcomes[rule.Name] = o
	}
	return text, outcomes
}

// Rewrite implements Rewriter.Rewrite
func (e *Engine) Rewrite(ctx context.Context, content io.Reader) (*Result, error) {
	original, err := io.ReadAll(content)
	if err != nil {
		return nil, errors.Errorf("reading content: %w", err)
	}

	result := &Result{
		OriginalContent: original,
		ModifiedContent: original,
		PerRule:         make(map[string]int, len(e.rules)),
	}

	text, outcomes := e.ApplyAll(string(original))
	for _, rule := range e.rules {
		o := outcomes[rule.Name]
		result.PerRule[rule.Name] = o.Count
		result.ModificationCount += o.Count
		result.Skipped += o.Skipped
		result.Warnings = append(result.Warnings, o.Warnings...)

		zerolog.Ctx(ctx).Debug().
			Str("rule", rule.Name).
			Int("rewritten", o.Count).
			Int("skipped", o.Skipped).
			Int("warnings", len(o.Warnings)).
			Int("passes", o.Passes).
			Msg("rule applied")
	}

	if result.ModificationCount > 0 {
		result.WasModified = true
		result.ModifiedContent = []byte(text)
	}
	return result, nil
}
