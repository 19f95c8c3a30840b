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

// Package catalog declares the rewrite rules: a recognizer and a fix for each
// bug-prone idiom.
//
// Recognizers are regular expressions with named groups, not a grammar. Every
// pattern is anchored at the start of a line so a match is always in
// statement position and its indentation is exactly the captured prefix.
// Invocations that start mid-line are deliberately not matched.
package catalog

import (
	"regexp"
	"slices"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Named capture groups shared by the rules
const (
	GroupIndent   = "indent"
	GroupDecl     = "decl"
	GroupName     = "name"
	GroupReceiver = "receiver"
	GroupCall     = "call"
	GroupBody     = "body"
	GroupTail     = "tail"
)

// 🎯 Match is one occurrence of a rule's pattern
type Match struct {
	Start  int               // byte offset of the match in the rule input
	End    int               // byte offset just past the match
	Indent  string            // whitespace preceding the match on its line
	Newline string            // line terminator of the matched line, "\n" or "\r\n"
	Groups  map[string]string // named captures
}

// ExtentFunc widens a match past what the pattern itself can express, for
// example to the delimiter closing a block. It may update End and Groups.
type ExtentFunc func(text string, m *Match) error

// 📜 Rule pairs a recognizer with a fix
type Rule struct {
	// Name identifies the rule in reports and configuration
	Name string

	// Pattern recognizes the idiom; it must capture GroupIndent
	Pattern *regexp.Regexp

	// GuardMarkers are substrings whose presence before a match means the
	// idiom is already fixed there
	GuardMarkers []string

	// Extent is optional
	Extent ExtentFunc

	// Template builds the replacement for a match
	Template func(m Match) string
}

// Match builds a Match from a submatch index slice returned by Pattern.
func (r Rule) Match(text string, loc []int) Match {
	m := Match{
		Start:  loc[0],
		End:    loc[1],
		Groups: make(map[string]string, len(loc)/2),
	}
	for i, name := range r.Pattern.SubexpNames() {
		if name == "" || loc[2*i] < 0 {
			continue
		}
		m.Groups[name] = text[loc[2*i]:loc[2*i+1]]
	}
	m.Indent = m.Groups[GroupIndent]
	m.Newline = lineEnding(text, m.End)
	return m
}

// lineEnding reports the terminator of the line holding pos, falling back to
// the line before it when pos is on the unterminated last line.
func lineEnding(text string, pos int) string {
	if i := strings.IndexByte(text[pos:], '\n'); i >= 0 {
		if i > 0 && text[pos+i-1] == '\r' {
			return "\r\n"
		}
		return "\n"
	}
	if i := strings.LastIndexByte(text[:pos], '\n'); i > 0 && text[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}

// 📚 Catalog is the ordered, immutable rule set
type Catalog struct {
	rules []Rule
}

// 🏭 New builds the catalog for the given options
func New(opts Options) (*Catalog, error) {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, errors.Errorf("validating rule options: %w", err)
	}

	// The unwrap rule never consults guard markers, so it runs first: the
	// mutation rules then see the same context windows on every pass.
	all := []Rule{
		unwrapOptionalRule(opts),
		mutationBlockRule(opts),
		mutationExpressionRule(opts),
	}

	for _, name := range opts.Disable {
		if !slices.ContainsFunc(all, func(r Rule) bool { return r.Name == name }) {
			return nil, errors.Errorf("unknown rule %q", name)
		}
	}

	c := &Catalog{}
	for _, r := range all {
		if slices.Contains(opts.Disable, r.Name) {
			continue
		}
		c.rules = append(c.rules, r)
	}
	return c, nil
}

// Default is the catalog for Flutter's setState/mounted vocabulary.
func Default() *Catalog {
	c, err := New(DefaultOptions())
	if err != nil {
		panic(err)
	}
	return c
}

// 📋 Rules returns the rules in application order
func (c *Catalog) Rules() []Rule {
	return slices.Clone(c.rules)
}

// Names returns the rule names in application order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.rules))
	for _, r := range c.rules {
		names = append(names, r.Name)
	}
	return names
}
