package rewrite

import (
	"context"
	"io"
)

// Warning flags an occurrence that was left unchanged and needs a human
type Warning struct {
	// Rule is the name of the rule that raised it
	Rule string

	// Line is the 1-based line of the occurrence in the input
	Line int

	// Message describes what could not be done
	Message string
}

// Result contains the results of rewriting one input
type Result struct {
	// WasModified indicates if any rewrites were made
	WasModified bool

	// ModificationCount is the number of rewrites made across all rules
	ModificationCount int

	// PerRule counts rewrites by rule name
	PerRule map[string]int

	// Skipped counts occurrences left alone because they were already guarded
	Skipped int

	// Warnings lists occurrences that need manual review
	Warnings []Warning

	// OriginalContent is the content before rewriting
	OriginalContent []byte

	// ModifiedContent is the content after rewriting
	ModifiedContent []byte
}

// Rewriter is what the batch runner needs from a rewrite engine. The regex
// engine in this package is one implementation; a parser-backed one could
// replace it without touching callers.
type Rewriter interface {
	// Rewrite applies every rule to the content
	Rewrite(ctx context.Context, content io.Reader) (*Result, error)
}
