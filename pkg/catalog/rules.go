package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

const identPattern = `[A-Za-z_$][\w$]*`

// unwrapOptionalRule rewrites `final v = recv.data()!;` into a plain binding
// followed by an explicit null check. Its template drops the `!` the pattern
// requires, so it carries no guard markers.
func unwrapOptionalRule(o Options) Rule {
	pattern := regexp.MustCompile(`(?m)^(?P<indent>[ \t]+)(?P<decl>final|var)[ \t]+(?P<name>` + identPattern +
		`)[ \t]*=[ \t]*(?P<receiver>` + identPattern + `(?:\.` + identPattern + `)*)\.` +
		regexp.QuoteMeta(o.OptionalAccessor) + `\(\)!;`)

	failure := fmt.Sprintf("throw %s(%s);", o.FailureType, quoteDart(o.FailureMessage))

	return Rule{
		Name:    RuleUnwrapOptional,
		Pattern: pattern,
		Template: func(m Match) string {
			name, nl := m.Groups[GroupName], m.Newline
			var sb strings.Builder
			fmt.Fprintf(&sb, "%s%s %s = %s.%s();%s", m.Indent, m.Groups[GroupDecl], name, m.Groups[GroupReceiver], o.OptionalAccessor, nl)
			fmt.Fprintf(&sb, "%sif (%s == null) {%s", m.Indent, name, nl)
			fmt.Fprintf(&sb, "%s%s%s%s", m.Indent, o.IndentUnit, failure, nl)
			fmt.Fprintf(&sb, "%s}", m.Indent)
			return sb.String()
		},
	}
}

// mutationBlockRule wraps `setState(() { ... });` in a liveness check. The
// extent scanner locates the closing `});` so the whole call moves one level
// deeper and the inserted block is closed.
func mutationBlockRule(o Options) Rule {
	pattern := regexp.MustCompile(`(?m)^(?P<indent>[ \t]*)(?P<call>` + regexp.QuoteMeta(o.MutationCall) + `\(\(\)[ \t]*\{)`)

	return Rule{
		Name:         RuleMutationBlock,
		Pattern:      pattern,
		GuardMarkers: o.GuardMarkers(),
		Extent:       blockExtent,
		Template: func(m Match) string {
			var sb strings.Builder
			fmt.Fprintf(&sb, "%sif (%s) {%s", m.Indent, o.LivenessFlag, m.Newline)
			sb.WriteString(m.Indent + o.IndentUnit + m.Groups[GroupCall])
			sb.WriteString(IndentContinuation(m.Groups[GroupBody], m.Indent, o.IndentUnit))
			sb.WriteString(m.Groups[GroupTail])
			fmt.Fprintf(&sb, "%s%s}", m.Newline, m.Indent)
			return sb.String()
		},
	}
}

// mutationExpressionRule prefixes `setState(() => expr);` with a single-line
// liveness check. The body stays inline so nothing is re-indented.
func mutationExpressionRule(o Options) Rule {
	pattern := regexp.MustCompile(`(?m)^(?P<indent>[ \t]*)(?P<call>` + regexp.QuoteMeta(o.MutationCall) + `\(\(\)[ \t]*=>)`)

	return Rule{
		Name:         RuleMutationExpression,
		Pattern:      pattern,
		GuardMarkers: o.GuardMarkers(),
		Template: func(m Match) string {
			return fmt.Sprintf("%sif (%s) %s", m.Indent, o.LivenessFlag, m.Groups[GroupCall])
		},
	}
}

// blockExtent extends a block-form match from its opening `{` through the
// `);` that closes the call, capturing the body and a normalized tail.
func blockExtent(text string, m *Match) error {
	closeBrace, err := MatchingBrace(text, m.End-1)
	if err != nil {
		return err
	}
	end, err := CallTerminator(text, closeBrace+1)
	if err != nil {
		return err
	}
	m.Groups[GroupBody] = text[m.End:closeBrace]
	m.Groups[GroupTail] = "});"
	m.End = end
	return nil
}

// IndentContinuation moves every line after the first one level deeper by
// inserting unit after base, or in front of the line when it does not start
// with base. Blank lines stay blank, except the last segment, which holds the
// indentation of the closing delimiter.
func IndentContinuation(s, base, unit string) string {
	lines := strings.Split(s, "\n")
	for i := 1; i < len(lines); i++ {
		line := lines[i]
		if i != len(lines)-1 && strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, base) {
			lines[i] = base + unit + line[len(base):]
		} else {
			lines[i] = unit + line
		}
	}
	return strings.Join(lines, "\n")
}
