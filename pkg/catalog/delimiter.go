package catalog

import (
	"strings"

	"gitlab.com/tozd/go/errors"
)

// ErrUnbalanced means no closing delimiter could be located for a block.
var ErrUnbalanced = errors.Base("manual closing-brace review required")

// MatchingBrace returns the offset of the `}` closing the `{` at open. String
// literals (single, double, triple-quoted and raw) and comments are skipped.
// Braces inside string interpolation are not tracked.
func MatchingBrace(text string, open int) (int, error) {
	if open < 0 || open >= len(text) || text[open] != '{' {
		return -1, errors.Errorf("offset %d is not an opening brace: %w", open, ErrUnbalanced)
	}

	depth := 0
	for i := open; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, nil
			}
		case '/':
			if i+1 >= len(text) {
				continue
			}
			switch text[i+1] {
			case '/':
				nl := strings.IndexByte(text[i:], '\n')
				if nl < 0 {
					return -1, errors.WithStack(ErrUnbalanced)
				}
				i += nl
			case '*':
				end := strings.Index(text[i+2:], "*/")
				if end < 0 {
					return -1, errors.Errorf("unterminated block comment: %w", ErrUnbalanced)
				}
				i += end + 3
			}
		case '\'', '"':
			end, ok := skipString(text, i)
			if !ok {
				return -1, errors.Errorf("unterminated string literal: %w", ErrUnbalanced)
			}
			i = end
		}
	}
	return -1, errors.WithStack(ErrUnbalanced)
}

// CallTerminator expects `)` and `;`, separated only by whitespace, starting
// at from. It returns the offset just past the `;`.
func CallTerminator(text string, from int) (int, error) {
	i := skipSpace(text, from)
	if i >= len(text) || text[i] != ')' {
		return -1, errors.Errorf("expected ')' after block: %w", ErrUnbalanced)
	}
	i = skipSpace(text, i+1)
	if i >= len(text) || text[i] != ';' {
		return -1, errors.Errorf("expected ';' after call: %w", ErrUnbalanced)
	}
	return i + 1, nil
}

func skipSpace(text string, i int) int {
	for i < len(text) && strings.IndexByte(" \t\r\n", text[i]) >= 0 {
		i++
	}
	return i
}

// skipString returns the offset of the last byte of the literal opening at start.
func skipString(text string, start int) (int, bool) {
	quote := text[start]
	raw := start > 0 && text[start-1] == 'r' && (start < 2 || !isIdentByte(text[start-2]))

	if triple := strings.Repeat(string(quote), 3); strings.HasPrefix(text[start:], triple) {
		for j := start + 3; j < len(text); j++ {
			if !raw && text[j] == '\\' {
				j++
				continue
			}
			if strings.HasPrefix(text[j:], triple) {
				return j + 2, true
			}
		}
		return -1, false
	}

	for j := start + 1; j < len(text); j++ {
		switch text[j] {
		case '\\':
			if !raw {
				j++
			}
		case '\n':
			return -1, false
		case quote:
			return j, true
		}
	}
	return -1, false
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
