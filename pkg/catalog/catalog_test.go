package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ruleByName(t *testing.T, c *Catalog, name string) Rule {
	t.Helper()
	for _, r := range c.Rules() {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("rule %q not in catalog", name)
	return Rule{}
}

func firstMatch(t *testing.T, r Rule, text string) Match {
	t.Helper()
	loc := r.Pattern.FindStringSubmatchIndex(text)
	require.NotNil(t, loc, "pattern %s did not match %q", r.Name, text)
	return r.Match(text, loc)
}

func TestNew_Order(t *testing.T) {
	c := Default()
	assert.Equal(t, []string{RuleUnwrapOptional, RuleMutationBlock, RuleMutationExpression}, c.Names())
}

func TestNew_Options(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		wantRules []string
		wantError string
	}{
		{
			name:      "zero_value_uses_defaults",
			opts:      Options{},
			wantRules: []string{RuleUnwrapOptional, RuleMutationBlock, RuleMutationExpression},
		},
		{
			name:      "disable_rule",
			opts:      Options{Disable: []string{RuleUnwrapOptional}},
			wantRules: []string{RuleMutationBlock, RuleMutationExpression},
		},
		{
			name:      "unknown_disabled_rule",
			opts:      Options{Disable: []string{"nope"}},
			wantError: `unknown rule "nope"`,
		},
		{
			name:      "bad_mutation_call",
			opts:      Options{MutationCall: "set State"},
			wantError: "mutation_call",
		},
		{
			name:      "dotted_flag_allowed",
			opts:      Options{LivenessFlag: "context.mounted"},
			wantRules: []string{RuleUnwrapOptional, RuleMutationBlock, RuleMutationExpression},
		},
		{
			name:      "bad_flag",
			opts:      Options{LivenessFlag: "!mounted"},
			wantError: "liveness_flag",
		},
		{
			name:      "multiline_message",
			opts:      Options{FailureMessage: "a\nb"},
			wantError: "failure_message",
		},
		{
			name:      "bad_indent_unit",
			opts:      Options{IndentUnit: "xx"},
			wantError: "indent_unit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.opts)
			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRules, c.Names())
		})
	}
}

func TestUnwrapOptional_Template(t *testing.T) {
	c, err := New(Options{FailureType: "Failure"})
	require.NoError(t, err)
	r := ruleByName(t, c, RuleUnwrapOptional)

	tests := []struct {
		name         string
		input        string
		want         string
		wantName     string
		wantReceiver string
	}{
		{
			name:         "simple",
			input:        "    final doc = snap.data()!;",
			want:         "    final doc = snap.data();\n    if (doc == null) {\n      throw Failure('failed to retrieve data');\n    }",
			wantName:     "doc",
			wantReceiver: "snap",
		},
		{
			name:         "dotted_receiver_and_var",
			input:        "\tvar userData_2 = widget.snapshot.data()!;",
			want:         "\tvar userData_2 = widget.snapshot.data();\n\tif (userData_2 == null) {\n\t  throw Failure('failed to retrieve data');\n\t}",
			wantName:     "userData_2",
			wantReceiver: "widget.snapshot",
		},
		{
			name:         "case_preserved",
			input:        "  final DocData = DocSnap.data()!;",
			want:         "  final DocData = DocSnap.data();\n  if (DocData == null) {\n    throw Failure('failed to retrieve data');\n  }",
			wantName:     "DocData",
			wantReceiver: "DocSnap",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := firstMatch(t, r, tt.input)
			assert.Equal(t, tt.wantName, m.Groups[GroupName])
			assert.Equal(t, tt.wantReceiver, m.Groups[GroupReceiver])
			got := r.Template(m)
			assert.Equal(t, tt.want, got)
			assert.True(t, strings.HasPrefix(got, m.Indent+m.Groups[GroupDecl]))
		})
	}
}

func TestUnwrapOptional_NoMatch(t *testing.T) {
	r := ruleByName(t, Default(), RuleUnwrapOptional)
	for _, input := range []string{
		"final doc = snap.data()!;",      // top level, no indentation
		"    final doc = snap.data();",   // already plain
		"    final doc = snap.other()!;", // different accessor
		"    return snap.data()!;",       // not a binding
	} {
		assert.Nil(t, r.Pattern.FindStringIndex(input), input)
	}
}

func TestFailureMessage_Escaped(t *testing.T) {
	c, err := New(Options{FailureMessage: `can't load $doc`})
	require.NoError(t, err)
	r := ruleByName(t, c, RuleUnwrapOptional)
	got := r.Template(firstMatch(t, r, "  final d = s.data()!;"))
	assert.Contains(t, got, `throw Exception('can\'t load \$doc');`)
}

func TestMutationExpression_Template(t *testing.T) {
	c, err := New(Options{MutationCall: "setStateCall", LivenessFlag: "isLive"})
	require.NoError(t, err)
	r := ruleByName(t, c, RuleMutationExpression)

	input := "  setStateCall(() => refreshList());"
	m := firstMatch(t, r, input)
	got := r.Template(m) + input[m.End:]
	assert.Equal(t, "  if (isLive) setStateCall(() => refreshList());", got)
	assert.Equal(t, []string{"if (isLive)", "if (!isLive)"}, r.GuardMarkers)
}

func TestMutationPatterns_StatementPositionOnly(t *testing.T) {
	c := Default()
	block := ruleByName(t, c, RuleMutationBlock)
	expr := ruleByName(t, c, RuleMutationExpression)

	assert.Nil(t, expr.Pattern.FindStringIndex("    onTap: () => setState(() => x = 1),"))
	assert.Nil(t, block.Pattern.FindStringIndex("    if (mounted) { setState(() { x = 1; }); }"))
	assert.Nil(t, block.Pattern.FindStringIndex("    mySetState(() {"))
	assert.NotNil(t, block.Pattern.FindStringIndex("setState(() {"))
	assert.Nil(t, expr.Pattern.FindStringIndex("    setState(() {"))
	assert.Nil(t, block.Pattern.FindStringIndex("    setState(() =>"))
}

func TestMutationBlock_ExtentAndTemplate(t *testing.T) {
	r := ruleByName(t, Default(), RuleMutationBlock)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "multi_line",
			input: "    setState(() {\n      _count++;\n\n      _busy = false;\n    });",
			want:  "    if (mounted) {\n      setState(() {\n        _count++;\n\n        _busy = false;\n      });\n    }",
		},
		{
			name:  "single_line",
			input: "  setState(() { _busy = false; });",
			want:  "  if (mounted) {\n    setState(() { _busy = false; });\n  }",
		},
		{
			name:  "closer_split_across_lines",
			input: "  setState(() {\n    _a = 1;\n  }\n  );",
			want:  "  if (mounted) {\n    setState(() {\n      _a = 1;\n    });\n  }",
		},
		{
			name:  "braces_in_strings_and_comments",
			input: "  setState(() {\n    _s = '}';\n    // }\n    /* } */\n    _t = \"{\";\n  });",
			want:  "  if (mounted) {\n    setState(() {\n      _s = '}';\n      // }\n      /* } */\n      _t = \"{\";\n    });\n  }",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := firstMatch(t, r, tt.input)
			require.NoError(t, r.Extent(tt.input, &m))
			assert.Equal(t, len(tt.input), m.End)
			assert.Equal(t, tt.want, r.Template(m))
		})
	}
}

func TestTemplates_KeepLineEndings(t *testing.T) {
	c, err := New(Options{FailureType: "Failure"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		rule  string
		input string
		want  string
	}{
		{
			name:  "unwrap_crlf",
			rule:  RuleUnwrapOptional,
			input: "    final doc = snap.data()!;\r\n    use(doc);\r\n",
			want:  "    final doc = snap.data();\r\n    if (doc == null) {\r\n      throw Failure('failed to retrieve data');\r\n    }",
		},
		{
			name:  "unwrap_crlf_on_unterminated_last_line",
			rule:  RuleUnwrapOptional,
			input: "  a();\r\n  final doc = snap.data()!;",
			want:  "  final doc = snap.data();\r\n  if (doc == null) {\r\n    throw Failure('failed to retrieve data');\r\n  }",
		},
		{
			name:  "unwrap_lf",
			rule:  RuleUnwrapOptional,
			input: "  final doc = snap.data()!;\n",
			want:  "  final doc = snap.data();\n  if (doc == null) {\n    throw Failure('failed to retrieve data');\n  }",
		},
		{
			name:  "block_crlf",
			rule:  RuleMutationBlock,
			input: "    setState(() {\r\n      _count++;\r\n    });\r\n",
			want:  "    if (mounted) {\r\n      setState(() {\r\n        _count++;\r\n      });\r\n    }",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ruleByName(t, c, tt.rule)
			m := firstMatch(t, r, tt.input)
			if r.Extent != nil {
				require.NoError(t, r.Extent(tt.input, &m))
			}
			got := r.Template(m)
			assert.Equal(t, tt.want, got)
			if m.Newline == "\r\n" {
				assert.Equal(t, strings.Count(got, "\n"), strings.Count(got, "\r\n"), "no bare line feeds")
			}
		})
	}
}

func TestMutationBlock_Unbalanced(t *testing.T) {
	r := ruleByName(t, Default(), RuleMutationBlock)

	for _, input := range []string{
		"  setState(() {\n    _a = 1;\n",
		"  setState(() {\n    _a = 1;\n  }, extra);",
		"  setState(() {\n    _a = 'unterminated;\n  });",
	} {
		m := firstMatch(t, r, input)
		err := r.Extent(input, &m)
		require.Error(t, err, input)
		assert.ErrorIs(t, err, ErrUnbalanced)
	}
}

func TestTemplates_DoNotRetrigger(t *testing.T) {
	c := Default()
	inputs := map[string]string{
		RuleUnwrapOptional:     "    final doc = snap.data()!;",
		RuleMutationBlock:      "    setState(() {\n      _x = 1;\n    });",
		RuleMutationExpression: "    setState(() => _x = 1);",
	}

	for _, r := range c.Rules() {
		t.Run(r.Name, func(t *testing.T) {
			input := inputs[r.Name]
			m := firstMatch(t, r, input)
			if r.Extent != nil {
				require.NoError(t, r.Extent(input, &m))
			}
			out := r.Template(m) + input[m.End:]

			for _, loc := range r.Pattern.FindAllStringSubmatchIndex(out, -1) {
				again := r.Match(out, loc)
				window := out[max(0, again.Start-100):again.Start]
				guarded := false
				for _, marker := range r.GuardMarkers {
					guarded = guarded || strings.Contains(window, marker)
				}
				assert.True(t, guarded, "template output re-matches without a guard: %q", out)
			}
		})
	}
}
