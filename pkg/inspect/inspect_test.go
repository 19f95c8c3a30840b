package inspect

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInspector_Window(t *testing.T) {
	tests := []struct {
		name  string
		size  int
		text  string
		start int
		want  string
	}{
		{
			name:  "start_of_text",
			size:  10,
			text:  "setState",
			start: 0,
			want:  "",
		},
		{
			name:  "shorter_than_window",
			size:  10,
			text:  "abc setState",
			start: 4,
			want:  "abc ",
		},
		{
			name:  "clipped_to_window",
			size:  3,
			text:  "abcdef",
			start: 5,
			want:  "cde",
		},
		{
			name:  "start_past_end",
			size:  3,
			text:  "abc",
			start: 10,
			want:  "abc",
		},
		{
			name:  "default_size",
			size:  0,
			text:  strings.Repeat("x", 150) + "y",
			start: 150,
			want:  strings.Repeat("x", DefaultWindow),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.size).Window(tt.text, tt.start))
		})
	}
}

func TestInspector_IsAlreadyGuarded(t *testing.T) {
	markers := []string{"if (mounted)", "if (!mounted)"}

	tests := []struct {
		name    string
		window  string
		markers []string
		want    bool
	}{
		{
			name:    "affirmative_marker",
			window:  "    if (mounted) {\n      ",
			markers: markers,
			want:    true,
		},
		{
			name:    "negative_marker",
			window:  "    if (!mounted) return;\n    ",
			markers: markers,
			want:    true,
		},
		{
			name:    "no_marker",
			window:  "    await load();\n    ",
			markers: markers,
			want:    false,
		},
		{
			name:    "similar_but_different_flag",
			window:  "    if (mountedOnce) {\n",
			markers: markers,
			want:    false,
		},
		{
			name:    "no_markers",
			window:  "if (mounted)",
			markers: nil,
			want:    false,
		},
		{
			name:    "empty_marker_ignored",
			window:  "anything",
			markers: []string{""},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New(DefaultWindow).IsAlreadyGuarded(tt.window, tt.markers))
		})
	}
}

func TestInspector_Guarded_WindowTradeoff(t *testing.T) {
	markers := []string{"if (mounted)"}
	guard := "    if (mounted) {\n      setState(() => a = 1);\n    }\n"

	t.Run("nearby_unrelated_guard_skips", func(t *testing.T) {
		text := guard + "    setState(() => b = 2);\n"
		start := strings.LastIndex(text, "    setState")
		assert.True(t, New(DefaultWindow).Guarded(text, start, markers))
	})

	t.Run("distant_guard_is_missed", func(t *testing.T) {
		filler := strings.Repeat("    doWork();\n", 20)
		text := guard + filler + "    setState(() => b = 2);\n"
		start := strings.LastIndex(text, "    setState")
		assert.False(t, New(DefaultWindow).Guarded(text, start, markers))
	})
}
