package segment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeading(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    string
		isValid bool
	}{
		{"h1", "# Title", "Title", true},
		{"h3", "### Sub Section", "Sub Section", true},
		{"h6", "###### Deep", "Deep", true},
		{"too deep", "####### Not a heading", "", false},
		{"no space", "#hashtag", "", false},
		{"indented", "  ## Indented", "Indented", true},
		{"plain text", "just text", "", false},
		{"bare marker", "#", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseHeading(tt.line)
			assert.Equal(t, tt.isValid, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitByHeadings_Preamble(t *testing.T) {
	text := "intro before any heading\n# First\nbody one\n# Second\nbody two"
	sections := splitByHeadings(text)

	require.Len(t, sections, 3)
	assert.Empty(t, sections[0].heading)
	assert.Contains(t, sections[0].body, "intro before any heading")
	assert.Equal(t, "First", sections[1].heading)
	assert.Contains(t, sections[1].body, "body one")
	assert.Equal(t, "Second", sections[2].heading)
	assert.Contains(t, sections[2].body, "body two")
}

func TestSplitByHeadings_NoHeadings(t *testing.T) {
	text := "a document\nwith no structure at all"
	sections := splitByHeadings(text)

	require.Len(t, sections, 1)
	assert.Empty(t, sections[0].heading)
	assert.Equal(t, text, sections[0].body)
	assert.Zero(t, sections[0].start)
}

func TestSplitByHeadings_BodyOffsets(t *testing.T) {
	text := "# Title\nbody"
	sections := splitByHeadings(text)

	require.Len(t, sections, 1)
	// Body starts after "# Title\n", 8 runes in.
	assert.Equal(t, 8, sections[0].start)
}

func TestWindowSpans_NoSplitNeeded(t *testing.T) {
	text := []rune(strings.Repeat("a", 500))
	spans := windowSpans(text, 800, 100)

	require.Len(t, spans, 1)
	assert.Equal(t, span{start: 0, end: 500}, spans[0])
}

func TestWindowSpans_SentenceBoundaryCut(t *testing.T) {
	// A period at rune 700 sits in the second half of the 800-rune window.
	text := []rune(strings.Repeat("a", 700) + "." + strings.Repeat("b", 600))
	spans := windowSpans(text, 800, 100)

	require.GreaterOrEqual(t, len(spans), 2)
	assert.Equal(t, 0, spans[0].start)
	assert.Equal(t, 701, spans[0].end, "cut lands just after the period")
	assert.Equal(t, 601, spans[1].start, "next window rewinds by the overlap")
}

func TestWindowSpans_CJKTerminator(t *testing.T) {
	text := []rune(strings.Repeat("あ", 750) + "。" + strings.Repeat("い", 400))
	spans := windowSpans(text, 800, 100)

	require.GreaterOrEqual(t, len(spans), 2)
	assert.Equal(t, 751, spans[0].end)
}

func TestWindowSpans_HardCutWithoutBoundary(t *testing.T) {
	text := []rune(strings.Repeat("x", 2000))
	spans := windowSpans(text, 800, 100)

	require.GreaterOrEqual(t, len(spans), 2)
	assert.Equal(t, 800, spans[0].end, "no terminator anywhere, hard cut at window edge")
	assert.Equal(t, 700, spans[1].start)
}

func TestWindowSpans_BoundaryInFirstHalfIgnored(t *testing.T) {
	// The only period is at rune 100, inside the first half, so the
	// backward search must not reach it.
	text := []rune(strings.Repeat("a", 100) + "." + strings.Repeat("b", 1200))
	spans := windowSpans(text, 800, 100)

	assert.Equal(t, 800, spans[0].end)
}

func TestWindowSpans_MinimumProgress(t *testing.T) {
	// Pathological settings where cut - overlap would not advance.
	text := []rune(strings.Repeat(".", 50))
	spans := windowSpans(text, 10, 9)

	for i := 1; i < len(spans); i++ {
		assert.Greater(t, spans[i].start, spans[i-1].start, "every window must advance")
	}
	assert.Equal(t, 50, spans[len(spans)-1].end, "final span reaches end of text")
}

func TestWindowSpans_FullCoverage(t *testing.T) {
	text := []rune(strings.Repeat("word and more. ", 300))
	spans := windowSpans(text, 800, 100)

	assert.Zero(t, spans[0].start)
	assert.Equal(t, len(text), spans[len(spans)-1].end)
	for i := 1; i < len(spans); i++ {
		assert.LessOrEqual(t, spans[i].start, spans[i-1].end,
			"consecutive spans must not leave gaps")
	}
}
