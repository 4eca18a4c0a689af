package segment

import (
	"strings"
	"unicode/utf8"
)

// section is one structural unit of the document: a heading (possibly empty
// for the preamble) and the body text that follows it. start is the rune
// offset of the body within the page text.
type section struct {
	heading string
	body    string
	start   int
}

// span is a half-open rune range within a section body.
type span struct {
	start int
	end   int
}

// splitByHeadings scans for markdown heading lines (depth 1 to 6). Each
// heading begins a new section running until the next heading; text before
// the first heading becomes a headingless preamble. Text without headings
// becomes a single section.
func splitByHeadings(text string) []section {
	var sections []section

	current := section{}
	var body strings.Builder
	bodyStart := -1

	flush := func() {
		if bodyStart >= 0 {
			current.body = body.String()
			current.start = bodyStart
			sections = append(sections, current)
		}
		body.Reset()
		bodyStart = -1
	}

	offset := 0
	for _, line := range strings.Split(text, "\n") {
		lineLen := utf8.RuneCountInString(line)

		if heading, ok := parseHeading(line); ok {
			flush()
			current = section{heading: heading}
			offset += lineLen + 1
			continue
		}

		if bodyStart < 0 {
			bodyStart = offset
		} else {
			body.WriteByte('\n')
		}
		body.WriteString(line)
		offset += lineLen + 1
	}
	flush()

	return sections
}

// parseHeading reports whether the line is a markdown heading of depth 1-6
// and returns the heading text with markers stripped.
func parseHeading(line string) (string, bool) {
	trimmed := strings.TrimLeft(line, " \t")
	depth := 0
	for depth < len(trimmed) && trimmed[depth] == '#' {
		depth++
	}
	if depth == 0 || depth > 6 {
		return "", false
	}
	rest := trimmed[depth:]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

// sentenceEnders terminate a sentence for cut-point purposes. Newlines
// count so list-heavy text cuts at line boundaries.
func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？', '\n':
		return true
	}
	return false
}

// windowSpans splits text into overlapping spans of at most chunkSize runes.
// Within the second half of each window it searches backward for the nearest
// sentence terminator and cuts after it; with none, it cuts hard at the
// window boundary. The next window starts overlap runes before the cut, with
// a minimum forward progress of one rune to guarantee termination. Text no
// longer than chunkSize is returned as a single span.
func windowSpans(text []rune, chunkSize, overlap int) []span {
	n := len(text)
	if n <= chunkSize {
		return []span{{start: 0, end: n}}
	}

	var spans []span
	start := 0
	for start < n {
		end := start + chunkSize
		if end >= n {
			spans = append(spans, span{start: start, end: n})
			break
		}

		// Backward search bounded to the window's second half.
		cut := end
		for i := end - 1; i >= start+chunkSize/2; i-- {
			if isSentenceEnd(text[i]) {
				cut = i + 1
				break
			}
		}
		spans = append(spans, span{start: start, end: cut})

		next := cut - overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return spans
}
