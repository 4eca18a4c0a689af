package enrich

import (
	"encoding/json"
	"regexp"
	"strings"
)

// quotedString matches well-formed JSON string literals, escapes included.
var quotedString = regexp.MustCompile(`"(?:[^"\\]|\\.)*"`)

// parseSummaries turns a raw model response into exactly n summary strings.
// It never fails: a length mismatch is padded or truncated, and a response
// that does not parse as JSON at all degrades to extracting whatever
// well-formed quoted strings it contains.
func parseSummaries(raw string, n int) []string {
	text := stripCodeFences(raw)

	var summaries []string
	if err := json.Unmarshal([]byte(text), &summaries); err != nil {
		summaries = recoverQuotedStrings(text)
	}

	return padToCount(summaries, n)
}

// stripCodeFences removes optional markdown code-fence wrapping.
func stripCodeFences(s string) string {
	text := strings.TrimSpace(s)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// recoverQuotedStrings salvages summaries from a malformed response, such as
// a truncated array, by extracting every well-formed JSON string literal.
func recoverQuotedStrings(text string) []string {
	matches := quotedString.FindAllString(text, -1)
	recovered := make([]string, 0, len(matches))
	for _, match := range matches {
		var s string
		if err := json.Unmarshal([]byte(match), &s); err != nil {
			continue
		}
		recovered = append(recovered, s)
	}
	return recovered
}

// padToCount truncates or pads with empty strings so the result has
// exactly n entries.
func padToCount(summaries []string, n int) []string {
	if len(summaries) > n {
		return summaries[:n]
	}
	for len(summaries) < n {
		summaries = append(summaries, "")
	}
	return summaries
}
