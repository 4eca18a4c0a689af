package enrich

import (
	"fmt"
	"strings"

	"github.com/lattice-works/semdex/core"
)

const summaryPromptTemplate = `You are given %d numbered passages extracted from the document "%s".
For each passage, write 1-2 sentences of context that situate the passage within the document, to improve search retrieval of the passage.

Output ONLY a valid JSON array of %d strings, one per passage, in the same order. Do not include any preamble, explanation, greeting, or acknowledgment. Start your response directly with the opening bracket [ and end with the closing bracket ].

Rules:
- Each string is a standalone 1-2 sentence summary of what the passage is about and where it sits in the document.
- Use the passage's section heading when it helps.
- If a passage cannot be summarized, use an empty string "" for it.
- The JSON must parse without errors; no trailing commas and no extraneous text outside the array.

Passages:
%s`

// buildBatchPrompt embeds every chunk body into one prompt, truncating each
// body to maxBodyLen characters.
func buildBatchPrompt(documentName string, chunks []core.Chunk, maxBodyLen int) string {
	var passages strings.Builder
	for i, chunk := range chunks {
		heading := chunk.Heading
		if heading == "" {
			heading = "(no heading)"
		}
		body := chunk.Content
		if runes := []rune(body); len(runes) > maxBodyLen {
			body = string(runes[:maxBodyLen])
		}
		fmt.Fprintf(&passages, "[%d] Section: %s\n%s\n\n", i+1, heading, body)
	}
	return fmt.Sprintf(summaryPromptTemplate, len(chunks), documentName, len(chunks), passages.String())
}
