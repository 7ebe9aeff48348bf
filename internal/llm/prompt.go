package llm

import (
	"fmt"
	"strings"
)

const summaryPrompt = `Summarize the following document text. Write plain prose, no headings or bullet points, and no preamble.

The summary must be between %d and %d words long.`

const qaPrompt = `Answer the question using only the passage below. Reply with the shortest span or sentence that answers it, with no preamble. If the passage does not contain the answer, reply with an empty string.`

const nerPrompt = `Tag the named entities in the following text. Return a JSON array of entity objects. Each object must have these fields:

- "word": the entity exactly as written in the text (string)
- "group": one of "PER", "ORG", "LOC", "MISC"
- "start": byte offset of the first character in the text (integer)
- "end": byte offset just past the last character (integer)

Rules:
- List entities in the order they appear
- A full personal name is one entity: "Ada Lovelace", not "Ada" and "Lovelace"
- Return an empty array [] if there are no entities

Respond with ONLY the JSON array, no other text.`

const formulaPrompt = `The image contains a mathematical formula. Transcribe it as LaTeX math markup.

Respond with ONLY the LaTeX, without surrounding $ delimiters or code fences. If the image contains no formula, respond with an empty string.`

func buildSummaryPrompt(text string, minWords, maxWords int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(summaryPrompt, minWords, maxWords))
	sb.WriteString("\n\n---\n")
	sb.WriteString(text)
	return sb.String()
}

func buildQAPrompt(question, passage string) string {
	var sb strings.Builder
	sb.WriteString("Passage:\n")
	sb.WriteString(passage)
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(question)
	return sb.String()
}

func buildNERPrompt(text string) string {
	return nerPrompt + "\n\n---\n" + text
}
