package openai

import (
	"strings"

	"github.com/poiesic/retrievit/ai"
)

const answerSystemPrompt = "You are a helpful assistant for a technical Q&A service. " +
	"I will first give you some context to reference, then I will ask you a question. " +
	"If the answer is not contained in the context, respond with your own knowledge."

// buildAnswerPrompt renders the retrieved passages and the question into a
// single user message. Newlines inside passage content are flattened so each
// passage stays a two-line source/content block.
func buildAnswerPrompt(question string, passages []ai.Passage) string {
	blocks := make([]string, 0, len(passages))
	for _, p := range passages {
		content := strings.TrimSpace(strings.ReplaceAll(p.Content, "\n", " "))
		blocks = append(blocks, "Source: "+p.Source+"\n"+content)
	}

	var b strings.Builder
	b.WriteString("Some content for you to reference:\n")
	b.WriteString(strings.Join(blocks, "\n\n"))
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\nAnswer:")
	return b.String()
}
