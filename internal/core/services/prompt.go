package services

import (
	"strings"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

// contextSeparator joins retrieved chunks in the adjudication prompt.
const contextSeparator = "\n\n"

const promptTemplate = `You are a legal compliance analyst.

Evaluate whether the following contract follows this rule:
Rule: {description}

Context (relevant parts of the contract extracted via vector search):
{context}

Respond with:
- Compliance YES/NO
- Missing elements
- Risk level
- Suggest corrections
`

// BuildPrompt renders the adjudication prompt for a rule and its context.
func BuildPrompt(description, context string) string {
	return strings.NewReplacer(
		"{description}", description,
		"{context}", context,
	).Replace(promptTemplate)
}

// JoinContext concatenates chunk texts in retrieval order.
func JoinContext(chunks []domain.Chunk) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Content
	}
	return strings.Join(parts, contextSeparator)
}
