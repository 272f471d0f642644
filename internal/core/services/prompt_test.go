package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

func TestBuildPrompt(t *testing.T) {
	want := "You are a legal compliance analyst.\n\n" +
		"Evaluate whether the following contract follows this rule:\n" +
		"Rule: Force majeure clause should be included\n\n" +
		"Context (relevant parts of the contract extracted via vector search):\n" +
		"first\n\nsecond\n\n" +
		"Respond with:\n" +
		"- Compliance YES/NO\n" +
		"- Missing elements\n" +
		"- Risk level\n" +
		"- Suggest corrections\n"

	got := BuildPrompt("Force majeure clause should be included", "first\n\nsecond")
	assert.Equal(t, want, got)
}

func TestBuildPrompt_PlaceholdersInInputAreLiteral(t *testing.T) {
	got := BuildPrompt("uses {context}", "ctx")
	assert.Contains(t, got, "Rule: uses {context}\n")
}

func TestJoinContext(t *testing.T) {
	assert.Equal(t, "", JoinContext(nil))
	assert.Equal(t, "a\n\nb", JoinContext([]domain.Chunk{{Content: "a"}, {Content: "b"}}))
}
