package chunker

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p := New()
		if p.chunkSize != 800 {
			t.Errorf("expected chunkSize 800, got %d", p.chunkSize)
		}
		if p.overlap != 200 {
			t.Errorf("expected overlap 200, got %d", p.overlap)
		}
	})

	t.Run("custom chunk size", func(t *testing.T) {
		p := New(WithChunkSize(500))
		if p.chunkSize != 500 {
			t.Errorf("expected chunkSize 500, got %d", p.chunkSize)
		}
	})

	t.Run("custom overlap", func(t *testing.T) {
		p := New(WithOverlap(100))
		if p.overlap != 100 {
			t.Errorf("expected overlap 100, got %d", p.overlap)
		}
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		p := New(WithChunkSize(100), WithOverlap(150))
		if p.overlap >= p.chunkSize {
			t.Error("overlap should be reduced when it exceeds chunk size")
		}
	})

	t.Run("zero values ignored", func(t *testing.T) {
		p := New(WithChunkSize(0), WithOverlap(-1))
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected default chunkSize, got %d", p.chunkSize)
		}
		if p.overlap != DefaultChunkOverlap {
			t.Errorf("expected default overlap, got %d", p.overlap)
		}
	})
}

func TestProcessor_Name(t *testing.T) {
	p := New()
	if p.Name() != "chunker" {
		t.Errorf("expected name 'chunker', got '%s'", p.Name())
	}
}

func process(t *testing.T, p *Processor, content string) []domain.Chunk {
	t.Helper()
	chunks, err := p.Process(context.Background(), &domain.Document{ID: "doc-1", Content: content}, nil)
	require.NoError(t, err)
	return chunks
}

// reconstruct drops each chunk's declared overlap and concatenates.
func reconstruct(chunks []domain.Chunk) string {
	var b strings.Builder
	for _, c := range chunks {
		b.WriteString(c.Fresh())
	}
	return b.String()
}

func TestProcessor_Process_EmptyContent(t *testing.T) {
	chunks := process(t, New(), "")
	assert.Nil(t, chunks)
}

func TestProcessor_Process_SmallContent(t *testing.T) {
	content := "This Agreement shall be governed by the laws of Delaware."
	chunks := process(t, New(), content)

	require.Len(t, chunks, 1)
	assert.Equal(t, content, chunks[0].Content)
	assert.Equal(t, 0, chunks[0].Position)
	assert.Equal(t, 0, chunks[0].Overlap)
	assert.Equal(t, "doc-1", chunks[0].DocumentID)
	assert.NotEmpty(t, chunks[0].ID)
}

func TestProcessor_Process_ExactChunkSize(t *testing.T) {
	content := strings.Repeat("a", 800)
	chunks := process(t, New(), content)

	require.Len(t, chunks, 1)
	assert.Equal(t, content, chunks[0].Content)
}

func TestProcessor_Process_HardCutWithoutSeparators(t *testing.T) {
	content := strings.Repeat("z", 2000)
	chunks := process(t, New(), content)

	require.Len(t, chunks, 3)
	assert.Equal(t, 0, chunks[0].Metadata["start"])
	assert.Equal(t, 800, chunks[0].Metadata["end"])
	assert.Equal(t, 600, chunks[1].Metadata["start"])
	assert.Equal(t, 1400, chunks[1].Metadata["end"])
	assert.Equal(t, 1200, chunks[2].Metadata["start"])
	assert.Equal(t, 2000, chunks[2].Metadata["end"])
	assert.Equal(t, content, reconstruct(chunks))
}

func TestProcessor_Process_PrefersParagraphBreak(t *testing.T) {
	para1 := strings.Repeat("word ", 120) // 600 chars
	para2 := strings.Repeat("more ", 100)
	chunks := process(t, New(), para1+"\n\n"+para2)

	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, para1+"\n\n", chunks[0].Content)
}

func TestProcessor_Process_PrefersSentenceOverWord(t *testing.T) {
	content := strings.Repeat("x", 650) + ". " + strings.Repeat("y ", 200)
	chunks := process(t, New(), content)

	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, strings.Repeat("x", 650)+". ", chunks[0].Content)
}

func TestProcessor_Process_FallsBackToWordBreak(t *testing.T) {
	content := strings.Repeat("abcdefg ", 300)
	chunks := process(t, New(), content)

	require.GreaterOrEqual(t, len(chunks), 2)
	for _, c := range chunks[:len(chunks)-1] {
		assert.True(t, strings.HasSuffix(c.Content, " "), "chunk should end on a word break")
	}
}

func TestProcessor_Process_OverlapContent(t *testing.T) {
	content := contractText()
	chunks := process(t, New(), content)
	require.Greater(t, len(chunks), 2)

	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1].Content)
		cur := []rune(chunks[i].Content)
		assert.Equal(t, 200, chunks[i].Overlap)
		assert.Equal(t, string(prev[len(prev)-200:]), string(cur[:200]),
			"chunk %d should start with the tail of chunk %d", i, i-1)
	}
}

func TestProcessor_Process_Lossless(t *testing.T) {
	inputs := map[string]string{
		"contract":      contractText(),
		"no separators": strings.Repeat("q", 5000),
		"unicode":       strings.Repeat("Vertragspartei § 3 – Haftung für Schäden. ", 90),
		"crlf":          strings.Repeat("Clause line one.\r\nClause line two.\r\n\r\n", 60),
		"just over":     strings.Repeat("b", 801),
	}

	for name, content := range inputs {
		t.Run(name, func(t *testing.T) {
			chunks := process(t, New(), content)
			assert.Equal(t, content, reconstruct(chunks))
			for _, c := range chunks {
				assert.LessOrEqual(t, len([]rune(c.Content)), 800)
			}
		})
	}
}

func TestProcessor_Process_CustomSizesLossless(t *testing.T) {
	content := contractText()
	for _, cfg := range [][2]int{{100, 0}, {100, 30}, {50, 49}, {1, 0}, {300, 299}} {
		p := New(WithChunkSize(cfg[0]), WithOverlap(cfg[1]))
		chunks := process(t, p, content)
		assert.Equal(t, content, reconstruct(chunks), "size=%d overlap=%d", cfg[0], cfg[1])
	}
}

func TestProcessor_Process_Deterministic(t *testing.T) {
	content := contractText()
	first := process(t, New(), content)
	second := process(t, New(), content)

	assert.Equal(t, first, second)
}

func TestProcessor_Process_IgnoresInputChunks(t *testing.T) {
	p := New()
	doc := &domain.Document{ID: "doc-1", Content: "Short content"}
	input := []domain.Chunk{{ID: "existing", Content: "ignored"}}

	chunks, err := p.Process(context.Background(), doc, input)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.NotEqual(t, "existing", chunks[0].ID)
}

func TestProcessor_Process_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Process(ctx, &domain.Document{ID: "d", Content: "text"}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessor_Process_MetadataInitialized(t *testing.T) {
	chunks := process(t, New(), "Some content")
	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Metadata["start"])
	assert.Equal(t, 12, chunks[0].Metadata["end"])
}

func contractText() string {
	clauses := []string{
		"1. Confidentiality. Each party shall keep the other party's proprietary information confidential and shall not disclose it to any third party without prior written consent.",
		"2. Term and Termination. This Agreement commences on the Effective Date and continues for two years. Either party may terminate on thirty days written notice.",
		"3. Payment. The Client shall pay each invoice within thirty days of the due date. Late payments accrue interest at one percent per month.",
		"4. Limitation of Liability. Neither party shall be liable for indirect or consequential damages, lost profits or loss of data.",
		"5. Governing Law. This Agreement shall be governed by the laws of the State of Delaware, and the courts of Delaware have exclusive jurisdiction.",
		"6. Notices. All notices must be delivered in writing to the addresses set out above, by courier or registered mail.",
	}
	var b strings.Builder
	for i := 0; i < 4; i++ {
		for _, c := range clauses {
			b.WriteString(c)
			b.WriteString("\n\n")
		}
	}
	return b.String()
}
