package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkText_ShortTextIsSingleChunk(t *testing.T) {
	chunks := NewTextChunker().ChunkText("Go developer.\n\nLikes Postgres.", 200, 20)

	require.Len(t, chunks, 1)
	assert.Equal(t, "Go developer.\n\nLikes Postgres.", chunks[0])
}

func TestChunkText_EmptyText(t *testing.T) {
	assert.Empty(t, NewTextChunker().ChunkText("   \n\n  ", 100, 10))
}

func TestChunkText_SplitsParagraphs(t *testing.T) {
	para := strings.Repeat("a", 60)
	text := strings.Join([]string{para, para, para}, "\n\n")

	chunks := NewTextChunker().ChunkText(text, 100, 0)

	require.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.Equal(t, para, c)
	}
}

func TestChunkText_LongParagraphSplitsOnSentences(t *testing.T) {
	sentence := strings.Repeat("word ", 10) // 50 runes
	text := strings.Repeat(sentence+". ", 6)

	chunks := NewTextChunker().ChunkText(text, 120, 0)

	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 120)
	}
}

func TestChunkText_OverlapCarriesTail(t *testing.T) {
	first := strings.Repeat("x", 50)
	second := strings.Repeat("y", 50)

	chunks := NewTextChunker().ChunkText(first+"\n\n"+second, 60, 5)

	require.Len(t, chunks, 2)
	assert.Equal(t, first, chunks[0])
	assert.True(t, strings.HasPrefix(chunks[1], "xxxxx"))
	assert.True(t, strings.HasSuffix(chunks[1], second))
}

func TestChunkText_KeepsSentencePunctuation(t *testing.T) {
	text := "First sentence here. Second one! Third?"

	chunks := NewTextChunker().ChunkText(text, 25, 0)

	assert.Equal(t, []string{"First sentence here.", "Second one! Third?"}, chunks)
}

func TestChunkText_HardSplitsOversizedSentence(t *testing.T) {
	text := strings.Repeat("a", 250)

	chunks := NewTextChunker().ChunkText(text, 100, 10)

	lengths := make([]int, len(chunks))
	for i, c := range chunks {
		lengths[i] = utf8.RuneCountInString(c)
	}
	assert.Equal(t, []int{90, 100, 80}, lengths)
}

func TestChunkText_DropsOverlapThatWouldOverflow(t *testing.T) {
	first := strings.Repeat("x", 50)
	second := strings.Repeat("y", 50)

	chunks := NewTextChunker().ChunkText(first+"\n\n"+second, 60, 20)

	require.Len(t, chunks, 2)
	assert.Equal(t, first, chunks[0])
	assert.Equal(t, second, chunks[1])
}

func TestSplitIntoSentences(t *testing.T) {
	got := splitIntoSentences("Led a team of 5.\nShipped v2!  Why Go? Because")

	assert.Equal(t, []string{"Led a team of 5.", "Shipped v2!", "Why Go?", "Because"}, got)
}
