package services

import (
	"strings"
	"unicode/utf8"
)

type TextChunker interface {
	ChunkText(text string, maxChunkSize int, overlap int) []string
}

type textChunker struct{}

func NewTextChunker() TextChunker {
	return &textChunker{}
}

// chunkBuilder accumulates pieces until the next one would overflow, then
// starts a new chunk seeded with the tail of the previous one. No chunk
// exceeds max runes.
type chunkBuilder struct {
	max     int
	overlap int
	chunks  []string
	current strings.Builder
	size    int
}

func (b *chunkBuilder) add(piece, sep string) {
	pieceLen := utf8.RuneCountInString(piece)
	if pieceLen > b.max {
		b.addOversized(piece, sep)
		return
	}

	sepLen := utf8.RuneCountInString(sep)
	if b.size > 0 && b.size+sepLen+pieceLen > b.max {
		b.flush()
		// the overlap seed only stays if the piece still fits after it
		if b.size+sepLen+pieceLen > b.max {
			b.reset()
		}
	}

	if b.size > 0 {
		b.write(sep)
	}
	b.write(piece)
}

// addOversized hard-splits a piece longer than max into windows that fit
// next to the overlap seed.
func (b *chunkBuilder) addOversized(piece, sep string) {
	step := b.max - b.overlap
	runes := []rune(piece)
	for start := 0; start < len(runes); start += step {
		end := min(start+step, len(runes))
		b.add(string(runes[start:end]), sep)
		sep = ""
	}
}

func (b *chunkBuilder) reset() {
	b.current.Reset()
	b.size = 0
}

func (b *chunkBuilder) flush() {
	prev := b.current.String()
	b.chunks = append(b.chunks, prev)
	b.reset()

	if tail := lastRunes(prev, b.overlap); tail != "" {
		b.write(tail)
	}
}

func (b *chunkBuilder) write(s string) {
	b.current.WriteString(s)
	b.size += utf8.RuneCountInString(s)
}

func (b *chunkBuilder) result() []string {
	if strings.TrimSpace(b.current.String()) != "" {
		b.chunks = append(b.chunks, strings.TrimSpace(b.current.String()))
	}
	return b.chunks
}

// ChunkText implements TextChunker. Paragraphs are kept whole where they fit,
// longer ones are split on sentence boundaries.
func (tc *textChunker) ChunkText(text string, maxChunkSize int, overlap int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChunkSize {
		overlap = maxChunkSize / 4
	}

	b := &chunkBuilder{max: maxChunkSize, overlap: overlap}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if utf8.RuneCountInString(para) <= maxChunkSize {
			b.add(para, "\n\n")
			continue
		}

		for _, sentence := range splitIntoSentences(para) {
			b.add(sentence, " ")
		}
	}

	return b.result()
}

// splitIntoSentences cuts after '.', '!' and '?' and at line breaks. The
// terminal punctuation stays with its sentence.
func splitIntoSentences(text string) []string {
	var result []string
	appendTrimmed := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			result = append(result, s)
		}
	}

	start := 0
	for i, r := range text {
		switch r {
		case '.', '!', '?':
			appendTrimmed(text[start : i+1])
			start = i + 1
		case '\n':
			appendTrimmed(text[start:i])
			start = i + 1
		}
	}
	appendTrimmed(text[start:])

	return result
}

func lastRunes(text string, n int) string {
	if n <= 0 {
		return ""
	}

	runes := []rune(text)
	if len(runes) <= n {
		return text
	}

	return string(runes[len(runes)-n:])
}
