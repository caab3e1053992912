package services

import (
	"strings"
	"unicode/utf8"
)

const defaultGuideChunkSize = 600

// GuideChunker cuts interview guides into pieces small enough to embed as
// individual reference entries in the question bank.
type GuideChunker interface {
	Chunk(text string, maxRunes int) []string
}

type guideChunker struct{}

func NewGuideChunker() GuideChunker {
	return &guideChunker{}
}

// Chunk packs paragraphs into chunks of at most maxRunes. Numbered or
// bulleted lines count as their own paragraph so one question never spans two
// chunks. Oversized paragraphs fall back to sentence boundaries.
func (c *guideChunker) Chunk(text string, maxRunes int) []string {
	if maxRunes <= 0 {
		maxRunes = defaultGuideChunkSize
	}

	var (
		chunks  []string
		current strings.Builder
	)

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			chunks = append(chunks, s)
		}
		current.Reset()
	}

	add := func(piece, sep string) {
		if current.Len() > 0 && utf8.RuneCountInString(current.String())+utf8.RuneCountInString(sep)+utf8.RuneCountInString(piece) > maxRunes {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString(sep)
		}
		current.WriteString(piece)
	}

	for _, para := range guideParagraphs(text) {
		if utf8.RuneCountInString(para) <= maxRunes {
			add(para, "\n\n")
			continue
		}

		for _, sentence := range splitSentences(para) {
			if utf8.RuneCountInString(sentence) > maxRunes {
				flush()
				chunks = append(chunks, hardWrap(sentence, maxRunes)...)
				continue
			}
			add(sentence, " ")
		}
	}
	flush()

	return chunks
}

func guideParagraphs(text string) []string {
	var (
		paragraphs []string
		current    []string
	)

	emit := func() {
		if len(current) > 0 {
			paragraphs = append(paragraphs, strings.Join(current, " "))
			current = nil
		}
	}

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			emit()
		case listMarker.MatchString(line):
			emit()
			current = append(current, line)
		default:
			current = append(current, line)
		}
	}
	emit()

	return paragraphs
}

// splitSentences keeps the terminating punctuation on each sentence.
func splitSentences(text string) []string {
	var (
		sentences []string
		start     int
	)

	for i, r := range text {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		next := i + utf8.RuneLen(r)
		if next < len(text) && text[next] != ' ' {
			continue
		}
		if s := strings.TrimSpace(text[start:next]); s != "" {
			sentences = append(sentences, s)
		}
		start = next
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

func hardWrap(text string, maxRunes int) []string {
	runes := []rune(text)
	var out []string
	for len(runes) > maxRunes {
		out = append(out, string(runes[:maxRunes]))
		runes = runes[maxRunes:]
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}
