package transcript

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/seanblong/podsearch/pkg/models"
)

const (
	// DefaultMaxTokens bounds the estimated size of a chunk.
	DefaultMaxTokens = 600
	// DefaultOverlapTokens bounds the context shared between consecutive chunks.
	DefaultOverlapTokens = 100
)

// EstimateTokens approximates the token count of text as ceil(len/4).
// This is a heuristic, not a model tokenization guarantee; retrieval was
// tuned against this exact estimate.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// SanitizeSlug strips diacritics and any remaining non-ASCII codepoints so
// the slug is safe to use in chunk IDs.
func SanitizeSlug(slug string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	s, _, err := transform.String(t, slug)
	if err != nil {
		s = slug
	}
	var b strings.Builder
	for _, r := range s {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func turnText(t models.SpeakerTurn) string {
	return t.Speaker + ": " + t.Text
}

// ChunkTurns packs turns into token-bounded, overlapping chunks. Turns are
// never split: a single turn larger than maxTokens still becomes its own
// chunk. When a chunk closes, the next one is seeded with whole prior turns
// walked backward until the overlap budget is met, and is anchored at the
// first turn of that overlap span. The final partial chunk is always emitted.
func ChunkTurns(turns []models.SpeakerTurn, meta models.TranscriptMetadata, episodeSlug string, maxTokens, overlapTokens int) []models.Chunk {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if overlapTokens < 0 {
		overlapTokens = DefaultOverlapTokens
	}
	if len(turns) == 0 {
		return nil
	}

	sanitized := SanitizeSlug(episodeSlug)

	var chunks []models.Chunk
	var current []string
	currentTokens := 0
	anchor := turns[0]
	index := 0

	emit := func() {
		chunks = append(chunks, models.Chunk{
			ID:               fmt.Sprintf("%s-%d", sanitized, index),
			Text:             strings.Join(current, "\n\n"),
			Guest:            meta.Guest,
			Title:            meta.Title,
			VideoID:          meta.VideoID,
			Timestamp:        anchor.Timestamp,
			TimestampSeconds: anchor.TimestampSeconds,
			Speaker:          anchor.Speaker,
			EpisodeSlug:      episodeSlug,
		})
		index++
	}

	for i, turn := range turns {
		text := turnText(turn)
		tokens := EstimateTokens(text)

		if currentTokens+tokens > maxTokens && len(current) > 0 {
			emit()

			// Seed the next chunk with whole turns walked backward until
			// the overlap budget is met.
			start := i
			overlap := 0
			for start > 0 && overlap < overlapTokens {
				start--
				overlap += EstimateTokens(turnText(turns[start]))
			}

			current = current[:0]
			currentTokens = 0
			for j := start; j < i; j++ {
				t := turnText(turns[j])
				current = append(current, t)
				currentTokens += EstimateTokens(t)
			}
			anchor = turns[start]
		}

		current = append(current, text)
		currentTokens += tokens
		if len(current) == 1 {
			anchor = turn
		}
	}

	if len(current) > 0 {
		emit()
	}

	return chunks
}
