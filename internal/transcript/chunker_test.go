package transcript

import (
	"fmt"
	"strings"
	"testing"

	"github.com/seanblong/podsearch/pkg/models"
)

var testMeta = models.TranscriptMetadata{
	Guest:   "Test Guest",
	Title:   "Test Episode",
	VideoID: "abc123",
}

// makeTurn builds a turn whose "speaker: text" estimate is roughly tokens.
func makeTurn(speaker string, seconds, tokens int) models.SpeakerTurn {
	textLen := tokens*4 - len(speaker) - 2
	if textLen < 1 {
		textLen = 1
	}
	return models.SpeakerTurn{
		Speaker:          speaker,
		Timestamp:        fmt.Sprintf("00:%02d:%02d", seconds/60, seconds%60),
		TimestampSeconds: seconds,
		Text:             strings.Repeat("x", textLen),
	}
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"abcd", 1},
		{"abcde", 2},
		{strings.Repeat("a", 3000), 750},
	}
	for _, tt := range tests {
		if got := EstimateTokens(tt.in); got != tt.want {
			t.Errorf("EstimateTokens(len %d) = %d, want %d", len(tt.in), got, tt.want)
		}
	}
}

func TestSanitizeSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain-slug", "plain-slug"},
		{"café-del-mar", "cafe-del-mar"},
		{"Łukasz-様-episode", "ukasz--episode"},
		{"Beyoncé", "Beyonce"},
	}
	for _, tt := range tests {
		if got := SanitizeSlug(tt.in); got != tt.want {
			t.Errorf("SanitizeSlug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestChunkTurnsEmpty(t *testing.T) {
	if got := ChunkTurns(nil, testMeta, "ep", 600, 100); got != nil {
		t.Errorf("expected no chunks for no turns, got %d", len(got))
	}
}

func TestChunkTurnsSingleChunk(t *testing.T) {
	turns := []models.SpeakerTurn{
		makeTurn("A", 5, 100),
		makeTurn("B", 60, 100),
	}
	chunks := ChunkTurns(turns, testMeta, "ep", 600, 100)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	c := chunks[0]
	if c.ID != "ep-0" {
		t.Errorf("id = %q, want ep-0", c.ID)
	}
	if c.Speaker != "A" || c.TimestampSeconds != 5 {
		t.Errorf("anchor = %s@%d, want A@5", c.Speaker, c.TimestampSeconds)
	}
	if c.Guest != testMeta.Guest || c.Title != testMeta.Title || c.VideoID != testMeta.VideoID {
		t.Errorf("metadata not inherited: %+v", c)
	}
	if !strings.Contains(c.Text, "A: ") || !strings.Contains(c.Text, "B: ") {
		t.Errorf("chunk text missing turns: %q", c.Text[:40])
	}
}

func TestChunkTurnsBound(t *testing.T) {
	var turns []models.SpeakerTurn
	for i := 0; i < 20; i++ {
		turns = append(turns, makeTurn("S", i*30, 150))
	}
	chunks := ChunkTurns(turns, testMeta, "ep", 600, 100)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		est := 0
		parts := strings.Split(c.Text, "\n\n")
		for _, p := range parts {
			est += EstimateTokens(p)
		}
		if est > 600 && len(parts) > 1 {
			t.Errorf("chunk %s estimate %d exceeds bound with %d turns", c.ID, est, len(parts))
		}
	}
}

func TestChunkTurnsOversizedTurn(t *testing.T) {
	// A 3000 character turn is ~750 estimated tokens, above the 600 bound.
	turn := models.SpeakerTurn{
		Speaker:          "Guest",
		Timestamp:        "00:10:00",
		TimestampSeconds: 600,
		Text:             strings.Repeat("y", 3000),
	}
	chunks := ChunkTurns([]models.SpeakerTurn{turn}, testMeta, "ep", 600, 100)
	if len(chunks) != 1 {
		t.Fatalf("expected exactly 1 chunk, got %d", len(chunks))
	}
	if !strings.Contains(chunks[0].Text, turn.Text) {
		t.Error("oversized turn was truncated")
	}
}

func TestChunkTurnsOverlap(t *testing.T) {
	var turns []models.SpeakerTurn
	for i := 0; i < 10; i++ {
		turns = append(turns, makeTurn(fmt.Sprintf("S%d", i), i*30, 150))
	}
	chunks := ChunkTurns(turns, testMeta, "ep", 500, 100)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		prev := strings.Split(chunks[i-1].Text, "\n\n")
		cur := strings.Split(chunks[i].Text, "\n\n")
		// The next chunk must open with the trailing turns of the previous one.
		if cur[0] != prev[len(prev)-1] {
			t.Errorf("chunk %d does not start with previous chunk's overlap turn", i)
		}
	}
}

func TestChunkTurnsOverlapAnchor(t *testing.T) {
	var turns []models.SpeakerTurn
	for i := 0; i < 10; i++ {
		turns = append(turns, makeTurn(fmt.Sprintf("S%d", i), i*30, 150))
	}
	chunks := ChunkTurns(turns, testMeta, "ep", 500, 100)
	for i := 1; i < len(chunks); i++ {
		first := strings.SplitN(strings.Split(chunks[i].Text, "\n\n")[0], ":", 2)[0]
		if chunks[i].Speaker != first {
			t.Errorf("chunk %d anchor speaker %q != first turn speaker %q", i, chunks[i].Speaker, first)
		}
	}
}

func TestChunkTurnsMonotonicTimestamps(t *testing.T) {
	var turns []models.SpeakerTurn
	for i := 0; i < 15; i++ {
		turns = append(turns, makeTurn("S", i*45, 200))
	}
	chunks := ChunkTurns(turns, testMeta, "ep", 600, 100)
	for i := 1; i < len(chunks); i++ {
		if chunks[i].TimestampSeconds < chunks[i-1].TimestampSeconds {
			t.Errorf("chunk %d anchor %ds precedes chunk %d anchor %ds",
				i, chunks[i].TimestampSeconds, i-1, chunks[i-1].TimestampSeconds)
		}
	}
}

func TestChunkTurnsNoTextLost(t *testing.T) {
	var turns []models.SpeakerTurn
	for i := 0; i < 12; i++ {
		turns = append(turns, models.SpeakerTurn{
			Speaker:          fmt.Sprintf("S%d", i),
			Timestamp:        fmt.Sprintf("00:%02d:00", i),
			TimestampSeconds: i * 60,
			Text:             fmt.Sprintf("unique sentence number %d %s", i, strings.Repeat("w", 400)),
		})
	}
	chunks := ChunkTurns(turns, testMeta, "ep", 300, 50)
	all := strings.Builder{}
	for _, c := range chunks {
		all.WriteString(c.Text)
		all.WriteString("\n")
	}
	for i := range turns {
		marker := fmt.Sprintf("unique sentence number %d ", i)
		if !strings.Contains(all.String(), marker) {
			t.Errorf("turn %d text missing from emitted chunks", i)
		}
	}
}

func TestChunkTurnsIDs(t *testing.T) {
	var turns []models.SpeakerTurn
	for i := 0; i < 10; i++ {
		turns = append(turns, makeTurn("S", i*30, 200))
	}
	chunks := ChunkTurns(turns, testMeta, "épisode-01", 400, 50)
	seen := map[string]bool{}
	for i, c := range chunks {
		want := fmt.Sprintf("episode-01-%d", i)
		if c.ID != want {
			t.Errorf("chunk %d id = %q, want %q", i, c.ID, want)
		}
		if seen[c.ID] {
			t.Errorf("duplicate chunk id %q", c.ID)
		}
		seen[c.ID] = true
		if c.EpisodeSlug != "épisode-01" {
			t.Errorf("episode slug altered: %q", c.EpisodeSlug)
		}
	}
}
