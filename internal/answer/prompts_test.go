package answer

import (
	"strings"
	"testing"

	"github.com/seanblong/podsearch/pkg/models"
)

func sampleChunks() []models.RetrievedChunk {
	return []models.RetrievedChunk{
		{
			Chunk: models.Chunk{
				Text:      "Prioritize ruthlessly.",
				Guest:     "Guest A",
				Title:     "Episode A",
				Speaker:   "Guest A",
				Timestamp: "00:10:00",
			},
		},
		{
			Chunk: models.Chunk{
				Text:      "Say no more often.",
				Guest:     "Guest B",
				Title:     "Episode B",
				Speaker:   "Guest B",
				Timestamp: "01:05:30",
			},
		},
	}
}

func TestFormatContext(t *testing.T) {
	got := FormatContext(sampleChunks())

	for _, want := range []string{
		`[Source 1: "Episode A" - Guest A at 00:10:00]`,
		"Prioritize ruthlessly.",
		`[Source 2: "Episode B" - Guest B at 01:05:30]`,
		"Say no more often.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("context missing %q:\n%s", want, got)
		}
	}
	if strings.Index(got, "Source 1") > strings.Index(got, "Source 2") {
		t.Error("sources out of order")
	}
}

func TestBuildPrompt(t *testing.T) {
	got := BuildPrompt("How do you prioritize?", sampleChunks())

	if !strings.HasSuffix(got, "Question: How do you prioritize?") {
		t.Error("prompt must end with the literal question")
	}
	if !strings.Contains(got, "[Source 1:") {
		t.Error("prompt missing context blocks")
	}
}

func TestRandomQuestions(t *testing.T) {
	got := RandomQuestions(4)
	if len(got) != 4 {
		t.Fatalf("got %d questions, want 4", len(got))
	}
	seen := map[string]bool{}
	for _, q := range got {
		if seen[q] {
			t.Errorf("duplicate question %q", q)
		}
		seen[q] = true
	}

	if got := RandomQuestions(1000); len(got) != len(SuggestedQuestions) {
		t.Errorf("oversized request returned %d questions", len(got))
	}
}
