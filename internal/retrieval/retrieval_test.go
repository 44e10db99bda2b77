package retrieval

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/seanblong/podsearch/internal/index"
	"github.com/seanblong/podsearch/pkg/models"
)

// MockClient implements the ai.Client interface for testing.
type MockClient struct {
	EmbedFunc func(ctx context.Context, text string) ([]float32, error)
}

func (m *MockClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.EmbedFunc != nil {
		return m.EmbedFunc(ctx, text)
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *MockClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

func (m *MockClient) StreamAnswer(ctx context.Context, system, prompt string, emit func(string) error) error {
	return nil
}

func (m *MockClient) Dim() int { return 3 }

// MockIndex implements index.Index for testing.
type MockIndex struct {
	QueryFunc func(ctx context.Context, vec []float32, topK int) ([]index.Match, error)
}

func (m *MockIndex) Upsert(ctx context.Context, vectors []index.Vector) error { return nil }

func (m *MockIndex) Query(ctx context.Context, vec []float32, topK int) ([]index.Match, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, vec, topK)
	}
	return nil, nil
}

func TestRetrieve(t *testing.T) {
	chunk := models.Chunk{
		ID:               "ep-0",
		Text:             "insightful content",
		Guest:            "Guest A",
		Title:            "Episode A",
		VideoID:          "vid123",
		Timestamp:        "00:12:30",
		TimestampSeconds: 750,
		Speaker:          "Guest A",
		EpisodeSlug:      "ep",
	}

	r := New(
		&MockClient{
			EmbedFunc: func(ctx context.Context, text string) ([]float32, error) {
				if text != "how to prioritize" {
					t.Errorf("embedded %q, want the raw query", text)
				}
				return []float32{1, 2, 3}, nil
			},
		},
		&MockIndex{
			QueryFunc: func(ctx context.Context, vec []float32, topK int) ([]index.Match, error) {
				if !reflect.DeepEqual(vec, []float32{1, 2, 3}) {
					t.Errorf("index queried with %v", vec)
				}
				if topK != 4 {
					t.Errorf("topK = %d, want default 4", topK)
				}
				return []index.Match{{ID: chunk.ID, Score: 0.93, Chunk: chunk}}, nil
			},
		},
	)

	got, err := r.Retrieve(context.Background(), "how to prioritize", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d chunks, want 1", len(got))
	}
	if got[0].Score != 0.93 {
		t.Errorf("score = %v", got[0].Score)
	}
	want := "https://www.youtube.com/watch?v=vid123&t=750s"
	if got[0].YoutubeURL != want {
		t.Errorf("youtube url = %q, want %q", got[0].YoutubeURL, want)
	}
}

func TestRetrieveEmptyResult(t *testing.T) {
	r := New(&MockClient{}, &MockIndex{})
	got, err := r.Retrieve(context.Background(), "nothing matches", 4)
	if err != nil {
		t.Fatalf("empty result must not be an error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d chunks, want 0", len(got))
	}
}

func TestRetrieveEmbedFailure(t *testing.T) {
	r := New(
		&MockClient{EmbedFunc: func(ctx context.Context, text string) ([]float32, error) {
			return nil, errors.New("provider down")
		}},
		&MockIndex{
			QueryFunc: func(ctx context.Context, vec []float32, topK int) ([]index.Match, error) {
				t.Error("index must not be queried when embedding fails")
				return nil, nil
			},
		},
	)
	if _, err := r.Retrieve(context.Background(), "q", 4); err == nil {
		t.Fatal("expected error")
	}
}
