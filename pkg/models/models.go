package models

// TranscriptMetadata is the front-matter block attached to each episode
// transcript. Immutable once read.
type TranscriptMetadata struct {
	Guest           string `yaml:"guest" json:"guest"`
	Title           string `yaml:"title" json:"title"`
	YoutubeURL      string `yaml:"youtube_url" json:"youtube_url"`
	VideoID         string `yaml:"video_id" json:"video_id"`
	Description     string `yaml:"description" json:"description"`
	DurationSeconds int    `yaml:"duration_seconds" json:"duration_seconds"`
	Duration        string `yaml:"duration" json:"duration"`
	ViewCount       int    `yaml:"view_count" json:"view_count"`
	Channel         string `yaml:"channel" json:"channel"`
}

// SpeakerTurn is one contiguous utterance by a single speaker. Turns only
// live for the duration of chunking a single transcript.
type SpeakerTurn struct {
	Speaker          string `json:"speaker"`
	Timestamp        string `json:"timestamp"`
	TimestampSeconds int    `json:"timestampSeconds"`
	Text             string `json:"text"`
}

// Chunk is the retrieval unit: one or more consecutive turns, token-bounded,
// anchored at its first turn's speaker and timestamp.
type Chunk struct {
	ID               string `json:"id"`
	Text             string `json:"text"`
	Guest            string `json:"guest"`
	Title            string `json:"title"`
	VideoID          string `json:"videoId"`
	Timestamp        string `json:"timestamp"`
	TimestampSeconds int    `json:"timestampSeconds"`
	Speaker          string `json:"speaker"`
	EpisodeSlug      string `json:"episodeSlug"`
}

// RetrievedChunk is a Chunk returned from the vector index with its
// similarity score and a timestamped video link.
type RetrievedChunk struct {
	Chunk
	Score      float64 `json:"score"`
	YoutubeURL string  `json:"youtubeUrl"`
}

// Source is the citation summary shown alongside an answer.
type Source struct {
	Guest      string `json:"guest"`
	Title      string `json:"title"`
	Timestamp  string `json:"timestamp"`
	YoutubeURL string `json:"youtubeUrl"`
	Speaker    string `json:"speaker"`
	Snippet    string `json:"snippet"`
}

// CachedResult is a previously generated answer with its sources.
type CachedResult struct {
	Response string   `json:"response"`
	Sources  []Source `json:"sources"`
}
