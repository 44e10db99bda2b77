package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/seanblong/podsearch/internal/ai"
	"github.com/seanblong/podsearch/internal/config"
	"github.com/seanblong/podsearch/internal/index"
	"github.com/seanblong/podsearch/internal/ingest"
)

func main() {
	// Create flagset for configuration
	fs := pflag.NewFlagSet("podsearch-ingest", pflag.ExitOnError)

	// Load configuration
	cfg, err := config.Load("", fs)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	fs.Usage = cfg.Usage

	// Set up logging
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Invalid log level '%s': %v", cfg.LogLevel, err)
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()

	// VertexAI authenticates via application default credentials, stub needs
	// nothing; only OpenAI requires a key up front.
	provider := strings.ToLower(cfg.Provider)
	if provider == "openai" && cfg.APIKey == "" {
		log.Fatalf("API key is required for provider %s", cfg.Provider)
	}

	var clientConfig *ai.ClientConfig
	switch provider {
	case "openai":
		clientConfig = &ai.ClientConfig{
			APIKey:      cfg.APIKey,
			EmbedModel:  cfg.EmbedModel,
			AnswerModel: cfg.AnswerModel,
			Dim:         cfg.Dim,
			ProjectID:   cfg.ProjectID,
			Provider:    ai.ProviderOpenAI,
		}
	case "vertexai", "google":
		if cfg.ProjectID == "" {
			log.Fatalf("Project ID is required for provider %s", cfg.Provider)
		}
		clientConfig = &ai.ClientConfig{
			APIKey:      cfg.APIKey,
			EmbedModel:  cfg.EmbedModel,
			AnswerModel: cfg.AnswerModel,
			Dim:         cfg.Dim,
			ProjectID:   cfg.ProjectID,
			Location:    cfg.Location,
			Provider:    ai.ProviderVertexAI,
		}
	case "stub":
		clientConfig = &ai.ClientConfig{Dim: cfg.Dim, Provider: ai.ProviderStub}
	default:
		log.Fatalf("Unsupported provider: %s", cfg.Provider)
	}

	client, err := ai.NewClient(clientConfig)
	if err != nil {
		log.Fatalf("Failed to create AI client: %v", err)
	}

	ctx := context.Background()
	start := time.Now()

	processor := ingest.NewProcessor(cfg.TranscriptRoot)
	processor.MaxTokens = cfg.MaxTokens
	processor.OverlapTokens = cfg.OverlapTokens

	chunks, err := processor.Chunks(ctx)
	if err != nil {
		log.Fatalf("Failed to chunk transcripts: %v", err)
	}
	if len(chunks) == 0 {
		log.Fatalf("No chunks produced from %s, nothing to ingest", cfg.TranscriptRoot)
	}
	logger.Info().Int("chunks", len(chunks)).Str("root", cfg.TranscriptRoot).Msg("transcripts chunked")

	store, err := index.New(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	if err := store.Migrate(ctx, client.Dim()); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	pipeline := ingest.NewPipeline(client, store)
	if err := pipeline.Run(ctx, chunks); err != nil {
		log.Fatalf("Ingestion failed: %v", err)
	}

	logger.Info().Int("chunks", len(chunks)).Dur("took", time.Since(start)).Msg("ingestion complete")
}
