package app

import (
	"context"
	"fmt"
	"log"

	"github.com/careertrack/researchbot/internal/chunker"
	"github.com/careertrack/researchbot/internal/composer"
	"github.com/careertrack/researchbot/internal/config"
	"github.com/careertrack/researchbot/internal/core/llm"
	"github.com/careertrack/researchbot/internal/extract"
	"github.com/careertrack/researchbot/internal/services"
	"github.com/careertrack/researchbot/internal/vectorstore"
)

type App struct {
	Embedder *llm.GeminiEmbedder
	LLM      *llm.GeminiLLM
	Sessions *services.SessionService
	Server   *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	embedder, err := llm.NewGeminiEmbedder(ctx, cfg.AIAPIKey, cfg.EmbedModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the embedder: %w", err)
	}

	generator, err := llm.NewGeminiLLM(ctx, cfg.AIAPIKey, cfg.GenModel, cfg.Temperature)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the LLM: %w", err)
	}

	ch, err := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("bad chunking parameters: %w", err)
	}

	useReadability := false
	extractor := extract.NewDocconvExtractor(useReadability)
	store := vectorstore.NewStore(cfg.IndexDir, embedder, cfg.EmbedBatch, cfg.EmbedModel)
	comp := composer.New(generator)

	sessions := services.NewSessionService(extractor, ch, store, comp, embedder, cfg.TopK, cfg.AITimeout)
	log.Printf("session store rooted at %s (chunk size %d, overlap %d, top-k %d)",
		cfg.IndexDir, cfg.ChunkSize, cfg.ChunkOverlap, cfg.TopK)

	server := NewServer(cfg, sessions)

	return &App{Embedder: embedder, LLM: generator, Sessions: sessions, Server: server}, nil
}

func (a *App) Close() {
	if a.Embedder != nil {
		_ = a.Embedder.Close()
	}
	if a.LLM != nil {
		_ = a.LLM.Close()
	}
}
