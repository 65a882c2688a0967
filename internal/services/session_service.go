package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/careertrack/researchbot/internal/chunker"
	"github.com/careertrack/researchbot/internal/composer"
	"github.com/careertrack/researchbot/internal/core"
	"github.com/careertrack/researchbot/internal/vectorstore"
)

// SessionService orchestrates the two operations of the pipeline: ingest a
// document under a session identifier, and answer questions against it.
//
// The filesystem is the source of truth for session state; the in-process
// lock registry only serializes writers per session. Concurrent ingests for
// the same session resolve to exactly one complete index (last writer wins,
// the store's rename keeps replaces atomic), and asks run in parallel.
type SessionService struct {
	extractor core.DocumentExtractor
	chunker   *chunker.Chunker
	store     *vectorstore.Store
	composer  *composer.Composer
	embedder  core.EmbeddingProvider
	topK      int
	aiTimeout time.Duration

	locks sync.Map // session id -> *sync.RWMutex
}

func NewSessionService(
	extractor core.DocumentExtractor,
	ch *chunker.Chunker,
	store *vectorstore.Store,
	comp *composer.Composer,
	embedder core.EmbeddingProvider,
	topK int,
	aiTimeout time.Duration,
) *SessionService {
	if topK <= 0 {
		topK = vectorstore.DefaultTopK
	}
	return &SessionService{
		extractor: extractor,
		chunker:   ch,
		store:     store,
		composer:  comp,
		embedder:  embedder,
		topK:      topK,
		aiTimeout: aiTimeout,
	}
}

// Ingest extracts, chunks, embeds and persists a document for the session.
// Returns the number of indexed chunks. The index is built fully in memory
// and saved in one atomic replace, so a failed ingest leaves any previously
// saved index for the session untouched.
func (s *SessionService) Ingest(ctx context.Context, sessionID string, data []byte, contentType string) (int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	text, err := s.extractor.ExtractText(ctx, data, contentType)
	if err != nil {
		return 0, err
	}

	chunks := s.chunker.Split(text)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("%w: document produced no chunks", core.ErrExtraction)
	}

	index, err := s.store.Build(ctx, chunks)
	if err != nil {
		return 0, err
	}

	mu := s.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()
	if err := s.store.Save(index, sessionID); err != nil {
		return 0, err
	}

	log.Printf("session %s: indexed %d chunks", sessionID, len(chunks))
	return len(chunks), nil
}

// Ask answers a question against the session's index. The not-found check
// happens before any embedding call, so unknown sessions cost nothing.
func (s *SessionService) Ask(ctx context.Context, sessionID string, question string) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	contextChunks, err := s.retrieve(ctx, sessionID, question)
	if err != nil {
		return "", err
	}

	return s.composer.Answer(ctx, question, contextChunks)
}

// retrieve loads the index, embeds the question, and returns the nearest
// chunk texts. Runs under the session read lock; parallel asks don't block
// each other.
func (s *SessionService) retrieve(ctx context.Context, sessionID, question string) ([]string, error) {
	mu := s.lockFor(sessionID)
	mu.RLock()
	defer mu.RUnlock()

	index, err := s.store.Load(sessionID)
	if err != nil {
		return nil, err
	}

	vecs, err := s.embedder.EmbedTexts(ctx, []string{question})
	if err != nil || len(vecs) == 0 {
		return nil, fmt.Errorf("%w: embed question: %v", core.ErrEmbedding, err)
	}

	matches := index.Search(vecs[0], s.topK)
	chunks := make([]string, 0, len(matches))
	for _, m := range matches {
		chunks = append(chunks, m.Chunk)
	}
	return chunks, nil
}

func (s *SessionService) lockFor(sessionID string) *sync.RWMutex {
	mu, _ := s.locks.LoadOrStore(sessionID, &sync.RWMutex{})
	return mu.(*sync.RWMutex)
}

func (s *SessionService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.aiTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.aiTimeout)
}
