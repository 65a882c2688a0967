package vectorstore

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/careertrack/researchbot/internal/core"
)

const indexFileName = "index.gob"

// maxConcurrentBatches bounds parallel embedding requests per build.
const maxConcurrentBatches = 4

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Store builds per-session vector indexes and persists them on disk, one
// directory per session. Saves replace the previous index atomically, so a
// concurrent reader sees either the old index or the new one, never a mix.
type Store struct {
	root      string
	embedder  core.EmbeddingProvider
	batchSize int
	model     string
}

func NewStore(root string, embedder core.EmbeddingProvider, batchSize int, model string) *Store {
	if batchSize <= 0 {
		batchSize = 16
	}
	return &Store{root: root, embedder: embedder, batchSize: batchSize, model: model}
}

// Build embeds all chunks in batches and assembles the in-memory index.
// All-or-nothing: if any batch fails, no index is returned.
func (s *Store) Build(ctx context.Context, chunks []string) (*Index, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no chunks to index", core.ErrInvalidConfig)
	}

	vectors := make([][]float32, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentBatches)
	for start := 0; start < len(chunks); start += s.batchSize {
		end := start + s.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		start, end := start, end
		g.Go(func() error {
			vecs, err := s.embedder.EmbedTexts(gctx, chunks[start:end])
			if err != nil {
				return fmt.Errorf("%w: batch [%d:%d]: %v", core.ErrEmbedding, start, end, err)
			}
			if len(vecs) != end-start {
				return fmt.Errorf("%w: batch [%d:%d] returned %d vectors", core.ErrEmbedding, start, end, len(vecs))
			}
			copy(vectors[start:end], vecs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has dimension %d, want %d", core.ErrEmbedding, i, len(v), dim)
		}
	}

	return &Index{
		Chunks:     chunks,
		Embeddings: vectors,
		Dimension:  dim,
		Model:      s.model,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// Save serializes the index into the session directory, writing a temp file
// first and renaming it over the final path. Rename within one directory is
// atomic on POSIX filesystems, which gives last-writer-wins overwrites.
func (s *Store) Save(index *Index, sessionID string) error {
	dir, err := s.sessionDir(sessionID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, indexFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp index: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(index); err != nil {
		tmp.Close()
		return fmt.Errorf("encode index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp index: %w", err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(dir, indexFileName)); err != nil {
		return fmt.Errorf("replace index: %w", err)
	}
	return nil
}

// Load reads the persisted index for the session.
func (s *Store) Load(sessionID string) (*Index, error) {
	dir, err := s.sessionDir(sessionID)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(dir, indexFileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", core.ErrSessionNotFound, sessionID)
		}
		return nil, fmt.Errorf("open index: %w", err)
	}
	defer f.Close()

	var index Index
	if err := gob.NewDecoder(f).Decode(&index); err != nil {
		return nil, fmt.Errorf("decode index for %q: %w", sessionID, err)
	}
	return &index, nil
}

// sessionDir maps a session identifier onto its directory, rejecting
// identifiers that could escape the index root.
func (s *Store) sessionDir(sessionID string) (string, error) {
	if !sessionIDPattern.MatchString(sessionID) {
		return "", fmt.Errorf("%w: invalid session id %q", core.ErrInvalidConfig, sessionID)
	}
	return filepath.Join(s.root, sessionID), nil
}

func sqrt32(f float32) float32 {
	return float32(math.Sqrt(float64(f)))
}
