package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careertrack/researchbot/internal/chunker"
	"github.com/careertrack/researchbot/internal/composer"
	"github.com/careertrack/researchbot/internal/core"
	"github.com/careertrack/researchbot/internal/vectorstore"
)

// textExtractor treats the upload body as plain text, mirroring the real
// extractor's reject-empty policy.
type textExtractor struct{}

func (textExtractor) ExtractText(_ context.Context, data []byte, _ string) (string, error) {
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", core.ErrExtraction
	}
	return text, nil
}

var markers = []string{"alpha", "bravo", "charlie", "delta"}

// markerEmbedder embeds text as normalized marker-word counts, which biases
// similarity search toward chunks sharing the question's marker.
type markerEmbedder struct {
	calls atomic.Int64
	fail  atomic.Bool
}

func (m *markerEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	m.calls.Add(1)
	if m.fail.Load() {
		return nil, errors.New("embedder down")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v := make([]float32, len(markers)+1)
		for j, marker := range markers {
			v[j] = float32(strings.Count(t, marker))
		}
		v[len(markers)] = 0.01 // keep vectors non-zero for marker-free text
		out[i] = v
	}
	return out, nil
}

// captureLLM records the prompt it was asked with and returns a canned answer.
type captureLLM struct {
	mu      sync.Mutex
	prompts []string
}

func (c *captureLLM) Generate(_ context.Context, _, userPrompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, userPrompt)
	return "stub answer", nil
}

func (c *captureLLM) lastPrompt() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.prompts) == 0 {
		return ""
	}
	return c.prompts[len(c.prompts)-1]
}

type fixture struct {
	svc      *SessionService
	embedder *markerEmbedder
	llm      *captureLLM
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	emb := &markerEmbedder{}
	llm := &captureLLM{}
	ch, err := chunker.New(60, 0)
	require.NoError(t, err)
	store := vectorstore.NewStore(t.TempDir(), emb, 16, "marker-stub")

	svc := NewSessionService(textExtractor{}, ch, store, composer.New(llm), emb, 4, 5*time.Second)
	return &fixture{svc: svc, embedder: emb, llm: llm}
}

// region builds a 60-character block dominated by one marker word, matching
// the fixture's chunk size so every chunk carries exactly one marker.
func region(marker string) string {
	block := strings.Repeat(marker+" ", 60/(len(marker)+1)+1)
	return block[:60]
}

func TestIngestThenAsk(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc := region("alpha") + region("bravo") + region("charlie")
	n, err := f.svc.Ingest(ctx, "s1", []byte(doc), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	answer, err := f.svc.Ask(ctx, "s1", "tell me about bravo")
	require.NoError(t, err)
	assert.Equal(t, "stub answer", answer)

	prompt := f.llm.lastPrompt()
	assert.Contains(t, prompt, "tell me about bravo")
	// The bravo chunk must rank first in the retrieved context.
	assert.True(t, strings.Index(prompt, "bravo bravo") < strings.Index(prompt, "alpha alpha"),
		"bravo chunk should precede others in the prompt")
}

func TestAskUnknownSessionSkipsEmbedding(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Ask(context.Background(), "nonexistent", "anything")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
	assert.Zero(t, f.embedder.calls.Load(), "no embedding call before the not-found check")
}

func TestReingestOverwrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Ingest(ctx, "s", []byte(region("alpha")+region("alpha")), "text/plain")
	require.NoError(t, err)
	_, err = f.svc.Ingest(ctx, "s", []byte(region("delta")+region("delta")), "text/plain")
	require.NoError(t, err)

	_, err = f.svc.Ask(ctx, "s", "what about delta")
	require.NoError(t, err)

	prompt := f.llm.lastPrompt()
	assert.Contains(t, prompt, "delta")
	assert.NotContains(t, prompt, "alpha", "overwritten index must not leak old chunks")
}

func TestSessionIsolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Ingest(ctx, "a", []byte(region("alpha")), "text/plain")
	require.NoError(t, err)
	_, err = f.svc.Ingest(ctx, "b", []byte(region("bravo")), "text/plain")
	require.NoError(t, err)

	_, err = f.svc.Ask(ctx, "a", "tell me about bravo")
	require.NoError(t, err)

	prompt := f.llm.lastPrompt()
	assert.Contains(t, prompt, "alpha")
	assert.NotContains(t, prompt, "bravo bravo", "session a must never see session b's chunks")
}

func TestIngestEmptyDocumentRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Ingest(context.Background(), "s", []byte("   \n  "), "text/plain")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrExtraction)

	_, err = f.svc.Ask(context.Background(), "s", "anything")
	assert.ErrorIs(t, err, core.ErrSessionNotFound, "failed ingest must not create a session")
}

func TestIngestFailureKeepsPriorIndex(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Ingest(ctx, "s", []byte(region("alpha")), "text/plain")
	require.NoError(t, err)

	f.embedder.fail.Store(true)
	_, err = f.svc.Ingest(ctx, "s", []byte(region("bravo")), "text/plain")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrEmbedding)
	f.embedder.fail.Store(false)

	_, err = f.svc.Ask(ctx, "s", "still there?")
	require.NoError(t, err)
	assert.Contains(t, f.llm.lastPrompt(), "alpha", "prior index must survive a failed re-ingest")
}

func TestConcurrentIngestLastWriterWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	docA := region("alpha") + region("alpha") + region("alpha")
	docB := region("bravo") + region("bravo") + region("bravo")

	var wg sync.WaitGroup
	for _, doc := range []string{docA, docB} {
		wg.Add(1)
		go func(d string) {
			defer wg.Done()
			_, err := f.svc.Ingest(ctx, "race", []byte(d), "text/plain")
			assert.NoError(t, err)
		}(doc)
	}
	wg.Wait()

	_, err := f.svc.Ask(ctx, "race", "alpha bravo")
	require.NoError(t, err)

	prompt := f.llm.lastPrompt()
	hasA := strings.Contains(prompt, "alpha alpha")
	hasB := strings.Contains(prompt, "bravo bravo")
	assert.True(t, hasA != hasB, "index must match exactly one document, never a mixture")
}
