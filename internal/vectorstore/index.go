package vectorstore

import (
	"sort"
	"time"
)

// DefaultTopK is how many chunks a search returns when the caller does not say.
const DefaultTopK = 4

// Index is the searchable collection of (chunk, embedding) pairs for one
// session. chunks[i] corresponds to embeddings[i]. Read-only after build.
type Index struct {
	Chunks     []string
	Embeddings [][]float32
	Dimension  int
	Model      string
	CreatedAt  time.Time
}

// Match is a single search hit.
type Match struct {
	Chunk    string
	Distance float32
}

// Search returns the k chunks nearest to the query vector by cosine distance,
// closest first. Ties break by insertion order. k <= 0 means DefaultTopK;
// k larger than the index is clamped.
func (idx *Index) Search(query []float32, k int) []Match {
	if k <= 0 {
		k = DefaultTopK
	}
	if k > len(idx.Chunks) {
		k = len(idx.Chunks)
	}

	order := make([]int, len(idx.Chunks))
	dists := make([]float32, len(idx.Chunks))
	for i := range idx.Chunks {
		order[i] = i
		dists[i] = CosineDistance(query, idx.Embeddings[i])
	}
	sort.SliceStable(order, func(a, b int) bool {
		return dists[order[a]] < dists[order[b]]
	})

	out := make([]Match, 0, k)
	for _, i := range order[:k] {
		out = append(out, Match{Chunk: idx.Chunks[i], Distance: dists[i]})
	}
	return out
}

// CosineDistance is 1 - cosine similarity; 0 for identical directions.
// Mismatched or zero vectors get the maximum distance instead of an error so
// a single bad vector cannot fail a whole search.
func CosineDistance(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 2
	}
	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 2
	}
	sim := dot / (sqrt32(normA) * sqrt32(normB))
	return 1 - sim
}
