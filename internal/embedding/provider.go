package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
)

// ErrUnavailable is returned when a provider cannot produce a vector,
// either because the backing service failed or the word is unknown.
var ErrUnavailable = errors.New("embedding unavailable")

// ErrUnknownWord is the ErrUnavailable case for out-of-vocabulary words
var ErrUnknownWord = fmt.Errorf("%w: unknown word", ErrUnavailable)

// Provider maps token sequences to fixed-dimension vectors
type Provider interface {
	Embed(ctx context.Context, tokens []string) ([]float64, error)
	Similarity(a, b []float64) float64
}

// CosineSimilarity computes similarity between two embeddings (-1 to 1)
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// AverageEmbeddings computes the centroid of multiple embeddings
func AverageEmbeddings(embeddings [][]float64) []float64 {
	if len(embeddings) == 0 {
		return nil
	}

	dims := len(embeddings[0])
	result := make([]float64, dims)

	n := 0
	for _, emb := range embeddings {
		if len(emb) != dims {
			continue // skip mismatched dimensions
		}
		for i, v := range emb {
			result[i] += v
		}
		n++
	}

	for i := range result {
		result[i] /= float64(n)
	}

	return result
}

// Cache memoizes a Provider's vectors by joined token text. The wrapped
// provider's Similarity is used unchanged.
type Cache struct {
	Provider
	mu      sync.RWMutex
	vectors map[string][]float64
}

// NewCache wraps p with an in-memory vector cache
func NewCache(p Provider) *Cache {
	return &Cache{Provider: p, vectors: make(map[string][]float64)}
}

// Embed returns the cached vector or asks the wrapped provider.
// Failures are not cached.
func (c *Cache) Embed(ctx context.Context, tokens []string) ([]float64, error) {
	key := strings.Join(tokens, " ")

	c.mu.RLock()
	vec, ok := c.vectors[key]
	c.mu.RUnlock()
	if ok {
		return vec, nil
	}

	vec, err := c.Provider.Embed(ctx, tokens)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.vectors[key] = vec
	c.mu.Unlock()
	return vec, nil
}

// Len returns the number of cached entries
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.vectors)
}
