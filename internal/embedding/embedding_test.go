package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1},
		{"length mismatch", []float64{1, 0}, []float64{1}, 0},
		{"zero vector", []float64{0, 0}, []float64{1, 1}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CosineSimilarity(tc.a, tc.b)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("CosineSimilarity = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAverageEmbeddings(t *testing.T) {
	got := AverageEmbeddings([][]float64{{1, 2}, {3, 4}, {9}})
	want := []float64{2, 3}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("AverageEmbeddings = %v, want %v", got, want)
	}
	if AverageEmbeddings(nil) != nil {
		t.Error("expected nil for no embeddings")
	}
}

func TestClientEmbed(t *testing.T) {
	var gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			http.NotFound(w, r)
			return
		}
		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotPrompt = req.Prompt
		json.NewEncoder(w).Encode(embeddingResponse{Embedding: []float64{0.5, 0.25}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "test-model")
	if c.Model() != "test-model" {
		t.Errorf("Model() = %q", c.Model())
	}

	vec, err := c.Embed(context.Background(), []string{"blue", "milk"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if gotPrompt != "blue milk" {
		t.Errorf("prompt = %q, want tokens joined by spaces", gotPrompt)
	}
	if len(vec) != 2 || vec[0] != 0.5 {
		t.Errorf("unexpected vector %v", vec)
	}
}

func TestClientEmbedFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	if _, err := c.Embed(context.Background(), []string{"droid"}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable on HTTP error, got %v", err)
	}
	if _, err := c.Embed(context.Background(), nil); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable on empty text, got %v", err)
	}
}

type countingProvider struct {
	calls int
}

func (p *countingProvider) Embed(_ context.Context, tokens []string) ([]float64, error) {
	p.calls++
	if len(tokens) == 0 {
		return nil, ErrUnavailable
	}
	return []float64{float64(len(tokens[0]))}, nil
}

func (p *countingProvider) Similarity(a, b []float64) float64 {
	return CosineSimilarity(a, b)
}

func TestCache(t *testing.T) {
	inner := &countingProvider{}
	c := NewCache(inner)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := c.Embed(ctx, []string{"spice"}); err != nil {
			t.Fatalf("Embed failed: %v", err)
		}
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 backend call, got %d", inner.calls)
	}

	if _, err := c.Embed(ctx, nil); err == nil {
		t.Error("expected error for empty tokens")
	}
	if c.Len() != 1 {
		t.Errorf("failures must not be cached, Len() = %d", c.Len())
	}
	if c.Similarity([]float64{1}, []float64{1}) != 1 {
		t.Error("Similarity should delegate to the wrapped provider")
	}
}

func TestVectorStore(t *testing.T) {
	ctx := context.Background()
	store, err := OpenVectorStore(filepath.Join(t.TempDir(), "vectors", "words.db"))
	if err != nil {
		t.Fatalf("OpenVectorStore failed: %v", err)
	}
	defer store.Close()

	glove := strings.Join([]string{
		"400000 3", // word2vec header, skipped
		"drink 1.0 0.0 0.0",
		"milk 0.9 0.1 0.0",
		"droid 0.0 1.0 0.0",
		"broken 0.0 x 0.0",
		"",
	}, "\n")

	n, err := store.Import(ctx, strings.NewReader(glove), 0)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if n != 3 {
		t.Errorf("imported %d, want 3", n)
	}
	if count, _ := store.Count(ctx); count != 3 {
		t.Errorf("Count = %d, want 3", count)
	}

	vec, err := store.Lookup(ctx, "Milk")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if math.Abs(vec[0]-0.9) > 1e-6 {
		t.Errorf("float32 round trip lost precision: %v", vec)
	}

	_, err = store.Lookup(ctx, "wookiee")
	if !errors.Is(err, ErrUnknownWord) || !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnknownWord, got %v", err)
	}

	avg, err := store.Embed(ctx, []string{"drink", "wookiee", "droid"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if math.Abs(avg[0]-0.5) > 1e-6 || math.Abs(avg[1]-0.5) > 1e-6 {
		t.Errorf("expected average of known words, got %v", avg)
	}

	if _, err := store.Embed(ctx, []string{"wookiee"}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable when nothing is known, got %v", err)
	}

	drink, _ := store.Embed(ctx, []string{"drink"})
	milk, _ := store.Embed(ctx, []string{"milk"})
	droid, _ := store.Embed(ctx, []string{"droid"})
	if store.Similarity(drink, milk) <= store.Similarity(drink, droid) {
		t.Error("milk should be closer to drink than droid is")
	}
}

func TestVectorStoreImportDimensionMismatch(t *testing.T) {
	store, err := OpenVectorStore(filepath.Join(t.TempDir(), "words.db"))
	if err != nil {
		t.Fatalf("OpenVectorStore failed: %v", err)
	}
	defer store.Close()

	_, err = store.Import(context.Background(), strings.NewReader("a 1 2\nb 1 2 3\n"), 0)
	if err == nil {
		t.Fatal("expected dimension mismatch error")
	}
	if count, _ := store.Count(context.Background()); count != 0 {
		t.Errorf("failed import must roll back, Count = %d", count)
	}
}

func TestVectorStoreImportLimit(t *testing.T) {
	store, err := OpenVectorStore(filepath.Join(t.TempDir(), "words.db"))
	if err != nil {
		t.Fatalf("OpenVectorStore failed: %v", err)
	}
	defer store.Close()

	n, err := store.Import(context.Background(), strings.NewReader("a 1 2\nb 3 4\nc 5 6\n"), 2)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if n != 2 {
		t.Errorf("imported %d, want 2", n)
	}
}
