package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client handles embedding generation via Ollama
type Client struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewClient creates a new Ollama embedding client
func NewClient(baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "nomic-embed-text" // good default, 768 dims
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Model returns the configured embedding model name
func (c *Client) Model() string {
	return c.model
}

// embeddingRequest is the Ollama API request format
type embeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// embeddingResponse is the Ollama API response format
type embeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Embed generates one embedding for the tokens joined by spaces
func (c *Client) Embed(ctx context.Context, tokens []string) ([]float64, error) {
	text := strings.TrimSpace(strings.Join(tokens, " "))
	if text == "" {
		return nil, fmt.Errorf("%w: empty text", ErrUnavailable)
	}

	jsonBody, err := json.Marshal(embeddingRequest{
		Model:  c.model,
		Prompt: text,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/embeddings", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: ollama request: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: ollama error (status %d): %s", ErrUnavailable, resp.StatusCode, string(body))
	}

	var result embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrUnavailable, err)
	}

	if len(result.Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding returned", ErrUnavailable)
	}

	return result.Embedding, nil
}

// Similarity is cosine similarity
func (c *Client) Similarity(a, b []float64) float64 {
	return CosineSimilarity(a, b)
}
