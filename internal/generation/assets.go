package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ezanim/backend/internal/config"
	"github.com/ezanim/backend/internal/logging"
)

// AssetSearcher finds illustrations similar to a query. Failures never
// propagate past this boundary: the lookup only enriches prompts, so a broken
// or absent search service degrades to an empty result.
type AssetSearcher interface {
	Search(ctx context.Context, query string, k int) []Asset
}

// ChromaSearcher queries a ChromaDB collection over its REST API.
type ChromaSearcher struct {
	baseURL    string
	collection string
	httpClient *http.Client
}

// NewChromaSearcher constructs a searcher from configuration. A nil searcher
// is returned when no URL is configured.
func NewChromaSearcher(cfg config.AssetSearchConfig) *ChromaSearcher {
	if cfg.BaseURL == "" {
		return nil
	}
	return &ChromaSearcher{
		baseURL:    cfg.BaseURL,
		collection: cfg.Collection,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type chromaQuery struct {
	QueryTexts []string `json:"query_texts"`
	NResults   int      `json:"n_results"`
}

type chromaResult struct {
	Metadatas [][]map[string]any `json:"metadatas"`
}

// Search returns up to k assets similar to the query, or nil on any failure.
func (s *ChromaSearcher) Search(ctx context.Context, query string, k int) []Asset {
	if s == nil {
		return nil
	}
	logger := logging.FromContext(ctx)

	body, err := json.Marshal(chromaQuery{QueryTexts: []string{query}, NResults: k})
	if err != nil {
		logger.Warn("asset search encode failed", "error", err)
		return nil
	}

	url := fmt.Sprintf("%s/api/v1/collections/%s/query", s.baseURL, s.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		logger.Warn("asset search request failed", "error", err)
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		logger.Warn("asset search call failed", "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn("asset search returned error status", "status", resp.StatusCode)
		return nil
	}

	var result chromaResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		logger.Warn("asset search decode failed", "error", err)
		return nil
	}
	if len(result.Metadatas) == 0 {
		return nil
	}

	var assets []Asset
	for _, meta := range result.Metadatas[0] {
		if meta == nil {
			continue
		}
		asset := Asset{}
		if name, ok := meta["name"].(string); ok {
			asset.Name = name
		}
		if content, ok := meta["svg"].(string); ok {
			asset.Content = content
		}
		if asset.Content != "" {
			assets = append(assets, asset)
		}
	}
	return assets
}
