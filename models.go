package lmwire

import (
	"context"
	"encoding/json"
)

// ModelInfo describes a model known to the server.
type ModelInfo struct {
	Type         string `json:"type,omitempty"`
	ModelKey     string `json:"modelKey"`
	Format       string `json:"format,omitempty"`
	DisplayName  string `json:"displayName,omitempty"`
	Path         string `json:"path,omitempty"`
	SizeBytes    int64  `json:"sizeBytes,omitempty"`
	Architecture string `json:"architecture,omitempty"`
}

// ListDownloadedModels returns every model downloaded on the server.
func (c *Client) ListDownloadedModels(ctx context.Context) ([]ModelInfo, error) {
	return c.listModels(ctx, c.system, "listDownloadedModels")
}

// ListLoadedLLMs returns the LLMs currently loaded on the server.
func (c *Client) ListLoadedLLMs(ctx context.Context) ([]ModelInfo, error) {
	return c.listModels(ctx, c.llm, "listLoaded")
}

// ListLoadedEmbeddingModels returns the embedding models currently
// loaded on the server.
func (c *Client) ListLoadedEmbeddingModels(ctx context.Context) ([]ModelInfo, error) {
	return c.listModels(ctx, c.embedding, "listLoaded")
}

func (c *Client) listModels(ctx context.Context, session *Session, endpoint string) ([]ModelInfo, error) {
	raw, err := session.RemoteCall(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}
	var models []ModelInfo
	if err := json.Unmarshal(raw, &models); err != nil {
		return nil, &WebsocketError{Message: "decode " + endpoint + " result", Err: err}
	}
	return models, nil
}
