package relay

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/fenrirlab/groqrelay/internal/types"
)

// Models forwards GET /models to the upstream provider and returns its JSON
// body. Listings change infrequently, so the decoded body is cached per API
// key for the configured TTL.
func (c *Client) Models(ctx context.Context, apiKey string) ([]byte, error) {
	key := modelsCacheKey(apiKey)
	if body, ok := c.modelsCache.Get(key); ok {
		return body, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return nil, types.Internal("failed to build upstream request")
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, types.NewRelayError(http.StatusBadGateway, "upstream request failed: "+err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.upstreamError(resp)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewRelayError(http.StatusBadGateway, "failed to read upstream response")
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, types.NewRelayError(http.StatusBadGateway, "upstream returned malformed JSON")
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, types.Internal("failed to encode response")
	}

	c.modelsCache.SetWithTTL(key, body, int64(len(body)), c.modelsTTL)
	c.modelsCache.Wait()
	return body, nil
}

// modelsCacheKey derives the cache key from the API key without retaining it.
func modelsCacheKey(apiKey string) string {
	sum := sha256.Sum256([]byte("models:" + apiKey))
	return hex.EncodeToString(sum[:])
}
