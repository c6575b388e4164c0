package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/fenrirlab/groqrelay/internal/types"
)

// ChatCompletions validates params, forwards them upstream, and relays the
// response. On success the response has already been written to w; a non-nil
// error means nothing was written and the caller renders the envelope.
func (c *Client) ChatCompletions(ctx context.Context, w http.ResponseWriter, params *types.ChatCompletionRequest, apiKey string) error {
	if params.Model == "" {
		params.Model = c.catalog.Default()
	}
	if c.validateModels {
		if _, ok := c.catalog.Lookup(params.Model); !ok {
			return types.BadRequest(fmt.Sprintf("model %q is not supported", params.Model))
		}
	}
	if len(params.Messages) == 0 {
		return types.BadRequest("messages must be a non-empty array")
	}
	// An empty stop list must vanish from the upstream body, not serialize
	// as null or [].
	if params.Stop != nil && len(params.Stop.Values) == 0 {
		params.Stop = nil
	}

	// Re-marshalling the typed request copies every recognized parameter and
	// omits absent optionals, so upstream never sees an explicit null.
	body, err := json.Marshal(params)
	if err != nil {
		return types.Internal("failed to encode upstream request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return types.Internal("failed to build upstream request")
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return types.NewRelayError(http.StatusBadGateway, "upstream request failed: "+err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.upstreamError(resp)
	}

	if params.Stream {
		return c.streamResponse(w, resp)
	}
	return c.bufferedJSON(w, resp, nil)
}

// bufferedJSON fully decodes the upstream body and re-serializes it as a
// single JSON response. extraHeaders, if any, are set before the write.
func (c *Client) bufferedJSON(w http.ResponseWriter, resp *http.Response, extraHeaders map[string]string) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.NewRelayError(http.StatusBadGateway, "failed to read upstream response")
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return types.NewRelayError(http.StatusBadGateway, "upstream returned malformed JSON")
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return types.Internal("failed to encode response")
	}

	h := w.Header()
	types.SetCORS(h)
	h.Set("Content-Type", "application/json")
	for k, v := range extraHeaders {
		h.Set(k, v)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
	return nil
}
