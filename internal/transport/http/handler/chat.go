package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/fenrirlab/groqrelay/internal/transport/http/middleware"
	"github.com/fenrirlab/groqrelay/internal/types"
)

// tokenCountTimeout is the maximum time to wait for the background token
// estimate before logging without it.
const tokenCountTimeout = 100 * time.Millisecond

// ChatCompletions handles POST /v1/chat/completions. The inbound body is
// decoded into typed parameters and handed to the relay, which bifurcates
// between streamed passthrough and buffered JSON. Token counting runs in
// parallel with the upstream call and only feeds the request log.
func (h *Handlers) ChatCompletions(w http.ResponseWriter, r *http.Request) error {
	requestID := middleware.GetRequestID(r.Context())
	start := time.Now()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return types.BadRequest("failed to read request body")
	}
	r.Body.Close()

	var params types.ChatCompletionRequest
	if err := json.Unmarshal(body, &params); err != nil {
		return types.BadRequest("invalid JSON body")
	}

	tokensChan := make(chan int, 1)
	go func() {
		defer close(tokensChan)
		if h.Tokenizer != nil {
			if tokens, err := h.Tokenizer.CountRequest(&params); err == nil {
				tokensChan <- tokens
			}
		}
	}()

	apiKey := middleware.APIKey(r.Context())
	relayErr := h.Relay.ChatCompletions(r.Context(), w, &params, apiKey)

	promptTokens := 0
	select {
	case tokens, ok := <-tokensChan:
		if ok {
			promptTokens = tokens
		}
	case <-time.After(tokenCountTimeout):
		// Estimate took too long; log without it.
	}

	h.Logger.Info("chat completion",
		zap.String("request_id", requestID),
		zap.String("model", params.Model),
		zap.Bool("stream", params.Stream),
		zap.Int("prompt_tokens_est", promptTokens),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		zap.Bool("failed", relayErr != nil),
	)

	return relayErr
}
