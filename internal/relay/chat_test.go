package relay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fenrirlab/groqrelay/internal/catalog"
	"github.com/fenrirlab/groqrelay/internal/types"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New("llama3-8b-8192", catalog.Builtin())
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	return cat
}

func testClient(t *testing.T, baseURL string, validate bool) *Client {
	t.Helper()
	c, err := New(Options{
		BaseURL:        baseURL,
		Catalog:        testCatalog(t),
		ValidateModels: validate,
		SpeechModel:    "whisper-large-v3",
		ModelsCacheTTL: time.Hour,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func userMessage(text string) []types.Message {
	return []types.Message{{Role: types.RoleUser, Content: types.Content{Text: text}}}
}

func relayStatus(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var re *types.RelayError
	if !errors.As(err, &re) {
		t.Fatalf("expected *types.RelayError, got %T", err)
	}
	return re.Status
}

func TestChatCompletionsValidation(t *testing.T) {
	var upstreamCalls atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","choices":[]}`))
	}))
	defer upstream.Close()

	c := testClient(t, upstream.URL, true)

	t.Run("empty messages rejected before upstream", func(t *testing.T) {
		rec := httptest.NewRecorder()
		err := c.ChatCompletions(context.Background(), rec, &types.ChatCompletionRequest{
			Model:    "llama3-8b-8192",
			Messages: nil,
		}, "sk-test")

		if got := relayStatus(t, err); got != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", got)
		}
		if n := upstreamCalls.Load(); n != 0 {
			t.Errorf("upstream called %d times, want 0", n)
		}
	})

	t.Run("unknown model rejected with model named", func(t *testing.T) {
		rec := httptest.NewRecorder()
		err := c.ChatCompletions(context.Background(), rec, &types.ChatCompletionRequest{
			Model:    "unknown-id",
			Messages: userMessage("hi"),
		}, "sk-test")

		if got := relayStatus(t, err); got != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", got)
		}
		if !strings.Contains(err.Error(), "unknown-id") {
			t.Errorf("error %q does not name the rejected model", err.Error())
		}
		if n := upstreamCalls.Load(); n != 0 {
			t.Errorf("upstream called %d times, want 0", n)
		}
	})
}

func TestChatCompletionsDefaultModel(t *testing.T) {
	var gotModel string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotModel, _ = req["model"].(string)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x"}`))
	}))
	defer upstream.Close()

	c := testClient(t, upstream.URL, true)
	rec := httptest.NewRecorder()
	err := c.ChatCompletions(context.Background(), rec, &types.ChatCompletionRequest{
		Messages: userMessage("hi"),
	}, "sk-test")
	if err != nil {
		t.Fatalf("ChatCompletions: %v", err)
	}

	if gotModel != "llama3-8b-8192" {
		t.Errorf("upstream model = %q, want default llama3-8b-8192", gotModel)
	}
}

func TestChatCompletionsOmitsAbsentFields(t *testing.T) {
	var gotBody map[string]json.RawMessage
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x"}`))
	}))
	defer upstream.Close()

	temp := 0.2
	c := testClient(t, upstream.URL, true)
	rec := httptest.NewRecorder()
	err := c.ChatCompletions(context.Background(), rec, &types.ChatCompletionRequest{
		Model:       "llama3-8b-8192",
		Messages:    userMessage("hi"),
		Temperature: &temp,
	}, "sk-test")
	if err != nil {
		t.Fatalf("ChatCompletions: %v", err)
	}

	if _, ok := gotBody["temperature"]; !ok {
		t.Error("temperature missing from upstream body")
	}
	for _, absent := range []string{"top_p", "max_tokens", "stop", "seed", "frequency_penalty"} {
		if raw, ok := gotBody[absent]; ok {
			t.Errorf("absent field %q forwarded upstream as %s", absent, raw)
		}
	}
}

func TestChatCompletionsDropsEmptyStop(t *testing.T) {
	var gotBody map[string]json.RawMessage
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x"}`))
	}))
	defer upstream.Close()

	var params types.ChatCompletionRequest
	inbound := `{"model":"llama3-8b-8192","messages":[{"role":"user","content":"hi"}],"stop":[]}`
	if err := json.Unmarshal([]byte(inbound), &params); err != nil {
		t.Fatal(err)
	}

	c := testClient(t, upstream.URL, true)
	rec := httptest.NewRecorder()
	if err := c.ChatCompletions(context.Background(), rec, &params, "sk-test"); err != nil {
		t.Fatalf("ChatCompletions: %v", err)
	}

	if raw, ok := gotBody["stop"]; ok {
		t.Errorf("empty stop list forwarded upstream as %s, want omitted", raw)
	}
}

func TestChatCompletionsBuffered(t *testing.T) {
	upstreamDoc := `{"id":"chatcmpl-1","object":"chat.completion","model":"llama3-8b-8192","choices":[{"index":0,"message":{"role":"assistant","content":"hello"},"finish_reason":"stop"}],"usage":{"prompt_tokens":3,"completion_tokens":1,"total_tokens":4}}`
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(upstreamDoc))
	}))
	defer upstream.Close()

	c := testClient(t, upstream.URL, true)
	rec := httptest.NewRecorder()
	err := c.ChatCompletions(context.Background(), rec, &types.ChatCompletionRequest{
		Model:    "llama3-8b-8192",
		Messages: userMessage("hi"),
	}, "sk-test")
	if err != nil {
		t.Fatalf("ChatCompletions: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var want, got any
	if err := json.Unmarshal([]byte(upstreamDoc), &want); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("response not valid JSON: %v", err)
	}
	wantJSON, _ := json.Marshal(want)
	gotJSON, _ := json.Marshal(got)
	if string(wantJSON) != string(gotJSON) {
		t.Errorf("buffered body differs from upstream:\n got %s\nwant %s", gotJSON, wantJSON)
	}

	var completion types.ChatCompletionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &completion); err != nil {
		t.Fatal(err)
	}
	if completion.ID != "chatcmpl-1" {
		t.Errorf("id = %q", completion.ID)
	}
	if len(completion.Choices) != 1 || completion.Choices[0].Message.Content.Text != "hello" {
		t.Errorf("choices = %+v", completion.Choices)
	}
	if completion.Usage == nil || completion.Usage.TotalTokens != 4 {
		t.Errorf("usage = %+v", completion.Usage)
	}
}

func TestChatCompletionsStreamPassthrough(t *testing.T) {
	chunks := []string{
		"data: {\"id\":\"1\",\"choices\":[{\"delta\":{\"content\":\"he\"}}]}\n\n",
		"data: {\"id\":\"1\",\"choices\":[{\"delta\":{\"content\":\"llo\"}}]}\n\n",
		"data: {\"id\":\"1\",\"choices\":[{\"delta\":{},\"finish_reason\":\"stop\"}]}\n\n",
		"data: [DONE]\n\n",
	}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, chunk := range chunks {
			_, _ = io.WriteString(w, chunk)
			flusher.Flush()
		}
	}))
	defer upstream.Close()

	c := testClient(t, upstream.URL, true)
	rec := httptest.NewRecorder()
	err := c.ChatCompletions(context.Background(), rec, &types.ChatCompletionRequest{
		Model:    "llama3-8b-8192",
		Messages: userMessage("hi"),
		Stream:   true,
	}, "sk-test")
	if err != nil {
		t.Fatalf("ChatCompletions: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("Cache-Control = %q, want no-cache", cc)
	}
	if got, want := rec.Body.String(), strings.Join(chunks, ""); got != want {
		t.Errorf("stream body reassembled or reordered:\n got %q\nwant %q", got, want)
	}
	if !rec.Flushed {
		t.Error("stream was never flushed")
	}
}

func TestChatCompletionsUpstreamError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{
			name:        "decodable envelope",
			status:      http.StatusTooManyRequests,
			body:        `{"error":{"message":"rate limit exceeded"}}`,
			wantMessage: "rate limit exceeded",
		},
		{
			name:        "bare message field",
			status:      http.StatusServiceUnavailable,
			body:        `{"message":"try later"}`,
			wantMessage: "try later",
		},
		{
			name:        "undecodable body falls back",
			status:      http.StatusBadGateway,
			body:        `<html>oops</html>`,
			wantMessage: "upstream returned status 502",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer upstream.Close()

			c := testClient(t, upstream.URL, true)
			rec := httptest.NewRecorder()
			err := c.ChatCompletions(context.Background(), rec, &types.ChatCompletionRequest{
				Model:    "llama3-8b-8192",
				Messages: userMessage("hi"),
			}, "sk-test")

			if got := relayStatus(t, err); got != tt.status {
				t.Errorf("status = %d, want %d", got, tt.status)
			}
			if err.Error() != tt.wantMessage {
				t.Errorf("message = %q, want %q", err.Error(), tt.wantMessage)
			}
		})
	}
}
