package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/fenrirlab/groqrelay/internal/types"
)

// audioFormats is the allow-list of accepted audio media subtypes, in the
// order they are reported to the caller.
var audioFormats = []string{"flac", "mp3", "mp4", "mpeg", "mpga", "m4a", "ogg", "opus", "wav", "webm"}

// AudioRequest carries the fields lifted from an inbound multipart form.
type AudioRequest struct {
	// File is the audio payload; Filename and ContentType come from the
	// inbound form part.
	File        io.Reader
	Filename    string
	ContentType string

	// Optional fields, forwarded only when non-empty
	Language       string // transcription only
	Prompt         string
	ResponseFormat string
	Temperature    string

	// Granularities holds repeated timestamp_granularities[] values in the
	// order they were supplied. Transcription only.
	Granularities []string
}

// Transcribe relays an audio transcription request.
func (c *Client) Transcribe(ctx context.Context, w http.ResponseWriter, form *AudioRequest, apiKey string) error {
	return c.relayAudio(ctx, w, form, apiKey, "/audio/transcriptions", true)
}

// Translate relays an audio translation (to English) request.
func (c *Client) Translate(ctx context.Context, w http.ResponseWriter, form *AudioRequest, apiKey string) error {
	return c.relayAudio(ctx, w, form, apiKey, "/audio/translations", false)
}

// relayAudio validates the declared audio format, rebuilds the multipart form
// with the fixed speech model, and relays the upstream JSON response.
func (c *Client) relayAudio(ctx context.Context, w http.ResponseWriter, form *AudioRequest, apiKey, path string, transcription bool) error {
	if err := validateAudioType(form.ContentType); err != nil {
		return err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("file", form.Filename)
	if err != nil {
		return types.Internal("failed to build upstream form")
	}
	if _, err := io.Copy(fw, form.File); err != nil {
		return types.BadRequest("failed to read audio file")
	}

	// The speech model is fixed by configuration regardless of caller input.
	fields := [][2]string{{"model", c.speechModel}}
	if transcription && form.Language != "" {
		fields = append(fields, [2]string{"language", form.Language})
	}
	if form.Prompt != "" {
		fields = append(fields, [2]string{"prompt", form.Prompt})
	}
	if form.ResponseFormat != "" {
		fields = append(fields, [2]string{"response_format", form.ResponseFormat})
	}
	if form.Temperature != "" {
		fields = append(fields, [2]string{"temperature", form.Temperature})
	}
	for _, field := range fields {
		if err := mw.WriteField(field[0], field[1]); err != nil {
			return types.Internal("failed to build upstream form")
		}
	}
	if transcription {
		for _, g := range form.Granularities {
			if err := mw.WriteField("timestamp_granularities[]", g); err != nil {
				return types.Internal("failed to build upstream form")
			}
		}
	}
	if err := mw.Close(); err != nil {
		return types.Internal("failed to build upstream form")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return types.Internal("failed to build upstream request")
	}
	// Only the bearer header is set explicitly; the multipart writer owns the
	// content type so the generated boundary matches the body.
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return types.NewRelayError(http.StatusBadGateway, "upstream request failed: "+err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.upstreamError(resp)
	}

	return c.bufferedAudio(w, resp)
}

// bufferedAudio relays a successful audio response. JSON bodies are decoded
// and re-serialized like completions; response_format=text/srt/vtt yields a
// plain-text body, relayed verbatim with the upstream content type.
func (c *Client) bufferedAudio(w http.ResponseWriter, resp *http.Response) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.NewRelayError(http.StatusBadGateway, "failed to read upstream response")
	}

	h := w.Header()
	types.SetCORS(h)
	h.Set("Cache-Control", "no-cache")

	var doc any
	if err := json.Unmarshal(raw, &doc); err == nil {
		out, err := json.Marshal(doc)
		if err != nil {
			return types.Internal("failed to encode response")
		}
		h.Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(out)
		return nil
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/plain; charset=utf-8"
	}
	h.Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
	return nil
}

// validateAudioType checks the declared media subtype against the allow-list.
func validateAudioType(contentType string) error {
	mediaType := contentType
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = parsed
	}

	subtype, ok := strings.CutPrefix(mediaType, "audio/")
	if !ok {
		// Browsers label some recordings video/webm or video/mp4.
		subtype, ok = strings.CutPrefix(mediaType, "video/")
	}
	if ok {
		for _, f := range audioFormats {
			if subtype == f {
				return nil
			}
		}
	}

	return types.BadRequest(fmt.Sprintf(
		"unsupported audio format %q; accepted formats: %s",
		contentType, strings.Join(audioFormats, ", ")))
}
