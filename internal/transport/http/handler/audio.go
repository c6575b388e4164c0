package handler

import (
	"io"
	"net/http"

	"github.com/fenrirlab/groqrelay/internal/relay"
	"github.com/fenrirlab/groqrelay/internal/transport/http/middleware"
	"github.com/fenrirlab/groqrelay/internal/types"
)

// maxAudioFormMemory bounds in-memory multipart parsing; larger files spill
// to disk.
const maxAudioFormMemory = 32 << 20

// Transcription handles POST /v1/audio/transcriptions.
func (h *Handlers) Transcription(w http.ResponseWriter, r *http.Request) error {
	form, err := h.parseAudioForm(r, true)
	if err != nil {
		return err
	}
	defer closeFile(form.File)
	return h.Relay.Transcribe(r.Context(), w, form, middleware.APIKey(r.Context()))
}

// Translation handles POST /v1/audio/translations.
func (h *Handlers) Translation(w http.ResponseWriter, r *http.Request) error {
	form, err := h.parseAudioForm(r, false)
	if err != nil {
		return err
	}
	defer closeFile(form.File)
	return h.Relay.Translate(r.Context(), w, form, middleware.APIKey(r.Context()))
}

func closeFile(f io.Reader) {
	if closer, ok := f.(io.Closer); ok {
		_ = closer.Close()
	}
}

// parseAudioForm lifts the relayed fields out of the inbound multipart form.
// The file part is required; optional fields are forwarded only when present.
func (h *Handlers) parseAudioForm(r *http.Request, transcription bool) (*relay.AudioRequest, error) {
	if err := r.ParseMultipartForm(maxAudioFormMemory); err != nil {
		return nil, types.BadRequest("failed to parse multipart form")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, types.BadRequest("audio file is required")
	}

	form := &relay.AudioRequest{
		File:           file,
		Filename:       header.Filename,
		ContentType:    header.Header.Get("Content-Type"),
		Prompt:         r.FormValue("prompt"),
		ResponseFormat: r.FormValue("response_format"),
		Temperature:    r.FormValue("temperature"),
	}
	if transcription {
		form.Language = r.FormValue("language")
		// Repeated selections are forwarded individually, in order.
		form.Granularities = r.MultipartForm.Value["timestamp_granularities[]"]
	}

	return form, nil
}
