package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fenrirlab/groqrelay/internal/catalog"
	"github.com/fenrirlab/groqrelay/internal/transport/http/middleware"
	"github.com/fenrirlab/groqrelay/internal/types"
)

// modelsCacheControl allows moderate client-side caching; catalogs change
// infrequently.
const modelsCacheControl = "public, max-age=3600"

// modelsResponse is the OpenAI-compatible models list body.
type modelsResponse struct {
	Object string          `json:"object"`
	Data   []catalog.Model `json:"data"`
}

// ListModels handles GET /v1/models. Static deployments serve the local
// catalog; live deployments relay the upstream listing through the cache.
func (h *Handlers) ListModels(w http.ResponseWriter, r *http.Request) error {
	if h.LiveModels {
		body, err := h.Relay.Models(r.Context(), middleware.APIKey(r.Context()))
		if err != nil {
			return err
		}
		h.writeModels(w, body)
		return nil
	}

	body, err := json.Marshal(modelsResponse{Object: "list", Data: h.Catalog.List()})
	if err != nil {
		return types.Internal("failed to encode models list")
	}
	h.writeModels(w, body)
	return nil
}

// GetModel handles GET /v1/models/{model} against the local catalog.
func (h *Handlers) GetModel(w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, "model")
	model, ok := h.Catalog.Lookup(id)
	if !ok {
		return types.NotFound("model " + strconv.Quote(id) + " not found")
	}

	body, err := json.Marshal(model)
	if err != nil {
		return types.Internal("failed to encode model")
	}
	h.writeModels(w, body)
	return nil
}

func (h *Handlers) writeModels(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", modelsCacheControl)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
