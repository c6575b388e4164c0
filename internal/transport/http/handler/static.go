package handler

import (
	"net/http"

	"github.com/fenrirlab/groqrelay/internal/types"
	"github.com/fenrirlab/groqrelay/web"
)

// Static serves one embedded front-end asset. An asset that fails to load is
// an internal error, surfaced through the envelope like any other failure.
func (h *Handlers) Static(name, contentType string) apiFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		content, err := web.FS.ReadFile(name)
		if err != nil {
			return types.Internal("failed to load " + name)
		}

		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(content)
		return nil
	}
}
