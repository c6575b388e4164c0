package relay

import (
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/fenrirlab/groqrelay/internal/types"
)

// streamResponse pipes the upstream body to the client without buffering or
// parsing: each read is written and flushed as-is, preserving chunk
// boundaries and ordering. Once the status line is out, failures can only be
// logged; the client sees a truncated stream.
func (c *Client) streamResponse(w http.ResponseWriter, resp *http.Response) error {
	h := w.Header()
	types.SetCORS(h)
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)

	buf := make([]byte, 32*1024)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				// Client went away; the deferred body close tears down the
				// upstream connection.
				c.logger.Debug("client closed stream", zap.Error(werr))
				return nil
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				c.logger.Warn("upstream stream aborted", zap.Error(err))
			}
			return nil
		}
	}
}
