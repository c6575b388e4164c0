package relay

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/fenrirlab/groqrelay/internal/types"
)

// maxErrorBody bounds how much of an upstream error body is read.
const maxErrorBody = 1 << 20

// upstreamError converts a non-2xx upstream response into a RelayError that
// keeps the upstream status. Both the OpenAI envelope and a bare message
// field are recognized, with a generic fallback when neither parses.
func (c *Client) upstreamError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	message := ""
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Error.Message != "" {
			message = envelope.Error.Message
		} else if envelope.Message != "" {
			message = envelope.Message
		}
	}
	if message == "" {
		message = fmt.Sprintf("upstream returned status %d", resp.StatusCode)
	}

	return types.Upstream(resp.StatusCode, message)
}
