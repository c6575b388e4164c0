// Package tokenizer estimates prompt token counts for the request log.
// Counts are estimates only; the relayed models are not OpenAI models, so the
// closest tiktoken encoding is used as an approximation.
package tokenizer

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/fenrirlab/groqrelay/internal/types"
)

// Tokenizer counts tokens for chat completion requests.
type Tokenizer interface {
	// CountTokens counts tokens in a text string.
	CountTokens(text string) (int, error)

	// CountRequest estimates total prompt tokens for a full request.
	CountRequest(req *types.ChatCompletionRequest) (int, error)
}

// encodingName is the tiktoken encoding used for all catalog models.
const encodingName = "cl100k_base"

// Per-message and priming overheads, per the commonly documented chat format.
const (
	messageOverhead    = 4
	replyPrimingTokens = 3
	nameOverhead       = 1

	// Flat estimate per image part; exact tile accounting is not worth the
	// precision for a log line.
	imageTokens = 255
)

// TiktokenTokenizer implements Tokenizer using tiktoken-go.
type TiktokenTokenizer struct {
	once     sync.Once
	encoding *tiktoken.Tiktoken
	initErr  error
}

// New creates a TiktokenTokenizer. The encoding is loaded lazily on first use.
func New() *TiktokenTokenizer {
	return &TiktokenTokenizer{}
}

func (t *TiktokenTokenizer) getEncoding() (*tiktoken.Tiktoken, error) {
	t.once.Do(func() {
		t.encoding, t.initErr = tiktoken.GetEncoding(encodingName)
	})
	return t.encoding, t.initErr
}

// CountTokens counts tokens in a text string.
func (t *TiktokenTokenizer) CountTokens(text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	enc, err := t.getEncoding()
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}

// CountRequest estimates total prompt tokens for a full request.
func (t *TiktokenTokenizer) CountRequest(req *types.ChatCompletionRequest) (int, error) {
	total := 0

	for _, msg := range req.Messages {
		n, err := t.countMessage(msg)
		if err != nil {
			return 0, err
		}
		total += n + messageOverhead
	}
	total += replyPrimingTokens

	for _, tool := range req.Tools {
		n, err := t.countTool(tool)
		if err != nil {
			return 0, err
		}
		total += n
	}

	return total, nil
}

func (t *TiktokenTokenizer) countMessage(msg types.Message) (int, error) {
	total, err := t.CountTokens(msg.Role)
	if err != nil {
		return 0, err
	}

	if msg.Content.Text != "" {
		n, err := t.CountTokens(msg.Content.Text)
		if err != nil {
			return 0, err
		}
		total += n
	}
	for _, part := range msg.Content.Parts {
		switch part.Type {
		case types.ContentTypeText:
			n, err := t.CountTokens(part.Text)
			if err != nil {
				return 0, err
			}
			total += n
		case types.ContentTypeImageURL:
			total += imageTokens
		}
	}

	if msg.Name != "" {
		n, err := t.CountTokens(msg.Name)
		if err != nil {
			return 0, err
		}
		total += n + nameOverhead
	}

	return total, nil
}

func (t *TiktokenTokenizer) countTool(tool types.Tool) (int, error) {
	total, err := t.CountTokens(tool.Function.Name)
	if err != nil {
		return 0, err
	}
	n, err := t.CountTokens(tool.Function.Description)
	if err != nil {
		return 0, err
	}
	total += n
	n, err = t.CountTokens(string(tool.Function.Parameters))
	if err != nil {
		return 0, err
	}
	return total + n, nil
}
