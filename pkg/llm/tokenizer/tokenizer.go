// Package tokenizer provides context-size accounting for prompts. Counts
// are reported in api-call events so callers can watch a conversation grow;
// nothing is trimmed based on them.
package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
	"github.com/travelweaver/weaver/pkg/types"
)

// fallbackEncoding is used for models tiktoken does not know about.
const fallbackEncoding = "cl100k_base"

// perMessageOverhead approximates the tokens of chat-format framing around
// each message.
const perMessageOverhead = 4

// Counter counts tokens with the encoding of a specific model.
type Counter struct {
	encoding *tiktoken.Tiktoken
	model    string
}

// NewCounter creates a counter for the given model, falling back to the
// cl100k_base encoding when the model is unknown.
func NewCounter(model string) (*Counter, error) {
	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		encoding, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return nil, fmt.Errorf("tokenizer: failed to load encoding: %w", err)
		}
	}
	return &Counter{encoding: encoding, model: model}, nil
}

// Model returns the model the counter was built for.
func (c *Counter) Model() string {
	return c.model
}

// CountText returns the token count of a single string.
func (c *Counter) CountText(text string) int {
	if text == "" {
		return 0
	}
	return len(c.encoding.Encode(text, nil, nil))
}

// CountMessages approximates the prompt size of a message list, including
// per-message chat framing overhead.
func (c *Counter) CountMessages(messages []*types.Message) int {
	total := 0
	for _, msg := range messages {
		total += c.CountText(msg.Content) + perMessageOverhead
	}
	return total
}
