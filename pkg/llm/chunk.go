package llm

// ContentType identifies the kind of content carried by a StreamChunk.
type ContentType string

const (
	// ContentTypeThinking is content inside <thinking> tags.
	ContentTypeThinking ContentType = "thinking"
	// ContentTypeMessage is regular assistant reply content.
	ContentTypeMessage ContentType = "message"
)

// StreamChunk is a single increment of a streaming completion.
type StreamChunk struct {
	// Type distinguishes thinking content from message content.
	Type ContentType

	// Content is the text delta carried by this chunk.
	Content string

	// Role is set on the first chunk of a stream (e.g., "assistant").
	Role string

	// Finished is true on the terminal chunk of a successful stream.
	Finished bool

	// Error is set when the stream failed mid-flight. A chunk with Error
	// set is always the last chunk before the channel closes.
	Error error
}

// IsError returns true if this chunk carries a stream error.
func (c *StreamChunk) IsError() bool {
	return c.Error != nil
}

// IsFinished returns true if this chunk terminates a successful stream.
func (c *StreamChunk) IsFinished() bool {
	return c.Finished
}
