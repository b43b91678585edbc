// Package parser provides utilities for parsing structured content from LLM streams.
package parser

import (
	"strings"

	"github.com/travelweaver/weaver/pkg/llm"
)

// ThinkingParser separates <thinking> tag content from regular reply content
// in a streaming completion. It maintains state across chunks so tags split
// over chunk boundaries are still recognized.
type ThinkingParser struct {
	buffer     strings.Builder
	tagBuffer  strings.Builder // potential tag content between < and >
	inThinking bool
	inTag      bool // saw '<' but not yet '>'
}

// NewThinkingParser creates a new thinking parser.
func NewThinkingParser() *ThinkingParser {
	return &ThinkingParser{}
}

// Parse processes a content chunk and returns separate chunks for thinking and
// message content. Either return value may be nil when that kind of content
// did not appear in this chunk.
func (p *ThinkingParser) Parse(content string) (thinkingChunk, messageChunk *llm.StreamChunk) {
	if content == "" {
		return nil, nil
	}

	for _, ch := range content {
		switch {
		case ch == '<':
			// A second '<' means the buffered text was not a tag after all.
			if p.inTag {
				thinkingChunk, messageChunk = p.merge(thinkingChunk, messageChunk, p.flushTagBuffer())
			}
			if p.buffer.Len() > 0 {
				chunk := p.chunkFor(p.buffer.String())
				p.buffer.Reset()
				thinkingChunk, messageChunk = p.merge(thinkingChunk, messageChunk, chunk)
			}
			p.inTag = true
			p.tagBuffer.Reset()
			p.tagBuffer.WriteRune(ch)

		case ch == '>' && p.inTag:
			p.tagBuffer.WriteRune(ch)
			tag := p.tagBuffer.String()
			p.tagBuffer.Reset()
			p.inTag = false

			switch tag {
			case "<thinking>":
				p.inThinking = true
			case "</thinking>":
				p.inThinking = false
			default:
				// Not a thinking tag, emit it verbatim.
				thinkingChunk, messageChunk = p.merge(thinkingChunk, messageChunk, p.chunkFor(tag))
			}

		case p.inTag:
			p.tagBuffer.WriteRune(ch)

		default:
			p.buffer.WriteRune(ch)
		}
	}

	if p.buffer.Len() > 0 {
		chunk := p.chunkFor(p.buffer.String())
		p.buffer.Reset()
		thinkingChunk, messageChunk = p.merge(thinkingChunk, messageChunk, chunk)
	}

	return thinkingChunk, messageChunk
}

// flushTagBuffer drains the tag buffer as regular content.
func (p *ThinkingParser) flushTagBuffer() *llm.StreamChunk {
	if p.tagBuffer.Len() == 0 {
		return nil
	}
	text := p.tagBuffer.String()
	p.tagBuffer.Reset()
	return p.chunkFor(text)
}

// chunkFor wraps text in a chunk typed for the current parse mode.
func (p *ThinkingParser) chunkFor(text string) *llm.StreamChunk {
	if text == "" {
		return nil
	}
	contentType := llm.ContentTypeMessage
	if p.inThinking {
		contentType = llm.ContentTypeThinking
	}
	return &llm.StreamChunk{Content: text, Type: contentType}
}

// merge folds a new chunk into the per-call accumulator chunks by type.
func (p *ThinkingParser) merge(thinkingChunk, messageChunk, newChunk *llm.StreamChunk) (*llm.StreamChunk, *llm.StreamChunk) {
	if newChunk == nil {
		return thinkingChunk, messageChunk
	}

	if newChunk.Type == llm.ContentTypeThinking {
		if thinkingChunk == nil {
			return newChunk, messageChunk
		}
		thinkingChunk.Content += newChunk.Content
		return thinkingChunk, messageChunk
	}

	if messageChunk == nil {
		return thinkingChunk, newChunk
	}
	messageChunk.Content += newChunk.Content
	return thinkingChunk, messageChunk
}

// IsInThinking returns true if currently parsing thinking content.
func (p *ThinkingParser) IsInThinking() bool {
	return p.inThinking
}

// Flush returns any buffered content that hasn't been emitted yet. Call at
// end of stream so a truncated tag or trailing text is not lost.
func (p *ThinkingParser) Flush() (thinkingChunk, messageChunk *llm.StreamChunk) {
	if p.inTag && p.tagBuffer.Len() > 0 {
		thinkingChunk, messageChunk = p.merge(thinkingChunk, messageChunk, p.flushTagBuffer())
		p.inTag = false
	}

	if p.buffer.Len() > 0 {
		text := p.buffer.String()
		p.buffer.Reset()
		thinkingChunk, messageChunk = p.merge(thinkingChunk, messageChunk, p.chunkFor(text))
	}

	return thinkingChunk, messageChunk
}

// Reset clears all parser state for a new stream.
func (p *ThinkingParser) Reset() {
	p.buffer.Reset()
	p.tagBuffer.Reset()
	p.inThinking = false
	p.inTag = false
}
