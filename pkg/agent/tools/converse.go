package tools

import (
	"context"
	"encoding/xml"
	"fmt"
)

// ConverseTool is the loop-breaking tool the agent uses to hand its reply
// back to the traveler. Every turn ends with a converse call; its message
// supersedes any free text accumulated during the turn.
type ConverseTool struct{}

// NewConverseTool creates a new converse tool
func NewConverseTool() *ConverseTool {
	return &ConverseTool{}
}

// Name returns the tool's identifier
func (t *ConverseTool) Name() string {
	return "converse"
}

// ServerName returns the local namespace
func (t *ConverseTool) ServerName() string {
	return ServerLocal
}

// Description returns a description of what this tool does
func (t *ConverseTool) Description() string {
	return "Send your reply to the traveler and end your turn. Use this for answers, " +
		"recommendations, clarifying questions, and booking confirmations. The message " +
		"should be conversational and helpful."
}

// Schema returns the JSON schema for the tool's arguments
func (t *ConverseTool) Schema() map[string]interface{} {
	return BaseToolSchema(
		map[string]interface{}{
			"message": map[string]interface{}{
				"type":        "string",
				"description": "The message to share with the traveler.",
			},
		},
		[]string{"message"},
	)
}

// Execute runs the tool and returns the conversational message
func (t *ConverseTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var args struct {
		XMLName xml.Name `xml:"arguments"`
		Message string   `xml:"message"`
	}

	if err := UnmarshalXMLWithFallback(argsXML, &args); err != nil {
		return "", nil, fmt.Errorf("invalid arguments for converse: %w", err)
	}

	if args.Message == "" {
		return "", nil, fmt.Errorf("message cannot be empty")
	}

	return args.Message, nil, nil
}

// IsLoopBreaking returns true because this tool terminates the agent loop
func (t *ConverseTool) IsLoopBreaking() bool {
	return true
}
