// Package tools defines the agent's tool surface: the Tool interface, the
// XML tool-call wire format, tool-name classification, and the travel
// toolset (payments, flight search, converse).
package tools

import (
	"context"
	"encoding/xml"
)

// Server names partition tools into namespaces. The policy gate keys its
// decisions on these, so a tool's namespace is part of its contract.
const (
	// ServerLocal hosts conversation-control tools (converse). Local tools
	// move no money and cross no provider boundary.
	ServerLocal = "local"

	// ServerPayments hosts the wallet payment tools.
	ServerPayments = "payman"

	// ServerFlights hosts the flight-search tools.
	ServerFlights = "flights"
)

// Tool represents a capability that the agent can use during execution.
// Tools are invoked by the LLM through XML-formatted tool calls.
//
// Example tool call format from LLM:
//
//	<tool>
//	<server_name>payman</server_name>
//	<tool_name>send_to_address</tool_name>
//	<arguments>
//	  <address>0xabc</address>
//	  <amount>120</amount>
//	</arguments>
//	</tool>
type Tool interface {
	// Name returns the unique identifier for this tool (e.g., "send_to_address")
	Name() string

	// ServerName returns the namespace this tool belongs to
	ServerName() string

	// Description returns a human-readable description of what this tool does
	Description() string

	// Schema returns the JSON schema for this tool's input parameters
	Schema() map[string]interface{}

	// Execute runs the tool with the given XML arguments and returns a result string
	// Returns: (result string, metadata map, error)
	// Metadata is optional and can be nil - it will be included in tool result events
	Execute(ctx context.Context, argumentsXML []byte) (string, map[string]interface{}, error)

	// IsLoopBreaking indicates whether this tool should terminate the agent loop
	// Loop-breaking tools (like converse) cause the agent to stop iterating
	// and return control to the user
	IsLoopBreaking() bool
}

// ToolCall represents a parsed tool invocation from the LLM's response
type ToolCall struct {
	XMLName    xml.Name       `xml:"tool"`
	ServerName string         `xml:"server_name"`
	ToolName   string         `xml:"tool_name"`
	Arguments  ArgumentsBlock `xml:"arguments"`
}

// ArgumentsBlock holds the raw XML of the arguments element
type ArgumentsBlock struct {
	InnerXML []byte `xml:",innerxml"`
}

// GetArgumentsXML returns the arguments wrapped in <arguments> tags for unmarshaling.
func (tc *ToolCall) GetArgumentsXML() []byte {
	const prefix = "<arguments>"
	const suffix = "</arguments>"

	result := make([]byte, 0, len(prefix)+len(tc.Arguments.InnerXML)+len(suffix))
	result = append(result, []byte(prefix)...)
	result = append(result, tc.Arguments.InnerXML...)
	result = append(result, []byte(suffix)...)
	return result
}

// BaseToolSchema creates a common JSON schema structure for a tool
// with the given properties and required fields
func BaseToolSchema(properties map[string]interface{}, required []string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}
