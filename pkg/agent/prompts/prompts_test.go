package prompts

import (
	"strings"
	"testing"

	"github.com/travelweaver/weaver/pkg/agent/tools"
	"github.com/travelweaver/weaver/pkg/flights"
	"github.com/travelweaver/weaver/pkg/types"
)

func TestBuildIncludesSections(t *testing.T) {
	toolsList := []tools.Tool{
		tools.NewConverseTool(),
		tools.NewSearchFlightsTool(flights.NewCatalog()),
	}

	prompt := NewPromptBuilder().
		WithTools(toolsList).
		WithPaymentPolicy("0xmerchant", 0.05).
		Build()

	for _, want := range []string{
		"<persona>",
		"<payment_policy>",
		"0xmerchant",
		"<agent_loop>",
		"<chain_of_thought>",
		"<tool_calling>",
		"<available_tools>",
		"search_flights",
		"converse",
		"<tool_use_rules>",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildWithoutPaymentPolicy(t *testing.T) {
	prompt := NewPromptBuilder().Build()
	if strings.Contains(prompt, "<payment_policy>") {
		t.Error("payment policy section should be absent when not configured")
	}
	if strings.Contains(prompt, "<available_tools>") {
		t.Error("available tools section should be absent with no tools")
	}
}

func TestFormatToolSchemas(t *testing.T) {
	formatted := FormatToolSchemas([]tools.Tool{tools.NewConverseTool()})

	for _, want := range []string{"<tool_schema>", "<name>converse</name>", "<server_name>local</server_name>", "<input_schema>"} {
		if !strings.Contains(formatted, want) {
			t.Errorf("schema block missing %q", want)
		}
	}

	if FormatToolSchemas(nil) != "" {
		t.Error("no tools should render no schema blocks")
	}
}

func TestBuildMessages(t *testing.T) {
	history := []*types.Message{
		types.NewUserMessage("earlier question"),
		types.NewAgentMessage("earlier answer"),
		types.NewSystemMessage("stale preamble"),
	}

	messages := BuildMessages("system prompt", history, "new question")

	if len(messages) != 4 {
		t.Fatalf("got %d messages, want 4", len(messages))
	}
	if messages[0].Role != types.RoleSystem || messages[0].Content != "system prompt" {
		t.Errorf("first message should be the system prompt, got %+v", messages[0])
	}
	for _, msg := range messages[1:] {
		if msg.Role == types.RoleSystem {
			t.Error("history system messages must be dropped")
		}
	}
	if messages[3].Content != "new question" {
		t.Errorf("last message = %q", messages[3].Content)
	}
}

func TestToolResultFeedback(t *testing.T) {
	ok := ToolResult{ToolName: "search_flights", Result: "3 options"}
	if got := ok.Feedback(); !strings.Contains(got, "Tool 'search_flights' result:") || !strings.Contains(got, "3 options") {
		t.Errorf("result feedback = %q", got)
	}

	failed := ToolResult{ToolName: "send_to_address", Error: errString("payment failed")}
	if got := failed.Feedback(); !strings.Contains(got, "Tool 'send_to_address' error:") || !strings.Contains(got, "payment failed") {
		t.Errorf("error feedback = %q", got)
	}
}

type errString string

func (e errString) Error() string { return string(e) }
