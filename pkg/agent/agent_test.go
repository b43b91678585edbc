package agent

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/travelweaver/weaver/pkg/agent/policy"
	"github.com/travelweaver/weaver/pkg/agent/tools"
	"github.com/travelweaver/weaver/pkg/flights"
	"github.com/travelweaver/weaver/pkg/llm"
	"github.com/travelweaver/weaver/pkg/payments"
	"github.com/travelweaver/weaver/pkg/types"
)

// scriptedProvider replays canned responses, one per completion call.
type scriptedProvider struct {
	responses []scriptedResponse
	calls     int
}

type scriptedResponse struct {
	text     string // streamed as message content
	startErr error  // returned from StreamCompletion itself
	midErr   error  // emitted as an error chunk after text
}

func (p *scriptedProvider) StreamCompletion(ctx context.Context, messages []*types.Message) (<-chan *llm.StreamChunk, error) {
	if p.calls >= len(p.responses) {
		return nil, fmt.Errorf("scripted provider exhausted after %d calls", p.calls)
	}
	resp := p.responses[p.calls]
	p.calls++

	if resp.startErr != nil {
		return nil, resp.startErr
	}

	chunks := make(chan *llm.StreamChunk, 8)
	go func() {
		defer close(chunks)
		if resp.text != "" {
			chunks <- &llm.StreamChunk{Type: llm.ContentTypeMessage, Content: resp.text}
		}
		if resp.midErr != nil {
			chunks <- &llm.StreamChunk{Error: resp.midErr}
			return
		}
		chunks <- &llm.StreamChunk{Finished: true}
	}()
	return chunks, nil
}

func (p *scriptedProvider) Complete(ctx context.Context, messages []*types.Message) (*types.Message, error) {
	return nil, fmt.Errorf("not used")
}

func (p *scriptedProvider) GetModel() string   { return "scripted" }
func (p *scriptedProvider) GetBaseURL() string { return "scripted://" }

func converseCall(message string) string {
	return fmt.Sprintf(`<tool>
<server_name>local</server_name>
<tool_name>converse</tool_name>
<arguments>
  <message>%s</message>
</arguments>
</tool>`, message)
}

func paymentCall(address, amount string) string {
	return fmt.Sprintf(`<tool>
<server_name>payman</server_name>
<tool_name>send_to_address</tool_name>
<arguments>
  <address>%s</address>
  <amount>%s</amount>
</arguments>
</tool>`, address, amount)
}

type testHarness struct {
	session *Session
	wallet  *payments.DemoWallet
	events  []*types.AgentEvent
}

func newHarness(t *testing.T, responses []scriptedResponse, opts ...SessionOption) *testHarness {
	t.Helper()

	gate, err := policy.NewGate(policy.Config{
		DestinationAddress: "0xconfigured",
		FixedAmount:        0.05,
	})
	if err != nil {
		t.Fatalf("NewGate failed: %v", err)
	}

	h := &testHarness{wallet: payments.NewDemoWallet()}
	toolset := []tools.Tool{
		tools.NewConverseTool(),
		tools.NewSendToAddressTool(h.wallet),
		tools.NewSendToContactTool(h.wallet),
		tools.NewSendToEmailTool(h.wallet),
		tools.NewSearchFlightsTool(flights.NewCatalog()),
	}

	opts = append(opts, WithEventSink(func(e *types.AgentEvent) {
		h.events = append(h.events, e)
	}))
	h.session = NewSession(&scriptedProvider{responses: responses}, gate, toolset, opts...)
	return h
}

func (h *testHarness) eventTypes() []types.AgentEventType {
	out := make([]types.AgentEventType, len(h.events))
	for i, e := range h.events {
		out[i] = e.Type
	}
	return out
}

func (h *testHarness) hasEvent(eventType types.AgentEventType) bool {
	for _, e := range h.events {
		if e.Type == eventType {
			return true
		}
	}
	return false
}

func TestTurnConverseOnly(t *testing.T) {
	h := newHarness(t, []scriptedResponse{
		{text: converseCall("Window or aisle? I can hold either.")},
	})

	result := h.session.Turn(context.Background(), "I'd like a window seat if possible")

	if result.Content != "Window or aisle? I can hold either." {
		t.Errorf("content = %q", result.Content)
	}
	if result.PaymentCompleted {
		t.Error("no payment occurred; flag must be false")
	}
	if len(h.wallet.Receipts()) != 0 {
		t.Error("seat preference chat must not touch the wallet")
	}

	history := h.session.History()
	if len(history) != 2 {
		t.Fatalf("history has %d messages, want 2", len(history))
	}
	if history[0].Role != types.RoleUser || history[1].Role != types.RoleAgent {
		t.Errorf("history roles wrong: %s then %s", history[0].Role, history[1].Role)
	}
}

func TestTurnBookingRewritesPayment(t *testing.T) {
	h := newHarness(t, []scriptedResponse{
		{text: paymentCall("0xattacker", "4999.99")},
		{text: converseCall("All booked! Your confirmation is on its way.")},
	})

	result := h.session.Turn(context.Background(), "go ahead and book the JetBlue one")

	if !result.PaymentCompleted {
		t.Error("settled payment must set the flag")
	}
	if result.Content != "All booked! Your confirmation is on its way." {
		t.Errorf("content = %q", result.Content)
	}

	receipts := h.wallet.Receipts()
	if len(receipts) != 1 {
		t.Fatalf("wallet has %d receipts, want 1", len(receipts))
	}
	if receipts[0].Destination != "0xconfigured" {
		t.Errorf("paid %q; model-proposed address must never execute", receipts[0].Destination)
	}
	if receipts[0].Amount != 0.05 {
		t.Errorf("paid %v; amount must be pinned to 0.05", receipts[0].Amount)
	}

	if !h.hasEvent(types.EventTypePaymentCompleted) {
		t.Errorf("missing payment_completed event; got %v", h.eventTypes())
	}

	history := h.session.History()
	if !history[len(history)-1].PaymentCompleted {
		t.Error("agent reply in history should carry the payment flag")
	}
}

// namespacedTool rebinds a tool to a differently named server, the way a
// runtime with environment-suffixed namespaces would expose it.
type namespacedTool struct {
	tools.Tool
	server string
}

func (t namespacedTool) ServerName() string { return t.server }

func TestTurnGlobNamespacePaymentStillPinned(t *testing.T) {
	gate, err := policy.NewGate(policy.Config{
		DestinationAddress: "0xconfigured",
		PaymentNamespace:   "payman*",
	})
	if err != nil {
		t.Fatalf("NewGate failed: %v", err)
	}

	wallet := payments.NewDemoWallet()
	toolset := []tools.Tool{
		tools.NewConverseTool(),
		namespacedTool{Tool: tools.NewSendToAddressTool(wallet), server: "payman-sandbox"},
	}

	call := `<tool><server_name>payman-sandbox</server_name><tool_name>send_to_address</tool_name><arguments><address>0xattacker</address><amount>4999.99</amount></arguments></tool>`
	session := NewSession(&scriptedProvider{responses: []scriptedResponse{
		{text: call},
		{text: converseCall("All booked!")},
	}}, gate, toolset)

	result := session.Turn(context.Background(), "go ahead and book it")

	if !result.PaymentCompleted {
		t.Error("settled payment in a glob-matched namespace must set the flag")
	}
	receipts := wallet.Receipts()
	if len(receipts) != 1 {
		t.Fatalf("wallet has %d receipts, want 1", len(receipts))
	}
	if receipts[0].Destination != "0xconfigured" {
		t.Errorf("paid %q; glob-matched sends must still pin the destination", receipts[0].Destination)
	}
	if receipts[0].Amount != 0.05 {
		t.Errorf("paid %v; glob-matched sends must still pin the amount", receipts[0].Amount)
	}
}

func TestTurnDeniesForeignNamespace(t *testing.T) {
	h := newHarness(t, []scriptedResponse{
		{text: `<tool><server_name>filesystem</server_name><tool_name>read_file</tool_name><arguments><path>/etc/passwd</path></arguments></tool>`},
		{text: converseCall("I can only help with travel plans.")},
	})

	result := h.session.Turn(context.Background(), "read my files")

	if result.PaymentCompleted {
		t.Error("denied call must not set the payment flag")
	}
	if !h.hasEvent(types.EventTypeToolDenied) {
		t.Errorf("missing tool_denied event; got %v", h.eventTypes())
	}
	if result.Content != "I can only help with travel plans." {
		t.Errorf("content = %q", result.Content)
	}
}

func TestTurnFlightSearchPassthrough(t *testing.T) {
	h := newHarness(t, []scriptedResponse{
		{text: `<tool><server_name>flights</server_name><tool_name>search_flights</tool_name><arguments><origin>SFO</origin><destination>JFK</destination></arguments></tool>`},
		{text: converseCall("The cheapest is JetBlue at $244.")},
	})

	result := h.session.Turn(context.Background(), "cheapest flight SFO to JFK?")

	if result.Content != "The cheapest is JetBlue at $244." {
		t.Errorf("content = %q", result.Content)
	}
	if result.PaymentCompleted {
		t.Error("search must not set the payment flag")
	}
	if !h.hasEvent(types.EventTypeToolResult) {
		t.Errorf("missing tool_result event; got %v", h.eventTypes())
	}
}

func TestTurnMissingCredential(t *testing.T) {
	h := newHarness(t, []scriptedResponse{
		{startErr: fmt.Errorf("%w: no key", llm.ErrMissingAPIKey)},
	})

	result := h.session.Turn(context.Background(), "hello")

	if result.Content != credentialFailureReply {
		t.Errorf("content = %q, want credential failure reply", result.Content)
	}
	if result.PaymentCompleted {
		t.Error("failed turn must not set the payment flag")
	}

	// The failed turn still resolves into a reply bubble.
	history := h.session.History()
	if len(history) != 2 || history[1].Role != types.RoleAgent {
		t.Fatalf("history = %+v", history)
	}
}

func TestTurnProviderUnreachable(t *testing.T) {
	h := newHarness(t, []scriptedResponse{
		{startErr: fmt.Errorf("%w: dial tcp: connection refused", llm.ErrUnavailable)},
	})

	result := h.session.Turn(context.Background(), "hello")
	if result.Content != unavailableReply {
		t.Errorf("content = %q, want unavailable reply", result.Content)
	}
}

func TestTurnMidStreamErrorDiscardsPartialText(t *testing.T) {
	h := newHarness(t, []scriptedResponse{
		{text: "I found a great option for y", midErr: fmt.Errorf("connection reset")},
	})

	result := h.session.Turn(context.Background(), "find flights")

	if result.Content != genericFailureReply {
		t.Errorf("content = %q, want generic failure reply", result.Content)
	}
	if strings.Contains(result.Content, "great option") {
		t.Error("partial streamed text must be discarded on failure")
	}
}

func TestTurnPlainTextReply(t *testing.T) {
	h := newHarness(t, []scriptedResponse{
		{text: "Happy to help with your trip planning."},
	})

	result := h.session.Turn(context.Background(), "thanks!")
	if result.Content != "Happy to help with your trip planning." {
		t.Errorf("content = %q", result.Content)
	}
	if !h.hasEvent(types.EventTypeMessageStart) || !h.hasEvent(types.EventTypeMessageEnd) {
		t.Errorf("streamed reply must be bracketed by message lifecycle events; got %v", h.eventTypes())
	}
}

func TestTurnEmptyReplyFallsBack(t *testing.T) {
	h := newHarness(t, []scriptedResponse{{text: ""}})

	result := h.session.Turn(context.Background(), "ok")
	if result.Content != fallbackAcknowledgement {
		t.Errorf("content = %q, want fallback acknowledgement", result.Content)
	}
}

func TestTurnFailedPaymentDoesNotSetFlag(t *testing.T) {
	h := newHarness(t, []scriptedResponse{
		{text: paymentCall("0xattacker", "10")},
		{text: converseCall("The payment didn't go through; want me to retry?")},
	})
	h.wallet.FailNext(payments.ErrDeclined)

	result := h.session.Turn(context.Background(), "go ahead and book it")

	if result.PaymentCompleted {
		t.Error("failed payment must not set the flag")
	}
	if !h.hasEvent(types.EventTypeToolResultError) {
		t.Errorf("missing tool_result_error event; got %v", h.eventTypes())
	}
	if h.hasEvent(types.EventTypePaymentCompleted) {
		t.Error("no payment_completed event for a declined payment")
	}
}

func TestTurnPaymentFlagIsMonotonic(t *testing.T) {
	h := newHarness(t, []scriptedResponse{
		{text: paymentCall("0xanything", "1")},
		{text: `<tool><server_name>filesystem</server_name><tool_name>read_file</tool_name><arguments></arguments></tool>`},
		{text: converseCall("Booked, and no I can't read files.")},
	})

	result := h.session.Turn(context.Background(), "go ahead and book it")

	if !result.PaymentCompleted {
		t.Error("later denied call must not clear an already-settled payment flag")
	}
}

func TestTurnInvalidUserMessage(t *testing.T) {
	h := newHarness(t, nil)

	result := h.session.Turn(context.Background(), "")

	if result.Content != genericFailureReply {
		t.Errorf("content = %q", result.Content)
	}
	if h.session.conversation.Len() != 0 {
		t.Error("rejected input must leave history untouched")
	}
}

func TestTurnTimeout(t *testing.T) {
	h := newHarness(t, nil, WithTurnTimeout(20*time.Millisecond))
	// Replace the provider with one that never produces output.
	h.session.provider = blockingProvider{}

	start := time.Now()
	result := h.session.Turn(context.Background(), "hello")

	if time.Since(start) > 2*time.Second {
		t.Fatal("turn did not respect its timeout")
	}
	if result.Content != genericFailureReply {
		t.Errorf("content = %q", result.Content)
	}
}

type blockingProvider struct{}

func (blockingProvider) StreamCompletion(ctx context.Context, _ []*types.Message) (<-chan *llm.StreamChunk, error) {
	chunks := make(chan *llm.StreamChunk, 1)
	go func() {
		defer close(chunks)
		<-ctx.Done()
		chunks <- &llm.StreamChunk{Error: ctx.Err()}
	}()
	return chunks, nil
}

func (blockingProvider) Complete(context.Context, []*types.Message) (*types.Message, error) {
	return nil, fmt.Errorf("not used")
}
func (blockingProvider) GetModel() string   { return "blocking" }
func (blockingProvider) GetBaseURL() string { return "blocking://" }

func TestTurnIterationLimit(t *testing.T) {
	// Every response asks for another flight search; the loop must stop.
	searchCall := `<tool><server_name>flights</server_name><tool_name>search_flights</tool_name><arguments><origin>SFO</origin><destination>JFK</destination></arguments></tool>`
	responses := make([]scriptedResponse, 12)
	for i := range responses {
		responses[i] = scriptedResponse{text: searchCall}
	}

	h := newHarness(t, responses, WithMaxIterations(3))
	result := h.session.Turn(context.Background(), "keep searching")

	if result.Content != fallbackAcknowledgement {
		t.Errorf("content = %q", result.Content)
	}
	if got := h.session.History(); len(got) != 2 {
		t.Errorf("history has %d messages, want 2", len(got))
	}
}

func TestManagerReusesSessions(t *testing.T) {
	created := 0
	m := NewManager(func(id string) *Session {
		created++
		gate, _ := policy.NewGate(policy.Config{DestinationAddress: "0xok"})
		return NewSession(&scriptedProvider{}, gate, nil, WithSessionID(id))
	})

	a := m.Get("session-1")
	b := m.Get("session-1")
	c := m.Get("session-2")

	if a != b {
		t.Error("same id must return the same session")
	}
	if a == c {
		t.Error("different ids must not share a session")
	}
	if created != 2 || m.Len() != 2 {
		t.Errorf("created = %d, len = %d", created, m.Len())
	}
	if a.ID() != "session-1" {
		t.Errorf("session id = %q", a.ID())
	}
}

func TestNewSessionRegistersConverse(t *testing.T) {
	gate, _ := policy.NewGate(policy.Config{DestinationAddress: "0xok"})
	s := NewSession(&scriptedProvider{}, gate, nil)

	if _, ok := s.lookupTool(tools.ServerLocal, "converse"); !ok {
		t.Error("sessions must always have a loop-breaking reply tool")
	}
}
