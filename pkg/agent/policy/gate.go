// Package policy implements the tool policy gate. Every tool invocation the
// model requests of an external namespace passes through the gate before
// execution; the gate decides allow/deny and, for payment calls, pins the
// amount (and for sends, the destination) to configured values.
// Model-proposed values for those fields never reach execution.
package policy

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gobwas/glob"
	"github.com/travelweaver/weaver/pkg/agent/tools"
)

const (
	// DeniedReason is the reason attached to every default-deny decision.
	DeniedReason = "tool not permitted"

	// DefaultFixedAmount is the demo payment amount every send is pinned to.
	DefaultFixedAmount = 0.05
)

// Config is the static policy a Gate enforces. It is fixed at construction;
// nothing observed during a conversation changes it.
type Config struct {
	// DestinationAddress is the only address send_to_address may pay.
	DestinationAddress string

	// FixedAmount replaces the model-proposed amount on every payment send.
	FixedAmount float64

	// PaymentNamespace is a glob matching payment server names (e.g. "payman").
	PaymentNamespace string

	// FlightNamespace is a glob matching flight server names (e.g. "flights").
	FlightNamespace string
}

// Decision is the gate's verdict on a single tool invocation.
type Decision struct {
	// Allowed reports whether the call may execute.
	Allowed bool

	// Args is the argument map the call must execute with. For payment
	// sends this differs from the requested arguments; execution must use
	// these values, not the model's.
	Args map[string]interface{}

	// Reason is the denial reason. Empty when Allowed.
	Reason string
}

// Gate evaluates tool invocations against a fixed Config. Evaluate is a pure
// function of its inputs and the config: same call, same verdict, regardless
// of conversation history.
type Gate struct {
	cfg            Config
	paymentMatcher glob.Glob
	flightMatcher  glob.Glob
}

// NewGate compiles the config's namespace patterns into a gate.
func NewGate(cfg Config) (*Gate, error) {
	if cfg.DestinationAddress == "" {
		return nil, fmt.Errorf("policy: destination address is required")
	}
	if cfg.FixedAmount <= 0 {
		cfg.FixedAmount = DefaultFixedAmount
	}
	if cfg.PaymentNamespace == "" {
		cfg.PaymentNamespace = tools.ServerPayments
	}
	if cfg.FlightNamespace == "" {
		cfg.FlightNamespace = tools.ServerFlights
	}

	paymentMatcher, err := glob.Compile(cfg.PaymentNamespace)
	if err != nil {
		return nil, fmt.Errorf("policy: invalid payment namespace pattern %q: %w", cfg.PaymentNamespace, err)
	}
	flightMatcher, err := glob.Compile(cfg.FlightNamespace)
	if err != nil {
		return nil, fmt.Errorf("policy: invalid flight namespace pattern %q: %w", cfg.FlightNamespace, err)
	}

	return &Gate{
		cfg:            cfg,
		paymentMatcher: paymentMatcher,
		flightMatcher:  flightMatcher,
	}, nil
}

// Evaluate decides whether the requested tool call may execute and with what
// arguments. The input args map is never mutated; allowed decisions carry a
// fresh map.
//
// Precedence: payment namespace, then flight namespace, then deny.
func (g *Gate) Evaluate(serverName, toolName string, args map[string]interface{}) Decision {
	switch {
	case g.paymentMatcher.Match(serverName):
		return g.evaluatePayment(toolName, args)
	case g.flightMatcher.Match(serverName):
		// Flight searches pass through untouched.
		return Decision{Allowed: true, Args: copyArgs(args)}
	default:
		return Decision{Allowed: false, Reason: DeniedReason}
	}
}

// Classify buckets a requested tool call using the gate's compiled namespace
// matchers, so a configured glob pattern and the classification can never
// disagree about which servers are payment servers.
func (g *Gate) Classify(serverName, toolName string) tools.ToolClass {
	switch {
	case g.paymentMatcher.Match(serverName):
		if tools.IsSendTool(toolName) {
			return tools.ClassPaymentSend
		}
		return tools.ClassPaymentOther
	case g.flightMatcher.Match(serverName):
		if tools.IsSearchTool(toolName) {
			return tools.ClassFlightSearch
		}
		return tools.ClassUnknown
	default:
		return tools.ClassUnknown
	}
}

// evaluatePayment allows payment-namespace calls, pinning money-moving
// arguments. Any amount the model proposed is overwritten whether or not the
// tool is a send; sends always carry the pinned amount, and address sends get
// the configured destination, so a model-chosen amount or address is
// unreachable. The namespace is already matched by the caller; only the tool
// name decides send-ness here.
func (g *Gate) evaluatePayment(toolName string, args map[string]interface{}) Decision {
	rewritten := copyArgs(args)

	isSend := tools.IsSendTool(toolName)
	if _, hasAmount := rewritten["amount"]; hasAmount || isSend {
		rewritten["amount"] = strconv.FormatFloat(g.cfg.FixedAmount, 'f', -1, 64)
	}
	if isSend {
		if _, hasAddress := rewritten["address"]; hasAddress || strings.EqualFold(toolName, "send_to_address") {
			rewritten["address"] = g.cfg.DestinationAddress
		}
	}

	return Decision{Allowed: true, Args: rewritten}
}

// FixedAmount returns the pinned payment amount.
func (g *Gate) FixedAmount() float64 {
	return g.cfg.FixedAmount
}

// DestinationAddress returns the pinned payment destination.
func (g *Gate) DestinationAddress() string {
	return g.cfg.DestinationAddress
}

func copyArgs(args map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(args))
	for k, v := range args {
		out[k] = v
	}
	return out
}
