package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travelweaver/weaver/pkg/agent/tools"
)

func newTestGate(t *testing.T) *Gate {
	t.Helper()
	gate, err := NewGate(Config{
		DestinationAddress: "0xconfigured",
		FixedAmount:        0.05,
		PaymentNamespace:   "payman",
		FlightNamespace:    "flights",
	})
	require.NoError(t, err)
	return gate
}

func TestGateRewritesPaymentSend(t *testing.T) {
	gate := newTestGate(t)

	requested := map[string]interface{}{
		"address": "0xattacker",
		"amount":  "4999.99",
		"memo":    "flight SFO-JFK",
	}
	decision := gate.Evaluate("payman", "send_to_address", requested)

	require.True(t, decision.Allowed)
	assert.Equal(t, "0xconfigured", decision.Args["address"])
	assert.Equal(t, "0.05", decision.Args["amount"])
	assert.Equal(t, "flight SFO-JFK", decision.Args["memo"], "non-monetary args pass through")

	// The requested map is never mutated.
	assert.Equal(t, "0xattacker", requested["address"])
	assert.Equal(t, "4999.99", requested["amount"])
}

func TestGatePinsAmountForAllSendVariants(t *testing.T) {
	gate := newTestGate(t)

	for _, toolName := range []string{"send_to_contact", "send_to_email"} {
		t.Run(toolName, func(t *testing.T) {
			decision := gate.Evaluate("payman", toolName, map[string]interface{}{
				"contact": "Acme Travel",
				"amount":  "250",
			})
			require.True(t, decision.Allowed)
			assert.Equal(t, "0.05", decision.Args["amount"])
			assert.Equal(t, "Acme Travel", decision.Args["contact"])
		})
	}
}

func TestGateAllowsPaymentNonSendUntouched(t *testing.T) {
	gate := newTestGate(t)

	decision := gate.Evaluate("payman", "get_balance", map[string]interface{}{"currency": "USDC"})

	require.True(t, decision.Allowed)
	assert.Equal(t, "USDC", decision.Args["currency"])
	_, hasAmount := decision.Args["amount"]
	assert.False(t, hasAmount, "non-send payment calls gain no synthetic amount")
}

func TestGatePinsAmountOnNonSendCalls(t *testing.T) {
	gate := newTestGate(t)

	decision := gate.Evaluate("payman", "request_payment", map[string]interface{}{
		"amount": "4999.99",
		"payee":  "Acme Travel",
	})

	require.True(t, decision.Allowed)
	assert.Equal(t, "0.05", decision.Args["amount"], "any payment-namespace amount is pinned")
	assert.Equal(t, "Acme Travel", decision.Args["payee"])
	_, hasAddress := decision.Args["address"]
	assert.False(t, hasAddress, "non-send calls gain no destination")
}

func TestGateFlightSearchPassthrough(t *testing.T) {
	gate := newTestGate(t)

	args := map[string]interface{}{"origin": "SFO", "destination": "JFK", "date": "2026-09-14"}
	decision := gate.Evaluate("flights", "search_flights", args)

	require.True(t, decision.Allowed)
	assert.Equal(t, args, decision.Args)
	assert.Empty(t, decision.Reason)
}

func TestGateDeniesByDefault(t *testing.T) {
	gate := newTestGate(t)

	for _, tc := range []struct{ server, tool string }{
		{"filesystem", "read_file"},
		{"browser", "navigate"},
		{"", "send_to_address"},
		{"payman2-evil", ""},
	} {
		decision := gate.Evaluate(tc.server, tc.tool, nil)
		assert.False(t, decision.Allowed, "%s/%s should be denied", tc.server, tc.tool)
		assert.Equal(t, DeniedReason, decision.Reason)
	}
}

func TestGateIsDeterministic(t *testing.T) {
	gate := newTestGate(t)
	args := map[string]interface{}{"address": "0xother", "amount": "10"}

	first := gate.Evaluate("payman", "send_to_address", args)
	for i := 0; i < 25; i++ {
		got := gate.Evaluate("payman", "send_to_address", args)
		assert.Equal(t, first, got, "verdict must not vary across calls")
	}
}

func TestGateNamespaceGlobs(t *testing.T) {
	gate, err := NewGate(Config{
		DestinationAddress: "0xconfigured",
		PaymentNamespace:   "payman*",
		FlightNamespace:    "flights-*",
	})
	require.NoError(t, err)

	// A send in a glob-matched namespace is rewritten exactly like one in a
	// literal namespace; matching the pattern must never weaken the pinning.
	decision := gate.Evaluate("payman-sandbox", "send_to_address", map[string]interface{}{
		"address": "0xattacker",
		"amount":  "4999.99",
	})
	require.True(t, decision.Allowed)
	assert.Equal(t, "0xconfigured", decision.Args["address"])
	assert.Equal(t, "0.05", decision.Args["amount"])

	assert.True(t, gate.Evaluate("flights-demo", "search_flights", nil).Allowed)
	assert.False(t, gate.Evaluate("flightsdemo", "search_flights", nil).Allowed)
}

func TestGateClassify(t *testing.T) {
	gate, err := NewGate(Config{
		DestinationAddress: "0xconfigured",
		PaymentNamespace:   "payman*",
		FlightNamespace:    "flights-*",
	})
	require.NoError(t, err)

	for _, tc := range []struct {
		server, tool string
		want         tools.ToolClass
	}{
		{"payman-sandbox", "send_to_address", tools.ClassPaymentSend},
		{"payman-sandbox", "SEND_TO_CONTACT", tools.ClassPaymentSend},
		{"payman-sandbox", "send_payment", tools.ClassPaymentSend},
		{"payman-sandbox", "get_balance", tools.ClassPaymentOther},
		{"flights-demo", "search_flights", tools.ClassFlightSearch},
		{"flights-demo", "cancel_booking", tools.ClassUnknown},
		{"local", "converse", tools.ClassUnknown},
		{"filesystem", "read_file", tools.ClassUnknown},
	} {
		assert.Equal(t, tc.want, gate.Classify(tc.server, tc.tool), "%s/%s", tc.server, tc.tool)
	}
}

func TestNewGateValidation(t *testing.T) {
	_, err := NewGate(Config{})
	require.Error(t, err, "destination address is mandatory")

	_, err = NewGate(Config{DestinationAddress: "0xok", PaymentNamespace: "[invalid"})
	require.Error(t, err)

	gate, err := NewGate(Config{DestinationAddress: "0xok"})
	require.NoError(t, err)
	assert.Equal(t, DefaultFixedAmount, gate.FixedAmount())
	assert.Equal(t, "0xok", gate.DestinationAddress())
}
