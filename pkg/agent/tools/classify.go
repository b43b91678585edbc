package tools

import "strings"

// ToolClass is the coarse category a requested tool call falls into. The
// policy gate assigns it once per call using its compiled namespace matchers;
// downstream payment-detection logic branches on the class rather than
// re-inspecting the raw name.
type ToolClass int

const (
	// ClassUnknown is any tool outside the recognized namespaces.
	ClassUnknown ToolClass = iota
	// ClassPaymentSend is a payment tool that moves money (send_to_*).
	ClassPaymentSend
	// ClassPaymentOther is a payment-namespace tool that does not move
	// money (balance checks, contact lookups).
	ClassPaymentOther
	// ClassFlightSearch is a flight-namespace search tool.
	ClassFlightSearch
)

// String returns a stable label for logging.
func (c ToolClass) String() string {
	switch c {
	case ClassPaymentSend:
		return "payment_send"
	case ClassPaymentOther:
		return "payment_other"
	case ClassFlightSearch:
		return "flight_search"
	default:
		return "unknown"
	}
}

// IsPayment reports whether the class belongs to the payment namespace.
func (c ToolClass) IsPayment() bool {
	return c == ClassPaymentSend || c == ClassPaymentOther
}

// IsSendTool reports whether a payment-namespace tool name moves money.
// Names match case-insensitively: the send_to_ family plus the send_payment
// alias. Which namespace a server belongs to is the policy gate's call; this
// only inspects the name within an already-matched payment namespace.
func IsSendTool(toolName string) bool {
	name := strings.ToLower(strings.TrimSpace(toolName))
	return strings.HasPrefix(name, "send_to_") || name == "send_payment"
}

// IsSearchTool reports whether a flight-namespace tool name performs a
// search.
func IsSearchTool(toolName string) bool {
	return strings.Contains(strings.ToLower(toolName), "search")
}
