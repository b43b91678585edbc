package tools

import (
	"context"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/travelweaver/weaver/pkg/payments"
)

// DefaultCurrency is used when a payment call omits the currency argument.
const DefaultCurrency = "USDC"

// paymentArgs is the shared argument shape of the send_to_* tools. The
// destination field that applies depends on the tool.
type paymentArgs struct {
	XMLName  xml.Name `xml:"arguments"`
	Address  string   `xml:"address"`
	Contact  string   `xml:"contact"`
	Email    string   `xml:"email"`
	Amount   string   `xml:"amount"`
	Currency string   `xml:"currency"`
	Memo     string   `xml:"memo"`
}

func (a *paymentArgs) request() (payments.Request, error) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(a.Amount), 64)
	if err != nil {
		return payments.Request{}, fmt.Errorf("invalid amount %q: %w", a.Amount, err)
	}
	if amount <= 0 {
		return payments.Request{}, fmt.Errorf("amount must be positive, got %v", amount)
	}

	currency := strings.TrimSpace(a.Currency)
	if currency == "" {
		currency = DefaultCurrency
	}
	return payments.Request{Amount: amount, Currency: currency, Memo: a.Memo}, nil
}

func parsePaymentArgs(argsXML []byte) (*paymentArgs, error) {
	var args paymentArgs
	if err := UnmarshalXMLWithFallback(argsXML, &args); err != nil {
		return nil, fmt.Errorf("invalid payment arguments: %w", err)
	}
	return &args, nil
}

func receiptResult(receipt *payments.Receipt) (string, map[string]interface{}) {
	result := fmt.Sprintf("Payment %s. Receipt %s: %v %s to %s.",
		receipt.Status, receipt.ID, receipt.Amount, receipt.Currency, receipt.Destination)
	metadata := map[string]interface{}{
		"status":      string(receipt.Status),
		"receipt_id":  receipt.ID,
		"amount":      receipt.Amount,
		"currency":    receipt.Currency,
		"destination": receipt.Destination,
	}
	return result, metadata
}

func amountSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": "Payment amount in currency units.",
	}
}

func currencySchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Currency or asset code. Defaults to " + DefaultCurrency + ".",
	}
}

// SendToAddressTool pays a blockchain wallet address through the wallet
// client. It is gated: the policy layer pins both the amount and the
// destination address before execution.
type SendToAddressTool struct {
	client payments.Client
}

// NewSendToAddressTool creates the send_to_address tool over the given wallet.
func NewSendToAddressTool(client payments.Client) *SendToAddressTool {
	return &SendToAddressTool{client: client}
}

func (t *SendToAddressTool) Name() string       { return "send_to_address" }
func (t *SendToAddressTool) ServerName() string { return ServerPayments }

func (t *SendToAddressTool) Description() string {
	return "Send a payment to a blockchain wallet address."
}

func (t *SendToAddressTool) Schema() map[string]interface{} {
	return BaseToolSchema(
		map[string]interface{}{
			"address": map[string]interface{}{
				"type":        "string",
				"description": "Destination wallet address.",
			},
			"amount":   amountSchema(),
			"currency": currencySchema(),
		},
		[]string{"address", "amount"},
	)
}

func (t *SendToAddressTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	args, err := parsePaymentArgs(argsXML)
	if err != nil {
		return "", nil, err
	}
	if args.Address == "" {
		return "", nil, fmt.Errorf("address is required")
	}
	req, err := args.request()
	if err != nil {
		return "", nil, err
	}

	receipt, err := t.client.SendToAddress(ctx, args.Address, req)
	if err != nil {
		return "", nil, fmt.Errorf("payment failed: %w", err)
	}
	result, metadata := receiptResult(receipt)
	return result, metadata, nil
}

func (t *SendToAddressTool) IsLoopBreaking() bool { return false }

// SendToContactTool pays a saved contact by name.
type SendToContactTool struct {
	client payments.Client
}

// NewSendToContactTool creates the send_to_contact tool over the given wallet.
func NewSendToContactTool(client payments.Client) *SendToContactTool {
	return &SendToContactTool{client: client}
}

func (t *SendToContactTool) Name() string       { return "send_to_contact" }
func (t *SendToContactTool) ServerName() string { return ServerPayments }

func (t *SendToContactTool) Description() string {
	return "Send a payment to a saved contact by name."
}

func (t *SendToContactTool) Schema() map[string]interface{} {
	return BaseToolSchema(
		map[string]interface{}{
			"contact": map[string]interface{}{
				"type":        "string",
				"description": "Name of the saved contact to pay.",
			},
			"amount":   amountSchema(),
			"currency": currencySchema(),
		},
		[]string{"contact", "amount"},
	)
}

func (t *SendToContactTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	args, err := parsePaymentArgs(argsXML)
	if err != nil {
		return "", nil, err
	}
	if args.Contact == "" {
		return "", nil, fmt.Errorf("contact is required")
	}
	req, err := args.request()
	if err != nil {
		return "", nil, err
	}

	receipt, err := t.client.SendToContact(ctx, args.Contact, req)
	if err != nil {
		return "", nil, fmt.Errorf("payment failed: %w", err)
	}
	result, metadata := receiptResult(receipt)
	return result, metadata, nil
}

func (t *SendToContactTool) IsLoopBreaking() bool { return false }

// SendToEmailTool pays a recipient identified by email address.
type SendToEmailTool struct {
	client payments.Client
}

// NewSendToEmailTool creates the send_to_email tool over the given wallet.
func NewSendToEmailTool(client payments.Client) *SendToEmailTool {
	return &SendToEmailTool{client: client}
}

func (t *SendToEmailTool) Name() string       { return "send_to_email" }
func (t *SendToEmailTool) ServerName() string { return ServerPayments }

func (t *SendToEmailTool) Description() string {
	return "Send a payment to a recipient identified by email address."
}

func (t *SendToEmailTool) Schema() map[string]interface{} {
	return BaseToolSchema(
		map[string]interface{}{
			"email": map[string]interface{}{
				"type":        "string",
				"description": "Recipient email address.",
			},
			"amount":   amountSchema(),
			"currency": currencySchema(),
		},
		[]string{"email", "amount"},
	)
}

func (t *SendToEmailTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	args, err := parsePaymentArgs(argsXML)
	if err != nil {
		return "", nil, err
	}
	if args.Email == "" {
		return "", nil, fmt.Errorf("email is required")
	}
	req, err := args.request()
	if err != nil {
		return "", nil, err
	}

	receipt, err := t.client.SendToEmail(ctx, args.Email, req)
	if err != nil {
		return "", nil, fmt.Errorf("payment failed: %w", err)
	}
	result, metadata := receiptResult(receipt)
	return result, metadata, nil
}

func (t *SendToEmailTool) IsLoopBreaking() bool { return false }
