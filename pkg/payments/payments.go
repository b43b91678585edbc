// Package payments provides the wallet client used by the agent's payment
// tools. Two implementations exist: an HTTP client for a real wallet runtime
// and an in-process demo wallet for local demos and tests.
package payments

import (
	"context"
	"errors"
	"time"
)

// Status is the settlement state of a payment.
type Status string

const (
	// StatusPending means the payment was accepted but has not settled.
	StatusPending Status = "pending"
	// StatusCompleted means the payment settled. Terminal.
	StatusCompleted Status = "completed"
	// StatusFailed means the payment was rejected or could not settle. Terminal.
	StatusFailed Status = "failed"
)

// ErrDeclined indicates the wallet refused to execute the payment.
var ErrDeclined = errors.New("payments: payment declined")

// Request describes a payment to execute. Exactly one destination field is
// used, selected by the client method invoked.
type Request struct {
	// Amount is the payment amount in Currency units.
	Amount float64 `json:"amount"`

	// Currency is the ISO currency or asset code (e.g., "USDC").
	Currency string `json:"currency"`

	// Memo is an optional free-text note attached to the payment.
	Memo string `json:"memo,omitempty"`
}

// Receipt is the wallet's record of an executed payment. It is the
// authoritative confirmation; callers surface its ID to the user.
type Receipt struct {
	ID          string    `json:"id"`
	Status      Status    `json:"status"`
	Method      string    `json:"method"`
	Destination string    `json:"destination"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	Memo        string    `json:"memo,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Completed reports whether the payment reached terminal success.
func (r *Receipt) Completed() bool {
	return r != nil && r.Status == StatusCompleted
}

// Client executes payments against a wallet.
type Client interface {
	// SendToAddress pays a blockchain wallet address.
	SendToAddress(ctx context.Context, address string, req Request) (*Receipt, error)

	// SendToContact pays a saved contact by name.
	SendToContact(ctx context.Context, contact string, req Request) (*Receipt, error)

	// SendToEmail pays a recipient identified by email.
	SendToEmail(ctx context.Context, email string, req Request) (*Receipt, error)
}
