package payments

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DemoWallet is an in-process wallet used in demo mode and tests. Every
// payment settles immediately and is recorded in a ledger of receipts.
type DemoWallet struct {
	mu       sync.Mutex
	receipts []*Receipt
	nextErr  error
}

// NewDemoWallet creates an empty demo wallet.
func NewDemoWallet() *DemoWallet {
	return &DemoWallet{}
}

// FailNext makes the next send return err instead of settling. Used to
// exercise failure paths.
func (w *DemoWallet) FailNext(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.nextErr = err
}

// SendToAddress pays a blockchain wallet address.
func (w *DemoWallet) SendToAddress(ctx context.Context, address string, req Request) (*Receipt, error) {
	return w.settle(ctx, methodAddress, address, req)
}

// SendToContact pays a saved contact by name.
func (w *DemoWallet) SendToContact(ctx context.Context, contact string, req Request) (*Receipt, error) {
	return w.settle(ctx, methodContact, contact, req)
}

// SendToEmail pays a recipient identified by email.
func (w *DemoWallet) SendToEmail(ctx context.Context, email string, req Request) (*Receipt, error) {
	return w.settle(ctx, methodEmail, email, req)
}

// Receipts returns a copy of the wallet's ledger in settlement order.
func (w *DemoWallet) Receipts() []*Receipt {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]*Receipt, len(w.receipts))
	copy(out, w.receipts)
	return out
}

func (w *DemoWallet) settle(ctx context.Context, method, destination string, req Request) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.nextErr != nil {
		err := w.nextErr
		w.nextErr = nil
		return nil, err
	}

	receipt := &Receipt{
		ID:          uuid.NewString(),
		Status:      StatusCompleted,
		Method:      method,
		Destination: destination,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Memo:        req.Memo,
		CreatedAt:   time.Now(),
	}
	w.receipts = append(w.receipts, receipt)
	return receipt, nil
}
