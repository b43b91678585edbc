package payments

import (
	"context"
	"errors"
	"testing"
)

func TestDemoWalletSettlesImmediately(t *testing.T) {
	w := NewDemoWallet()

	receipt, err := w.SendToAddress(context.Background(), "0xabc123", Request{
		Amount:   0.05,
		Currency: "USDC",
		Memo:     "flight booking",
	})
	if err != nil {
		t.Fatalf("SendToAddress failed: %v", err)
	}

	if !receipt.Completed() {
		t.Errorf("receipt status = %q, want %q", receipt.Status, StatusCompleted)
	}
	if receipt.ID == "" {
		t.Error("receipt should carry a non-empty id")
	}
	if receipt.Destination != "0xabc123" {
		t.Errorf("destination = %q, want %q", receipt.Destination, "0xabc123")
	}
	if receipt.Amount != 0.05 {
		t.Errorf("amount = %v, want 0.05", receipt.Amount)
	}
}

func TestDemoWalletLedger(t *testing.T) {
	w := NewDemoWallet()
	ctx := context.Background()

	if _, err := w.SendToContact(ctx, "Acme Travel", Request{Amount: 0.05, Currency: "USDC"}); err != nil {
		t.Fatalf("SendToContact failed: %v", err)
	}
	if _, err := w.SendToEmail(ctx, "billing@example.com", Request{Amount: 0.05, Currency: "USDC"}); err != nil {
		t.Fatalf("SendToEmail failed: %v", err)
	}

	receipts := w.Receipts()
	if len(receipts) != 2 {
		t.Fatalf("ledger has %d receipts, want 2", len(receipts))
	}
	if receipts[0].Method != "contact" || receipts[1].Method != "email" {
		t.Errorf("ledger order wrong: %q then %q", receipts[0].Method, receipts[1].Method)
	}

	// Ledger copies must not alias internal state.
	receipts[0] = nil
	if w.Receipts()[0] == nil {
		t.Error("Receipts must return a copy of the ledger")
	}
}

func TestDemoWalletFailNext(t *testing.T) {
	w := NewDemoWallet()
	ctx := context.Background()
	w.FailNext(ErrDeclined)

	_, err := w.SendToAddress(ctx, "0xabc", Request{Amount: 0.05, Currency: "USDC"})
	if !errors.Is(err, ErrDeclined) {
		t.Fatalf("err = %v, want ErrDeclined", err)
	}
	if len(w.Receipts()) != 0 {
		t.Error("failed payment must not be recorded in the ledger")
	}

	// Failure is one-shot.
	receipt, err := w.SendToAddress(ctx, "0xabc", Request{Amount: 0.05, Currency: "USDC"})
	if err != nil {
		t.Fatalf("send after FailNext consumed should succeed, got %v", err)
	}
	if !receipt.Completed() {
		t.Errorf("receipt status = %q, want completed", receipt.Status)
	}
}
