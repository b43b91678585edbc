package tools

import "testing"

func TestIsSendTool(t *testing.T) {
	tests := []struct {
		name     string
		toolName string
		want     bool
	}{
		{"send to address", "send_to_address", true},
		{"send to contact", "send_to_contact", true},
		{"send to email", "send_to_email", true},
		{"send payment alias", "send_payment", true},
		{"case insensitive", "SEND_TO_ADDRESS", true},
		{"surrounding whitespace", " send_to_address ", true},
		{"balance check", "get_balance", false},
		{"contact list", "list_contacts", false},
		{"payment request does not move money", "request_payment", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSendTool(tt.toolName); got != tt.want {
				t.Errorf("IsSendTool(%q) = %v, want %v", tt.toolName, got, tt.want)
			}
		})
	}
}

func TestIsSearchTool(t *testing.T) {
	tests := []struct {
		name     string
		toolName string
		want     bool
	}{
		{"search flights", "search_flights", true},
		{"case insensitive", "Search_Flights", true},
		{"search suffix", "flight_search", true},
		{"cancel booking", "cancel_booking", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSearchTool(tt.toolName); got != tt.want {
				t.Errorf("IsSearchTool(%q) = %v, want %v", tt.toolName, got, tt.want)
			}
		})
	}
}

func TestToolClassIsPayment(t *testing.T) {
	if !ClassPaymentSend.IsPayment() || !ClassPaymentOther.IsPayment() {
		t.Error("payment classes should report IsPayment")
	}
	if ClassFlightSearch.IsPayment() || ClassUnknown.IsPayment() {
		t.Error("non-payment classes should not report IsPayment")
	}
}
