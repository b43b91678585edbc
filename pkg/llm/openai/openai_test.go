package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/travelweaver/weaver/pkg/llm"
	"github.com/travelweaver/weaver/pkg/types"
)

func sseServer(t *testing.T, deltas []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, delta := range deltas {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", delta)
		}
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{},\"finish_reason\":\"stop\"}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
}

func TestNewProviderRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := NewProvider("")
	if !errors.Is(err, llm.ErrMissingAPIKey) {
		t.Fatalf("err = %v, want ErrMissingAPIKey", err)
	}
}

func TestStreamCompletionSeparatesThinking(t *testing.T) {
	server := sseServer(t, []string{"<thinking>checking fares</thinking>", "JetBlue is cheapest."})
	defer server.Close()

	provider, err := NewProvider("test-key", WithBaseURL(server.URL), WithModel("gpt-4o"))
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}

	stream, err := provider.StreamCompletion(context.Background(), []*types.Message{
		types.NewUserMessage("cheapest SFO-JFK?"),
	})
	if err != nil {
		t.Fatalf("StreamCompletion failed: %v", err)
	}

	var thinking, message string
	finished := false
	for chunk := range stream {
		if chunk.IsError() {
			t.Fatalf("unexpected stream error: %v", chunk.Error)
		}
		switch chunk.Type {
		case llm.ContentTypeThinking:
			thinking += chunk.Content
		case llm.ContentTypeMessage:
			message += chunk.Content
		}
		if chunk.Finished {
			finished = true
		}
	}

	if thinking != "checking fares" {
		t.Errorf("thinking = %q", thinking)
	}
	if message != "JetBlue is cheapest." {
		t.Errorf("message = %q", message)
	}
	if !finished {
		t.Error("stream should emit a finished chunk")
	}
}

func TestStreamCompletionClassifiesCredentialFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	provider, err := NewProvider("bad-key", WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}

	_, err = provider.StreamCompletion(context.Background(), []*types.Message{types.NewUserMessage("hi")})
	if !errors.Is(err, llm.ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestStreamCompletionClassifiesServerFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	provider, err := NewProvider("test-key", WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}

	_, err = provider.StreamCompletion(context.Background(), []*types.Message{types.NewUserMessage("hi")})
	if !errors.Is(err, llm.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestStreamCompletionClassifiesUnreachableRuntime(t *testing.T) {
	// A closed server port yields a dial error.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	provider, err := NewProvider("test-key", WithBaseURL(url))
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}

	_, err = provider.StreamCompletion(context.Background(), []*types.Message{types.NewUserMessage("hi")})
	if !errors.Is(err, llm.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestComplete(t *testing.T) {
	server := sseServer(t, []string{"Hello ", "traveler."})
	defer server.Close()

	provider, err := NewProvider("test-key", WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}

	msg, err := provider.Complete(context.Background(), []*types.Message{types.NewUserMessage("hi")})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if msg.Content != "Hello traveler." {
		t.Errorf("content = %q", msg.Content)
	}
	if msg.Role != types.RoleAgent {
		t.Errorf("role = %q, want agent", msg.Role)
	}
}
