package model

import (
	"context"
	"errors"
	"testing"
)

func TestMockChatModel_ReturnsConfiguredResponses(t *testing.T) {
	m := &MockChatModel{Responses: []ChatOut{{Text: "first"}, {Text: "second"}}}

	out, err := m.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, nil)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if out.Text != "first" {
		t.Errorf("got %q, want first", out.Text)
	}

	out, _ = m.Chat(context.Background(), nil, nil)
	if out.Text != "second" {
		t.Errorf("got %q, want second", out.Text)
	}
}

func TestMockChatModel_RepeatsLastResponseOnceExhausted(t *testing.T) {
	m := &MockChatModel{Responses: []ChatOut{{Text: "only"}}}

	m.Chat(context.Background(), nil, nil)
	out, _ := m.Chat(context.Background(), nil, nil)
	out2, _ := m.Chat(context.Background(), nil, nil)

	if out.Text != "only" || out2.Text != "only" {
		t.Errorf("expected the last response to repeat, got %q then %q", out.Text, out2.Text)
	}
}

func TestMockChatModel_ReturnsConfiguredError(t *testing.T) {
	wantErr := errors.New("rate limited")
	m := &MockChatModel{Err: wantErr}

	_, err := m.Chat(context.Background(), nil, nil)
	if !errors.Is(err, wantErr) {
		t.Errorf("got %v, want %v", err, wantErr)
	}
}

func TestMockChatModel_RecordsCallHistory(t *testing.T) {
	m := &MockChatModel{}
	messages := []Message{{Role: RoleUser, Content: "hi"}}

	m.Chat(context.Background(), messages, nil)
	m.Chat(context.Background(), messages, nil)

	if m.CallCount() != 2 {
		t.Fatalf("got %d calls, want 2", m.CallCount())
	}
	if len(m.Calls[0].Messages) != 1 || m.Calls[0].Messages[0].Content != "hi" {
		t.Error("expected call history to record the messages passed in")
	}
}

func TestMockChatModel_Reset(t *testing.T) {
	m := &MockChatModel{Responses: []ChatOut{{Text: "a"}, {Text: "b"}}}
	m.Chat(context.Background(), nil, nil)
	m.Chat(context.Background(), nil, nil)

	m.Reset()
	if m.CallCount() != 0 {
		t.Error("expected Reset to clear call history")
	}

	out, _ := m.Chat(context.Background(), nil, nil)
	if out.Text != "a" {
		t.Error("expected Reset to rewind the response index")
	}
}

func TestMockChatModel_RespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := &MockChatModel{Responses: []ChatOut{{Text: "ignored"}}}
	_, err := m.Chat(ctx, nil, nil)
	if err == nil {
		t.Error("expected an error from a cancelled context")
	}
}

func TestMockChatModel_InterfaceContract(t *testing.T) {
	var _ ChatModel = &MockChatModel{}
}
