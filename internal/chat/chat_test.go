package chat

import (
	"context"
	"errors"
	"testing"
)

type fakeReplier struct {
	reply string
	err   error
	got   string
}

func (f *fakeReplier) Chat(ctx context.Context, message string) (string, error) {
	f.got = message
	return f.reply, f.err
}

func TestSendAppendsExchange(t *testing.T) {
	tr := NewTranscript("AI offline")
	r := &fakeReplier{reply: "4"}

	if err := tr.Send(context.Background(), r, "what is 2+2?"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	msgs := tr.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Sender != SenderUser || msgs[0].Text != "what is 2+2?" {
		t.Errorf("unexpected user line %+v", msgs[0])
	}
	if msgs[1].Sender != SenderAI || msgs[1].Text != "4" {
		t.Errorf("unexpected AI line %+v", msgs[1])
	}
}

func TestSendBlankIsIgnored(t *testing.T) {
	tr := NewTranscript("AI offline")
	r := &fakeReplier{}
	if err := tr.Send(context.Background(), r, "   "); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(tr.Messages()) != 0 {
		t.Errorf("blank message must not be sent, got %d lines", len(tr.Messages()))
	}
	if r.got != "" {
		t.Error("blank message must not reach the API")
	}
}

func TestSendFailureKeepsUserLine(t *testing.T) {
	tr := NewTranscript("AI offline")
	r := &fakeReplier{err: errors.New("boom")}

	if err := tr.Send(context.Background(), r, "hello"); err == nil {
		t.Fatal("expected error")
	}
	msgs := tr.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected user line plus offline notice, got %d", len(msgs))
	}
	if msgs[1].Sender != SenderAI || msgs[1].Text != "AI offline" {
		t.Errorf("expected offline notice, got %+v", msgs[1])
	}
}
