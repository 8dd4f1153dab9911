// Package chat keeps the transcript of the AI tutor conversation.
//
// The exchange itself is stateless request/response: each message is posted
// on its own and the reply is appended to the transcript. The transcript
// lives in memory only and is gone when the process exits.
package chat

import (
	"context"
	"strings"
)

// Sender tags a transcript line.
type Sender string

const (
	SenderUser Sender = "You"
	SenderAI   Sender = "AI"
)

// Message is one transcript line.
type Message struct {
	Sender Sender
	Text   string
}

// Replier posts one chat message and returns the AI's reply.
type Replier interface {
	Chat(ctx context.Context, message string) (string, error)
}

// Transcript is an append-only conversation log.
type Transcript struct {
	offline  string
	messages []Message
}

// NewTranscript creates a transcript. offline is the line appended in place
// of a reply when the request fails.
func NewTranscript(offline string) *Transcript {
	return &Transcript{offline: offline}
}

// Messages returns the transcript so far.
func (t *Transcript) Messages() []Message { return t.messages }

// Clear drops the transcript.
func (t *Transcript) Clear() { t.messages = nil }

// Send appends the user's line, posts it and appends the reply. A blank
// message is ignored. On failure the user's line stays in the transcript,
// the offline notice is appended as the AI's line and the error is returned.
func (t *Transcript) Send(ctx context.Context, r Replier, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	t.messages = append(t.messages, Message{Sender: SenderUser, Text: text})

	reply, err := r.Chat(ctx, text)
	if err != nil {
		t.messages = append(t.messages, Message{Sender: SenderAI, Text: t.offline})
		return err
	}
	t.messages = append(t.messages, Message{Sender: SenderAI, Text: reply})
	return nil
}
