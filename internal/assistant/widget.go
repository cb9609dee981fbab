// Package assistant is the chat-style helper widget: an open/closed toggle
// and an append-only transcript, decoupled from the cart entirely.
package assistant

import (
	"context"
	"strings"
	"sync"

	"github.com/angelmondragon/miniapp-storefront/pkg/logger"
)

// FallbackReply is appended when the reply service cannot be reached.
const FallbackReply = "Sorry, I'm having trouble answering right now. Please try again."

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry.
type Message struct {
	Role Role
	Text string
}

// ReplyClient forwards a free-text message to the reply collaborator.
type ReplyClient interface {
	AssistantReply(ctx context.Context, message string) (string, error)
}

// Widget holds the assistant state for one session. The transcript is not
// persisted across reloads. Overlapping sends are not serialized; replies
// land in completion order.
type Widget struct {
	mu         sync.Mutex
	open       bool
	transcript []Message
	client     ReplyClient
	logg       *logger.Logger
}

// NewWidget builds a closed widget with an empty transcript.
func NewWidget(client ReplyClient, logg *logger.Logger) *Widget {
	return &Widget{client: client, logg: logg}
}

// Toggle flips the open state and reports the new value.
func (w *Widget) Toggle() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.open = !w.open
	return w.open
}

// IsOpen reports whether the widget is open.
func (w *Widget) IsOpen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.open
}

// Transcript returns a copy of the messages in append order.
func (w *Widget) Transcript() []Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Message, len(w.transcript))
	copy(out, w.transcript)
	return out
}

// Send appends the user's message, asks the reply service, and appends the
// reply, or the static fallback when the service fails. Blank input is a
// no-op.
func (w *Widget) Send(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	w.append(Message{Role: RoleUser, Text: text})

	reply, err := w.client.AssistantReply(ctx, text)
	if err != nil {
		if w.logg != nil {
			w.logg.Error(ctx, "assistant reply failed", err)
		}
		w.append(Message{Role: RoleAssistant, Text: FallbackReply})
		return
	}
	w.append(Message{Role: RoleAssistant, Text: reply})
}

func (w *Widget) append(msg Message) {
	w.mu.Lock()
	w.transcript = append(w.transcript, msg)
	w.mu.Unlock()
}
