package conversation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/re3zy/chat-bubble-plugin/internal/host"
)

// ErrNotConfigured is returned when a required column binding is missing or
// the snapshot does not carry the bound columns. Callers surface it as a
// static guidance state, not a failure.
var ErrNotConfigured = errors.New("conversation: required column bindings are not configured")

// Binding maps the logical message roles onto source column identifiers.
// Author and Message are required; the rest degrade gracefully when absent.
type Binding struct {
	Author    string
	Message   string
	Timestamp string
	ID        string
	Email     string
}

// Configured reports whether the required roles are bound.
func (b Binding) Configured() bool {
	return b.Author != "" && b.Message != ""
}

// Ingest rebuilds the conversation from a snapshot. The previous conversation
// is replaced wholesale; nothing is merged. Rows with empty message text are
// skipped. Missing optional fields are synthesized: id as msg-{row}, timestamp
// as the ingestion instant now (which makes the displayed time of such rows
// drift across refreshes — a known limitation of the feed, not stabilized
// here).
func Ingest(snap host.Snapshot, b Binding, c Classifier, now time.Time) (Conversation, error) {
	if !b.Configured() {
		return Conversation{BuiltAt: now}, ErrNotConfigured
	}
	if !snap.Has(b.Message) || !snap.Has(b.Author) {
		return Conversation{BuiltAt: now}, ErrNotConfigured
	}

	rows := snap.RowCount(b.Message)
	conv := Conversation{
		Messages: make([]Message, 0, rows),
		BuiltAt:  now,
	}
	for i := 0; i < rows; i++ {
		content := snap.StringAt(b.Message, i)
		if strings.TrimSpace(content) == "" {
			continue
		}
		author := snap.StringAt(b.Author, i)
		email := ""
		if b.Email != "" {
			email = snap.StringAt(b.Email, i)
		}

		id := ""
		if b.ID != "" {
			id = snap.StringAt(b.ID, i)
		}
		if id == "" {
			id = fmt.Sprintf("msg-%d", i)
		}

		ts := now
		if b.Timestamp != "" {
			if parsed, ok := snap.TimeAt(b.Timestamp, i); ok {
				ts = parsed
			}
		}

		conv.Messages = append(conv.Messages, Message{
			ID:      id,
			Content: content,
			Sender:  c.Classify(author, email),
			Time:    ts,
			Email:   email,
		})
	}
	return conv, nil
}
