// Package conversation turns raw column-oriented snapshots into the ordered,
// classified message sequence the panel renders, and annotates it with
// day-group boundaries for display.
package conversation

import "time"

// Sender classifies who a message is from.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message is one chat entry. Messages are created once per ingested row and
// never mutated; a refresh replaces the whole conversation rather than
// patching individual messages.
type Message struct {
	ID      string
	Content string
	Sender  Sender
	Time    time.Time
	Email   string

	// Local marks a message synthesized by the panel itself (round-trip
	// failure bubbles). Local messages never qualify for playback and
	// disappear on the next snapshot rebuild.
	Local bool
}

// Conversation is the ordered message sequence produced by one ingestion
// cycle. Order is row order, not timestamp order.
type Conversation struct {
	Messages []Message

	// BuiltAt is the instant the conversation was rebuilt; playback
	// recency is judged against it.
	BuiltAt time.Time
}

// Len returns the number of messages.
func (c Conversation) Len() int { return len(c.Messages) }

// Last returns the final message, if any.
func (c Conversation) Last() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

// LastIsUser reports whether the conversation currently ends on a user
// message, i.e. a reply is still outstanding. This is the data-derived
// "waiting" condition: it stays true until a snapshot actually delivers a
// responder message, regardless of what the round-trip coordinator is doing.
func (c Conversation) LastIsUser() bool {
	last, ok := c.Last()
	return ok && last.Sender == SenderUser
}

// Append adds a locally synthesized message. It deliberately bypasses
// ingestion; the next wholesale rebuild will drop it.
func (c *Conversation) Append(m Message) {
	c.Messages = append(c.Messages, m)
}
