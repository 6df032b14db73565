// Package demo is a self-contained host: a scripted responder that lets the
// whole panel loop run with no platform attached. The trigger reads the
// shared variable, appends the user's row, and a moment later appends a
// canned assistant reply stamped with the current time so it plays back.
package demo

import (
	"context"
	"sync"
	"time"

	"github.com/re3zy/chat-bubble-plugin/internal/host"
)

var replies = []string{
	"Thanks! I took a look at the numbers. The upward trend you're seeing started around the middle of the quarter, and it's mostly driven by the two largest segments.\n\nWant me to break it down by region?",
	"Good question. Short answer: yes, but with a caveat. The totals include returns, so the net figure is a little lower than what's on the dashboard.",
	"Here's what I found:\n\n- Overall volume is up 12% week over week\n- The spike on Tuesday traces back to a single bulk order\n- Nothing unusual in the error rates\n\nLet me know if anything needs a closer look.",
	"I've rerun that with the filters you mentioned. The picture barely changes, which suggests the outliers aren't what's moving the average.",
}

// Host implements host.Source, host.Variable and host.Trigger in memory.
type Host struct {
	mu      sync.Mutex
	authors []string
	bodies  []string
	times   []int64
	prompt  string
	turn    int
	delay   time.Duration
}

func New() *Host {
	h := &Host{delay: 1200 * time.Millisecond}
	h.append("Assistant", "Hi! I'm the demo responder. Ask me anything about your data.", time.Now())
	return h
}

func (h *Host) append(author, body string, ts time.Time) {
	h.authors = append(h.authors, author)
	h.bodies = append(h.bodies, body)
	h.times = append(h.times, ts.UnixMilli())
}

// Snapshot returns a copy of the scripted feed in column-oriented form.
func (h *Host) Snapshot(ctx context.Context) (host.Snapshot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := len(h.bodies)
	cols := map[string][]any{
		"author":    make([]any, n),
		"message":   make([]any, n),
		"timestamp": make([]any, n),
	}
	for i := 0; i < n; i++ {
		cols["author"][i] = h.authors[i]
		cols["message"][i] = h.bodies[i]
		cols["timestamp"][i] = h.times[i]
	}
	return host.Snapshot{Columns: cols}, nil
}

func (h *Host) Get(ctx context.Context) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.prompt, nil
}

func (h *Host) Set(ctx context.Context, value string) error {
	h.mu.Lock()
	h.prompt = value
	h.mu.Unlock()
	return nil
}

// Invoke plays the automation: record the prompt as a user row now, and the
// scripted reply a beat later.
func (h *Host) Invoke(ctx context.Context) error {
	h.mu.Lock()
	prompt := h.prompt
	if prompt != "" {
		h.append("You", prompt, time.Now())
	}
	reply := replies[h.turn%len(replies)]
	h.turn++
	delay := h.delay
	h.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		h.mu.Lock()
		h.append("Assistant", reply, time.Now())
		h.mu.Unlock()
	}()
	return nil
}
