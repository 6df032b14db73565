// Package roundtrip drives the outbound write/trigger/clear protocol. One
// round trip may be in flight at a time; the send path is write the shared
// variable, give the host a beat to observe it, invoke the trigger, then
// clear the variable best-effort. A failure anywhere surfaces as a
// synthesized assistant message instead of an error return, so the panel can
// show it inline.
package roundtrip

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/re3zy/chat-bubble-plugin/internal/conversation"
	"github.com/re3zy/chat-bubble-plugin/internal/host"
)

// Phase is the coordinator's protocol position.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseWriting    Phase = "writing"
	PhaseTriggering Phase = "triggering"
	PhaseClearing   Phase = "clearing"
)

const (
	// writeSettle lets the host observe the variable write before the
	// trigger fires.
	writeSettle = 100 * time.Millisecond
	// clearDelay holds the written value briefly before the best-effort
	// clear.
	clearDelay = 200 * time.Millisecond
)

// FailureText is the fixed explanation shown when a round trip fails.
const FailureText = "Sorry, something went wrong sending your message. Please check the connection and try again."

// Coordinator owns the outbound channel. All fields behind mu because Begin
// runs on the event loop while Run executes on a command goroutine.
type Coordinator struct {
	variable host.Variable
	trigger  host.Trigger
	log      *logrus.Entry

	sleep func(ctx context.Context, d time.Duration)
	now   func() time.Time

	mu      sync.Mutex
	phase   Phase
	pending string
}

// New builds a coordinator. Either handle may be nil, in which case Begin
// rejects every send until the panel is reconfigured.
func New(variable host.Variable, trigger host.Trigger, log *logrus.Entry) *Coordinator {
	if log == nil {
		log = logrus.NewEntry(logrus.New())
	}
	return &Coordinator{
		variable: variable,
		trigger:  trigger,
		log:      log,
		sleep:    sleepCtx,
		now:      time.Now,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Phase returns the current protocol position.
func (c *Coordinator) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Busy reports whether a round trip is in flight. Only input-disabling hangs
// off this; the "waiting for a reply" indicator is derived from the
// conversation shape instead.
func (c *Coordinator) Busy() bool {
	return c.Phase() != PhaseIdle
}

// Begin validates and claims a send. It rejects blank text, an in-flight
// round trip, and missing handles — all as quiet no-ops. On true the caller
// owns exactly one Run.
func (c *Coordinator) Begin(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" || c.variable == nil || c.trigger == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseIdle {
		return false
	}
	c.phase = PhaseWriting
	c.pending = text
	return true
}

// Run executes the protocol claimed by Begin. It returns nil on success, or
// the synthesized failure message to append to the conversation. The phase is
// back to idle on return either way; on failure the clear step is skipped,
// leaving the variable holding the attempted text.
func (c *Coordinator) Run(ctx context.Context) *conversation.Message {
	c.mu.Lock()
	text := c.pending
	c.mu.Unlock()

	id := uuid.NewString()
	log := c.log.WithField("roundtrip_id", id)

	if err := c.variable.Set(ctx, text); err != nil {
		log.WithError(err).Error("variable write failed")
		return c.fail()
	}
	c.sleep(ctx, writeSettle)

	c.setPhase(PhaseTriggering)
	if err := c.trigger.Invoke(ctx); err != nil {
		log.WithError(err).Error("trigger invocation failed")
		return c.fail()
	}

	c.setPhase(PhaseClearing)
	c.sleep(ctx, clearDelay)
	if err := c.variable.Set(ctx, ""); err != nil {
		// Best effort; the host will overwrite it on the next send.
		log.WithError(err).Warn("variable clear failed")
	}

	log.Debug("round trip complete")
	c.finish()
	return nil
}

func (c *Coordinator) setPhase(p Phase) {
	c.mu.Lock()
	c.phase = p
	c.mu.Unlock()
}

func (c *Coordinator) finish() {
	c.mu.Lock()
	c.phase = PhaseIdle
	c.pending = ""
	c.mu.Unlock()
}

// fail resets to idle and synthesizes the inline failure message. The message
// is marked Local so it renders fully formed, never animated.
func (c *Coordinator) fail() *conversation.Message {
	now := c.now()
	c.finish()
	return &conversation.Message{
		ID:      "error-" + strconv.FormatInt(now.UnixNano(), 10),
		Content: FailureText,
		Sender:  conversation.SenderAssistant,
		Time:    now,
		Local:   true,
	}
}
