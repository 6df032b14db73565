package playback

import (
	"math/rand"
	"testing"
	"time"

	"github.com/re3zy/chat-bubble-plugin/internal/conversation"
)

func newTestPlayer(seed int64) *Player {
	return NewPlayer(rand.New(rand.NewSource(seed)))
}

// drive runs the player to completion, checking monotonicity on the way.
func drive(t *testing.T, p *Player, gen uint64, contentLen int) int {
	t.Helper()
	steps := 0
	prev := 0
	for {
		_, ok := p.Advance(gen)
		if p.RevealedLen() < prev {
			t.Fatalf("revealed length went backwards: %d -> %d", prev, p.RevealedLen())
		}
		if p.RevealedLen() > contentLen {
			t.Fatalf("revealed length %d exceeds content length %d", p.RevealedLen(), contentLen)
		}
		prev = p.RevealedLen()
		steps++
		if steps > contentLen*4+16 {
			t.Fatalf("playback did not finish in a bounded number of steps")
		}
		if !ok {
			return steps
		}
	}
}

func TestPlayer_RevealsFullContent(t *testing.T) {
	contents := []string{
		"Hi!",
		"Hello there, this is a longer reply. It has sentences, commas, and\na line break to exercise every pause path.",
		"短い返信です。",
	}
	for _, content := range contents {
		p := newTestPlayer(42)
		gen, delay := p.Start("m1", content)
		if delay <= 0 {
			t.Fatalf("Start returned non-positive delay %v", delay)
		}
		if p.Status() != StatusTyping {
			t.Fatalf("status after Start = %v, want typing", p.Status())
		}
		drive(t, p, gen, len([]rune(content)))
		if p.Status() != StatusDone {
			t.Fatalf("status after drive = %v, want done", p.Status())
		}
		if p.Revealed() != content {
			t.Fatalf("revealed %q, want full content %q", p.Revealed(), content)
		}
	}
}

func TestPlayer_EmptyContentSettlesImmediately(t *testing.T) {
	p := newTestPlayer(1)
	gen, _ := p.Start("m1", "")
	if p.Status() != StatusSettling {
		t.Fatalf("status = %v, want settling", p.Status())
	}
	if _, ok := p.Advance(gen); ok {
		t.Fatalf("settling advance should be terminal")
	}
	if p.Status() != StatusDone {
		t.Fatalf("status = %v, want done", p.Status())
	}
}

func TestPlayer_CancelStopsFurtherMutation(t *testing.T) {
	p := newTestPlayer(7)
	gen, _ := p.Start("m1", "a reasonably long message body to cancel midway through")

	p.Advance(gen)
	revealed := p.RevealedLen()
	p.Cancel()

	// A timer scheduled before cancellation fires with the old generation.
	if _, ok := p.Advance(gen); ok {
		t.Fatalf("stale generation advanced after cancel")
	}
	if p.RevealedLen() != 0 {
		t.Fatalf("revealed length mutated after cancel: %d (was %d)", p.RevealedLen(), revealed)
	}
	if p.Status() != StatusIdle {
		t.Fatalf("status after cancel = %v, want idle", p.Status())
	}
}

func TestPlayer_StartSupersedesInFlightReveal(t *testing.T) {
	p := newTestPlayer(13)
	oldGen, _ := p.Start("m1", "first message being revealed")
	p.Advance(oldGen)

	newGen, _ := p.Start("m2", "second")
	if newGen == oldGen {
		t.Fatalf("generation did not change on restart")
	}
	if _, ok := p.Advance(oldGen); ok {
		t.Fatalf("superseded generation still advances")
	}
	if p.MessageID() != "m2" {
		t.Fatalf("player id = %q, want m2", p.MessageID())
	}
	// The new reveal proceeds normally.
	if _, ok := p.Advance(newGen); !ok && p.Status() != StatusDone && p.Status() != StatusSettling {
		t.Fatalf("new generation failed to advance: status %v", p.Status())
	}
}

func TestEligible(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	build := func(sender conversation.Sender, age time.Duration, local bool) conversation.Conversation {
		return conversation.Conversation{
			BuiltAt: now,
			Messages: []conversation.Message{
				{ID: "a", Sender: conversation.SenderUser, Time: now.Add(-time.Hour)},
				{ID: "b", Sender: sender, Time: now.Add(-age), Local: local},
			},
		}
	}

	tests := []struct {
		name string
		conv conversation.Conversation
		want bool
	}{
		{name: "fresh assistant reply", conv: build(conversation.SenderAssistant, 5*time.Second, false), want: true},
		{name: "future-stamped reply", conv: build(conversation.SenderAssistant, -5*time.Second, false), want: true},
		{name: "stale reply", conv: build(conversation.SenderAssistant, time.Minute, false), want: false},
		{name: "user message", conv: build(conversation.SenderUser, time.Second, false), want: false},
		{name: "synthesized error bubble", conv: build(conversation.SenderAssistant, time.Second, true), want: false},
		{name: "empty conversation", conv: conversation.Conversation{BuiltAt: now}, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			msg, got := Eligible(tc.conv)
			if got != tc.want {
				t.Fatalf("Eligible = %v, want %v", got, tc.want)
			}
			if got && msg.ID != "b" {
				t.Fatalf("eligible message id = %q, want b", msg.ID)
			}
		})
	}
}
