package tui

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/re3zy/chat-bubble-plugin/internal/config"
	"github.com/re3zy/chat-bubble-plugin/internal/conversation"
	"github.com/re3zy/chat-bubble-plugin/internal/host"
	"github.com/re3zy/chat-bubble-plugin/internal/playback"
)

var testNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

type fakeSource struct {
	snap host.Snapshot
	err  error
}

func (s *fakeSource) Snapshot(ctx context.Context) (host.Snapshot, error) {
	return s.snap, s.err
}

type fakeVariable struct{ value string }

func (v *fakeVariable) Get(ctx context.Context) (string, error) { return v.value, nil }
func (v *fakeVariable) Set(ctx context.Context, value string) error {
	v.value = value
	return nil
}

type fakeTrigger struct{ err error }

func (t *fakeTrigger) Invoke(ctx context.Context) error { return t.err }

func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.UI.Theme = "porcelain"
	return cfg
}

func newTestPanel(t *testing.T, src host.Source) *Panel {
	t.Helper()
	p := NewPanel(Options{
		Config:   testConfig(),
		Source:   src,
		Variable: &fakeVariable{},
		Trigger:  &fakeTrigger{},
		Rand:     rand.New(rand.NewSource(1)),
		Now:      func() time.Time { return testNow },
	})
	return applyWindowSize(t, p)
}

func applyWindowSize(t *testing.T, p *Panel) *Panel {
	t.Helper()
	return update(t, p, tea.WindowSizeMsg{Width: 100, Height: 30})
}

func update(t *testing.T, p *Panel, msg tea.Msg) *Panel {
	t.Helper()
	updated, _ := p.Update(msg)
	out, ok := updated.(*Panel)
	if !ok {
		t.Fatalf("expected *Panel, got %T", updated)
	}
	return out
}

func chatSnapshot(rows int, lastAuthor, lastMessage string, lastTime time.Time) host.Snapshot {
	authors := make([]any, 0, rows)
	messages := make([]any, 0, rows)
	times := make([]any, 0, rows)
	base := testNow.Add(-time.Hour)
	for i := 0; i < rows-1; i++ {
		who := "alice"
		if i%2 == 1 {
			who = "Assistant"
		}
		authors = append(authors, who)
		messages = append(messages, fmt.Sprintf("message number %d", i))
		times = append(times, base.Add(time.Duration(i)*time.Minute).UnixMilli())
	}
	authors = append(authors, lastAuthor)
	messages = append(messages, lastMessage)
	times = append(times, lastTime.UnixMilli())
	return host.Snapshot{Columns: map[string][]any{
		"author":    authors,
		"message":   messages,
		"timestamp": times,
	}}
}

func TestPanel_WaitingIndicatorIsDataDerived(t *testing.T) {
	p := newTestPanel(t, &fakeSource{})
	p = update(t, p, snapshotMsg{snap: chatSnapshot(3, "alice", "any news?", testNow.Add(-time.Minute))})

	if !p.conv.LastIsUser() {
		t.Fatalf("expected user-last conversation")
	}
	// The coordinator is idle, yet the waiting indicator shows: the
	// condition is derived from the data shape alone.
	if p.coord.Busy() {
		t.Fatalf("coordinator should be idle")
	}
	if !strings.Contains(p.View(), "Waiting for reply") {
		t.Fatalf("view missing waiting indicator")
	}

	// It persists across refreshes until the feed delivers a reply.
	p = update(t, p, snapshotMsg{snap: chatSnapshot(3, "alice", "any news?", testNow.Add(-time.Minute))})
	if !strings.Contains(p.View(), "Waiting for reply") {
		t.Fatalf("waiting indicator dropped without a reply arriving")
	}

	p = update(t, p, snapshotMsg{snap: chatSnapshot(4, "Assistant", "here you go", testNow.Add(-time.Hour))})
	if strings.Contains(p.View(), "Waiting for reply") {
		t.Fatalf("waiting indicator still visible after reply arrived")
	}
}

func TestPanel_PlaybackStartsOnceForAFreshReply(t *testing.T) {
	p := newTestPanel(t, &fakeSource{})
	snap := chatSnapshot(4, "Assistant", "a fresh reply arriving now", testNow.Add(-5*time.Second))

	p = update(t, p, snapshotMsg{snap: snap})
	if !p.player.Active() {
		t.Fatalf("fresh assistant reply did not start playback")
	}
	gen := p.player.Generation()

	// The same feed re-delivered must not restart the reveal.
	p = update(t, p, snapshotMsg{snap: snap})
	if p.player.Generation() != gen {
		t.Fatalf("re-ingesting the same snapshot restarted playback")
	}
}

func TestPanel_StaleReplyRendersFullyFormed(t *testing.T) {
	p := newTestPanel(t, &fakeSource{})
	snap := chatSnapshot(4, "Assistant", "an old reply", testNow.Add(-10*time.Minute))

	p = update(t, p, snapshotMsg{snap: snap})
	if p.player.Active() {
		t.Fatalf("stale reply should not animate")
	}
	if !strings.Contains(p.View(), "an old reply") {
		t.Fatalf("stale reply not rendered in full")
	}
}

func TestPanel_PlaybackCancelledWhenSuperseded(t *testing.T) {
	p := newTestPanel(t, &fakeSource{})
	p = update(t, p, snapshotMsg{snap: chatSnapshot(4, "Assistant", "long reply being typed out slowly", testNow.Add(-time.Second))})
	if !p.player.Active() {
		t.Fatalf("playback did not start")
	}
	gen := p.player.Generation()

	// A rebuild where that message is no longer last cancels cleanly.
	p = update(t, p, snapshotMsg{snap: chatSnapshot(5, "alice", "followup question", testNow)})
	if p.player.Active() {
		t.Fatalf("superseded playback still active")
	}

	// The timer scheduled before the rebuild fires and must not mutate.
	p = update(t, p, revealTickMsg{gen: gen})
	if p.player.RevealedLen() != 0 {
		t.Fatalf("stale reveal tick mutated playback state")
	}
}

func TestPanel_ScrollUnpinsAndEndRepins(t *testing.T) {
	p := newTestPanel(t, &fakeSource{})
	p = update(t, p, snapshotMsg{snap: chatSnapshot(30, "alice", "latest", testNow.Add(-time.Minute))})
	p = update(t, p, settleScrollMsg{})

	if !p.stickToBottom {
		t.Fatalf("expected pinned after settle scroll")
	}

	for i := 0; i < 5; i++ {
		p = update(t, p, tea.KeyMsg{Type: tea.KeyPgUp})
	}
	if p.stickToBottom {
		t.Fatalf("expected unpinned after paging up")
	}

	// New arrivals while unpinned do not force a scroll; they accrue.
	p = update(t, p, snapshotMsg{snap: chatSnapshot(31, "alice", "one more", testNow)})
	if p.stickToBottom {
		t.Fatalf("arrival while unpinned re-pinned the view")
	}
	if p.unseenCount != 1 {
		t.Fatalf("unseenCount = %d, want 1", p.unseenCount)
	}

	p = update(t, p, tea.KeyMsg{Type: tea.KeyEnd})
	if !p.stickToBottom || p.unseenCount != 0 {
		t.Fatalf("end key did not re-pin and clear unseen (pin=%v unseen=%d)", p.stickToBottom, p.unseenCount)
	}
}

func TestPanel_SendClearsInputAndRejectsWhileBusy(t *testing.T) {
	p := newTestPanel(t, &fakeSource{})

	p.input.SetValue("   ")
	p = update(t, p, tea.KeyMsg{Type: tea.KeyEnter})
	if p.coord.Busy() {
		t.Fatalf("blank send started a round trip")
	}

	p.input.SetValue("hi there")
	p = update(t, p, tea.KeyMsg{Type: tea.KeyEnter})
	if !p.coord.Busy() {
		t.Fatalf("send did not start a round trip")
	}
	if p.input.Value() != "" {
		t.Fatalf("input not cleared optimistically: %q", p.input.Value())
	}
	if !p.stickToBottom {
		t.Fatalf("sending must re-pin the viewport")
	}

	// A second send while in flight is a no-op and keeps its text.
	p.input.SetValue("second attempt")
	p = update(t, p, tea.KeyMsg{Type: tea.KeyEnter})
	if p.input.Value() != "second attempt" {
		t.Fatalf("rejected send lost the input text")
	}
}

func TestPanel_RoundTripFailureAppendsLocalBubble(t *testing.T) {
	p := newTestPanel(t, &fakeSource{})
	p = update(t, p, snapshotMsg{snap: chatSnapshot(3, "alice", "please run it", testNow.Add(-time.Minute))})
	before := p.conv.Len()

	failure := &conversation.Message{
		ID:      "error-123",
		Content: "it broke",
		Sender:  conversation.SenderAssistant,
		Time:    testNow,
		Local:   true,
	}
	p = update(t, p, roundTripDoneMsg{failure: failure})

	if p.conv.Len() != before+1 {
		t.Fatalf("conversation length = %d, want %d", p.conv.Len(), before+1)
	}
	if p.player.Active() {
		t.Fatalf("local error bubble must not animate")
	}
	if _, ok := playback.Eligible(p.conv); ok {
		t.Fatalf("local message reported playback-eligible")
	}
	if !strings.Contains(p.View(), "it broke") {
		t.Fatalf("error bubble not rendered")
	}
}

func TestPanel_NotConfiguredShowsGuidance(t *testing.T) {
	cfg := testConfig()
	cfg.Data.AuthorColumn = ""
	p := NewPanel(Options{
		Config:   cfg,
		Source:   &fakeSource{},
		Variable: &fakeVariable{},
		Trigger:  &fakeTrigger{},
		Now:      func() time.Time { return testNow },
	})
	p = applyWindowSize(t, p)
	p = update(t, p, snapshotMsg{snap: chatSnapshot(2, "alice", "hi", testNow)})

	if !p.notConfigured {
		t.Fatalf("expected notConfigured with missing author binding")
	}
	if !strings.Contains(p.View(), "author_column") {
		t.Fatalf("guidance view missing binding hints")
	}
	if p.player.Active() {
		t.Fatalf("nothing should animate in the guidance state")
	}
}

func TestPanel_FeedErrorKeepsPreviousConversation(t *testing.T) {
	p := newTestPanel(t, &fakeSource{})
	p = update(t, p, snapshotMsg{snap: chatSnapshot(3, "alice", "kept", testNow.Add(-time.Minute))})
	kept := p.conv.Len()

	p = update(t, p, snapshotMsg{err: errors.New("feed down")})
	if p.conv.Len() != kept {
		t.Fatalf("feed error dropped the conversation: %d -> %d", kept, p.conv.Len())
	}
	if !strings.Contains(p.View(), "Feed unavailable") {
		t.Fatalf("feed error not surfaced in the top bar")
	}
}

func TestPanel_RevealFollowsBottomOnlyWhenPinned(t *testing.T) {
	p := newTestPanel(t, &fakeSource{})
	p = update(t, p, snapshotMsg{snap: chatSnapshot(30, "Assistant",
		strings.Repeat("a long reply that keeps going. ", 20), testNow)})
	p = update(t, p, settleScrollMsg{})
	gen := p.player.Generation()

	for i := 0; i < 5; i++ {
		p = update(t, p, tea.KeyMsg{Type: tea.KeyPgUp})
	}
	offset := p.vp.YOffset

	p = update(t, p, revealTickMsg{gen: gen})
	if p.vp.YOffset != offset {
		t.Fatalf("reveal tick scrolled an unpinned viewport: %d -> %d", offset, p.vp.YOffset)
	}
}
