// Package playback simulates live token-by-token delivery of a freshly
// arrived responder message. A single Player owns the one reveal in flight;
// it is advanced by scheduled callbacks and guarded by a generation token so
// a callback that fires after cancellation discards itself instead of
// mutating stale state.
package playback

import (
	"math/rand"
	"time"

	"github.com/re3zy/chat-bubble-plugin/internal/conversation"
)

// Status is the lifecycle of the active reveal.
type Status int

const (
	StatusIdle Status = iota
	StatusTyping
	StatusSettling
	StatusDone
)

// RecencyWindow bounds how old a message may be, relative to the conversation
// rebuild instant, and still count as newly arrived.
const RecencyWindow = 30 * time.Second

// settleDelay is the hold at full length before the in-progress affordance
// (caret) is removed.
const settleDelay = 200 * time.Millisecond

// Eligible reports whether the conversation's last message qualifies for
// incremental reveal: it must be from the assistant, not locally synthesized,
// and recent relative to the rebuild instant. Everything else renders fully
// formed immediately.
func Eligible(conv conversation.Conversation) (conversation.Message, bool) {
	last, ok := conv.Last()
	if !ok || last.Sender != conversation.SenderAssistant || last.Local {
		return conversation.Message{}, false
	}
	age := conv.BuiltAt.Sub(last.Time)
	if age < 0 {
		age = -age
	}
	if age > RecencyWindow {
		return conversation.Message{}, false
	}
	return last, true
}

// Player holds the playback state for at most one message at a time.
// Starting a new reveal discards any in-progress one.
type Player struct {
	rng *rand.Rand

	gen      uint64
	id       string
	content  []rune
	revealed int
	pending  int
	status   Status
}

// NewPlayer builds a player. A nil rng gets a time-seeded source; tests pass
// a fixed seed.
func NewPlayer(rng *rand.Rand) *Player {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Player{rng: rng}
}

// Start begins revealing a message, superseding any reveal in flight. It
// returns the new generation token and the delay after which Advance should
// be called with that token.
func (p *Player) Start(id, content string) (uint64, time.Duration) {
	p.gen++
	p.id = id
	p.content = []rune(content)
	p.revealed = 0
	p.status = StatusTyping

	if len(p.content) == 0 {
		p.pending = 0
		p.status = StatusSettling
		return p.gen, settleDelay
	}
	p.pending = nextChunkLen(p.content, p.rng)
	return p.gen, chunkDelay(p.content[:p.pending], p.rng)
}

// Advance commits the pending chunk and computes the next step. A stale
// generation, or a player with nothing in flight, is a no-op returning
// ok=false: the fired timer simply discards itself. When ok is true the
// caller schedules the next Advance after the returned delay.
func (p *Player) Advance(gen uint64) (time.Duration, bool) {
	if gen != p.gen || p.status == StatusIdle || p.status == StatusDone {
		return 0, false
	}
	if p.status == StatusSettling {
		p.status = StatusDone
		return 0, false
	}

	p.revealed += p.pending
	if p.revealed > len(p.content) {
		p.revealed = len(p.content)
	}
	p.pending = 0

	if p.revealed >= len(p.content) {
		p.status = StatusSettling
		return settleDelay, true
	}

	remainder := p.content[p.revealed:]
	p.pending = nextChunkLen(remainder, p.rng)
	return chunkDelay(remainder[:p.pending], p.rng), true
}

// Cancel stops the active reveal. Outstanding timers become stale via the
// generation bump and will no-op.
func (p *Player) Cancel() {
	p.gen++
	p.id = ""
	p.content = nil
	p.revealed = 0
	p.pending = 0
	p.status = StatusIdle
}

// MessageID returns the id of the message being revealed, or "" when idle.
func (p *Player) MessageID() string { return p.id }

// Generation returns the current generation token.
func (p *Player) Generation() uint64 { return p.gen }

// Status returns the lifecycle phase of the active reveal.
func (p *Player) Status() Status { return p.status }

// Revealed returns the currently visible prefix of the message.
func (p *Player) Revealed() string {
	return string(p.content[:p.revealed])
}

// RevealedLen returns how many runes are visible.
func (p *Player) RevealedLen() int { return p.revealed }

// Active reports whether a reveal is in flight (typing or settling).
func (p *Player) Active() bool {
	return p.status == StatusTyping || p.status == StatusSettling
}
