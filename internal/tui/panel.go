// Package tui renders the conversation panel: the scrollable transcript with
// day groups and reveal animation, the input box, and the pin-to-bottom
// viewport behavior. All state mutation happens on the Bubble Tea update
// loop; timers and round trips come back in as messages.
package tui

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/re3zy/chat-bubble-plugin/internal/config"
	"github.com/re3zy/chat-bubble-plugin/internal/conversation"
	"github.com/re3zy/chat-bubble-plugin/internal/host"
	"github.com/re3zy/chat-bubble-plugin/internal/playback"
	"github.com/re3zy/chat-bubble-plugin/internal/roundtrip"
)

const (
	// pinSlackLines is how far above the bottom the view may sit and
	// still count as pinned.
	pinSlackLines = 1

	// scrollSettle lets a freshly rendered message commit before the
	// follow-scroll, so we never scroll to a stale layout.
	scrollSettle = 80 * time.Millisecond

	snapshotTimeout = 5 * time.Second
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type refreshTickMsg struct{}

type snapshotMsg struct {
	snap host.Snapshot
	err  error
}

type revealTickMsg struct{ gen uint64 }

type settleScrollMsg struct{}

type spinMsg struct{}

type roundTripDoneMsg struct{ failure *conversation.Message }

// Options wires the panel to its host handles. Rand and Now exist for tests;
// nil gets real randomness and the wall clock.
type Options struct {
	Config   config.Config
	Source   host.Source
	Variable host.Variable
	Trigger  host.Trigger
	Log      *logrus.Entry

	// ConnLabel names the host adapter in the top bar ("bridge", "demo").
	ConnLabel string

	Rand *rand.Rand
	Now  func() time.Time
}

type Panel struct {
	cfg   config.Config
	log   *logrus.Entry
	theme Theme

	source     host.Source
	coord      *roundtrip.Coordinator
	binding    conversation.Binding
	classifier conversation.Classifier

	conv          conversation.Conversation
	notConfigured bool
	feedErr       error

	player *playback.Player
	seenID string

	vp       viewport.Model
	input    textarea.Model
	help     helpModel
	showHelp bool
	markdown *MarkdownRenderer

	width  int
	height int
	ready  bool

	stickToBottom bool
	unseenCount   int

	spinnerPos int
	spinning   bool

	connLabel string
	now       func() time.Time
}

func NewPanel(opts Options) *Panel {
	log := opts.Log
	if log == nil {
		log = logrus.NewEntry(logrus.New())
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	ta := textarea.New()
	ta.Placeholder = "Type a message and press Enter to send."
	ta.Focus()
	ta.CharLimit = 4000
	ta.SetHeight(1)
	ta.Prompt = "▍ "
	ta.ShowLineNumbers = false
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.BlurredStyle.CursorLine = lipgloss.NewStyle()

	theme := NewTheme(opts.Config.UI.Theme)
	p := &Panel{
		cfg:   opts.Config,
		log:   log,
		theme: theme,

		source: opts.Source,
		coord:  roundtrip.New(opts.Variable, opts.Trigger, log.WithField("component", "roundtrip")),
		binding: conversation.Binding{
			Author:    opts.Config.Data.AuthorColumn,
			Message:   opts.Config.Data.MessageColumn,
			Timestamp: opts.Config.Data.TimestampColumn,
			ID:        opts.Config.Data.IDColumn,
			Email:     opts.Config.Data.EmailColumn,
		},
		classifier: conversation.NewClassifier(
			opts.Config.Classify.AssistantIdentifiers,
			opts.Config.Classify.CurrentUser,
		),

		player:   playback.NewPlayer(opts.Rand),
		input:    ta,
		help:     newHelpModel(),
		markdown: NewMarkdownRenderer(theme),

		width:  100,
		height: 30,

		stickToBottom: true,
		connLabel:     opts.ConnLabel,
		now:           now,
	}
	return p
}

func (m *Panel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.fetchSnapshot())
}

func (m *Panel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.SetWidth(msg.Width)

		chatH := m.chatHeight()
		if !m.ready {
			m.vp = viewport.New(msg.Width, chatH)
			m.ready = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = chatH
		}
		m.input.SetWidth(maxInt(10, msg.Width-6))
		m.refreshTranscript()
		if m.stickToBottom {
			m.vp.GotoBottom()
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.help.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.help.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil

		case key.Matches(msg, m.help.keys.JumpLatest):
			m.stickToBottom = true
			m.unseenCount = 0
			m.vp.GotoBottom()
			return m, nil

		case key.Matches(msg, m.help.keys.ScrollUp):
			m.vp.LineUp(1)
			m.syncPin()
			return m, nil

		case key.Matches(msg, m.help.keys.ScrollDown):
			m.vp.LineDown(1)
			m.syncPin()
			return m, nil

		case key.Matches(msg, m.help.keys.PageUp):
			m.vp.ViewUp()
			m.syncPin()
			return m, nil

		case key.Matches(msg, m.help.keys.PageDown):
			m.vp.ViewDown()
			m.syncPin()
			return m, nil

		case key.Matches(msg, m.help.keys.Enter):
			return m, m.onEnter()
		}

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		m.syncPin()
		return m, cmd

	case snapshotMsg:
		cmds = append(cmds, m.applySnapshot(msg)...)
		cmds = append(cmds, tea.Tick(m.cfg.Data.RefreshInterval(), func(time.Time) tea.Msg {
			return refreshTickMsg{}
		}))
		return m, tea.Batch(cmds...)

	case refreshTickMsg:
		return m, m.fetchSnapshot()

	case revealTickMsg:
		delay, ok := m.player.Advance(msg.gen)
		m.refreshTranscript()
		if m.stickToBottom {
			m.vp.GotoBottom()
		}
		if !ok {
			return m, nil
		}
		return m, revealTick(msg.gen, delay)

	case settleScrollMsg:
		m.refreshTranscript()
		if m.stickToBottom {
			m.vp.GotoBottom()
			m.unseenCount = 0
		}
		return m, nil

	case spinMsg:
		if !m.animating() {
			m.spinning = false
			return m, nil
		}
		m.spinnerPos = (m.spinnerPos + 1) % len(spinnerFrames)
		m.refreshTranscript()
		if m.stickToBottom {
			m.vp.GotoBottom()
		}
		return m, spinTick()

	case roundTripDoneMsg:
		if msg.failure != nil {
			m.conv.Append(*msg.failure)
			m.seenID = msg.failure.ID
			m.refreshTranscript()
			if m.stickToBottom {
				cmds = append(cmds, tea.Tick(scrollSettle, func(time.Time) tea.Msg {
					return settleScrollMsg{}
				}))
			} else {
				m.unseenCount++
			}
		}
		cmds = append(cmds, m.ensureSpin())
		return m, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// applySnapshot rebuilds the conversation wholesale and decides whether the
// newest message should play back.
func (m *Panel) applySnapshot(msg snapshotMsg) []tea.Cmd {
	var cmds []tea.Cmd

	if msg.err != nil {
		// Keep showing the previous conversation; the feed may recover
		// on the next cycle.
		m.feedErr = msg.err
		m.log.WithError(msg.err).Warn("snapshot fetch failed")
		return nil
	}
	m.feedErr = nil

	conv, err := conversation.Ingest(msg.snap, m.binding, m.classifier, m.now())
	m.notConfigured = errors.Is(err, conversation.ErrNotConfigured)
	prevLen := m.conv.Len()
	m.conv = conv

	if last, ok := playback.Eligible(conv); ok && last.ID != m.seenID {
		m.seenID = last.ID
		gen, delay := m.player.Start(last.ID, last.Content)
		cmds = append(cmds, revealTick(gen, delay))
	} else if m.player.Active() {
		if lastMsg, ok := conv.Last(); !ok || lastMsg.ID != m.player.MessageID() {
			m.player.Cancel()
		}
	}

	m.refreshTranscript()
	if conv.Len() > prevLen {
		if m.stickToBottom {
			cmds = append(cmds, tea.Tick(scrollSettle, func(time.Time) tea.Msg {
				return settleScrollMsg{}
			}))
		} else {
			m.unseenCount += conv.Len() - prevLen
		}
	}
	cmds = append(cmds, m.ensureSpin())
	return cmds
}

// onEnter starts a round trip. The coordinator's guard decides acceptance;
// on rejection the input is left untouched.
func (m *Panel) onEnter() tea.Cmd {
	if !m.coord.Begin(m.input.Value()) {
		return nil
	}

	// Optimistic: the input clears and the view re-pins immediately, even
	// though the message only shows up once the feed delivers it back.
	m.input.Reset()
	m.stickToBottom = true
	m.unseenCount = 0
	m.vp.GotoBottom()

	coord := m.coord
	run := func() tea.Msg {
		return roundTripDoneMsg{failure: coord.Run(context.Background())}
	}
	return tea.Batch(run, m.ensureSpin())
}

func (m *Panel) fetchSnapshot() tea.Cmd {
	src := m.source
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
		defer cancel()
		snap, err := src.Snapshot(ctx)
		return snapshotMsg{snap: snap, err: err}
	}
}

func revealTick(gen uint64, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return revealTickMsg{gen: gen}
	})
}

func spinTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return spinMsg{}
	})
}

// animating reports whether anything on screen needs the spinner: an
// outstanding reply (data-derived) or an in-flight round trip.
func (m *Panel) animating() bool {
	return m.conv.LastIsUser() || m.coord.Busy()
}

func (m *Panel) ensureSpin() tea.Cmd {
	if m.spinning || !m.animating() {
		return nil
	}
	m.spinning = true
	return spinTick()
}

// syncPin re-derives the pin state from the scroll position. Sitting within
// pinSlackLines of the bottom counts as pinned.
func (m *Panel) syncPin() {
	pinned := m.distanceFromBottom() <= pinSlackLines
	if pinned && !m.stickToBottom {
		m.unseenCount = 0
	}
	m.stickToBottom = pinned
}

func (m *Panel) distanceFromBottom() int {
	return m.vp.TotalLineCount() - (m.vp.YOffset + m.vp.Height)
}

func (m *Panel) chatHeight() int {
	// Top bar, input box (bordered), footer.
	h := m.height - 1 - 3 - 1
	if h < 3 {
		h = 3
	}
	return h
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
