package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/re3zy/chat-bubble-plugin/internal/conversation"
)

func (m *Panel) View() string {
	if !m.ready {
		return "…"
	}
	if m.showHelp {
		return lipgloss.JoinVertical(lipgloss.Left,
			m.renderTopBar(),
			m.help.View(m.theme),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderTopBar(),
		m.vp.View(),
		m.renderInput(),
		m.renderFooter(),
	)
}

func (m *Panel) renderTopBar() string {
	left := m.theme.TopBarTitle.Render(m.cfg.UI.Title)
	if m.connLabel != "" {
		left += " " + m.theme.TopBarBadge.Render(strings.ToUpper(m.connLabel))
	}

	status := "Ready"
	switch {
	case m.notConfigured:
		status = "Needs setup"
	case m.feedErr != nil:
		status = "Feed unavailable"
	case m.coord.Busy():
		status = spinnerFrames[m.spinnerPos] + " Sending…"
	case m.conv.LastIsUser():
		status = spinnerFrames[m.spinnerPos] + " Waiting for reply…"
	}
	statusR := m.theme.TopBarMeta.Render(status)
	right := m.theme.TopBarMeta.Render(m.now().Format("15:04"))

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(statusR) - lipgloss.Width(right)
	if gap < 2 {
		gap = 2
	}
	a := gap / 2
	b := gap - a
	return m.theme.TopBar.Render(left + strings.Repeat(" ", a) + statusR + strings.Repeat(" ", b) + right)
}

func (m *Panel) renderInput() string {
	box := m.theme.InputBox
	if m.coord.Busy() || m.notConfigured {
		box = m.theme.InputBoxDisabled
	}
	return box.Width(maxInt(10, m.width-2)).Render(m.input.View())
}

func (m *Panel) renderFooter() string {
	hints := "enter send  end latest  f1 help  ctrl+c quit"
	if !m.stickToBottom {
		badge := "view unpinned"
		if m.unseenCount > 0 {
			badge = fmt.Sprintf("%d new — press end", m.unseenCount)
		}
		return m.theme.Footer.Width(m.width).Render(
			m.theme.UnseenBadge.Render(badge) + "  " + hints)
	}
	return m.theme.Footer.Width(m.width).Render(hints)
}

// refreshTranscript rebuilds the viewport content from the rendering plan.
func (m *Panel) refreshTranscript() {
	if !m.ready {
		return
	}
	if m.notConfigured {
		m.vp.SetContent(m.guidanceView())
		return
	}

	width := m.width - 4
	if width < 20 {
		width = 20
	}

	var b strings.Builder
	for _, e := range conversation.Plan(m.conv.Messages, m.now()) {
		if e.StartsDay {
			b.WriteString(m.renderDayDivider(e.DayLabel, width))
			b.WriteString("\n")
		}
		b.WriteString(m.renderMessage(e.Message, width))
		b.WriteString("\n\n")
	}
	if m.conv.LastIsUser() {
		b.WriteString(m.theme.Spinner.Render(spinnerFrames[m.spinnerPos]) +
			m.theme.Guidance.Render(" thinking…"))
		b.WriteString("\n")
	}
	m.vp.SetContent(strings.TrimRight(b.String(), "\n"))
}

func (m *Panel) renderDayDivider(label string, width int) string {
	line := "── " + label + " "
	if pad := width - lipgloss.Width(line); pad > 0 {
		line += strings.Repeat("─", pad)
	}
	return m.theme.DayDivider.Render(line)
}

func (m *Panel) renderMessage(msg conversation.Message, width int) string {
	var roleStyle lipgloss.Style
	var label string
	switch {
	case msg.Local:
		roleStyle = m.theme.RoleErr
		label = "Assistant"
	case msg.Sender == conversation.SenderUser:
		roleStyle = m.theme.RoleYou
		label = "You"
	default:
		roleStyle = m.theme.RoleAI
		label = "Assistant"
	}

	header := roleStyle.Render(label)
	if m.cfg.UI.ShowTimestamps {
		header += " " + m.theme.TopBarMeta.Render(msg.Time.Format("15:04"))
	}

	var body string
	switch {
	case msg.Local:
		body = m.theme.BodyErr.Width(width).Render(msg.Content)
	case msg.ID == m.player.MessageID() && m.player.Active():
		// Mid-reveal the prefix renders plain; markdown waits for the
		// full text so partially open constructs don't flicker.
		body = m.theme.BodyAI.Width(width).Render(m.player.Revealed() + m.theme.Caret.Render("▍"))
	case msg.Sender == conversation.SenderAssistant:
		body = m.markdown.Render(msg.Content, width)
	default:
		body = m.theme.BodyYou.Width(width).Render(msg.Content)
	}

	return header + "\n" + body
}

func (m *Panel) guidanceView() string {
	var b strings.Builder
	b.WriteString(m.theme.TopBarTitle.Render("Almost there"))
	b.WriteString("\n\n")
	b.WriteString(m.theme.Guidance.Render("The panel needs its data bindings before it can show a conversation:"))
	b.WriteString("\n\n")
	b.WriteString(m.theme.Guidance.Render("  • data.author_column   — who wrote each row"))
	b.WriteString("\n")
	b.WriteString(m.theme.Guidance.Render("  • data.message_column  — the message text"))
	b.WriteString("\n\n")
	b.WriteString(m.theme.Guidance.Render("Set them in the config file and the panel picks them up on the next refresh."))
	return b.String()
}
