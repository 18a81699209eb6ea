// Package tui is the interactive chat front end. It runs the conversation
// state machine inside a Bubble Tea event loop: transitions happen only in
// Update, network calls run as commands, and their results come back as
// messages, so turn order and session identity are never touched from two
// places at once.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.uber.org/zap"

	"github.com/meridianclaims/payerkb/pkg/conversation"
	"github.com/meridianclaims/payerkb/pkg/dashboard"
	"github.com/meridianclaims/payerkb/pkg/kb"
	"github.com/meridianclaims/payerkb/pkg/ranking"
)

const sidebarWidth = 34

// queryResultMsg delivers a finished query back into the event loop together
// with the dispatch it answers, so stale resolutions can be recognized.
type queryResultMsg struct {
	dispatch conversation.Dispatch
	result   kb.Result
}

// snapshotMsg delivers a fresh dashboard snapshot.
type snapshotMsg dashboard.Snapshot

// Model is the Bubble Tea model for the chat console.
type Model struct {
	client  *kb.Client
	conv    *conversation.Conversation
	poller  *dashboard.Poller
	filters kb.Filters
	logger  *zap.Logger

	input    textinput.Model
	viewport viewport.Model
	spin     spinner.Model
	renderer *glamour.TermRenderer

	snapshot dashboard.Snapshot
	width    int
	height   int
	ready    bool
}

// New assembles the chat model. The caller owns starting the poller's Run
// loop; the model only consumes its updates.
func New(client *kb.Client, conv *conversation.Conversation, poller *dashboard.Poller, filters kb.Filters, logger *zap.Logger) Model {
	input := textinput.New()
	input.Placeholder = "Ask about payer rules (e.g. What is Aetna's timely filing rule?)"
	input.Prompt = "> "
	input.CharLimit = 500
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = statusStyle

	return Model{
		client:  client,
		conv:    conv,
		poller:  poller,
		filters: filters,
		logger:  logger,
		input:   input,
		spin:    spin,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick, m.waitForSnapshot())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		chatWidth := m.chatWidth()
		chatHeight := m.height - 5
		if chatHeight < 3 {
			chatHeight = 3
		}
		if !m.ready {
			m.viewport = viewport.New(chatWidth, chatHeight)
			m.ready = true
		} else {
			m.viewport.Width = chatWidth
			m.viewport.Height = chatHeight
		}
		m.renderer = newRenderer(chatWidth - 2)
		m.input.Width = m.width - 4
		m.refreshViewport(true)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			d, ok := m.conv.Submit(m.input.Value())
			m.input.Reset()
			if ok {
				cmds = append(cmds, m.sendQuery(d))
			}
			m.refreshViewport(true)
		case "ctrl+l":
			m.conv.Clear()
			m.refreshViewport(true)
		}

	case queryResultMsg:
		cmds = append(cmds, m.applyResult(msg)...)
		m.refreshViewport(true)

	case snapshotMsg:
		m.snapshot = dashboard.Snapshot(msg)
		cmds = append(cmds, m.waitForSnapshot())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// applyResult feeds a finished query into the state machine and dispatches
// the next queued question if the machine hands one back.
func (m *Model) applyResult(msg queryResultMsg) []tea.Cmd {
	var next conversation.Dispatch
	var ok bool

	switch {
	case msg.result.Response != nil:
		next, ok = m.conv.Resolve(msg.dispatch, msg.result.Response)
	case msg.result.Failure != nil:
		next, ok = m.conv.Fail(msg.dispatch, msg.result.Failure.Reason)
	default:
		// Rejected input never produces a dispatch, so this result can only
		// mean a caller bug; nothing to apply.
		return nil
	}

	if ok {
		return []tea.Cmd{m.sendQuery(next)}
	}
	return nil
}

// sendQuery runs the dispatch off the event loop and delivers the result
// back as a message.
func (m Model) sendQuery(d conversation.Dispatch) tea.Cmd {
	client := m.client
	filters := m.filters
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), kb.DefaultTimeout)
		defer cancel()
		return queryResultMsg{
			dispatch: d,
			result:   client.Query(ctx, d.Query, string(d.SessionID), filters),
		}
	}
}

func (m Model) waitForSnapshot() tea.Cmd {
	ch := m.poller.Updates()
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return nil
		}
		return snapshotMsg(snap)
	}
}

func (m Model) View() string {
	if !m.ready {
		return "starting..."
	}

	title := titleStyle.Render("Payer Knowledge Base")
	main := lipgloss.JoinHorizontal(lipgloss.Top, m.viewport.View(), m.sidebarView())

	status := ""
	if m.conv.State() == conversation.StateSending {
		status = m.spin.View() + statusStyle.Render("thinking...")
		if n := m.conv.QueuedCount(); n > 0 {
			status += statusStyle.Render(fmt.Sprintf(" (%d queued)", n))
		}
	}

	help := helpStyle.Render("enter send · ctrl+l clear · esc quit")

	return lipgloss.JoinVertical(lipgloss.Left, title, main, status, m.input.View(), help)
}

func (m Model) chatWidth() int {
	w := m.width - sidebarWidth - 2
	if w < 20 {
		w = 20
	}
	return w
}

// refreshViewport re-renders the transcript. Scores were fixed when each
// turn was created, so re-rendering can never reorder sources.
func (m *Model) refreshViewport(toBottom bool) {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.transcriptView())
	if toBottom {
		m.viewport.GotoBottom()
	}
}

func (m Model) transcriptView() string {
	turns := m.conv.Turns()
	if len(turns) == 0 {
		return statusStyle.Render("Ask a question about payer rules to get started.")
	}

	var b strings.Builder
	for _, turn := range turns {
		switch turn.Role {
		case conversation.RoleUser:
			b.WriteString(userLabelStyle.Render("You"))
			b.WriteString("  ")
			b.WriteString(turn.Text)
			b.WriteString("\n")
		case conversation.RoleAssistant:
			b.WriteString(assistantLabelStyle.Render("Assistant"))
			b.WriteString("\n")
			b.WriteString(m.renderMarkdown(turn.Text))
			b.WriteString(renderSources(turn.Sources))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderMarkdown(text string) string {
	if m.renderer == nil {
		return text + "\n"
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text + "\n"
	}
	return out
}

// renderSources draws one line per citation, best match first, colored by
// confidence band.
func renderSources(sources []ranking.Ranked) string {
	if len(sources) == 0 {
		return ""
	}
	var b strings.Builder
	for _, src := range sources {
		b.WriteString("  ")
		b.WriteString(bandStyle(src.Band).Render(fmt.Sprintf("%d%% match", src.Percent)))
		b.WriteString("  ")
		b.WriteString(src.PayerName)
		b.WriteString(" · ")
		b.WriteString(src.RuleType)
		if src.Title != "" {
			b.WriteString(" · ")
			b.WriteString(src.Title)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) sidebarView() string {
	var b strings.Builder

	b.WriteString(sidebarHeadingStyle.Render("Stats"))
	b.WriteString("\n")
	if stats := m.snapshot.Stats; stats != nil {
		b.WriteString(fmt.Sprintf("payers %d · rules %d\n", stats.TotalPayers, stats.TotalRules))
		b.WriteString(fmt.Sprintf("unread alerts %d\n", stats.UnreadAlerts))
		b.WriteString(fmt.Sprintf("scrapes (7d) %d\n", stats.ScrapeJobsLast7d))
	} else {
		b.WriteString(statusStyle.Render("loading...\n"))
	}

	b.WriteString("\n")
	b.WriteString(sidebarHeadingStyle.Render("Alerts"))
	b.WriteString("\n")
	if len(m.snapshot.Alerts) == 0 {
		b.WriteString(statusStyle.Render("none\n"))
	}
	for _, alert := range m.snapshot.Alerts {
		b.WriteString(severityStyle(alert.Severity).Render("●"))
		b.WriteString(" ")
		b.WriteString(clip(alert.Title, sidebarWidth-6))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(sidebarHeadingStyle.Render("Payers"))
	b.WriteString("\n")
	for _, payer := range m.snapshot.Payers {
		b.WriteString(clip(fmt.Sprintf("%s (%d)", payer.Name, payer.TotalRules), sidebarWidth-4))
		b.WriteString("\n")
	}

	return sidebarStyle.Width(sidebarWidth).Render(b.String())
}

func newRenderer(width int) *glamour.TermRenderer {
	style := "light"
	if termenv.HasDarkBackground() {
		style = "dark"
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return renderer
}

func clip(s string, maxLen int) string {
	if maxLen < 1 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen-1] + "…"
}
