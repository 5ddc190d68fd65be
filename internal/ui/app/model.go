package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	predictdto "focusd/internal/modules/predict/dto"
	reminderdomain "focusd/internal/modules/reminder/domain"
	"focusd/internal/modules/tracker/dto"
	apperrors "focusd/internal/platform/errors"
	"focusd/internal/ui/theme"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface this view requires; the full usecases
// stay behind them.

type trackerPort interface {
	Start(ctx context.Context, input dto.StartInput) (dto.StateOutput, error)
	BeginBreak(ctx context.Context) (dto.StateOutput, error)
	EndBreak(ctx context.Context) (dto.StateOutput, error)
	BeginProcrastination(ctx context.Context) (dto.StateOutput, error)
	EndProcrastination(ctx context.Context) (dto.StateOutput, error)
	End(ctx context.Context) (dto.EndOutput, error)
	Active(ctx context.Context) (dto.StateOutput, error)
}

type advisorPort interface {
	Advise(ctx context.Context, category string) (predictdto.AdviceOutput, error)
}

// schedulerPort mirrors the reminder scheduler's state-entry surface. The
// tracking view is the only long-lived process, so it is the one that keeps
// the scheduler informed.
type schedulerPort interface {
	EnterWorking(sessionID, category string)
	EnterBreak()
	EnterProcrastinating()
	SessionEnded()
}

// ─── prompt notifier ─────────────────────────────────────────────────────────

// PromptRequestMsg carries a reminder question into the Bubble Tea loop.
// The scheduler goroutine blocks on Reply until the user answers.
type PromptRequestMsg struct {
	Prompt reminderdomain.Prompt
	Reply  chan reminderdomain.Answer
}

// Notifier surfaces reminder prompts as an in-app overlay. It must be
// attached to a running program before the scheduler starts firing; prompts
// delivered earlier answer none.
type Notifier struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

func NewNotifier() *Notifier { return &Notifier{} }

func (n *Notifier) Attach(p *tea.Program) {
	n.mu.Lock()
	n.send = p.Send
	n.mu.Unlock()
}

func (n *Notifier) Notify(ctx context.Context, prompt reminderdomain.Prompt) (reminderdomain.Answer, error) {
	n.mu.Lock()
	send := n.send
	n.mu.Unlock()
	if send == nil {
		return reminderdomain.AnswerNone, nil
	}
	reply := make(chan reminderdomain.Answer, 1)
	send(PromptRequestMsg{Prompt: prompt, Reply: reply})
	select {
	case answer := <-reply:
		return answer, nil
	case <-ctx.Done():
		return reminderdomain.AnswerNone, ctx.Err()
	}
}

// ─── async messages ───────────────────────────────────────────────────────────

type stateMsg struct {
	state dto.StateOutput
	err   error
}

type endedMsg struct {
	out dto.EndOutput
	err error
}

type adviceMsg struct {
	advice predictdto.AdviceOutput
	err    error
}

type tickMsg time.Time

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Break    key.Binding
	Resume   key.Binding
	Distract key.Binding
	End      key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Break:    key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "take break")),
		Resume:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "resume work")),
		Distract: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "mark distracted")),
		End:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "end session")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Break, k.Resume, k.Distract, k.End, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Break, k.Resume, k.Distract},
		{k.End, k.Help, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the live tracking view. It owns the session pane, the reminder
// prompt overlay, and the post-session summary. Business logic stays behind
// the port interfaces; quitting the view leaves any active session running.
type Model struct {
	tracker   trackerPort
	advisor   advisorPort
	scheduler schedulerPort

	startInput dto.StartInput

	state     dto.StateOutput
	hasActive bool
	ended     *dto.EndOutput
	advice    *predictdto.AdviceOutput

	pending *PromptRequestMsg

	keys     keyMap
	help     help.Model
	showHelp bool
	status   string
	now      time.Time
	width    int
	height   int
}

func NewModel(tracker trackerPort, advisor advisorPort, scheduler schedulerPort, start dto.StartInput) Model {
	return Model{
		tracker:    tracker,
		advisor:    advisor,
		scheduler:  scheduler,
		startInput: start,
		keys:       defaultKeys(),
		help:       help.New(),
		status:     "ready",
		now:        time.Now(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadActiveCmd(), tickCmd())
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = m.width

	case tickMsg:
		m.now = time.Time(msg)
		if m.hasActive && m.pending == nil {
			// Prompt confirmations can move the machine from inside the
			// scheduler; keep the view in step with it.
			return m, tea.Batch(tickCmd(), m.refreshCmd())
		}
		return m, tickCmd()

	case PromptRequestMsg:
		m.pending = &msg

	case stateMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		m.applyState(msg.state)

	case endedMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		m.hasActive = false
		m.state = dto.StateOutput{}
		m.ended = &msg.out
		m.status = "session ended, note at " + msg.out.NotePath
		if m.scheduler != nil {
			m.scheduler.SessionEnded()
		}
		if m.advisor != nil {
			return m, m.adviseCmd(msg.out.Session.CategoryName)
		}

	case adviceMsg:
		if msg.err == nil {
			m.advice = &msg.advice
		}

	case tea.KeyMsg:
		// The prompt overlay swallows all input while visible.
		if m.pending != nil {
			switch msg.String() {
			case "y", "Y":
				m.pending.Reply <- reminderdomain.AnswerYes
				m.pending = nil
			case "n", "N", "esc":
				m.pending.Reply <- reminderdomain.AnswerNo
				m.pending = nil
			}
			return m, nil
		}
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
		case key.Matches(msg, m.keys.Break):
			if m.state.State == "working" {
				return m, m.transitionCmd(m.tracker.BeginBreak)
			}
		case key.Matches(msg, m.keys.Resume):
			switch m.state.State {
			case "on_break":
				return m, m.transitionCmd(m.tracker.EndBreak)
			case "procrastinating":
				return m, m.transitionCmd(m.tracker.EndProcrastination)
			}
		case key.Matches(msg, m.keys.Distract):
			if m.state.State == "working" {
				return m, m.transitionCmd(m.tracker.BeginProcrastination)
			}
		case key.Matches(msg, m.keys.End):
			if m.hasActive {
				return m, m.endCmd()
			}
		}
	}
	return m, nil
}

func (m *Model) applyState(st dto.StateOutput) {
	prev := m.state.State
	m.state = st
	m.hasActive = true
	m.ended = nil
	m.status = st.CategoryName + ": " + st.State
	if m.scheduler == nil || st.State == prev {
		return
	}
	switch st.State {
	case "working":
		m.scheduler.EnterWorking(st.SessionID, st.CategoryName)
	case "on_break":
		m.scheduler.EnterBreak()
	case "procrastinating":
		m.scheduler.EnterProcrastinating()
	}
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	header := theme.Title.Render("focusd") + theme.Muted.Render("  focused work tracker")
	statusBar := m.renderStatusBar()

	var body string
	switch {
	case m.showHelp:
		body = m.help.View(m.keys)
	case m.pending != nil:
		body = m.renderPrompt()
	case m.ended != nil:
		body = m.renderSummary()
	case m.hasActive:
		body = m.renderSession()
	default:
		body = theme.Muted.Render("no active session")
	}

	contentH := m.height - 3
	if contentH > 0 {
		body = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, body)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, statusBar)
}

func (m Model) renderSession() string {
	st := m.state
	elapsed := m.now.Sub(st.StartedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	lines := []string{
		theme.StateStyle(st.State).Render(strings.ToUpper(st.State)),
		"",
		fmt.Sprintf("category  %s", st.CategoryName),
		fmt.Sprintf("elapsed   %s", formatDuration(elapsed)),
		fmt.Sprintf("interval  %.0f min", st.IntervalMin),
	}
	return theme.PaneActive.Render(strings.Join(lines, "\n"))
}

func (m Model) renderSummary() string {
	s := m.ended.Session
	lines := []string{
		theme.Title.Render("session summary"),
		"",
		fmt.Sprintf("gross            %.1f min", s.GrossMin),
		fmt.Sprintf("net focused      %.1f min", s.NetFocusedMin),
		fmt.Sprintf("breaks           %.1f min", s.BreakMin),
		fmt.Sprintf("procrastination  %.1f min", s.ProcrastinationMin),
		fmt.Sprintf("longest block    %.1f min", s.LongestFocusBlockMin),
		fmt.Sprintf("interruptions    %d", s.InterruptionCount),
		fmt.Sprintf("focus ratio      %.2f", s.FocusRatio),
	}
	if m.advice != nil {
		lines = append(lines, "",
			theme.Title.Render("next time"),
			fmt.Sprintf("optimal length   %.0f min", m.advice.OptimalSessionMin),
			fmt.Sprintf("break after      %.0f min", m.advice.BreakInsertionMin),
			fmt.Sprintf("break length     %.0f min", m.advice.SuggestedBreakMin),
		)
	}
	return theme.Pane.Render(strings.Join(lines, "\n"))
}

func (m Model) renderPrompt() string {
	p := m.pending.Prompt
	lines := []string{
		theme.Hot.Render(string(p.Kind)),
		"",
		p.Message,
		"",
		theme.Muted.Render("y: yes   n: no"),
	}
	return theme.PromptBox.Render(strings.Join(lines, "\n"))
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.hasActive {
		left = theme.StateStyle(m.state.State).Render("● ") + left
	}
	right := theme.Muted.Render("?:help  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── async commands ───────────────────────────────────────────────────────────

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) loadActiveCmd() tea.Cmd {
	return func() tea.Msg {
		active, err := m.tracker.Active(context.Background())
		if err == nil {
			return stateMsg{state: active}
		}
		if !errors.Is(err, apperrors.ErrNoActiveSession) {
			return stateMsg{err: err}
		}
		if m.startInput.Category == "" {
			return stateMsg{err: fmt.Errorf("no active session, pass a category to start one")}
		}
		started, err := m.tracker.Start(context.Background(), m.startInput)
		return stateMsg{state: started, err: err}
	}
}

// refreshCmd re-reads the active session without the start-if-missing
// fallback of loadActiveCmd; a vanished session is not an error here.
func (m Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		active, err := m.tracker.Active(context.Background())
		if err != nil {
			return nil
		}
		return stateMsg{state: active}
	}
}

func (m Model) transitionCmd(op func(context.Context) (dto.StateOutput, error)) tea.Cmd {
	return func() tea.Msg {
		st, err := op(context.Background())
		return stateMsg{state: st, err: err}
	}
}

func (m Model) endCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.tracker.End(context.Background())
		return endedMsg{out: out, err: err}
	}
}

func (m Model) adviseCmd(category string) tea.Cmd {
	return func() tea.Msg {
		advice, err := m.advisor.Advise(context.Background(), category)
		return adviceMsg{advice: advice, err: err}
	}
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	mm := int(d.Minutes()) % 60
	ss := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, mm, ss)
	}
	return fmt.Sprintf("%02d:%02d", mm, ss)
}
