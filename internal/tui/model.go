// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/speedtype/internal/metrics"
	"github.com/verte-zerg/speedtype/internal/model"
	"github.com/verte-zerg/speedtype/internal/practice"
	"github.com/verte-zerg/speedtype/internal/recorder"
	"github.com/verte-zerg/speedtype/internal/session"
	"github.com/verte-zerg/speedtype/internal/textsource"
)

const (
	eventBuffer = 64
	loadTimeout = 10 * time.Second
)

type textLoadedMsg struct {
	quote model.Quote
	err   error
}

type snapshotMsg struct {
	epoch   int64
	metrics metrics.Metrics
}

type recordedMsg struct {
	attempt int64
	outcome recorder.Outcome
	err     error
}

// Model implements the Bubble Tea typing UI.
type Model struct {
	config model.Config
	ctrl   *practice.Controller
	events chan tea.Msg
	done   chan struct{}
	// epoch changes whenever the passage changes; older snapshots are ignored.
	epoch atomic.Int64

	spinner spinner.Model
	width   int
	height  int

	loading bool
	loadErr error
	quote   model.Quote

	targetRunes []rune
	inputRunes  []rune
	stats       metrics.Metrics
	finished    bool

	recording bool
	// attempt identifies the finished run whose save outcome is awaited.
	attempt   int64
	outcome   *recorder.Outcome
	recordErr error
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	authorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).Italic(true)
	resultStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	bestStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#52C41A"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// NewModel builds the typing UI. rec may be nil to skip saving results.
func NewModel(cfg model.Config, src textsource.Source, rec *recorder.Recorder) *Model {
	m := &Model{
		config:  cfg,
		events:  make(chan tea.Msg, eventBuffer),
		done:    make(chan struct{}),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(footerStyle)),
		loading: true,
	}
	m.ctrl = practice.New(src, rec, practice.Options{
		Username:   cfg.Username,
		Session:    session.Options{TickInterval: cfg.TickInterval},
		OnRecorded: m.recorded,
	})
	m.ctrl.Subscribe(session.ObserverFuncs{
		OnSnapshot: func(mt metrics.Metrics) {
			select {
			case m.events <- snapshotMsg{epoch: m.epoch.Load(), metrics: mt}:
			default:
			}
		},
	})
	return m
}

// Close stops the current session and waits for pending saves.
func (m *Model) Close() {
	select {
	case <-m.done:
	default:
		close(m.done)
	}
	m.ctrl.Close()
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadText(), m.waitForEvent())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case textLoadedMsg:
		m.applyText(msg)
		return m, nil
	case snapshotMsg:
		if !m.finished && msg.epoch == m.epoch.Load() {
			m.stats = msg.metrics
		}
		return m, m.waitForEvent()
	case recordedMsg:
		if !m.recording || msg.attempt != m.attempt {
			return m, m.waitForEvent()
		}
		m.recording = false
		m.outcome = &msg.outcome
		m.recordErr = msg.err
		if msg.err != nil {
			logErrf("failed to save result: %v\n", msg.err)
		}
		return m, m.waitForEvent()
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return tea.Quit
	case tea.KeyCtrlR:
		return m.reload()
	case tea.KeyTab:
		m.restart()
		return nil
	}
	if m.loading || len(m.targetRunes) == 0 {
		return nil
	}
	switch msg.Type {
	case tea.KeyEnter:
		if m.finished {
			return m.reload()
		}
		m.ctrl.Start()
	case tea.KeyBackspace, tea.KeyDelete:
		m.handleBackspace()
	case tea.KeySpace:
		m.handleRunes([]rune{' '})
	case tea.KeyRunes:
		m.handleRunes(msg.Runes)
	}
	return nil
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	switch {
	case m.loading:
		content = m.spinner.View() + " " + footerStyle.Render("Fetching text...")
	case m.loadErr != nil:
		content = errorStyle.Render("Could not load text: "+m.loadErr.Error()) + "\n" + footerStyle.Render("Ctrl+R retry · Esc quit")
	default:
		content = m.renderPassage()
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	footer := m.renderFooter()
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderPassage() string {
	cursor := -1
	if !m.finished && len(m.inputRunes) < len(m.targetRunes) {
		cursor = len(m.inputRunes)
	}
	cells := styleCells(m.targetRunes, m.inputRunes, cursor)
	contentWidth := 0
	if m.width > 0 {
		contentWidth = int(float64(m.width) * 0.70)
		if contentWidth < 1 {
			contentWidth = 1
		}
	}
	parts := []string{strings.Join(wrapCells(cells, contentWidth), "\n")}
	if m.quote.Author != "" {
		parts = append(parts, authorStyle.Render("~ "+m.quote.Author))
	}
	if m.finished {
		parts = append(parts, "", m.renderResults())
	}
	block := lipgloss.JoinVertical(lipgloss.Left, parts...)
	if contentWidth > 0 {
		block = lipgloss.NewStyle().Width(contentWidth).Render(block)
	}
	return block
}

func (m *Model) renderResults() string {
	lines := []string{resultStyle.Render(fmt.Sprintf("%d WPM · %d%% accuracy · %s · %d errors",
		m.stats.WPM, m.stats.Accuracy, formatElapsed(m.stats.ElapsedMs), m.stats.Errors))}
	switch {
	case m.recording:
		lines = append(lines, footerStyle.Render("Saving..."))
	case m.recordErr != nil:
		lines = append(lines, errorStyle.Render("Not saved: "+m.recordErr.Error()))
	case m.outcome != nil && m.outcome.PersonalBest:
		lines = append(lines, bestStyle.Render("Saved · new personal best!"))
	case m.outcome != nil && m.outcome.Persisted:
		lines = append(lines, footerStyle.Render("Saved"))
	case m.outcome != nil:
		lines = append(lines, footerStyle.Render("Not saved (no username)"))
	}
	lines = append(lines, footerStyle.Render("Enter next text · Tab retry · Esc quit"))
	return strings.Join(lines, "\n")
}

func (m *Model) renderFooter() string {
	if len(m.targetRunes) == 0 {
		return ""
	}
	progress := len(m.inputRunes) * 100 / len(m.targetRunes)
	segments := []string{
		fmt.Sprintf("%d WPM", m.stats.WPM),
		fmt.Sprintf("%d%%", m.stats.Accuracy),
		formatElapsed(m.stats.ElapsedMs),
		fmt.Sprintf("Errors %d", m.stats.Errors),
		fmt.Sprintf("Progress %d%%", progress),
	}
	if !m.finished && m.stats.ElapsedMs == 0 && len(m.inputRunes) == 0 {
		segments = append(segments, "Enter or type to start · Tab restart · Ctrl+R new text")
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) handleBackspace() {
	if m.finished || len(m.inputRunes) == 0 {
		return
	}
	m.inputRunes = m.inputRunes[:len(m.inputRunes)-1]
	m.sendInput()
}

func (m *Model) handleRunes(runes []rune) {
	if m.finished {
		return
	}
	m.ctrl.Start()
	for _, r := range runes {
		if len(m.inputRunes) >= len(m.targetRunes) {
			break
		}
		m.inputRunes = append(m.inputRunes, r)
	}
	m.sendInput()
}

func (m *Model) sendInput() {
	if err := m.ctrl.Input(string(m.inputRunes)); err != nil {
		logErrf("input rejected: %v\n", err)
		return
	}
	// Completion is published synchronously from Input.
	if st, ok := m.ctrl.State(); ok && st.Phase == session.PhaseFinished {
		m.stats = m.ctrl.Snapshot()
		m.finished = true
		m.recording = true
		m.attempt = m.ctrl.Attempts()
	}
}

func (m *Model) restart() {
	if m.loading || len(m.targetRunes) == 0 {
		return
	}
	m.ctrl.Restart()
	m.resetProgress()
}

func (m *Model) reload() tea.Cmd {
	m.loading = true
	m.loadErr = nil
	return tea.Batch(m.spinner.Tick, m.loadText())
}

func (m *Model) loadText() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		q, err := m.ctrl.Load(ctx)
		return textLoadedMsg{quote: q, err: err}
	}
}

func (m *Model) applyText(msg textLoadedMsg) {
	m.loading = false
	m.loadErr = msg.err
	if msg.err != nil {
		return
	}
	m.quote = msg.quote
	m.targetRunes = []rune(msg.quote.Content)
	m.resetProgress()
}

func (m *Model) resetProgress() {
	m.epoch.Add(1)
	m.inputRunes = nil
	m.stats = metrics.Empty()
	m.finished = false
	m.recording = false
	m.outcome = nil
	m.recordErr = nil
}

func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-m.events:
			return msg
		case <-m.done:
			return nil
		}
	}
}

func (m *Model) emit(msg tea.Msg) {
	select {
	case m.events <- msg:
	case <-m.done:
	}
}

func (m *Model) recorded(attempt int64, out recorder.Outcome, err error) {
	m.emit(recordedMsg{attempt: attempt, outcome: out, err: err})
}

func formatElapsed(ms int64) string {
	return fmt.Sprintf("%.1fs", float64(ms)/1000)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
