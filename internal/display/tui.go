package display

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/hervehildenbrand/gpmtud/pkg/pmtu"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("240"))

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("82"))

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	mtuStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208"))

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	completeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")).
			Bold(true)
)

// ProbeMsg is sent when a probe completes
type ProbeMsg struct {
	Probe pmtu.Probe
}

// CompleteMsg is sent when the search is complete
type CompleteMsg struct {
	Result *pmtu.Result
}

// WatchModel is the Bubbletea model for the live discovery view
type WatchModel struct {
	mu        sync.RWMutex
	target    string
	targetIP  string
	strategy  string
	min, max  int
	probes    []pmtu.Probe
	best      int
	result    *pmtu.Result
	complete  bool
	spinner   spinner.Model
	width     int
	height    int
	startTime time.Time
}

// NewWatchModel creates a new watch model
func NewWatchModel(target, targetIP, strategy string, min, max int) *WatchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return &WatchModel{
		target:    target,
		targetIP:  targetIP,
		strategy:  strategy,
		min:       min,
		max:       max,
		probes:    make([]pmtu.Probe, 0),
		spinner:   s,
		startTime: time.Now(),
	}
}

// AddProbe adds a completed probe to the model
func (m *WatchModel) AddProbe(p pmtu.Probe) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.probes = append(m.probes, p)
	if p.Succeeded() && p.Size > m.best {
		m.best = p.Size
	}
}

// SetComplete marks the search as complete
func (m *WatchModel) SetComplete(res *pmtu.Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.complete = true
	m.result = res
}

// Init implements tea.Model
func (m *WatchModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model
func (m *WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case ProbeMsg:
		m.AddProbe(msg.Probe)

	case CompleteMsg:
		m.SetComplete(msg.Result)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model
func (m *WatchModel) View() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var b strings.Builder

	// Title
	title := fmt.Sprintf("gpmtud → %s (%s)", m.target, m.targetIP)
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	// Header
	header := fmt.Sprintf("%-8s %-8s %-10s %-10s",
		"Size", "Payload", "Result", "RTT")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", 50))
	b.WriteString("\n")

	// Probes
	for _, p := range m.probes {
		b.WriteString(m.formatProbeRow(p))
		b.WriteString("\n")
	}

	// Status bar
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", 50))
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())

	// Help
	b.WriteString("\n")
	if m.complete {
		if m.result != nil && m.result.Determined() {
			b.WriteString(completeStyle.Render(fmt.Sprintf("✓ PMTU is %d bytes", m.result.Estimate)))
		} else {
			b.WriteString(failStyle.Render("✗ PMTU not determined"))
		}
		b.WriteString(" | Press 'q' to quit")
	} else {
		b.WriteString(m.spinner.View())
		b.WriteString(" Probing... Press 'q' to cancel")
	}

	return b.String()
}

// formatProbeRow formats a single probe row
func (m *WatchModel) formatProbeRow(p pmtu.Probe) string {
	var b strings.Builder

	b.WriteString(rowStyle.Render(fmt.Sprintf("%-8d", p.Size)))
	b.WriteString(rowStyle.Render(fmt.Sprintf("%-8d", p.Payload)))

	if p.Succeeded() {
		b.WriteString(okStyle.Render(fmt.Sprintf("%-10s", "reply")))
		rttMs := float64(p.RTT) / float64(time.Millisecond)
		b.WriteString(rowStyle.Render(fmt.Sprintf("%-10.2f", rttMs)))
	} else {
		b.WriteString(failStyle.Render(fmt.Sprintf("%-10s", "no reply")))
		b.WriteString(rowStyle.Render(fmt.Sprintf("%-10s", "-")))
	}

	if p.ReportedMTU > 0 {
		b.WriteString(" ")
		b.WriteString(mtuStyle.Render(fmt.Sprintf("[next-hop MTU %d]", p.ReportedMTU)))
	}

	return b.String()
}

// renderStatusBar renders the status bar
func (m *WatchModel) renderStatusBar() string {
	parts := []string{
		fmt.Sprintf("Strategy: %s", m.strategy),
		fmt.Sprintf("Bounds: %d-%d", m.min, m.max),
		fmt.Sprintf("Probes: %d", len(m.probes)),
	}

	if m.best > 0 {
		parts = append(parts, okStyle.Render(fmt.Sprintf("Best: %d", m.best)))
	}

	elapsed := time.Since(m.startTime).Round(time.Millisecond)
	parts = append(parts, fmt.Sprintf("Time: %v", elapsed))

	return statusStyle.Render(strings.Join(parts, " │ "))
}

// RunWatch runs the live discovery view. The caller must send the
// final result on doneChan before closing probeChan.
func RunWatch(target, targetIP, strategy string, min, max int, probeChan <-chan pmtu.Probe, doneChan <-chan *pmtu.Result) error {
	model := NewWatchModel(target, targetIP, strategy, min, max)

	p := tea.NewProgram(model)

	go forwardWatch(p.Send, probeChan, doneChan)

	_, err := p.Run()
	return err
}

// forwardWatch pumps probe and completion events into the program.
// Both channels can become ready in the same select once the search
// finishes, so each terminal branch accounts for the other channel:
// a drained probe stream still collects the pending result, and a
// received result flushes the probe backlog before announcing
// completion.
func forwardWatch(send func(tea.Msg), probeChan <-chan pmtu.Probe, doneChan <-chan *pmtu.Result) {
	for {
		select {
		case pr, ok := <-probeChan:
			if !ok {
				if res, ok := <-doneChan; ok {
					send(CompleteMsg{Result: res})
				}
				return
			}
			send(ProbeMsg{Probe: pr})
		case res, ok := <-doneChan:
			if !ok {
				return
			}
			for pr := range probeChan {
				send(ProbeMsg{Probe: pr})
			}
			send(CompleteMsg{Result: res})
			return
		}
	}
}
