package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/lakshaymaurya-felt/junkmole/internal/remove"
	"github.com/lakshaymaurya-felt/junkmole/internal/rules"
	"github.com/lakshaymaurya-felt/junkmole/internal/run"
)

// useProgressUI reports whether the live display should run. Piped
// output and --no-progress fall back to plain mode.
func useProgressUI() bool {
	return !noProgress && isatty.IsTerminal(os.Stdout.Fd())
}

// ─── Messages ────────────────────────────────────────────────────────────────

type outcomeMsg remove.Outcome

type doneMsg struct {
	summary *run.Summary
	err     error
}

// ─── Styles ──────────────────────────────────────────────────────────────────

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	styleRemoved = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleSkipped = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleFailed  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// ─── Model ───────────────────────────────────────────────────────────────────

// sweepModel is the bubbletea Model for the live sweep display. It is a
// pure observer: outcomes arrive as messages after the coordinator has
// already recorded and counted them.
type sweepModel struct {
	spin   spinner.Model
	cancel context.CancelFunc

	removed  int64
	skipped  int64
	failed   int64
	planned  int64
	bytes    int64
	lastPath string

	width      int
	cancelling bool
	quitting   bool
}

func newSweepModel(cancel context.CancelFunc) sweepModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	return sweepModel{spin: sp, cancel: cancel, width: 80}
}

func (m sweepModel) Init() tea.Cmd {
	return m.spin.Tick
}

func (m sweepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			// Cooperative: stop dispatch and wait for the drain.
			m.cancelling = true
			m.cancel()
		}
		return m, nil

	case outcomeMsg:
		switch msg.Result {
		case remove.Removed:
			m.removed++
			if msg.Kind != rules.ActionStripAttribute {
				m.bytes += msg.Size
			}
		case remove.Skipped:
			m.skipped++
		case remove.Failed:
			m.failed++
		case remove.Planned:
			m.planned++
		}
		m.lastPath = msg.Path
		return m, nil

	case doneMsg:
		m.quitting = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m sweepModel) View() string {
	if m.quitting {
		return ""
	}

	verb := "Sweeping"
	if m.cancelling {
		verb = "Draining"
	}

	var s strings.Builder
	s.WriteString(fmt.Sprintf("\n  %s %s\n\n", m.spin.View(), styleTitle.Render(verb+" junk files")))
	s.WriteString(fmt.Sprintf("  %s  %s  %s",
		styleRemoved.Render(fmt.Sprintf("removed %d", m.removed+m.planned)),
		styleSkipped.Render(fmt.Sprintf("skipped %d", m.skipped)),
		styleFailed.Render(fmt.Sprintf("failed %d", m.failed)),
	))
	if m.bytes > 0 {
		s.WriteString(styleDim.Render(fmt.Sprintf("  (%s freed)", humanSize(m.bytes))))
	}
	s.WriteString("\n")

	if m.lastPath != "" {
		s.WriteString("  " + styleDim.Render(truncatePath(m.lastPath, m.width-4)) + "\n")
	}
	s.WriteString("\n  " + styleDim.Render("press q or ctrl+c to stop") + "\n")
	return s.String()
}

// truncatePath shortens a path from the left so the file name stays visible.
func truncatePath(path string, max int) string {
	if max < 8 || len(path) <= max {
		return path
	}
	return "…" + path[len(path)-max+1:]
}

// ─── Driver ──────────────────────────────────────────────────────────────────

// runWithProgress runs the sweep under the live display. The sweep runs
// in its own goroutine; outcomes and the final result reach the model as
// messages. If the terminal refuses the UI the sweep still completes.
func runWithProgress(ctx context.Context, cfg run.Config) (*run.Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newSweepModel(cancel))
	cfg.Progress = func(o remove.Outcome) {
		p.Send(outcomeMsg(o))
	}

	result := make(chan doneMsg, 1)
	go func() {
		s, err := run.Run(ctx, cfg)
		result <- doneMsg{summary: s, err: err}
		p.Send(doneMsg{})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
	}
	res := <-result
	return res.summary, res.err
}
