package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/GriffinCanCode/VMConsole/internal/domain/vm"
	"github.com/GriffinCanCode/VMConsole/internal/shared/types"
)

// UI colors.
var (
	colorBorder  = lipgloss.Color("#4b5563")
	colorDimmed  = lipgloss.Color("#6b7280")
	colorBright  = lipgloss.Color("#f9fafb")
	colorActive  = lipgloss.Color("#22c55e")
	colorPaused  = lipgloss.Color("#eab308")
	colorDanger  = lipgloss.Color("#dc2626")
	colorAccent  = lipgloss.Color("#60a5fa")
	colorBarFill = lipgloss.Color("#3b82f6")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorBright)
	dimStyle    = lipgloss.NewStyle().Foreground(colorDimmed)
	errorStyle  = lipgloss.NewStyle().Foreground(colorDanger)
	accentStyle = lipgloss.NewStyle().Foreground(colorAccent)
	panelStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)
)

const barWidth = 20

// View renders the console.
func (m Model) View() string {
	if !m.loaded {
		if m.err != nil {
			return errorStyle.Render("Cannot reach console: "+m.err.Error()) + "\n\n" + m.help.View(m.keys)
		}
		return dimStyle.Render("Connecting to console...")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Virtual Machine Console"))
	b.WriteString("  ")
	b.WriteString(stateLabel(m.snap.State))
	if m.snap.SessionBadge != "" {
		b.WriteString("  ")
		b.WriteString(dimStyle.Render("session " + m.snap.SessionBadge))
	}
	b.WriteString("\n\n")

	left := panelStyle.Render(m.systemsView())
	right := panelStyle.Render(m.statsView())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
	b.WriteString("\n")

	b.WriteString(m.urlView())
	b.WriteString("\n")

	if m.snap.TokenRequired && !m.snap.HasToken {
		b.WriteString(accentStyle.Render("Press t to enter your session API token"))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(dimStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) systemsView() string {
	lines := []string{dimStyle.Render("Operating system")}
	systems := m.systems
	if len(systems) == 0 {
		systems = []types.OSOption{m.snap.OS}
	}
	for _, opt := range systems {
		marker := "  "
		name := opt.Name
		if opt.ID == m.snap.SelectedOS {
			marker = "› "
			name = titleStyle.Render(name)
		}
		lines = append(lines, fmt.Sprintf("%s%s %s %s %s",
			marker, indicatorDot(m.snap.Indicators[opt.ID]), opt.Icon, name, dimStyle.Render(opt.Version)))
	}
	return strings.Join(lines, "\n")
}

func (m Model) statsView() string {
	s, avg := m.snap.Stats, m.snap.Averages
	return strings.Join([]string{
		dimStyle.Render("Resources"),
		statLine("CPU", s.CPU, 100, "%", avg.CPU),
		statLine("RAM", s.RAM, 100, "%", avg.RAM),
		statLine("NET", s.Network, vm.NetworkMax, " KB/s", avg.Network),
	}, "\n")
}

func (m Model) urlView() string {
	if m.mode != editNone {
		return m.input.View()
	}
	url := m.snap.BrowserURL
	if m.snap.Display.Kind == types.DisplayRemote {
		url += dimStyle.Render("  (remote view " + m.snap.Display.URL + ")")
	}
	return dimStyle.Render("URL ") + url
}

func statLine(label string, value, limit int, unit string, avg float64) string {
	return fmt.Sprintf("%-3s %s %3d%s %s", label, bar(value, limit), value, unit,
		dimStyle.Render(fmt.Sprintf("avg %.1f", avg)))
}

func bar(value, limit int) string {
	filled := 0
	if limit > 0 {
		filled = value * barWidth / limit
	}
	if filled > barWidth {
		filled = barWidth
	}
	return lipgloss.NewStyle().Foreground(colorBarFill).Render(strings.Repeat("█", filled)) +
		dimStyle.Render(strings.Repeat("░", barWidth-filled))
}

func stateLabel(s types.VMState) string {
	switch s {
	case types.StateActive:
		return lipgloss.NewStyle().Foreground(colorActive).Render("● running")
	case types.StatePaused:
		return lipgloss.NewStyle().Foreground(colorPaused).Render("● paused")
	default:
		return dimStyle.Render("○ powered off")
	}
}

func indicatorDot(i types.Indicator) string {
	switch i {
	case types.IndicatorActive:
		return lipgloss.NewStyle().Foreground(colorActive).Render("●")
	case types.IndicatorPaused:
		return lipgloss.NewStyle().Foreground(colorPaused).Render("●")
	default:
		return dimStyle.Render("○")
	}
}
