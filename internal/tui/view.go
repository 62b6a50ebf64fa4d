package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/broadcom-downloader/internal/download"
)

var (
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#CC092F"))
	titleStyle  = accentStyle.Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C757D"))
	fileStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F8B500"))
	boxStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)
)

// levelMarks styles log lines by event level.
var levelMarks = map[download.ProgressLevel]struct {
	prefix string
	style  lipgloss.Style
}{
	download.LevelInfo:    {"›", lipgloss.NewStyle().Foreground(lipgloss.Color("#A8DADC"))},
	download.LevelVerbose: {"•", dimStyle},
	download.LevelWarning: {"!", lipgloss.NewStyle().Foreground(lipgloss.Color("#FFE66D"))},
	download.LevelError:   {"✗", lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))},
	download.LevelSuccess: {"✓", lipgloss.NewStyle().Foreground(lipgloss.Color("#95E1A3"))},
}

var helpText = map[State]string{
	StateInput:        "enter: start • ctrl+a: archive • ctrl+l: verbose • esc: quit",
	StateInitializing: "esc: cancel",
	StateDownloading:  "esc: cancel",
	StateComplete:     "r: another manifest • q: quit",
	StateError:        "r: another manifest • q: quit",
}

func checkbox(on bool) string {
	if on {
		return "[×]"
	}
	return "[ ]"
}

func megabytes(n int64) float64 {
	return float64(n) / 1024 / 1024
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("💾 Broadcom Downloader"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		fmt.Fprintf(&b, "%s\n\n%s\n\n", labelStyle.Render("Manifest file:"), m.textInput.View())
		fmt.Fprintf(&b, "  %s Archived files instead of current\n", checkbox(m.archive))
		fmt.Fprintf(&b, "  %s Verbose output\n\n", checkbox(m.verbose))
		b.WriteString(dimStyle.Render(fmt.Sprintf("Types: %s | Destination: %s",
			strings.Join(m.settings.Types, ", "), m.settings.Directory)))
		b.WriteString("\n")

	case StateInitializing:
		fmt.Fprintf(&b, "%s %s\n\n", m.spinner.View(), labelStyle.Render("Reading manifest..."))

	case StateDownloading:
		if c := m.current; c != nil {
			fmt.Fprintf(&b, "%s\n%s\n\n", fileStyle.Render("⇣ "+c.Name), dimStyle.Render(c.String()))
		}
		fmt.Fprintf(&b, "%s\n", m.progress.View())
		fmt.Fprintf(&b, "%s\n\n", labelStyle.Render(fmt.Sprintf(
			"Files: %d/%d | New: %d | Present: %d | %.2f MB",
			m.stats.ProcessedItems, m.stats.TotalItems,
			m.stats.PlacedFiles, m.stats.ExistingFiles, megabytes(m.stats.ReceivedBytes))))

	case StateComplete:
		skipped := 0
		if m.manager != nil {
			skipped = len(m.manager.Skipped())
		}
		b.WriteString(boxStyle.Render(fmt.Sprintf(
			"✨ Download Complete!\n\nDownloaded: %d\nAlready present: %d\nSkipped by filter: %d\nSize: %.2f MB",
			m.stats.PlacedFiles, m.stats.ExistingFiles, skipped, megabytes(m.stats.ReceivedBytes))))
		b.WriteString("\n")

	case StateError:
		mark := levelMarks[download.LevelError]
		fmt.Fprintf(&b, "%s\n\n  %v\n\n", mark.style.Render("❌ Error occurred:"), m.err)
	}

	if m.state != StateInput {
		for _, e := range m.logs {
			mark := levelMarks[e.Level]
			b.WriteString(mark.style.Render(mark.prefix + " " + e.Message))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(helpText[m.state]))
	return b.String()
}
