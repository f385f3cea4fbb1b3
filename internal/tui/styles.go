package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	ColorPrimary = lipgloss.Color("#7C3AED") // Purple
	ColorAccent  = lipgloss.Color("#06B6D4") // Cyan
	ColorSuccess = lipgloss.Color("#10B981") // Green
	ColorWarning = lipgloss.Color("#F59E0B") // Yellow
	ColorError   = lipgloss.Color("#EF4444") // Red
	ColorMuted   = lipgloss.Color("#6B7280") // Gray
	ColorText    = lipgloss.Color("#F3F4F6") // Light gray
	ColorBgAlt   = lipgloss.Color("#374151") // Dark gray
)

// SourceColors assigns each backend its badge color.
var SourceColors = map[string]lipgloss.Color{
	"apt":    lipgloss.Color("#A80030"), // Debian red
	"pacman": lipgloss.Color("#1793D1"), // Arch blue
	"dnf":    lipgloss.Color("#294172"), // Fedora blue
	"zypper": lipgloss.Color("#73BA25"), // openSUSE green
	"apk":    lipgloss.Color("#0D597F"), // Alpine blue
	"brew":   lipgloss.Color("#FBB040"), // Homebrew yellow
}

// Styles holds the lipgloss styles used by the views.
type Styles struct {
	Header    lipgloss.Style
	StatusBar lipgloss.Style
	Footer    lipgloss.Style

	TabActive   lipgloss.Style
	TabInactive lipgloss.Style

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Muted    lipgloss.Style

	Selected lipgloss.Style
	Name     lipgloss.Style
	Version  lipgloss.Style

	Success  lipgloss.Style
	Error    lipgloss.Style
	Security lipgloss.Style

	InputPrompt lipgloss.Style

	Dialog      lipgloss.Style
	DialogTitle lipgloss.Style
}

// DefaultStyles returns the default style configuration.
func DefaultStyles() *Styles {
	s := &Styles{}

	s.Header = lipgloss.NewStyle().
		Foreground(ColorText).
		Background(ColorBgAlt).
		Padding(0, 1).
		Bold(true)

	s.StatusBar = lipgloss.NewStyle().
		Foreground(ColorMuted).
		Padding(0, 1)

	s.Footer = lipgloss.NewStyle().
		Padding(0, 1)

	tab := lipgloss.NewStyle().Padding(0, 2)
	s.TabActive = tab.
		Foreground(ColorPrimary).
		Bold(true).
		Underline(true)
	s.TabInactive = tab.
		Foreground(ColorMuted)

	s.Title = lipgloss.NewStyle().
		Foreground(ColorText).
		Bold(true)

	s.Subtitle = lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true)

	s.Muted = lipgloss.NewStyle().
		Foreground(ColorMuted)

	s.Selected = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)

	s.Name = lipgloss.NewStyle().
		Foreground(ColorText).
		Bold(true)

	s.Version = lipgloss.NewStyle().
		Foreground(ColorSuccess)

	s.Success = lipgloss.NewStyle().
		Foreground(ColorSuccess).
		Bold(true)

	s.Error = lipgloss.NewStyle().
		Foreground(ColorError).
		Bold(true)

	s.Security = lipgloss.NewStyle().
		Foreground(ColorError).
		Bold(true)

	s.InputPrompt = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)

	s.Dialog = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(1, 2).
		Width(60)

	s.DialogTitle = lipgloss.NewStyle().
		Foreground(ColorText).
		Bold(true).
		MarginBottom(1)

	return s
}

// Badge renders a colored label.
func Badge(text string, color lipgloss.Color) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(color).
		Padding(0, 1).
		Render(text)
}

// SourceBadge renders a backend tag as its colored badge.
func SourceBadge(source string) string {
	color, ok := SourceColors[source]
	if !ok {
		color = ColorMuted
	}
	return Badge(source, color)
}
