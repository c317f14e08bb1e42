// Package styles provides shared lipgloss styles for CLI output.
package styles

import (
	"sort"

	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/boardsync/internal/core/action"
)

// Palette defines a minimal semantic theme palette.
type Palette struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
}

// DefaultTheme is the name of the default theme.
const DefaultTheme = "tokyo-night"

// themes holds the built-in named palettes.
var themes = map[string]Palette{
	"tokyo-night": {
		Primary:    lipgloss.Color("#7aa2f7"),
		Secondary:  lipgloss.Color("#7dcfff"),
		Foreground: lipgloss.Color("#c0caf5"),
		Muted:      lipgloss.Color("#565f89"),
		Success:    lipgloss.Color("#9ece6a"),
		Warning:    lipgloss.Color("#e0af68"),
		Error:      lipgloss.Color("#f7768e"),
	},
	"gruvbox": {
		Primary:    lipgloss.Color("#83a598"),
		Secondary:  lipgloss.Color("#8ec07c"),
		Foreground: lipgloss.Color("#ebdbb2"),
		Muted:      lipgloss.Color("#665c54"),
		Success:    lipgloss.Color("#b8bb26"),
		Warning:    lipgloss.Color("#fabd2f"),
		Error:      lipgloss.Color("#fb4934"),
	},
}

// ThemeNames returns sorted names of all built-in themes.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetPalette returns the palette for the given theme name.
func GetPalette(name string) (Palette, bool) {
	p, ok := themes[name]
	return p, ok
}

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Style exports.
var (
	HeaderStyle  lipgloss.Style
	ColumnStyle  lipgloss.Style
	MutedStyle   lipgloss.Style
	ErrorStyle   lipgloss.Style
	OverdueStyle lipgloss.Style

	StatusPendingStyle    lipgloss.Style
	StatusInProgressStyle lipgloss.Style
	StatusCompletedStyle  lipgloss.Style

	PriorityHighStyle   lipgloss.Style
	PriorityMediumStyle lipgloss.Style
	PriorityLowStyle    lipgloss.Style
)

// Status column glyphs.
const (
	GlyphPending    = "○"
	GlyphInProgress = "◐"
	GlyphCompleted  = "●"
)

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	HeaderStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true)
	ColumnStyle = lipgloss.NewStyle().
		Foreground(p.Secondary).
		Bold(true)
	MutedStyle = lipgloss.NewStyle().
		Foreground(p.Muted)
	ErrorStyle = lipgloss.NewStyle().
		Foreground(p.Error)
	OverdueStyle = lipgloss.NewStyle().
		Foreground(p.Error).
		Bold(true)

	StatusPendingStyle = lipgloss.NewStyle().Foreground(p.Warning)
	StatusInProgressStyle = lipgloss.NewStyle().Foreground(p.Secondary)
	StatusCompletedStyle = lipgloss.NewStyle().Foreground(p.Success)

	PriorityHighStyle = lipgloss.NewStyle().Foreground(p.Error)
	PriorityMediumStyle = lipgloss.NewStyle().Foreground(p.Warning)
	PriorityLowStyle = lipgloss.NewStyle().Foreground(p.Muted)
}

// StatusGlyph returns the rendered glyph for a status bucket. Unknown
// statuses fall back to the pending glyph, matching the board grouping.
func StatusGlyph(s action.Status) string {
	switch s {
	case action.StatusInProgress:
		return StatusInProgressStyle.Render(GlyphInProgress)
	case action.StatusCompleted:
		return StatusCompletedStyle.Render(GlyphCompleted)
	default:
		return StatusPendingStyle.Render(GlyphPending)
	}
}

// PriorityLabel returns the rendered priority marker, or empty for none.
func PriorityLabel(p action.Priority) string {
	switch p {
	case action.PriorityHigh:
		return PriorityHighStyle.Render("high")
	case action.PriorityMedium:
		return PriorityMediumStyle.Render("med")
	case action.PriorityLow:
		return PriorityLowStyle.Render("low")
	default:
		return ""
	}
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}
