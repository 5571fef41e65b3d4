package viz

import "github.com/charmbracelet/lipgloss"

// Theme is a colour scheme for the live view.
type Theme struct {
	Name    string
	Gears   lipgloss.Color
	Header  lipgloss.Color
	Label   lipgloss.Color
	Value   lipgloss.Color
	Warning lipgloss.Color
	Border  lipgloss.Color
}

var (
	ThemeBrass = Theme{
		Name:    "brass",
		Gears:   lipgloss.Color("#ffcc66"),
		Header:  lipgloss.Color("#ffaa00"),
		Label:   lipgloss.Color("245"),
		Value:   lipgloss.Color("252"),
		Warning: lipgloss.Color("#ff4444"),
		Border:  lipgloss.Color("240"),
	}

	ThemeBlueprint = Theme{
		Name:    "blueprint",
		Gears:   lipgloss.Color("#e0f0ff"),
		Header:  lipgloss.Color("#00a8cc"),
		Label:   lipgloss.Color("#4488aa"),
		Value:   lipgloss.Color("#e0f0ff"),
		Warning: lipgloss.Color("#ffcc00"),
		Border:  lipgloss.Color("#0077be"),
	}

	ThemeRetro = Theme{
		Name:    "retro",
		Gears:   lipgloss.Color("#00ff00"),
		Header:  lipgloss.Color("#88ff88"),
		Label:   lipgloss.Color("#005500"),
		Value:   lipgloss.Color("#00ff00"),
		Warning: lipgloss.Color("#ffff00"),
		Border:  lipgloss.Color("#005500"),
	}

	Themes = []Theme{ThemeBrass, ThemeBlueprint, ThemeRetro}
)

// GetTheme returns a theme by name, falling back to brass.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeBrass
}

// next returns the theme after t in Themes.
func (t Theme) next() Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

type styles struct {
	canvas, stats, header, label, value, warning, graph, help lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		canvas:  lipgloss.NewStyle().Padding(1, 2).Foreground(t.Gears),
		stats:   lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(t.Border).Padding(1, 2).Width(42),
		header:  lipgloss.NewStyle().Foreground(t.Header).Bold(true).MarginBottom(1),
		label:   lipgloss.NewStyle().Foreground(t.Label).Width(14),
		value:   lipgloss.NewStyle().Foreground(t.Value),
		warning: lipgloss.NewStyle().Foreground(t.Warning).Bold(true),
		graph:   lipgloss.NewStyle().Foreground(t.Header).Padding(1, 0),
		help:    lipgloss.NewStyle().Foreground(t.Label).MarginTop(1),
	}
}
