package cli

import "github.com/charmbracelet/lipgloss"

// Theme holds the color scheme for the chat display.
type Theme struct {
	User     lipgloss.Color
	Bot      lipgloss.Color
	Text     lipgloss.Color
	Source   lipgloss.Color
	Success  lipgloss.Color
	Hint     lipgloss.Color
	Selected lipgloss.Color
}

// defaultTheme uses the Zizi Afrique brand colors.
var defaultTheme = Theme{
	User:     lipgloss.Color("#6FAD46"), // green
	Bot:      lipgloss.Color("#7A2982"), // purple
	Text:     lipgloss.Color("#FFFFFF"),
	Source:   lipgloss.Color("#D1D5DB"), // light gray
	Success:  lipgloss.Color("#86EFAC"), // pale green
	Hint:     lipgloss.Color("#6C6C6C"), // dim gray
	Selected: lipgloss.Color("#FFD75F"), // amber
}

// Style functions for dynamic theming
func (t Theme) userBubble() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Text).Background(t.User).Padding(0, 1)
}

func (t Theme) botBubble() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Text).Background(t.Bot).Padding(0, 1)
}

func (t Theme) sourceStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Source).Italic(true)
}

func (t Theme) recordedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

func (t Theme) typingStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Bot).Italic(true)
}

func (t Theme) titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Text).Background(t.Bot).Bold(true).Padding(0, 2)
}

func (t Theme) markerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Selected).Bold(true)
}
