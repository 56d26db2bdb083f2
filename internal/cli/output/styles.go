package output

import "github.com/charmbracelet/lipgloss"

// Styles are the lipgloss styles used by the commands.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Key     lipgloss.Style
	Version lipgloss.Style
	Path    lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
}

// NewStyles creates styles bound to a renderer so the color profile of
// the output is respected.
func NewStyles(r *lipgloss.Renderer) *Styles {
	return &Styles{
		Header1: r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Header2: r.NewStyle().Bold(true),
		Key:     r.NewStyle().Foreground(lipgloss.Color("8")),
		Version: r.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		Path:    r.NewStyle().Foreground(lipgloss.Color("14")),
		Success: r.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: r.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   r.NewStyle().Foreground(lipgloss.Color("9")),
		Muted:   r.NewStyle().Faint(true),
	}
}
