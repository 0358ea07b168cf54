// Package styles holds the glamour and lipgloss styles shared by the
// report renderer and the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/exp/charmtone"
)

var (
	MenuBar = lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("252")).
		Padding(0, 1)

	Title = lipgloss.NewStyle().
		Foreground(lipgloss.Color(charmtone.Zest.Hex())).
		Background(lipgloss.Color(charmtone.Charple.Hex())).
		Bold(true).
		Padding(0, 1)

	Selected = lipgloss.NewStyle().
		Foreground(lipgloss.Color(charmtone.Malibu.Hex())).
		Bold(true)

	Dim = lipgloss.NewStyle().Foreground(lipgloss.Color(charmtone.Squid.Hex()))

	Pass = lipgloss.NewStyle().Foreground(lipgloss.Color(charmtone.Guac.Hex())).Bold(true)

	Fail = lipgloss.NewStyle().Foreground(lipgloss.Color(charmtone.Cherry.Hex())).Bold(true)

	Warn = lipgloss.NewStyle().Foreground(lipgloss.Color(charmtone.Zest.Hex()))
)
