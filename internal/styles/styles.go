// Package styles provides shared lipgloss styles for CLI output.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Tokyo Night color palette.
var (
	ColorGreen  = lipgloss.Color("#9ece6a")
	ColorYellow = lipgloss.Color("#e0af68")
	ColorBlue   = lipgloss.Color("#7aa2f7")
	ColorGray   = lipgloss.Color("#565f89")
	ColorWhite  = lipgloss.Color("#c0caf5")
)

// Banner ASCII art printed when the services start.
const Banner = `
 ╔═╗╔═╗╔═╗╔╦╗╔╗ ╔═╗═╗ ╦
 ╠═╝║ ║╚═╗ ║ ╠╩╗║ ║╔╩╦╝
 ╩  ╚═╝╚═╝ ╩ ╚═╝╚═╝╩ ╚═`

// BannerStyle styles the ASCII art banner.
var BannerStyle = lipgloss.NewStyle().
	Foreground(ColorBlue).
	Bold(true)

// TableBorder is the border used for message tables.
var TableBorder = lipgloss.RoundedBorder()

// TableHeaderStyle styles table header cells.
var TableHeaderStyle = lipgloss.NewStyle().
	Foreground(ColorBlue).
	Bold(true).
	Padding(0, 1)

// TimestampStyle styles the message key column.
var TimestampStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Padding(0, 1)

// CellStyle styles ordinary table cells.
var CellStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Padding(0, 1)

// DividerStyle styles table borders and horizontal dividers.
var DividerStyle = lipgloss.NewStyle().
	Foreground(ColorGray)
