package main

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Base styles for the run summary and listings
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			MarginBottom(1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	nameStyle = lipgloss.NewStyle().
			Bold(true)
)

// plainWhenPiped drops the styling when stdout is not a terminal.
func plainWhenPiped() {
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return
	}
	plain := lipgloss.NewStyle()
	titleStyle = plain
	successStyle = plain
	warningStyle = plain
	errorStyle = plain
	mutedStyle = plain
	nameStyle = plain
}
