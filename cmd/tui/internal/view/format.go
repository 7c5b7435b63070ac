package view

import (
	"context"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const opTimeout = 2 * time.Minute

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	paneStyle    = lipgloss.NewStyle().Padding(1)
)

// OpCtx returns a context with the standard timeout for analysis and export.
func OpCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), opTimeout)
}
