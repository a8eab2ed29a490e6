package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/claims-triage/internal/model"
)

// Run shows the browser until the user quits or ctx is canceled.
func Run(ctx context.Context, claims []model.ProcessedClaim, metrics model.Metrics, opts Options) error {
	p := tea.NewProgram(New(claims, metrics, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("work queue browser: %w", err)
	}
	return nil
}
