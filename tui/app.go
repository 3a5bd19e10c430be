package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/papercomputeco/medchat/pkg/conversation"
)

// Run shows the chat screen until the user quits or ctx ends.
func Run(ctx context.Context, ctrl *conversation.Controller, notices *NoticeBoard, cfg Config, logger *zap.Logger) error {
	m := NewModel(ctx, ctrl, notices, cfg, logger)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	logger.Info("chat started", zap.Bool("robot", cfg.ShowRobot))
	_, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running chat: %w", err)
	}
	logger.Info("chat ended")

	return nil
}
