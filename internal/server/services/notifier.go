package services

import (
	"context"

	"github.com/faithchat/relay/internal/logging"
)

// ResetNotifier delivers a password-reset link out of band.
type ResetNotifier interface {
	NotifyReset(ctx context.Context, identity, link string) error
}

// LogResetNotifier writes reset links to the operational log.
type LogResetNotifier struct {
	logger logging.Logger
}

func NewLogResetNotifier(logger logging.Logger) *LogResetNotifier {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &LogResetNotifier{logger: logger}
}

func (n *LogResetNotifier) NotifyReset(ctx context.Context, identity, link string) error {
	n.logger.Info(ctx, "password reset link", "identity", identity, "link", link)
	return nil
}
