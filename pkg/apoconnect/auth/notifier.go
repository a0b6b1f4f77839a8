package auth

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ResetNotice is what an operator or mail relay needs to deliver a reset link
type ResetNotice struct {
	UserID    uint
	Email     string
	Token     string
	Link      string
	ExpiresAt time.Time
}

// ResetNotifier delivers reset tokens out-of-band. The token never goes
// back to the HTTP caller.
type ResetNotifier interface {
	NotifyReset(ctx context.Context, notice ResetNotice) error
}

// LogNotifier writes reset links to the operator log
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier that logs reset links
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// NotifyReset implements ResetNotifier
func (n *LogNotifier) NotifyReset(_ context.Context, notice ResetNotice) error {
	n.logger.Info("password reset requested",
		zap.Uint("user_id", notice.UserID),
		zap.String("email", notice.Email),
		zap.String("reset_link", notice.Link),
		zap.Time("expires_at", notice.ExpiresAt),
	)
	return nil
}
