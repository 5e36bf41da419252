package notify

import (
	"context"
	"log/slog"

	"studiodrive/internal/domain/services"
)

// LogNotifier records notifications in the log instead of sending email.
// Used when no SMTP relay is configured.
type LogNotifier struct {
	templates *Templates
	logger    *slog.Logger
}

// NewLogNotifier creates a log-only notifier
func NewLogNotifier(templates *Templates, logger *slog.Logger) services.ShareNotifier {
	return &LogNotifier{templates: templates, logger: logger}
}

func (n *LogNotifier) NotifyShare(ctx context.Context, notice services.ShareNotice) error {
	subject, _, err := n.templates.Render(notice)
	if err != nil {
		return err
	}
	n.logger.Info("share notification (smtp disabled)",
		"to", notice.Grantee,
		"subject", subject,
		"level", notice.Level,
	)
	return nil
}
