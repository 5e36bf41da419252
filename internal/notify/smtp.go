package notify

import (
	"context"
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"
	"studiodrive/internal/config"
	"studiodrive/internal/domain/services"
)

// sender abstracts gomail's dialer so the notifier can be tested without a relay
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPNotifier emails grantees through an SMTP relay
type SMTPNotifier struct {
	dialer    sender
	from      string
	templates *Templates
	logger    *slog.Logger
}

// NewSMTPNotifier creates a notifier for the configured relay
func NewSMTPNotifier(cfg config.MailConfig, templates *Templates, logger *slog.Logger) services.ShareNotifier {
	return &SMTPNotifier{
		dialer:    gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:      cfg.From,
		templates: templates,
		logger:    logger,
	}
}

// NotifyShare renders and sends one email to notice.Grantee
func (n *SMTPNotifier) NotifyShare(ctx context.Context, notice services.ShareNotice) error {
	subject, body, err := n.templates.Render(notice)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", notice.Grantee)
	m.SetHeader("Reply-To", notice.Owner)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send share email to %s: %w", notice.Grantee, err)
	}

	n.logger.Info("share email sent",
		"grantee", notice.Grantee,
		"resource_kind", notice.ResourceKind,
		"resource_id", notice.ResourceID,
	)
	return nil
}
