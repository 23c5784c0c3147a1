package alert

import (
	"context"
	"fmt"
	"net/smtp"

	apperrors "chatrelay/internal/errors"
	"chatrelay/internal/models"
	"chatrelay/internal/privacy"

	"github.com/sirupsen/logrus"
)

// EmailAlerter sends operator alerts over SMTP. The server's STARTTLS
// offer is honored when advertised. When email alerting is disabled in
// config, Notify is a no-op.
type EmailAlerter struct {
	cfg    models.EmailConfig
	send   sendFunc
	logger *logrus.Logger
}

// sendFunc matches smtp.SendMail; swapped out in tests.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// NewEmailAlerter creates an SMTP-backed alerter from config.
func NewEmailAlerter(cfg models.EmailConfig, logger *logrus.Logger) *EmailAlerter {
	return &EmailAlerter{
		cfg:    cfg,
		send:   smtp.SendMail,
		logger: logger,
	}
}

// Notify sends one alert email. Errors are returned for logging but carry
// no retry obligation; alerting is best-effort by contract.
func (a *EmailAlerter) Notify(ctx context.Context, subject, body string) error {
	if !a.cfg.Enable {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.Server, a.cfg.Port)
	msg := []byte(fmt.Sprintf("Subject: %s\r\n\r\n%s", subject, body))

	if err := a.send(addr, nil, a.cfg.Sender, []string{a.cfg.Recipient}, msg); err != nil {
		return apperrors.NewAlertError("email", err).
			WithContext("server", a.cfg.Server)
	}

	a.logger.WithFields(logrus.Fields{
		"subject":   subject,
		"recipient": privacy.MaskEmail(a.cfg.Recipient),
	}).Info("Alert email sent")
	return nil
}
