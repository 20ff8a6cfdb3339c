package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"log/slog"

	"github.com/hibiken/asynq"
)

// Mailer delivers transactional mail over SMTP.
type Mailer struct {
	Addr   string
	From   string
	Auth   smtp.Auth
	Logger *slog.Logger

	// send is swappable in tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewMailer constructs a Mailer. auth may be nil for unauthenticated relays
// such as a local Mailpit.
func NewMailer(addr, from string, auth smtp.Auth, logger *slog.Logger) *Mailer {
	return &Mailer{Addr: addr, From: from, Auth: auth, Logger: logger, send: smtp.SendMail}
}

// Handle processes TaskSendEmail tasks.
func (m *Mailer) Handle(ctx context.Context, t *asynq.Task) error {
	if m == nil || m.Addr == "" {
		return errors.New("mailer: not configured")
	}
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.To == "" {
		return asynq.SkipRetry
	}

	msg := strings.Join([]string{
		"From: " + m.From,
		"To: " + payload.To,
		"Subject: " + payload.Subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		payload.Body,
	}, "\r\n")

	if err := m.send(m.Addr, m.Auth, m.From, []string{payload.To}, []byte(msg)); err != nil {
		if m.Logger != nil {
			m.Logger.Warn("smtp send failed", slog.String("to", payload.To), slog.Any("error", err))
		}
		return fmt.Errorf("mailer: send to %s: %w", payload.To, err)
	}
	return nil
}

// SetupEmail renders the credential-setup message for a new user.
func SetupEmail(to, setupURL string) SendEmailPayload {
	return SendEmailPayload{
		To:      to,
		Subject: "Set up your risk planning account",
		Body: "An account has been created for you.\r\n\r\n" +
			"Choose your password here: " + setupURL + "\r\n\r\n" +
			"If you were not expecting this, you can ignore this message.",
	}
}
