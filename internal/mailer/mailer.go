// Package mailer sends rendered notification emails. A failed send is a
// returned error; callers decide whether it is fatal.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/workforce-portal/internal"
)

type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type Transport interface {
	Send(ctx context.Context, email Email) error
}

// New builds the transport selected by cfg.Driver.
func New(cfg internal.MailerConfig, from string, logger *slog.Logger) (Transport, error) {
	switch cfg.Driver {
	case "smtp":
		return NewSMTPTransport(SMTPConfig{
			Host:     cfg.Host,
			Port:     cfg.Port,
			Username: cfg.Username,
			Password: cfg.Password,
			From:     from,
		}), nil
	case "http":
		return NewHTTPTransport(HTTPConfig{
			RelayURL: cfg.RelayURL,
			APIKey:   cfg.APIKey,
			From:     from,
			Timeout:  cfg.Timeout,
		}, logger), nil
	case "log", "":
		return NewLogTransport(logger), nil
	default:
		return nil, fmt.Errorf("unknown mailer driver %q", cfg.Driver)
	}
}

// LogTransport writes emails to the log instead of sending them.
type LogTransport struct {
	logger *slog.Logger
}

func NewLogTransport(logger *slog.Logger) *LogTransport {
	return &LogTransport{logger: logger}
}

func (t *LogTransport) Send(ctx context.Context, email Email) error {
	t.logger.InfoContext(ctx, "email not sent, log driver", "to", email.To, "subject", email.Subject, "bytes", len(email.HTML))
	return nil
}

const defaultTimeout = 10 * time.Second
