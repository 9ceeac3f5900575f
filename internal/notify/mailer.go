package notify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"net/textproto"
	"strings"
	"time"

	"task_manager/internal/config"
	"task_manager/internal/logger"

	"github.com/sony/gobreaker"
)

// Mailer delivers a plain-text message to one recipient.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// sendMail is smtp.SendMail; tests swap it out.
var sendMail = smtp.SendMail

var (
	// ErrRejected wraps a permanent (5xx) reply. Resending the same message will not succeed.
	ErrRejected = errors.New("message rejected by relay")
	// ErrRelayUnavailable is returned without contacting the relay while the breaker is open.
	ErrRelayUnavailable = errors.New("mail relay unavailable")
)

// relayAnswered reports whether err is an SMTP reply from a working relay.
// 421 means the relay itself is shutting the channel.
func relayAnswered(err error) bool {
	var reply *textproto.Error
	return errors.As(err, &reply) && reply.Code != 421
}

func permanentReply(err error) bool {
	var reply *textproto.Error
	return errors.As(err, &reply) && reply.Code >= 500
}

// SMTPMailer sends through an SMTP relay behind a circuit breaker so an
// unreachable relay is not retried on every scan. Replies about a single
// recipient do not count against the breaker.
type SMTPMailer struct {
	cfg     config.SMTPConfig
	breaker *gobreaker.CircuitBreaker
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		cfg: cfg,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "smtp-cb",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 3
			},
			IsSuccessful: func(err error) bool {
				return err == nil || relayAnswered(err)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			},
		}),
	}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}
	msg := buildMessage(m.cfg.From, to, subject, body)

	_, err := m.breaker.Execute(func() (interface{}, error) {
		return nil, sendMail(addr, auth, m.cfg.From, []string{to}, msg)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return fmt.Errorf("send mail to %s: %w: %w", to, ErrRelayUnavailable, err)
	case permanentReply(err):
		return fmt.Errorf("send mail to %s: %w: %w", to, ErrRejected, err)
	}
	return fmt.Errorf("send mail to %s: %w", to, err)
}

func (m *SMTPMailer) State() gobreaker.State { return m.breaker.State() }

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

// LogMailer is used when no SMTP relay is configured.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, to, subject, _ string) error {
	logger.WithContext(ctx).Info("mail not sent, smtp disabled", "to", to, "subject", subject)
	return nil
}

// NewMailer picks the SMTP mailer when a relay host is configured.
func NewMailer(cfg config.SMTPConfig) Mailer {
	if cfg.Enabled() {
		return NewSMTPMailer(cfg)
	}
	return LogMailer{}
}
