package notify

import (
	"context"
	"errors"
	"net/smtp"
	"net/textproto"
	"testing"

	"task_manager/internal/config"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubSendMail(t *testing.T, fn func(addr string, a smtp.Auth, from string, to []string, msg []byte) error) {
	t.Helper()
	prev := sendMail
	sendMail = fn
	t.Cleanup(func() { sendMail = prev })
}

func TestSMTPMailer_Send(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	stubSendMail(t, func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	})

	m := NewSMTPMailer(config.SMTPConfig{Host: "mail.local", Port: "2525", From: "tasks@example.com"})
	require.NoError(t, m.Send(context.Background(), "alice@example.com", "Due", "hello"))

	assert.Equal(t, "mail.local:2525", gotAddr)
	assert.Equal(t, "tasks@example.com", gotFrom)
	assert.Equal(t, []string{"alice@example.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: Due\r\n")
	assert.Contains(t, string(gotMsg), "\r\n\r\nhello")
}

func TestSMTPMailer_BreakerOpensAfterFailures(t *testing.T) {
	calls := 0
	stubSendMail(t, func(string, smtp.Auth, string, []string, []byte) error {
		calls++
		return errors.New("connection refused")
	})

	m := NewSMTPMailer(config.SMTPConfig{Host: "mail.local", Port: "25"})
	for i := 0; i < 4; i++ {
		assert.Error(t, m.Send(context.Background(), "a@example.com", "s", "b"))
	}
	assert.Equal(t, gobreaker.StateOpen, m.State())

	err := m.Send(context.Background(), "a@example.com", "s", "b")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.ErrorIs(t, err, ErrRelayUnavailable)
	assert.Equal(t, 4, calls)
}

func TestSMTPMailer_RecipientRepliesKeepBreakerClosed(t *testing.T) {
	stubSendMail(t, func(_ string, _ smtp.Auth, _ string, to []string, _ []byte) error {
		if to[0] == "busy@example.com" {
			return &textproto.Error{Code: 450, Msg: "mailbox busy"}
		}
		return &textproto.Error{Code: 550, Msg: "no such user"}
	})

	m := NewSMTPMailer(config.SMTPConfig{Host: "mail.local", Port: "25"})
	for i := 0; i < 10; i++ {
		err := m.Send(context.Background(), "nobody@example.com", "s", "b")
		assert.ErrorIs(t, err, ErrRejected)
	}
	err := m.Send(context.Background(), "busy@example.com", "s", "b")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRejected)
	assert.Equal(t, gobreaker.StateClosed, m.State())
}

func TestSMTPMailer_ServiceUnavailableTripsBreaker(t *testing.T) {
	stubSendMail(t, func(string, smtp.Auth, string, []string, []byte) error {
		return &textproto.Error{Code: 421, Msg: "closing channel"}
	})

	m := NewSMTPMailer(config.SMTPConfig{Host: "mail.local", Port: "25"})
	for i := 0; i < 4; i++ {
		assert.Error(t, m.Send(context.Background(), "a@example.com", "s", "b"))
	}
	assert.Equal(t, gobreaker.StateOpen, m.State())
}

func TestNewMailer(t *testing.T) {
	assert.IsType(t, LogMailer{}, NewMailer(config.SMTPConfig{}))
	assert.IsType(t, &SMTPMailer{}, NewMailer(config.SMTPConfig{Host: "mail.local", Port: "25"}))
}
