// Package notify delivers fee reminders to guardians.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Message is a plain text email.
type Message struct {
	From    string    `json:"from"`
	To      []string  `json:"to"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	SentAt  time.Time `json:"sentAt"`
}

// Raw renders the message with RFC 5322 headers.
func (m Message) Raw() []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(m.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", m.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(m.Body, "\n", "\r\n"))
	return []byte(b.String())
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LoggingSender writes messages to the log instead of delivering them.
type LoggingSender struct {
	log *zap.Logger
}

func NewLoggingSender(log *zap.Logger) *LoggingSender {
	return &LoggingSender{log: log}
}

func (s *LoggingSender) Send(_ context.Context, msg Message) error {
	s.log.Info("reminder (logged)",
		zap.Strings("to", msg.To), zap.String("subject", msg.Subject), zap.String("body", msg.Body))
	return nil
}

// SMTPSender delivers through an SMTP relay.
type SMTPSender struct {
	addr string
	auth smtp.Auth
	log  *zap.Logger
}

// NewSMTPSender authenticates with PLAIN auth when username is set.
func NewSMTPSender(host string, port int, username, password string, log *zap.Logger) (*SMTPSender, error) {
	if strings.TrimSpace(host) == "" {
		return nil, errors.New("smtp host is not configured")
	}
	s := &SMTPSender{addr: fmt.Sprintf("%s:%d", host, port), log: log}
	if username != "" {
		s.auth = smtp.PlainAuth("", username, password, host)
	}
	return s, nil
}

func (s *SMTPSender) Send(_ context.Context, msg Message) error {
	if err := smtp.SendMail(s.addr, s.auth, msg.From, msg.To, msg.Raw()); err != nil {
		return fmt.Errorf("smtp send to %v: %w", msg.To, err)
	}
	s.log.Info("reminder sent", zap.Strings("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

// CompositeSender hands every message to each of its senders.
type CompositeSender struct {
	senders []Sender
}

func NewCompositeSender(senders ...Sender) *CompositeSender {
	cs := &CompositeSender{}
	for _, s := range senders {
		cs.Add(s)
	}
	return cs
}

// Add appends a sender. nil is ignored.
func (cs *CompositeSender) Add(s Sender) {
	if s != nil {
		cs.senders = append(cs.senders, s)
	}
}

// Send tries every sender and joins their errors.
func (cs *CompositeSender) Send(ctx context.Context, msg Message) error {
	if len(cs.senders) == 0 {
		return errors.New("no senders configured")
	}
	var errs []error
	for _, s := range cs.senders {
		if err := s.Send(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
