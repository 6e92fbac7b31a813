// Package mailer delivers account notifications (activation, password reset).
package mailer

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"alcyxob/coaching-api/internal/config"

	log "github.com/sirupsen/logrus"
	"github.com/wneessen/go-mail"
)

const defaultTimeout = 10 * time.Second

type Message struct {
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New returns an SMTP mailer when a host is configured and a log mailer otherwise.
func New(cfg config.MailConfig) (Mailer, error) {
	if cfg.SMTPHost == "" {
		log.Warnln("no smtp host configured, account emails will only be logged")
		return &LogMailer{}, nil
	}
	return NewSMTPMailer(cfg)
}

func ActivationMessage(to, fullName, link string) Message {
	return Message{
		To:      to,
		Subject: "Activate your account",
		Body:    fmt.Sprintf("Hi %s,\n\nconfirm your account by opening:\n%s\n", fullName, link),
	}
}

func PasswordResetMessage(to, fullName, link string) Message {
	return Message{
		To:      to,
		Subject: "Reset your password",
		Body:    fmt.Sprintf("Hi %s,\n\nreset your password by opening:\n%s\n\nThe link expires in one hour.\n", fullName, link),
	}
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct{}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	log.WithFields(log.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info(msg.Body)
	return nil
}

// SMTPMailer submits messages through go-mail. Dialing and every SMTP
// command are bounded by the configured timeout.
type SMTPMailer struct {
	client  *mail.Client
	from    string
	timeout time.Duration
}

func NewSMTPMailer(cfg config.MailConfig) (*SMTPMailer, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	opts := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
		mail.WithTimeout(timeout),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
		mail.WithDialContextFunc(deadlineDialer(timeout)),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return &SMTPMailer{client: client, from: cfg.From, timeout: timeout}, nil
}

// deadlineDialer puts a deadline on the connection so a server that never
// sends its greeting cannot block the caller.
func deadlineDialer(timeout time.Duration) mail.DialContextFunc {
	return func(ctx context.Context, network, address string) (net.Conn, error) {
		d := net.Dialer{Timeout: timeout}
		conn, err := d.DialContext(ctx, network, address)
		if err != nil {
			return nil, err
		}
		if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
			conn.Close()
			return nil, err
		}
		return conn, nil
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	out, err := m.buildMsg(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	if err := m.client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

func (m *SMTPMailer) buildMsg(msg Message) (*mail.Msg, error) {
	out := mail.NewMsg()
	if err := out.From(m.from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", m.from, err)
	}
	if err := out.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(mail.TypeTextPlain, msg.Body)
	return out, nil
}

// Recorder keeps sent messages in memory.
type Recorder struct {
	mu   sync.Mutex
	Sent []Message
}

func (r *Recorder) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Sent = append(r.Sent, msg)
	return nil
}

// Last returns the most recently sent message.
func (r *Recorder) Last() (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Sent) == 0 {
		return Message{}, false
	}
	return r.Sent[len(r.Sent)-1], true
}
