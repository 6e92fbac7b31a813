package mailer

import (
	"context"
	"net"
	"testing"
	"time"

	"alcyxob/coaching-api/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

func TestNew_PicksImplementation(t *testing.T) {
	m, err := New(config.MailConfig{})
	require.NoError(t, err)
	assert.IsType(t, &LogMailer{}, m)

	m, err = New(config.MailConfig{SMTPHost: "smtp.example.com", SMTPPort: 587, Username: "u", Password: "p"})
	require.NoError(t, err)
	assert.IsType(t, &SMTPMailer{}, m)
}

func TestNewSMTPMailer(t *testing.T) {
	m, err := NewSMTPMailer(config.MailConfig{SMTPHost: "smtp.example.com", SMTPPort: 587})
	require.NoError(t, err)
	assert.Equal(t, defaultTimeout, m.timeout)

	m, err = NewSMTPMailer(config.MailConfig{SMTPHost: "smtp.example.com", SMTPPort: 587, Timeout: 3 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, m.timeout)

	_, err = NewSMTPMailer(config.MailConfig{SMTPHost: "smtp.example.com", SMTPPort: 70000})
	assert.Error(t, err)
}

func TestSMTPMailer_BuildMsg(t *testing.T) {
	m, err := NewSMTPMailer(config.MailConfig{SMTPHost: "smtp.example.com", SMTPPort: 587, From: "no-reply@coaching.test"})
	require.NoError(t, err)

	msg, err := m.buildMsg(ActivationMessage("ana@example.com", "Ana", "http://app/activate-account/tok"))
	require.NoError(t, err)
	assert.Equal(t, []string{"<ana@example.com>"}, msg.GetToString())
	assert.Equal(t, []string{"Activate your account"}, msg.GetGenHeader(mail.HeaderSubject))

	_, err = m.buildMsg(Message{To: "not an address"})
	assert.Error(t, err)
}

// A server that accepts the connection and never greets must not hang Send.
func TestSMTPMailer_StalledServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	var conns []net.Conn
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conns = append(conns, conn)
		}
	}()
	defer func() {
		ln.Close()
		<-done
		for _, c := range conns {
			c.Close()
		}
	}()

	port := ln.Addr().(*net.TCPAddr).Port
	m, err := NewSMTPMailer(config.MailConfig{
		SMTPHost: "127.0.0.1",
		SMTPPort: port,
		From:     "no-reply@coaching.test",
		Timeout:  300 * time.Millisecond,
	})
	require.NoError(t, err)

	start := time.Now()
	err = m.Send(context.Background(), Message{To: "ana@example.com", Subject: "s", Body: "b"})
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestMessages(t *testing.T) {
	msg := ActivationMessage("ana@example.com", "Ana", "http://app/activate/tok")
	assert.Equal(t, "ana@example.com", msg.To)
	assert.Contains(t, msg.Body, "http://app/activate/tok")
	assert.Contains(t, msg.Body, "Ana")

	msg = PasswordResetMessage("ana@example.com", "Ana", "http://app/reset/tok")
	assert.Contains(t, msg.Body, "http://app/reset/tok")
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	_, ok := r.Last()
	assert.False(t, ok)

	require.NoError(t, r.Send(context.Background(), Message{To: "a"}))
	require.NoError(t, r.Send(context.Background(), Message{To: "b"}))
	last, ok := r.Last()
	require.True(t, ok)
	assert.Equal(t, "b", last.To)
}

func TestSMTPMailer_CanceledContext(t *testing.T) {
	m, err := NewSMTPMailer(config.MailConfig{SMTPHost: "localhost", SMTPPort: 1})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Send(ctx, Message{To: "a"}), context.Canceled)
}
