package mail

import (
	"bufio"
	"bytes"
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"shopfront/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// smtpServer is a minimal SMTP server that records the DATA of each message.
type smtpServer struct {
	ln       net.Listener
	mu       sync.Mutex
	commands []string
	data     []string
}

func startSMTPServer(t *testing.T) *smtpServer {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s := &smtpServer{ln: ln}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go s.serve(conn)
		}
	}()
	return s
}

func (s *smtpServer) port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

func (s *smtpServer) serve(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(10 * time.Second))

	r := bufio.NewReader(conn)
	reply := func(line string) { _, _ = conn.Write([]byte(line + "\r\n")) }
	reply("220 localhost ESMTP test")

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		cmd := strings.ToUpper(strings.TrimSpace(line))
		s.mu.Lock()
		s.commands = append(s.commands, cmd)
		s.mu.Unlock()

		switch {
		case strings.HasPrefix(cmd, "EHLO"):
			reply("250-localhost")
			reply("250 HELP")
		case cmd == "DATA":
			reply("354 end data with <CR><LF>.<CR><LF>")
			var body strings.Builder
			for {
				l, err := r.ReadString('\n')
				if err != nil {
					return
				}
				if l == ".\r\n" {
					break
				}
				body.WriteString(l)
			}
			s.mu.Lock()
			s.data = append(s.data, body.String())
			s.mu.Unlock()
			reply("250 queued")
		case cmd == "QUIT":
			reply("221 bye")
			return
		default:
			reply("250 OK")
		}
	}
}

func (s *smtpServer) messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.data...)
}

func hasPrefix(lines []string, prefix string) bool {
	for _, l := range lines {
		if strings.HasPrefix(l, prefix) {
			return true
		}
	}
	return false
}

func TestCompose(t *testing.T) {
	m, err := compose("shop@example.com", Message{
		To:      "user@example.com",
		Subject: "Reset your password",
		Body:    "hello",
		HTML:    "<p>hello</p>",
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()

	assert.Contains(t, raw, "From: <shop@example.com>")
	assert.Contains(t, raw, "To: <user@example.com>")
	assert.Contains(t, raw, "Subject: Reset your password")
	assert.Contains(t, raw, "Date: ")
	assert.Contains(t, raw, "Message-ID: <")
	assert.Contains(t, raw, "multipart/alternative")
	assert.Contains(t, raw, "text/plain")
	assert.Contains(t, raw, "text/html")
}

func TestCompose_InvalidRecipient(t *testing.T) {
	_, err := compose("shop@example.com", Message{To: "not an address"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid recipient address")
}

func TestPasswordReset(t *testing.T) {
	msg := PasswordReset("a@b.c", "Ann <admin>", "http://localhost:3000/reset-password?token=abc")

	assert.Equal(t, "a@b.c", msg.To)
	assert.Contains(t, msg.Body, "Hello Ann <admin>")
	assert.Contains(t, msg.Body, "reset-password?token=abc")
	assert.Contains(t, msg.HTML, `href="http://localhost:3000/reset-password?token=abc"`)
	assert.Contains(t, msg.HTML, "Hello Ann &lt;admin&gt;")
}

func TestLogSender(t *testing.T) {
	msg := PasswordReset("a@b.c", "Ann", "http://localhost:3000/reset-password?token=secret-token")

	t.Run("info omits body", func(t *testing.T) {
		var buf bytes.Buffer
		sender := NewLogSender(zerolog.New(&buf).Level(zerolog.InfoLevel))

		require.NoError(t, sender.Send(context.Background(), msg))
		assert.Contains(t, buf.String(), `"to":"a@b.c"`)
		assert.NotContains(t, buf.String(), "secret-token")
	})

	t.Run("debug redacts links", func(t *testing.T) {
		var buf bytes.Buffer
		sender := NewLogSender(zerolog.New(&buf).Level(zerolog.DebugLevel))

		require.NoError(t, sender.Send(context.Background(), msg))
		assert.Contains(t, buf.String(), "reset-password?redacted")
		assert.NotContains(t, buf.String(), "secret-token")
	})
}

func TestSMTPSender_Send(t *testing.T) {
	srv := startSMTPServer(t)
	sender := NewSMTPSender(config.MailConfig{
		Host: "127.0.0.1",
		Port: srv.port(),
		From: "no-reply@shop.example.com",
	}, zerolog.Nop())

	msg := PasswordReset("user@example.com", "Ann", "https://shop.example.com/reset-password?token=abc")
	require.NoError(t, sender.Send(context.Background(), msg))

	got := srv.messages()
	require.Len(t, got, 1)
	assert.Contains(t, got[0], "To: <user@example.com>")
	assert.Contains(t, got[0], "Message-ID: <")
	assert.Contains(t, got[0], "text/html")

	srv.mu.Lock()
	defer srv.mu.Unlock()
	assert.True(t, hasPrefix(srv.commands, "MAIL FROM:<NO-REPLY@SHOP.EXAMPLE.COM>"), "commands: %v", srv.commands)
	assert.True(t, hasPrefix(srv.commands, "RCPT TO:<USER@EXAMPLE.COM>"), "commands: %v", srv.commands)
}

func TestSMTPSender_ConnectionFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	sender := NewSMTPSender(config.MailConfig{Host: "127.0.0.1", Port: port, From: "x@y.z"}, zerolog.Nop())

	err = sender.Send(context.Background(), Message{To: "a@b.c"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send email")
}
