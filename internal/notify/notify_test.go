package notify

import (
	"bytes"
	"context"
	"log/slog"
	"net"
	"net/textproto"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmationLink(t *testing.T) {
	assert.Equal(t, "https://vote.example/confirm-vote?token=abc-_1",
		ConfirmationLink("https://vote.example/", "abc-_1"))
	assert.Equal(t, "http://localhost:8080/confirm-vote?token=a%2Bb",
		ConfirmationLink("http://localhost:8080", "a+b"))
}

func TestConfirmationMessage(t *testing.T) {
	msg := ConfirmationMessage(Confirmation{
		BaseURL:     "https://vote.example",
		To:          "maria@example.com",
		FullName:    "Maria",
		CallName:    "Edital 2024",
		ProjectName: "Horta Comunitária",
		Token:       "tok",
	})

	assert.Equal(t, "maria@example.com", msg.To)
	assert.Contains(t, msg.Subject, "Horta Comunitária")
	assert.Contains(t, msg.Body, "https://vote.example/confirm-vote?token=tok")
	assert.Contains(t, msg.Body, "Edital 2024")
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, n.Notify(context.Background(), Message{To: "a@b.c", Subject: "s", Body: "link"}))
	assert.Contains(t, buf.String(), "to=a@b.c")
	assert.Contains(t, buf.String(), "body=link")
}

// fakeSMTP accepts one session and returns the DATA payload.
func fakeSMTP(t *testing.T) (port int, data <-chan string) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	out := make(chan string, 1)

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		tp := textproto.NewConn(conn)
		_ = tp.PrintfLine("220 localhost ESMTP")

		for {
			line, err := tp.ReadLine()
			if err != nil {
				return
			}

			switch verb := strings.ToUpper(strings.SplitN(line, " ", 2)[0]); verb {
			case "EHLO", "HELO":
				_ = tp.PrintfLine("250 localhost")
			case "MAIL", "RCPT":
				_ = tp.PrintfLine("250 OK")
			case "DATA":
				_ = tp.PrintfLine("354 go ahead")
				lines, err := tp.ReadDotLines()
				if err != nil {
					return
				}
				out <- strings.Join(lines, "\n")
				_ = tp.PrintfLine("250 queued")
			case "QUIT":
				_ = tp.PrintfLine("221 bye")
				return
			default:
				_ = tp.PrintfLine("502 not implemented")
			}
		}
	}()

	return ln.Addr().(*net.TCPAddr).Port, out
}

func TestSMTPNotifier(t *testing.T) {
	port, data := fakeSMTP(t)

	n := NewSMTPNotifier(SMTPConfig{Host: "127.0.0.1", Port: port, From: "noreply@example.com"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := n.Notify(ctx, Message{To: "maria@example.com", Subject: "Confirme seu voto", Body: "line one\nline two"})
	require.NoError(t, err)

	select {
	case got := <-data:
		assert.Contains(t, got, "To: maria@example.com")
		assert.Contains(t, got, "From: noreply@example.com")
		assert.Contains(t, got, "line one\nline two")
	case <-time.After(5 * time.Second):
		t.Fatal("no message received")
	}
}

func TestSMTPNotifier_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	n := NewSMTPNotifier(SMTPConfig{Host: "127.0.0.1", Port: port, From: "x@example.com"})
	err = n.Notify(context.Background(), Message{To: "y@example.com"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), strconv.Itoa(port))
}
