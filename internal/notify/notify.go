// Package notify delivers the confirmation message that carries a vote token.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// LogNotifier writes messages to the log instead of sending them. Meant for
// local runs, where the confirmation link is read from the console.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, msg Message) error {
	n.log.Info("notification",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("body", msg.Body),
	)
	return nil
}

// ConfirmationLink returns <baseURL>/confirm-vote?token=<token>.
func ConfirmationLink(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/confirm-vote?" + url.Values{"token": {token}}.Encode()
}

type Confirmation struct {
	BaseURL     string
	To          string
	FullName    string
	CallName    string
	ProjectName string
	Token       string
}

func ConfirmationMessage(c Confirmation) Message {
	var b strings.Builder

	fmt.Fprintf(&b, "Olá, %s!\n\n", c.FullName)
	fmt.Fprintf(&b, "Recebemos seu voto no projeto \"%s\" do edital \"%s\".\n", c.ProjectName, c.CallName)
	b.WriteString("Para que ele seja contabilizado, confirme acessando o link abaixo:\n\n")
	b.WriteString(ConfirmationLink(c.BaseURL, c.Token))
	b.WriteString("\n\nSe você não votou, ignore esta mensagem.\n")

	return Message{
		To:      c.To,
		Subject: "Confirme seu voto: " + c.ProjectName,
		Body:    b.String(),
	}
}
