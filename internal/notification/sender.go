package notification

import (
	"context"
	"fmt"
	"net"
	"net/smtp"

	"github.com/jordan-wright/email"
)

type Message struct {
	To      []string
	Subject string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type smtpSender struct {
	name string
	from string
	addr string
	auth smtp.Auth
}

// NewSMTPSender sends through host:port with PLAIN auth. An empty username
// disables authentication, which local relays such as MailHog expect.
func NewSMTPSender(name, from, host, port, username, password string) Sender {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &smtpSender{
		name: name,
		from: from,
		addr: net.JoinHostPort(host, port),
		auth: auth,
	}
}

// Send gives up when ctx ends. The SMTP exchange itself cannot be
// interrupted and finishes in the background.
func (s *smtpSender) Send(ctx context.Context, msg Message) error {
	e := email.NewEmail()
	e.From = fmt.Sprintf("%s <%s>", s.name, s.from)
	e.To = msg.To
	e.Subject = msg.Subject
	e.HTML = []byte(msg.HTML)

	done := make(chan error, 1)
	go func() {
		done <- e.Send(s.addr, s.auth)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp send: %w", ctx.Err())
	}
}
