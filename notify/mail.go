// Package notify relays form submissions by e-mail.
package notify

import (
	"context"
	"strings"

	"github.com/mbolis/catering-order/form"
	"github.com/mbolis/catering-order/log"
	"github.com/pkg/errors"
	"github.com/wneessen/go-mail"
)

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Mailer sends submissions through an SMTP server.
type Mailer struct {
	client *mail.Client
	from   string
}

func NewMailer(cfg SMTPConfig) (*Mailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.User),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "notify.smtp_client")
	}
	return &Mailer{client: client, from: cfg.From}, nil
}

func (m *Mailer) Send(ctx context.Context, recipient, subject string, payload form.Payload) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return errors.Wrap(err, "notify.from")
	}
	if err := msg.To(recipient); err != nil {
		return errors.Wrap(err, "notify.to")
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, Body(payload))

	return errors.Wrap(m.client.DialAndSendWithContext(ctx, msg), "notify.send")
}

// LogRelay writes submissions to the log instead of sending them. It stands
// in for the Mailer when no SMTP host is configured.
type LogRelay struct{}

func (LogRelay) Send(ctx context.Context, recipient, subject string, payload form.Payload) error {
	log.WithFields(log.Fields{
		"recipient": recipient,
		"subject":   subject,
	}).Info("notification (not sent):\n" + Body(payload))
	return nil
}

// Body renders the payload as one "question: answer" line per entry.
func Body(payload form.Payload) string {
	var b strings.Builder
	for _, e := range payload {
		b.WriteString(e.Question)
		b.WriteString(": ")
		b.WriteString(e.Answer)
		b.WriteByte('\n')
	}
	return b.String()
}
