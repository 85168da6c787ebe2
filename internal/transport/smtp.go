package transport

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/shaharia-lab/mailcast/internal/config"
)

// SMTPTransport delivers messages over SMTP using the go-mail library.
// The SMTP client is built per send; constructing the transport performs
// no network I/O.
type SMTPTransport struct {
	Host       string
	Port       int
	Secure     bool
	RequireTLS bool
	Username   string
	Password   string
}

// NewSMTP creates an SMTPTransport from the smtp fields of cfg.
func NewSMTP(cfg config.TransportConfig) *SMTPTransport {
	return &SMTPTransport{
		Host:       cfg.Hostname,
		Port:       cfg.Port,
		Secure:     cfg.Secure,
		RequireTLS: cfg.RequireTLS,
		Username:   cfg.Username,
		Password:   cfg.Password,
	}
}

// Name returns the transport identifier.
func (t *SMTPTransport) Name() string { return "smtp" }

// Send delivers msg through the configured SMTP server.
func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	m, err := buildMsg(msg)
	if err != nil {
		return &SendError{Recipient: msg.To, Err: err}
	}

	opts := []mail.Option{mail.WithPort(t.Port)}
	if t.Secure {
		opts = append(opts, mail.WithSSL())
	}
	if t.RequireTLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	// Credentials are omitted entirely when no username is configured.
	if t.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(t.Username),
			mail.WithPassword(t.Password),
		)
	}

	c, err := mail.NewClient(t.Host, opts...)
	if err != nil {
		return &SendError{Recipient: msg.To, Err: fmt.Errorf("creating mail client: %w", err)}
	}

	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return &SendError{Recipient: msg.To, Err: err}
	}
	return nil
}

// buildMsg converts a Message into a go-mail message with a plain-text body
// and an HTML alternative.
func buildMsg(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			return nil, fmt.Errorf("invalid reply-to address: %w", err)
		}
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	return m, nil
}
