package transport

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"os/exec"
	"strings"

	"github.com/shaharia-lab/mailcast/internal/config"
)

// SendmailTransport delivers messages by shelling out to a local MTA
// binary (sendmail-compatible), writing the formatted message to stdin.
type SendmailTransport struct {
	Path    string
	Newline string
}

// NewSendmail creates a SendmailTransport for the binary at cfg.Path.
// The newline mode defaults to "unix".
func NewSendmail(cfg config.TransportConfig) *SendmailTransport {
	nl := cfg.Newline
	if nl == "" {
		nl = "unix"
	}
	return &SendmailTransport{Path: cfg.Path, Newline: nl}
}

// Name returns the transport identifier.
func (t *SendmailTransport) Name() string { return "sendmail" }

// Send pipes the encoded message into the sendmail binary.
func (t *SendmailTransport) Send(ctx context.Context, msg Message) error {
	body, err := encodeMessage(msg, t.newline())
	if err != nil {
		return &SendError{Recipient: msg.To, Err: err}
	}

	//nolint:gosec // binary path comes from admin-controlled config
	cmd := exec.CommandContext(ctx, t.Path, "-i", "-f", msg.From, "--", msg.To)
	cmd.Stdin = bytes.NewReader(body)

	if out, err := cmd.CombinedOutput(); err != nil {
		return &SendError{Recipient: msg.To, Err: fmt.Errorf("%s: %w (output: %s)", t.Path, err, strings.TrimSpace(string(out)))}
	}
	return nil
}

func (t *SendmailTransport) newline() string {
	if t.Newline == "windows" {
		return "\r\n"
	}
	return "\n"
}

// encodeMessage renders a multipart/alternative MIME message with the given
// line ending.
func encodeMessage(msg Message, nl string) ([]byte, error) {
	if msg.From == "" || msg.To == "" {
		return nil, fmt.Errorf("message requires both from and to addresses")
	}

	const boundary = "mailcast-alt-0000"
	var b strings.Builder

	header := func(name, value string) {
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString(nl)
	}

	header("From", msg.From)
	header("To", msg.To)
	if msg.ReplyTo != "" {
		header("Reply-To", msg.ReplyTo)
	}
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("MIME-Version", "1.0")
	header("Content-Type", fmt.Sprintf("multipart/alternative; boundary=%q", boundary))
	b.WriteString(nl)

	part := func(contentType, content string) {
		b.WriteString("--" + boundary + nl)
		b.WriteString("Content-Type: " + contentType + "; charset=UTF-8" + nl)
		b.WriteString(nl)
		b.WriteString(content)
		b.WriteString(nl)
	}

	part("text/plain", msg.Text)
	part("text/html", msg.HTML)
	b.WriteString("--" + boundary + "--" + nl)

	return []byte(b.String()), nil
}
