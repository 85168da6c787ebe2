package notifier

import (
	"fmt"
	"html"

	"github.com/shaharia-lab/mailcast/internal/transport"
)

// renderMessage builds the outgoing message for a single recipient. The
// subject is the payload title; the plain-text body is the description with
// the link on its own line, and the HTML body wraps each in a paragraph.
// An absent description still yields a minimal "<p></p>" HTML body.
func renderMessage(sender, replyTo, to string, p Payload) transport.Message {
	text := p.Description
	htmlBody := "<p>" + html.EscapeString(p.Description) + "</p>"

	if p.Link != "" {
		if text != "" {
			text += "\n\n"
		}
		text += p.Link
		htmlBody += fmt.Sprintf("<p><a href=%q>%s</a></p>",
			p.Link, html.EscapeString(p.Link))
	}

	return transport.Message{
		From:    sender,
		To:      to,
		Subject: p.Title,
		Text:    text,
		HTML:    htmlBody,
		ReplyTo: replyTo,
	}
}
