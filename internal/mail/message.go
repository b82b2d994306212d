// Package mail delivers rendered contributor summaries by email.
package mail

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	netmail "net/mail"
	"strings"
	"time"
)

// ErrInvalidMessage is returned when a message is missing a required field
// or carries an unparseable address.
var ErrInvalidMessage = errors.New("invalid message")

// Message is one plain-text email.
type Message struct {
	From    string
	To      string
	Bcc     []string
	ReplyTo string
	Subject string
	Body    string
}

// Validate checks required fields and address syntax.
func (m Message) Validate() error {
	if strings.TrimSpace(m.From) == "" {
		return fmt.Errorf("%w: missing from address", ErrInvalidMessage)
	}
	if strings.TrimSpace(m.To) == "" {
		return fmt.Errorf("%w: missing recipient", ErrInvalidMessage)
	}
	if strings.TrimSpace(m.Subject) == "" {
		return fmt.Errorf("%w: missing subject", ErrInvalidMessage)
	}

	addrs := append([]string{m.From, m.To}, m.Bcc...)
	if m.ReplyTo != "" {
		addrs = append(addrs, m.ReplyTo)
	}
	for _, a := range addrs {
		if _, err := netmail.ParseAddress(a); err != nil {
			return fmt.Errorf("%w: address %q: %v", ErrInvalidMessage, a, err)
		}
	}
	if strings.ContainsAny(m.Subject, "\r\n") {
		return fmt.Errorf("%w: subject contains a line break", ErrInvalidMessage)
	}
	return nil
}

// Recipients returns the envelope recipients: To followed by every Bcc.
func (m Message) Recipients() []string {
	out := make([]string, 0, 1+len(m.Bcc))
	out = append(out, envelopeAddress(m.To))
	for _, b := range m.Bcc {
		out = append(out, envelopeAddress(b))
	}
	return out
}

// Bytes renders the message as RFC 5322 text with CRLF line endings.
// Bcc recipients never appear in the headers.
func (m Message) Bytes(date time.Time) []byte {
	var buf bytes.Buffer

	header := func(k, v string) {
		fmt.Fprintf(&buf, "%s: %s\r\n", k, v)
	}
	header("From", m.From)
	header("To", m.To)
	if m.ReplyTo != "" {
		header("Reply-To", m.ReplyTo)
	}
	header("Subject", mime.QEncoding.Encode("utf-8", m.Subject))
	header("Date", date.Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", `text/plain; charset="utf-8"`)
	header("Content-Transfer-Encoding", "8bit")
	buf.WriteString("\r\n")

	body := strings.ReplaceAll(m.Body, "\r\n", "\n")
	body = strings.ReplaceAll(body, "\n", "\r\n")
	buf.WriteString(body)
	if !strings.HasSuffix(body, "\r\n") {
		buf.WriteString("\r\n")
	}

	return buf.Bytes()
}

// envelopeAddress strips any display name, leaving the bare address.
func envelopeAddress(s string) string {
	addr, err := netmail.ParseAddress(s)
	if err != nil {
		return strings.TrimSpace(s)
	}
	return addr.Address
}
