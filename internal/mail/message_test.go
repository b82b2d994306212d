package mail

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMessage() Message {
	return Message{
		From:    "Contribs <noreply@example.com>",
		To:      "maintainer@example.com",
		Bcc:     []string{"audit@example.com"},
		ReplyTo: "team@example.com",
		Subject: "Contributor summary for osf",
		Body:    "Hello,\n\nAda and 2 others contributed to osf.",
	}
}

func TestMessageValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Message)
	}{
		{"missing from", func(m *Message) { m.From = "" }},
		{"missing to", func(m *Message) { m.To = " " }},
		{"missing subject", func(m *Message) { m.Subject = "" }},
		{"bad to", func(m *Message) { m.To = "not-an-address" }},
		{"bad bcc", func(m *Message) { m.Bcc = []string{"@"} }},
		{"bad reply-to", func(m *Message) { m.ReplyTo = "nope" }},
		{"header injection", func(m *Message) { m.Subject = "hi\r\nBcc: evil@example.com" }},
	}

	require.NoError(t, validMessage().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMessage()
			tt.mutate(&m)
			assert.ErrorIs(t, m.Validate(), ErrInvalidMessage)
		})
	}
}

func TestMessageRecipients(t *testing.T) {
	assert.Equal(t,
		[]string{"maintainer@example.com", "audit@example.com"},
		validMessage().Recipients())
}

func TestMessageBytes(t *testing.T) {
	date := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	out := string(validMessage().Bytes(date))

	assert.Contains(t, out, "From: Contribs <noreply@example.com>\r\n")
	assert.Contains(t, out, "To: maintainer@example.com\r\n")
	assert.Contains(t, out, "Reply-To: team@example.com\r\n")
	assert.Contains(t, out, "Subject: Contributor summary for osf\r\n")
	assert.Contains(t, out, "Content-Type: text/plain; charset=\"utf-8\"\r\n")
	assert.Contains(t, out, "\r\n\r\nHello,\r\n\r\nAda and 2 others contributed to osf.\r\n")
	assert.NotContains(t, out, "audit@example.com")
}

func TestMessageBytesEncodesNonASCIISubject(t *testing.T) {
	m := validMessage()
	m.Subject = "Résumé des contributeurs"
	out := string(m.Bytes(time.Now()))

	assert.Contains(t, out, "Subject: =?utf-8?q?")
	assert.NotContains(t, out, "Subject: Résumé")
}

func TestWriterSender(t *testing.T) {
	var buf bytes.Buffer
	s := &WriterSender{W: &buf, Now: func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }}

	require.NoError(t, s.Send(context.Background(), validMessage()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "# Bcc: audit@example.com\n"), out)
	assert.Contains(t, out, "Subject: Contributor summary for osf\n")
	assert.NotContains(t, out, "\r")
}
