package mail

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// WriterSender prints messages instead of delivering them.
type WriterSender struct {
	W   io.Writer
	Now func() time.Time
}

// Send writes the rendered message, with its Bcc list, to W.
func (s *WriterSender) Send(_ context.Context, msg Message) error {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	if len(msg.Bcc) > 0 {
		if _, err := fmt.Fprintf(s.W, "# Bcc: %s\n", strings.Join(msg.Bcc, ", ")); err != nil {
			return err
		}
	}
	body := strings.ReplaceAll(string(msg.Bytes(now())), "\r\n", "\n")
	_, err := io.WriteString(s.W, body)
	return err
}
