package mail

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// ConsoleSender writes messages to an io.Writer instead of delivering them
// and keeps a copy of each. Used with MAIL_DRIVER=console and in tests.
type ConsoleSender struct {
	from string
	out  io.Writer

	mu   sync.Mutex
	sent []Message
	// Fail, when set, is returned by Send and nothing is recorded.
	Fail error
}

var _ Sender = (*ConsoleSender)(nil)

func NewConsoleSender(from string, out io.Writer) *ConsoleSender {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleSender{from: from, out: out}
}

func (s *ConsoleSender) Send(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	_, _ = fmt.Fprintf(s.out, "From: %s\r\nDate: %s\r\nSubject: %s\r\nTo: %s\r\n\r\n%s\r\n",
		s.from, time.Now().Format(time.RFC1123Z), msg.Subject, msg.To, msg.TextContent)
	s.sent = append(s.sent, msg)
	return nil
}

// Sent returns a copy of every message sent so far.
func (s *ConsoleSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.sent))
	copy(out, s.sent)
	return out
}

// Last returns the most recent message and false when nothing was sent.
func (s *ConsoleSender) Last() (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return Message{}, false
	}
	return s.sent[len(s.sent)-1], true
}
