package conversation

import (
	"fmt"
	"sync"
	"time"
)

// TamperedError is returned by Verify when a message no longer matches its ID or
// its parent link.
type TamperedError struct {
	Index int
	ID    string
}

func (e TamperedError) Error() string {
	return fmt.Sprintf("message %d (%s) does not match its recorded id", e.Index, e.ID)
}

// Log is an append-only, ordered record of messages. Insertion order is display
// order. Readers always receive copies.
type Log struct {
	mu       sync.RWMutex
	messages []Message
	version  uint64
	now      func() time.Time
}

// NewLog creates an empty Log.
func NewLog() *Log {
	return &Log{now: time.Now}
}

// Append adds a message authored by role and returns a copy of it.
func (l *Log) Append(role Role, content string, sources []string, image *Image) Message {
	l.mu.Lock()
	defer l.mu.Unlock()

	m := Message{
		Role:      role,
		Content:   content,
		Image:     image.clone(),
		CreatedAt: l.now(),
	}
	if sources != nil {
		m.Sources = append([]string(nil), sources...)
	}
	if n := len(l.messages); n > 0 {
		parent := l.messages[n-1].ID
		m.ParentID = &parent
	}
	m.ID = m.computeID()

	l.messages = append(l.messages, m)
	l.version++

	return m.clone()
}

// Messages returns a copy of every message, oldest first.
func (l *Log) Messages() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Message, len(l.messages))
	for i, m := range l.messages {
		out[i] = m.clone()
	}
	return out
}

// Len returns the number of messages.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// Version increments on every append.
func (l *Log) Version() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.version
}

// Verify recomputes the hash chain of the log.
func (l *Log) Verify() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return VerifyChain(l.messages)
}

// VerifyChain checks that every message matches its ID and links to the one
// before it. It returns a TamperedError for the first mismatch.
func VerifyChain(messages []Message) error {
	var parent *string
	for i := range messages {
		m := &messages[i]

		linked := (parent == nil && m.ParentID == nil) ||
			(parent != nil && m.ParentID != nil && *parent == *m.ParentID)
		if !linked || m.computeID() != m.ID {
			return TamperedError{Index: i, ID: m.ID}
		}

		parent = &m.ID
	}

	return nil
}
