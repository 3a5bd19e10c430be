// Package conversation implements the chat state machine: an append-only message
// log, the staged text and image, and the single request/response cycle against
// the question-answering backend.
package conversation

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Message is a single entry of the conversation log. Messages are never
// modified after they are appended.
type Message struct {
	// ID is the content-addressed identifier (SHA-256, hex-encoded) over the
	// message and its parent's ID, chaining the log together.
	ID string `json:"id"`

	// ParentID links to the previous message, nil for the first one.
	ParentID *string `json:"parent_id"`

	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Sources   []string  `json:"sources,omitempty"` // bot only
	Image     *Image    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// hashInput is the canonical form a message ID is computed from.
type hashInput struct {
	Parent   string   `json:"parent,omitempty"`
	Role     Role     `json:"role"`
	Content  string   `json:"content"`
	Sources  []string `json:"sources,omitempty"`
	ImageURL string   `json:"image,omitempty"`
}

func (m *Message) computeID() string {
	in := hashInput{
		Role:    m.Role,
		Content: m.Content,
		Sources: m.Sources,
	}
	if m.ParentID != nil {
		in.Parent = *m.ParentID
	}
	if m.Image != nil {
		in.ImageURL = m.Image.DataURL
	}

	data, err := json.Marshal(in)
	if err != nil {
		panic("failed to marshal hash input: " + err.Error())
	}

	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// HasSources reports whether the message cites any source.
func (m Message) HasSources() bool {
	return len(m.Sources) > 0
}

func (m Message) clone() Message {
	c := m
	if m.ParentID != nil {
		parent := *m.ParentID
		c.ParentID = &parent
	}
	if m.Sources != nil {
		c.Sources = append([]string(nil), m.Sources...)
	}
	c.Image = m.Image.clone()
	return c
}
