// Package models defines the data types shared by the chat view and its surfaces.
package models

import (
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/x/ansi"
)

// Role identifies who authored a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// TimeLayout is the display format for message timestamps
const TimeLayout = "15:04"

// Message represents one turn in the conversation
type Message struct {
	ID        uint64
	Role      Role
	Content   string // literal text for user, markdown for assistant
	Timestamp time.Time
}

// IsUser reports whether the message was written by the user
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

// IsAssistant reports whether the message is an assistant reply
func (m Message) IsAssistant() bool {
	return m.Role == RoleAssistant
}

// Avatar returns the short label shown next to the message
func (m Message) Avatar() string {
	if m.IsUser() {
		return "YOU"
	}
	return "AI"
}

// FormatTime returns the timestamp formatted for display
func (m Message) FormatTime() string {
	return m.Timestamp.Format(TimeLayout)
}

// DisplayContent returns Content safe to write to a terminal: escape
// sequences and control characters are removed, newlines and tabs kept.
func (m Message) DisplayContent() string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, ansi.Strip(m.Content))
}
