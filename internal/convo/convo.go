// Package convo models the practice conversation as an ordered sequence of turns.
package convo

import "strings"

// Role identifies the speaker of a turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single utterance in the conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is an append-only sequence of turns. It is reset wholesale
// when a new session starts; turns are never edited in place.
type Conversation struct {
	turns []Turn
}

// NewConversation creates a conversation seeded with a single assistant opening.
func NewConversation(opening string) *Conversation {
	c := &Conversation{}
	if opening != "" {
		c.turns = append(c.turns, Turn{Role: RoleAssistant, Content: opening})
	}
	return c
}

// Append adds a turn to the end of the conversation.
func (c *Conversation) Append(role Role, content string) {
	c.turns = append(c.turns, Turn{Role: role, Content: content})
}

// Reset discards all turns and re-seeds with a single assistant opening.
func (c *Conversation) Reset(opening string) {
	c.turns = c.turns[:0]
	if opening != "" {
		c.turns = append(c.turns, Turn{Role: RoleAssistant, Content: opening})
	}
}

// Turns returns a copy of the turn sequence.
func (c *Conversation) Turns() []Turn {
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len returns the number of turns.
func (c *Conversation) Len() int {
	return len(c.turns)
}

// Last returns the most recent turn, or a zero Turn when empty.
func (c *Conversation) Last() Turn {
	if len(c.turns) == 0 {
		return Turn{}
	}
	return c.turns[len(c.turns)-1]
}

// UserText joins the content of all user turns with newlines. Used for
// objective metrics, which evaluate only the learner's own speech.
func (c *Conversation) UserText() string {
	var parts []string
	for _, t := range c.turns {
		if t.Role == RoleUser {
			parts = append(parts, t.Content)
		}
	}
	return strings.Join(parts, "\n")
}

// UserTurnCount returns the number of user turns.
func (c *Conversation) UserTurnCount() int {
	n := 0
	for _, t := range c.turns {
		if t.Role == RoleUser {
			n++
		}
	}
	return n
}

// Tail returns the last n turns (or all of them when fewer exist). Remote
// calls cap the history they send; the session keeps the full transcript.
func (c *Conversation) Tail(n int) []Turn {
	if n <= 0 || n >= len(c.turns) {
		return c.Turns()
	}
	out := make([]Turn, n)
	copy(out, c.turns[len(c.turns)-n:])
	return out
}
