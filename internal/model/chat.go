package model

// Role tags a chat message as coming from the system, the user, or the
// assistant. These are the only three values that ever appear in a history.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one role-tagged text unit in a conversation history.
// Histories are ordered and append-only for the lifetime of a session.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
