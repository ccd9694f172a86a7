package types

/*
ChatRole identifies the author of a chat message.
*/
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

/*
QuickAction is a suggested follow-up the front-end can render as a chip
next to an assistant reply.
*/
type QuickAction struct {
	Label    string         `json:"label"`
	Value    map[string]any `json:"value"`
	Selected bool           `json:"selected"`
}

/*
ChatMessage is a single turn in a conversation. Messages are ephemeral;
the service never persists them and callers replay the full history on
every request.
*/
type ChatMessage struct {
	ID           string        `json:"id,omitempty"`
	Role         ChatRole      `json:"role"`
	Content      string        `json:"content"`
	QuickActions []QuickAction `json:"quickActions,omitempty"`
	Timestamp    string        `json:"timestamp,omitempty"`
}

// ChatRequest carries the full conversation history, oldest first.
type ChatRequest struct {
	History []ChatMessage `json:"history"`
}

// ChatResponse is the assistant reply plus the readiness signal that gates
// task creation.
type ChatResponse struct {
	Message      ChatMessage `json:"message"`
	ReadyForTask bool        `json:"readyForTask"`
}
