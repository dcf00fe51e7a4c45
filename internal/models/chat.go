package models

// Role of a turn in a transcript.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn represents a single message in a conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the payload sent to the chat endpoint.
// RememberHistory is a pointer so an absent field can default to true.
type ChatRequest struct {
	Message         *string `json:"message"`
	RememberHistory *bool   `json:"remember_history"`
}

// Remember reports whether the turn should be stored, defaulting to true.
func (r ChatRequest) Remember() bool {
	return r.RememberHistory == nil || *r.RememberHistory
}

// ChatResponse is the reply from the AI chat.
type ChatResponse struct {
	Reply   string `json:"reply"`
	History []Turn `json:"history"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ErrorResponse mirrors the {"detail": "..."} body clients already parse.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
