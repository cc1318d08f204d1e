package dto

// UserResponse is a directory entry or comment author.
type UserResponse struct {
	ID    int64   `json:"id"`
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

// CreateSessionRequest payload.
type CreateSessionRequest struct {
	AgentName  string `json:"agentName"`
	AgentEmail string `json:"agentEmail"`
}

// SessionResponse carries the issued session token.
type SessionResponse struct {
	SessionID string `json:"sessionId"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}
