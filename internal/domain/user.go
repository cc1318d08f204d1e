package domain

// BaseUser is a directory entry sourced from the upstream user service.
// Read-only from this core's perspective.
type BaseUser struct {
	ID    int64   `json:"id"`
	Name  *string `json:"name"`
	Email *string `json:"email"`
}
