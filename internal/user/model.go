package user

import (
	"time"

	"warimas-pos/internal/session"
)

// User is a POS operator account. Passwords never travel back from the
// backend; they only appear in create and update payloads.
type User struct {
	ID        int64        `json:"id"`
	Username  string       `json:"username"`
	Name      string       `json:"name"`
	Role      session.Role `json:"role"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

type CreateInput struct {
	Username string       `json:"username"`
	Name     string       `json:"name"`
	Password string       `json:"password"`
	Role     session.Role `json:"role"`
}

type UpdateInput struct {
	Name     string       `json:"name"`
	Password string       `json:"password,omitempty"`
	Role     session.Role `json:"role"`
}
