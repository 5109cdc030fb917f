package users

import "time"

// User represents a user account.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Ref is the minimal user shape exposed to pickers and joins.
type Ref struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
