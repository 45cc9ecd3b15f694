package model

import "time"

// User represents a user in the database. Salt feeds vault key derivation and
// never changes after registration; Verifier only checks the master secret.
// KDFIterations pins the PBKDF2 work factor the vault key is derived with.
type User struct {
	ID            int64
	Username      string
	Verifier      string
	Salt          []byte
	KDFIterations int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CreateUserRequest represents a user registration request.
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse represents an authentication response with a session token and user info.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// UserResponse represents user data safe for API responses (no sensitive fields).
type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}
