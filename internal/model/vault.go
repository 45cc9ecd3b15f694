package model

import "time"

// VaultEntry is a stored credential. The five text fields hold ciphertext
// produced under the owner's session key; Complexity is plaintext metadata.
type VaultEntry struct {
	ID         int64
	UserID     int64
	Title      string
	Username   string
	Email      string
	Password   string
	URL        string
	Complexity int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// VaultEntryRequest carries plaintext fields for create and update.
type VaultEntryRequest struct {
	Title    string `json:"title"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	URL      string `json:"url"`
}

// VaultEntryResponse is a decrypted entry returned to its owner.
type VaultEntryResponse struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Password   string    `json:"password"`
	URL        string    `json:"url"`
	Complexity int       `json:"complexity"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// VaultList is the decrypted vault. Unreadable names entries that no longer
// open under the session key.
type VaultList struct {
	Entries    []VaultEntryResponse `json:"entries"`
	Unreadable []int64              `json:"unreadable,omitempty"`
}

// VaultStats summarises password quality without decrypting anything.
type VaultStats struct {
	Total        int         `json:"total"`
	ByComplexity map[int]int `json:"by_complexity"`
	Weak         int         `json:"weak"`
}
