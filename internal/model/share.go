package model

import "time"

// SharedEntry is an expiring snapshot of a vault entry encrypted under a key
// derived from a bearer secret that is never stored. OriginalEntryID is a
// non-owning back-reference and is nil once the original entry is deleted.
type SharedEntry struct {
	ID                int64
	UUID              string
	EncryptedTitle    string
	EncryptedUsername string
	EncryptedEmail    string
	EncryptedPassword string
	EncryptedURL      string
	ExpiryDate        time.Time
	OriginalEntryID   *int64
	ShareSecretID     string
	KDFIterations     int
	CreatedAt         time.Time
}

// ShareRequest asks for a share link valid for ValidityHours.
type ShareRequest struct {
	ValidityHours int `json:"validity_hours"`
}

// ShareResponse is returned once to the owner. Link embeds the bearer secret.
type ShareResponse struct {
	UUID       string    `json:"uuid"`
	Link       string    `json:"link"`
	ExpiryDate time.Time `json:"expiry_date"`
}

// ShareSummary describes an existing share without any secret material.
type ShareSummary struct {
	UUID       string    `json:"uuid"`
	ExpiryDate time.Time `json:"expiry_date"`
	Expired    bool      `json:"expired"`
	CreatedAt  time.Time `json:"created_at"`
}

// SharedEntryResponse is the decrypted view served to a link holder.
type SharedEntryResponse struct {
	Title      string    `json:"title"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Password   string    `json:"password"`
	URL        string    `json:"url"`
	ExpiryDate time.Time `json:"expiry_date"`
}
