package model

// GenerateRequest represents a password generation request.
// Pointer bools allow distinguishing between missing (nil -> default true) and explicit false.
// Count above one asks for a batch.
type GenerateRequest struct {
	Length    int   `json:"length"`
	Count     int   `json:"count"`
	Uppercase *bool `json:"uppercase"`
	Lowercase *bool `json:"lowercase"`
	Numbers   *bool `json:"numbers"`
	Symbols   *bool `json:"symbols"`
}

// GenerateResponse represents a password generation response.
type GenerateResponse struct {
	Passwords []string `json:"passwords"`
	Length    int      `json:"length"`
	Strength  []int    `json:"strength"`
}
