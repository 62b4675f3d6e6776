package models

import "time"

// Auth providers recorded on a user.
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// User represents a user account in the system.
type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email,omitempty"`
	FirstName       string    `json:"firstName,omitempty"`
	LastName        string    `json:"lastName,omitempty"`
	ProfileImageURL string    `json:"profileImageUrl,omitempty"`
	PasswordHash    string    `json:"-"` // Never expose this to the client
	AuthProvider    string    `json:"authProvider"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
