// Package user defines the user model used throughout the application,
// particularly for authentication and content ownership.
package user

// User represents a registered account.
type User struct {
	// ID is the unique identifier of the user, meaning a UUID.
	ID string `json:"id"`

	// Name is the unique login name, also shown on shared collections.
	Name string `json:"name"`

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string `json:"password_hash"`

	// Email is optional and never used for login.
	Email string `json:"email,omitempty"`
}
