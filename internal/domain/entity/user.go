// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import "time"

// User is the account entity handed across the service boundary.
// It never carries password material; see Credential.
type User struct {
	ID        int64     // Store-assigned identifier, immutable and never reused.
	Name      string    // Display name.
	Email     string    // Login identifier, unique across all users.
	CreatedAt time.Time // Timestamp of when this user account was created.
	UpdatedAt time.Time // Timestamp of the last modification to this user's data.
}

// Credential pairs a user with its stored password hash.
// It is only used inside the account service to verify a login.
type Credential struct {
	User         *User
	PasswordHash string
}

// UserPatch lists the columns an update may change. A nil field is left untouched.
type UserPatch struct {
	Name         *string
	Email        *string
	PasswordHash *string
}

// IsEmpty reports whether the patch changes nothing.
func (p *UserPatch) IsEmpty() bool {
	return p == nil || (p.Name == nil && p.Email == nil && p.PasswordHash == nil)
}
