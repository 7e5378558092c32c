// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

import "errors"

// ErrPasswordTooLong is returned by Hash for passwords over the algorithm's input limit.
var ErrPasswordTooLong = errors.New("password exceeds maximum length")

// PasswordHasher defines the interface for password hashing and verification.
// This abstracts the underlying hashing algorithm (e.g., bcrypt), keeping the domain pure.
type PasswordHasher interface {
	// Hash generates a salted hash from a plaintext password.
	// Two calls with the same input return different hashes.
	// Input beyond the algorithm's limit fails with ErrPasswordTooLong rather than being truncated.
	Hash(password string) (string, error)

	// Check compares a plaintext password with a hash to see if they match.
	// A malformed hash is a mismatch, not an error.
	Check(password, hash string) bool
}
