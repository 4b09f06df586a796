// Package user defines the account model consumed by the identity
// provider and the storage backends.
package user

// User represents an account held by the identity collaborator.
type User struct {
	// ID is the unique identifier of the user, meaning a UUID.
	ID string

	// Email is the sign-in address; unique among users.
	Email string

	// PasswordHash is the bcrypt hash of the password.
	PasswordHash string

	// OneTimeCode is the pending email-confirmation code, empty when the
	// account is confirmed.
	OneTimeCode string
}
