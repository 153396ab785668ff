package ports

import "github.com/opsboard/opsboard/internal/domain"

// TokenService issues and validates session tokens carrying the caller's
// identity and role.
type TokenService interface {
	// GenerateAccessToken issues a signed token for the actor
	GenerateAccessToken(actor domain.Actor) (string, error)

	// ValidateAccessToken verifies a token and returns the actor it carries
	ValidateAccessToken(token string) (domain.Actor, error)
}

// PasswordService hashes and verifies credentials.
type PasswordService interface {
	// Hash produces a storable hash of the plaintext password
	Hash(password string) (string, error)

	// Compare checks a plaintext password against a stored hash
	Compare(hash, password string) error
}
