package domain

// TokenVerifier validates a bearer token and returns the authenticated user
// id and whether the token carries the root role.
type TokenVerifier interface {
	Verify(token string) (userID string, isRoot bool, err error)
}

// PasswordHasher hashes and verifies event viewer passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}
