package auth

import "errors"

var (
	// ErrInvalidCredentials is returned by Login for an unknown panel or a
	// wrong secret. The two cases are not distinguished.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrTokenInvalid is returned for tokens that fail signature, expiry or
	// claim checks, or name a panel that is no longer registered.
	ErrTokenInvalid = errors.New("auth: invalid token")

	// ErrSecretTooShort is returned by NewIssuer.
	ErrSecretTooShort = errors.New("auth: signing secret too short")

	// ErrInvalidHash is returned for secret hashes that are not argon2id PHC strings.
	ErrInvalidHash = errors.New("auth: invalid secret hash")
)
