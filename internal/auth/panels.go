package auth

import (
	"fmt"
	"sync"
	"time"
)

// Authenticator checks panel secrets and the tokens issued for them.
// Safe for concurrent use.
type Authenticator struct {
	issuer *Issuer

	// panels maps panel ID to argon2id secret hash.
	panels map[string]string

	dummyOnce sync.Once
	dummy     string
}

// NewAuthenticator creates an Authenticator for the given panel hashes.
func NewAuthenticator(issuer *Issuer, panels map[string]string) *Authenticator {
	copied := make(map[string]string, len(panels))
	for id, hash := range panels {
		copied[id] = hash
	}
	return &Authenticator{issuer: issuer, panels: copied}
}

// Panels returns the number of registered panels.
func (a *Authenticator) Panels() int { return len(a.panels) }

// Login verifies secret for panelID and issues an access token.
func (a *Authenticator) Login(panelID, secret string) (string, time.Time, error) {
	hash, known := a.panels[panelID]
	if !known {
		// Spend the same argon2 time so unknown IDs cannot be told apart.
		VerifySecret(secret, a.dummyHash()) //nolint:errcheck // result ignored
		return "", time.Time{}, ErrInvalidCredentials
	}

	ok, err := VerifySecret(secret, hash)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("panel %s: %w", panelID, err)
	}
	if !ok {
		return "", time.Time{}, ErrInvalidCredentials
	}

	return a.issuer.Issue(panelID)
}

// Verify parses token and checks the panel is still registered.
func (a *Authenticator) Verify(token string) (*Claims, error) {
	claims, err := a.issuer.Parse(token)
	if err != nil {
		return nil, err
	}
	if _, known := a.panels[claims.Panel()]; !known {
		return nil, fmt.Errorf("%w: panel %q is not registered", ErrTokenInvalid, claims.Panel())
	}
	return claims, nil
}

// TTL returns the access token lifetime.
func (a *Authenticator) TTL() time.Duration { return a.issuer.TTL() }

func (a *Authenticator) dummyHash() string {
	a.dummyOnce.Do(func() {
		a.dummy, _ = HashSecret("unknown-panel") //nolint:errcheck // crypto/rand failure leaves an invalid hash
	})
	return a.dummy
}
