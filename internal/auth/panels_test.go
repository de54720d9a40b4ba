package auth

import (
	"errors"
	"sync"
	"testing"
)

var (
	hallwayHashOnce sync.Once
	hallwayHash     string
)

func hallwaySecretHash(t *testing.T) string {
	t.Helper()
	hallwayHashOnce.Do(func() {
		var err error
		hallwayHash, err = HashSecret("hallway-secret")
		if err != nil {
			panic(err)
		}
	})
	return hallwayHash
}

func newTestAuthenticator(t *testing.T) *Authenticator {
	t.Helper()
	return NewAuthenticator(newTestIssuer(t), map[string]string{"hallway": hallwaySecretHash(t)})
}

func TestAuthenticator_Login(t *testing.T) {
	a := newTestAuthenticator(t)

	tests := []struct {
		name    string
		panel   string
		secret  string
		wantErr error
	}{
		{"valid", "hallway", "hallway-secret", nil},
		{"wrong secret", "hallway", "nope", ErrInvalidCredentials},
		{"unknown panel", "garage", "hallway-secret", ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, _, err := a.Login(tt.panel, tt.secret)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Login() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Login() error = %v", err)
			}
			claims, err := a.Verify(token)
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if claims.Panel() != tt.panel {
				t.Errorf("Panel() = %q, want %q", claims.Panel(), tt.panel)
			}
		})
	}
}

func TestAuthenticator_LoginInvalidHash(t *testing.T) {
	a := NewAuthenticator(newTestIssuer(t), map[string]string{"hallway": "plaintext"})

	if _, _, err := a.Login("hallway", "plaintext"); !errors.Is(err, ErrInvalidHash) {
		t.Errorf("Login() error = %v, want ErrInvalidHash", err)
	}
}

func TestAuthenticator_VerifyUnregisteredPanel(t *testing.T) {
	iss := newTestIssuer(t)
	a := NewAuthenticator(iss, map[string]string{"hallway": hallwaySecretHash(t)})

	token, _, err := iss.Issue("removed-panel")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if _, err := a.Verify(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Verify() error = %v, want ErrTokenInvalid", err)
	}
}

func TestAuthenticator_CopiesPanels(t *testing.T) {
	panels := map[string]string{"hallway": hallwaySecretHash(t)}
	a := NewAuthenticator(newTestIssuer(t), panels)
	delete(panels, "hallway")

	if a.Panels() != 1 {
		t.Errorf("Panels() = %d, want 1", a.Panels())
	}
}
