package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"

	"github.com/dongphonui/sigma-vie-shop/internal/shared"
)

// Credentials holds the configured admin account. The console is single
// operator, so there is no user table.
type Credentials struct {
	Username     string
	PasswordHash string
}

// Service wraps authentication business rules.
type Service struct {
	creds Credentials
}

// NewService constructs a new Service.
func NewService(creds Credentials) *Service {
	return &Service{creds: creds}
}

// Authenticate validates username/password against the configured admin.
func (s *Service) Authenticate(username, password string) error {
	if subtle.ConstantTimeCompare([]byte(username), []byte(s.creds.Username)) != 1 {
		// Burn a comparison anyway so the two rejection paths cost the same.
		_ = bcrypt.CompareHashAndPassword([]byte(s.creds.PasswordHash), []byte(password))
		return shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.creds.PasswordHash), []byte(password)); err != nil {
		return shared.ErrInvalidCredentials
	}
	return nil
}

// HashPassword produces a bcrypt hash for provisioning the admin account.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
