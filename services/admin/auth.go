package admin

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"nestly/models"
	"nestly/utils"

	"golang.org/x/crypto/bcrypt"
)

func (s *DefaultAdminService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Login checks the console credentials and issues a signed admin token.
func (s *DefaultAdminService) Login(ctx context.Context, email, password string) (*AdminSession, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if s.Email == "" || s.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(strings.ToLower(s.Email))) == 1
	if err := bcrypt.CompareHashAndPassword([]byte(s.PasswordHash), []byte(password)); err != nil || !emailOK {
		return nil, ErrInvalidCredentials
	}

	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = utils.AdminTokenTTL
	}
	token, err := utils.GenerateToken(email, email, string(models.RoleAdmin), ttl)
	if err != nil {
		return nil, err
	}
	return &AdminSession{Token: token, Email: email, ExpiresAt: s.now().Add(ttl)}, nil
}

// Authenticate validates an admin token and returns the admin's email.
func (s *DefaultAdminService) Authenticate(token string) (string, error) {
	subject, role, err := utils.ExtractClaims(token)
	if err != nil || role != string(models.RoleAdmin) {
		return "", ErrInvalidCredentials
	}
	return subject, nil
}
