package admin

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidCredentials = errors.New("invalid admin credentials")

// AdminService authenticates the admin console.
type AdminService interface {
	Login(ctx context.Context, email, password string) (*AdminSession, error)
	Authenticate(token string) (string, error)
}

// AdminSession is returned on a successful console login.
type AdminSession struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// DefaultAdminService checks a single configured admin account.
type DefaultAdminService struct {
	Email        string
	PasswordHash string
	TokenTTL     time.Duration
	Now          func() time.Time
}
