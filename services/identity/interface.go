package identity

import (
	"context"
	"time"

	"nestly/models"

	"firebase.google.com/go/v4/auth"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Session is returned by every sign-in flow.
type Session struct {
	IDToken       string      `json:"idToken"`
	RefreshToken  string      `json:"refreshToken"`
	ExpiresIn     int64       `json:"expiresIn"`
	UID           string      `json:"uid"`
	Email         string      `json:"email"`
	DisplayName   string      `json:"displayName,omitempty"`
	EmailVerified bool        `json:"emailVerified"`
	Role          models.Role `json:"role"`
}

// Identity is the current snapshot of an account.
type Identity struct {
	ID            string      `json:"id"`
	DisplayName   string      `json:"displayName,omitempty"`
	Email         string      `json:"email"`
	Phone         string      `json:"phone,omitempty"`
	EmailVerified bool        `json:"emailVerified"`
	Role          models.Role `json:"role"`
}

// SignUpInput is the payload of an email/password registration.
type SignUpInput struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"displayName" binding:"required"`
	Phone       string `json:"phone"`
	Role        string `json:"role"`
}

// GoogleSignIn carries either a client-obtained Google ID token or an
// authorization code from the server-side redirect flow.
type GoogleSignIn struct {
	IDToken string `json:"idToken"`
	Code    string `json:"code"`
}

type IdentityService interface {
	SignUp(ctx context.Context, input SignUpInput) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignInWithGoogle(ctx context.Context, in GoogleSignIn) (*Session, error)
	GoogleAuthURL(state string) (string, error)
	SendVerificationEmail(ctx context.Context, idToken string) error
	Reload(ctx context.Context, uid string) (*Identity, error)
	SignOut(ctx context.Context, uid string) error
}

// UserAdmin is the subset of the Firebase Auth admin client used here.
type UserAdmin interface {
	CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error)
	GetUser(ctx context.Context, uid string) (*auth.UserRecord, error)
	SetCustomUserClaims(ctx context.Context, uid string, customClaims map[string]interface{}) error
	RevokeRefreshTokens(ctx context.Context, uid string) error
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// PasswordProvider performs the end-user REST flows of the identity provider.
type PasswordProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignInWithIdp(ctx context.Context, postBody, requestURI string) (*Session, error)
	SendEmailVerification(ctx context.Context, idToken string) error
}

// DefaultIdentityService is the production implementation.
type DefaultIdentityService struct {
	Admin     UserAdmin
	REST      PasswordProvider
	Google    *oauth2.Config
	AuthCache *redis.Client
	Logger    *zap.Logger
	Now       func() time.Time
}

func (s *DefaultIdentityService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}
