package identity

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"nestly/models"
	"nestly/utils"

	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
)

const roleClaim = "role"

func verifyPasswordComplexity(pw string) error {
	if len(pw) < 8 {
		return newError(ErrInvalidRequest, "Password must be at least 8 characters long")
	}
	var hasLetter, hasDigit bool
	for _, r := range pw {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return newError(ErrInvalidRequest, "Password must include at least one letter and one number")
	}
	return nil
}

// SignUp registers an email/password account with a customer or provider
// role, signs it in and sends the verification email.
func (s *DefaultIdentityService) SignUp(ctx context.Context, input SignUpInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	name := strings.TrimSpace(input.DisplayName)
	if email == "" || name == "" {
		return nil, newError(ErrInvalidRequest, "Email and display name are required")
	}
	if err := verifyPasswordComplexity(input.Password); err != nil {
		return nil, err
	}
	role := models.ParseRole(input.Role)
	if role == models.RoleAdmin {
		return nil, newError(ErrInvalidRequest, "Role must be customer or provider")
	}

	params := (&auth.UserToCreate{}).
		Email(email).
		Password(input.Password).
		DisplayName(name).
		EmailVerified(false)
	if input.Phone != "" {
		phone := utils.NormalizePhoneNumber(input.Phone)
		if !utils.IsE164(phone) {
			return nil, newError(ErrInvalidRequest, "Phone number must be in international format, e.g. +254712345678")
		}
		params = params.PhoneNumber(phone)
	}

	user, err := s.Admin.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	if err := s.SetRole(ctx, user.UID, role); err != nil {
		return nil, err
	}
	s.logger().Info("Account created", zap.String("uid", user.UID), zap.String("role", string(role)))

	session, err := s.REST.SignInWithPassword(ctx, email, input.Password)
	if err != nil {
		return nil, err
	}
	session.Role = role
	if err := s.REST.SendEmailVerification(ctx, session.IDToken); err != nil {
		s.logger().Warn("Failed to send verification email", zap.String("uid", user.UID), zap.Error(err))
	}
	return session, nil
}

func (s *DefaultIdentityService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	session, err := s.REST.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.complete(ctx, session)
}

// complete fills the session with the account state the REST flows omit.
func (s *DefaultIdentityService) complete(ctx context.Context, session *Session) (*Session, error) {
	ident, err := s.Reload(ctx, session.UID)
	if err != nil {
		return nil, err
	}
	session.EmailVerified = ident.EmailVerified
	session.Role = ident.Role
	if session.DisplayName == "" {
		session.DisplayName = ident.DisplayName
	}
	return session, nil
}

func (s *DefaultIdentityService) SendVerificationEmail(ctx context.Context, idToken string) error {
	if idToken == "" {
		return ErrUnauthenticated
	}
	return s.REST.SendEmailVerification(ctx, idToken)
}

// Reload reads the account from the identity provider, picking up changes
// such as a completed email verification.
func (s *DefaultIdentityService) Reload(ctx context.Context, uid string) (*Identity, error) {
	user, err := s.Admin.GetUser(ctx, uid)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to load account %s: %w", uid, err)
	}
	role, _ := user.CustomClaims[roleClaim].(string)
	return &Identity{
		ID:            user.UID,
		DisplayName:   user.DisplayName,
		Email:         user.Email,
		Phone:         user.PhoneNumber,
		EmailVerified: user.EmailVerified,
		Role:          models.ParseRole(role),
	}, nil
}

// SignOut revokes refresh tokens and forgets every cached verification of
// the account's ID tokens.
func (s *DefaultIdentityService) SignOut(ctx context.Context, uid string) error {
	if err := s.Admin.RevokeRefreshTokens(ctx, uid); err != nil {
		return fmt.Errorf("failed to revoke tokens for %s: %w", uid, err)
	}
	if s.AuthCache != nil {
		if err := forgetTokens(ctx, s.AuthCache, uid); err != nil {
			s.logger().Warn("Failed to clear auth cache", zap.String("uid", uid), zap.Error(err))
		}
	}
	return nil
}

// SetRole stores the marketplace role as a custom claim. It takes effect on
// the next ID token the client obtains.
func (s *DefaultIdentityService) SetRole(ctx context.Context, uid string, role models.Role) error {
	if err := s.Admin.SetCustomUserClaims(ctx, uid, map[string]interface{}{roleClaim: string(role)}); err != nil {
		return fmt.Errorf("failed to set role for %s: %w", uid, err)
	}
	if s.AuthCache != nil {
		if err := forgetTokens(ctx, s.AuthCache, uid); err != nil {
			s.logger().Warn("Failed to clear auth cache", zap.String("uid", uid), zap.Error(err))
		}
	}
	return nil
}
