package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

// IdentityToolkit performs end-user sign-in flows against the Firebase Auth REST API.
type IdentityToolkit struct {
	svc *identitytoolkit.Service
}

func NewIdentityToolkit(ctx context.Context, apiKey string) (*IdentityToolkit, error) {
	if apiKey == "" {
		return nil, errors.New("identity: FIREBASE_API_KEY is not configured")
	}
	svc, err := identitytoolkit.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("identity: failed to create identity toolkit client: %w", err)
	}
	return &IdentityToolkit{svc: svc}, nil
}

func (t *IdentityToolkit) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	resp, err := t.svc.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, mapToolkitError(err)
	}
	return &Session{
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		UID:          resp.LocalId,
		Email:        resp.Email,
		DisplayName:  resp.DisplayName,
	}, nil
}

// SignInWithIdp exchanges an identity provider credential for a Firebase session,
// creating the account on first use.
func (t *IdentityToolkit) SignInWithIdp(ctx context.Context, postBody, requestURI string) (*Session, error) {
	resp, err := t.svc.Relyingparty.VerifyAssertion(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyAssertionRequest{
		PostBody:          postBody,
		RequestUri:        requestURI,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, mapToolkitError(err)
	}
	return &Session{
		IDToken:       resp.IdToken,
		RefreshToken:  resp.RefreshToken,
		ExpiresIn:     resp.ExpiresIn,
		UID:           resp.LocalId,
		Email:         resp.Email,
		DisplayName:   resp.DisplayName,
		EmailVerified: resp.EmailVerified,
	}, nil
}

func (t *IdentityToolkit) SendEmailVerification(ctx context.Context, idToken string) error {
	_, err := t.svc.Relyingparty.GetOobConfirmationCode(&identitytoolkit.Relyingparty{
		RequestType: "VERIFY_EMAIL",
		IdToken:     idToken,
	}).Context(ctx).Do()
	if err != nil {
		return mapToolkitError(err)
	}
	return nil
}

// mapToolkitError turns credential rejections into ErrInvalidCredentials.
func mapToolkitError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusBadRequest {
		msg := gerr.Message
		switch {
		case strings.Contains(msg, "INVALID_PASSWORD"),
			strings.Contains(msg, "EMAIL_NOT_FOUND"),
			strings.Contains(msg, "INVALID_LOGIN_CREDENTIALS"),
			strings.Contains(msg, "USER_DISABLED"):
			return ErrInvalidCredentials
		case strings.Contains(msg, "INVALID_ID_TOKEN"), strings.Contains(msg, "TOKEN_EXPIRED"):
			return ErrUnauthenticated
		case strings.Contains(msg, "INVALID_IDP_RESPONSE"):
			return newError(ErrInvalidCredentials, "Google sign-in was rejected")
		}
	}
	return fmt.Errorf("identity provider request failed: %w", err)
}
