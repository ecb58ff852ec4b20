package identity

import (
	"context"
	"fmt"
	"net/url"

	"nestly/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleProviderID = "google.com"

// NewGoogleOAuthConfig returns the server-side authorization code flow
// configuration, or nil when Google sign-in is not configured.
func NewGoogleOAuthConfig() *oauth2.Config {
	cfg := config.AppConfig
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		return nil
	}
	return &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}
}

func (s *DefaultIdentityService) GoogleAuthURL(state string) (string, error) {
	if s.Google == nil {
		return "", ErrGoogleUnavailable
	}
	return s.Google.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// SignInWithGoogle accepts a Google ID token from a client SDK, or an
// authorization code which is exchanged for one first.
func (s *DefaultIdentityService) SignInWithGoogle(ctx context.Context, in GoogleSignIn) (*Session, error) {
	idToken := in.IDToken
	if idToken == "" {
		if in.Code == "" {
			return nil, newError(ErrInvalidRequest, "idToken or code is required")
		}
		if s.Google == nil {
			return nil, ErrGoogleUnavailable
		}
		token, err := s.Google.Exchange(ctx, in.Code)
		if err != nil {
			return nil, newError(ErrInvalidCredentials, "Google authorization code was rejected")
		}
		idToken, _ = token.Extra("id_token").(string)
		if idToken == "" {
			return nil, fmt.Errorf("google token response carried no id_token")
		}
	}

	requestURI := "http://localhost"
	if s.Google != nil && s.Google.RedirectURL != "" {
		requestURI = s.Google.RedirectURL
	}
	body := url.Values{"id_token": {idToken}, "providerId": {googleProviderID}}.Encode()
	session, err := s.REST.SignInWithIdp(ctx, body, requestURI)
	if err != nil {
		return nil, err
	}
	return s.complete(ctx, session)
}
