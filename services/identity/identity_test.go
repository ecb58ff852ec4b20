package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"nestly/models"

	"firebase.google.com/go/v4/auth"
)

type fakeAdmin struct {
	users   map[string]*auth.UserRecord
	claims  map[string]map[string]interface{}
	created int
	revoked []string
	tokens  map[string]*auth.Token
}

func newFakeAdmin() *fakeAdmin {
	return &fakeAdmin{
		users:  map[string]*auth.UserRecord{},
		claims: map[string]map[string]interface{}{},
		tokens: map[string]*auth.Token{},
	}
}

func (f *fakeAdmin) CreateUser(_ context.Context, _ *auth.UserToCreate) (*auth.UserRecord, error) {
	f.created++
	uid := "uid-new"
	rec := &auth.UserRecord{UserInfo: &auth.UserInfo{UID: uid, Email: "new@example.com", DisplayName: "New User"}}
	f.users[uid] = rec
	return rec, nil
}

func (f *fakeAdmin) GetUser(_ context.Context, uid string) (*auth.UserRecord, error) {
	rec, ok := f.users[uid]
	if !ok {
		return nil, errors.New("backend error")
	}
	rec.CustomClaims = f.claims[uid]
	return rec, nil
}

func (f *fakeAdmin) SetCustomUserClaims(_ context.Context, uid string, claims map[string]interface{}) error {
	f.claims[uid] = claims
	return nil
}

func (f *fakeAdmin) RevokeRefreshTokens(_ context.Context, uid string) error {
	f.revoked = append(f.revoked, uid)
	return nil
}

func (f *fakeAdmin) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	tok, ok := f.tokens[idToken]
	if !ok {
		return nil, errors.New("invalid token")
	}
	return tok, nil
}

type fakeREST struct {
	passwords     map[string]string
	verifications []string
	verifyErr     error
}

func (f *fakeREST) SignInWithPassword(_ context.Context, email, password string) (*Session, error) {
	if f.passwords[email] != password {
		return nil, ErrInvalidCredentials
	}
	uid := "uid-new"
	if email == "amina@example.com" {
		uid = "uid-amina"
	}
	return &Session{IDToken: "id-" + uid, RefreshToken: "refresh", ExpiresIn: 3600, UID: uid, Email: email}, nil
}

func (f *fakeREST) SignInWithIdp(context.Context, string, string) (*Session, error) {
	return nil, ErrGoogleUnavailable
}

func (f *fakeREST) SendEmailVerification(_ context.Context, idToken string) error {
	f.verifications = append(f.verifications, idToken)
	return f.verifyErr
}

func newIdentity() (*DefaultIdentityService, *fakeAdmin, *fakeREST) {
	admin := newFakeAdmin()
	admin.users["uid-amina"] = &auth.UserRecord{
		UserInfo:      &auth.UserInfo{UID: "uid-amina", Email: "amina@example.com", DisplayName: "Amina"},
		EmailVerified: true,
	}
	admin.claims["uid-amina"] = map[string]interface{}{roleClaim: "provider"}
	rest := &fakeREST{passwords: map[string]string{
		"amina@example.com": "s3cretpass",
		"new@example.com":   "passw0rd!",
	}}
	return &DefaultIdentityService{Admin: admin, REST: rest}, admin, rest
}

func TestSignUp(t *testing.T) {
	svc, admin, rest := newIdentity()
	rest.verifyErr = errors.New("quota exceeded")

	session, err := svc.SignUp(context.Background(), SignUpInput{
		Email:       " New@Example.com ",
		Password:    "passw0rd!",
		DisplayName: "New User",
		Role:        "provider",
	})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if session.Role != models.RoleProvider || session.UID != "uid-new" {
		t.Errorf("session = %+v", session)
	}
	if admin.claims["uid-new"][roleClaim] != "provider" {
		t.Errorf("claims = %v", admin.claims["uid-new"])
	}
	if len(rest.verifications) != 1 {
		t.Errorf("verification emails = %d, want 1", len(rest.verifications))
	}
}

func TestSignUpRejects(t *testing.T) {
	tests := []struct {
		name  string
		input SignUpInput
	}{
		{"short password", SignUpInput{Email: "a@b.co", Password: "ab1", DisplayName: "A"}},
		{"no digit", SignUpInput{Email: "a@b.co", Password: "abcdefghij", DisplayName: "A"}},
		{"no letter", SignUpInput{Email: "a@b.co", Password: "1234567890", DisplayName: "A"}},
		{"admin role", SignUpInput{Email: "a@b.co", Password: "passw0rd!", DisplayName: "A", Role: "admin"}},
		{"local phone", SignUpInput{Email: "a@b.co", Password: "passw0rd!", DisplayName: "A", Phone: "0712"}},
		{"no name", SignUpInput{Email: "a@b.co", Password: "passw0rd!", DisplayName: " "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, admin, _ := newIdentity()
			if _, err := svc.SignUp(context.Background(), tt.input); !errors.Is(err, ErrInvalidRequest) {
				t.Fatalf("got %v, want ErrInvalidRequest", err)
			}
			if admin.created != 0 {
				t.Error("account created for an invalid request")
			}
		})
	}
}

func TestSignInLoadsRoleAndVerification(t *testing.T) {
	svc, _, _ := newIdentity()

	session, err := svc.SignIn(context.Background(), "AMINA@example.com", "s3cretpass")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if session.Role != models.RoleProvider || !session.EmailVerified || session.DisplayName != "Amina" {
		t.Errorf("session = %+v", session)
	}
	if _, err := svc.SignIn(context.Background(), "amina@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v", err)
	}
	if _, err := svc.SignIn(context.Background(), "", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("empty credentials: got %v", err)
	}
}

func TestSignOutRevokes(t *testing.T) {
	svc, admin, _ := newIdentity()
	if err := svc.SignOut(context.Background(), "uid-amina"); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if len(admin.revoked) != 1 || admin.revoked[0] != "uid-amina" {
		t.Errorf("revoked = %v", admin.revoked)
	}
}

func TestSendVerificationEmailRequiresToken(t *testing.T) {
	svc, _, _ := newIdentity()
	if err := svc.SendVerificationEmail(context.Background(), ""); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("got %v, want ErrUnauthenticated", err)
	}
}

func TestGoogleAuthURLUnconfigured(t *testing.T) {
	svc, _, _ := newIdentity()
	if _, err := svc.GoogleAuthURL("state"); !errors.Is(err, ErrGoogleUnavailable) {
		t.Fatalf("got %v, want ErrGoogleUnavailable", err)
	}
}

func TestVerifierMapsClaims(t *testing.T) {
	admin := newFakeAdmin()
	admin.tokens["good"] = &auth.Token{
		UID:     "uid-1",
		Expires: time.Now().Add(time.Hour).Unix(),
		Claims: map[string]interface{}{
			"role":           "provider",
			"name":           "Kamau",
			"email":          "kamau@example.com",
			"phone_number":   "+254711000111",
			"email_verified": true,
		},
	}
	admin.tokens["plain"] = &auth.Token{UID: "uid-2", Claims: map[string]interface{}{}}
	v := &TokenVerifier{Auth: admin}
	ctx := context.Background()

	actor, err := v.Verify(ctx, "good")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	want := models.Actor{
		ID:            "uid-1",
		Role:          models.RoleProvider,
		DisplayName:   "Kamau",
		Email:         "kamau@example.com",
		Phone:         "+254711000111",
		EmailVerified: true,
	}
	if actor != want {
		t.Errorf("actor = %+v, want %+v", actor, want)
	}

	plain, err := v.Verify(ctx, "plain")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if plain.Role != models.RoleCustomer {
		t.Errorf("default role = %s, want customer", plain.Role)
	}

	if _, err := v.Verify(ctx, "forged"); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("forged token: got %v", err)
	}
	if _, err := v.Verify(ctx, ""); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("empty token: got %v", err)
	}
}
