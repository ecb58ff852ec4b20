package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"nestly/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubVerifier map[string]models.Actor

func (s stubVerifier) Verify(_ context.Context, token string) (models.Actor, error) {
	actor, ok := s[token]
	if !ok {
		return models.Actor{}, errors.New("bad token")
	}
	return actor, nil
}

type stubAdmin struct{}

func (stubAdmin) Authenticate(token string) (string, error) {
	if token != "admin-token" {
		return "", errors.New("bad token")
	}
	return "ops@nestly.test", nil
}

func do(r http.Handler, method, path, token string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func newAuthRouter() *gin.Engine {
	verifier := stubVerifier{
		"cust": {ID: "c1", Role: models.RoleCustomer},
		"prov": {ID: "p1", Role: models.RoleProvider},
	}
	r := gin.New()
	authed := r.Group("/", FirebaseAuthMiddleware(verifier))
	authed.GET("/me", func(c *gin.Context) {
		actor, _ := GetActor(c)
		c.String(http.StatusOK, actor.ID)
	})
	authed.GET("/inbox", RequireRole(models.RoleProvider), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/orphan", RequireRole(models.RoleProvider), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestFirebaseAuthMiddleware(t *testing.T) {
	r := newAuthRouter()

	if w := do(r, http.MethodGet, "/me", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("no token: %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/me", "forged"); w.Code != http.StatusUnauthorized {
		t.Errorf("bad token: %d", w.Code)
	}
	w := do(r, http.MethodGet, "/me", "cust")
	if w.Code != http.StatusOK || w.Body.String() != "c1" {
		t.Errorf("valid token: %d %q", w.Code, w.Body.String())
	}
}

func TestRequireRole(t *testing.T) {
	r := newAuthRouter()

	if w := do(r, http.MethodGet, "/inbox", "cust"); w.Code != http.StatusForbidden {
		t.Errorf("customer: %d, want 403", w.Code)
	}
	if w := do(r, http.MethodGet, "/inbox", "prov"); w.Code != http.StatusOK {
		t.Errorf("provider: %d, want 200", w.Code)
	}
	if w := do(r, http.MethodGet, "/orphan", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("no actor: %d, want 401", w.Code)
	}
}

func TestJWTAuthAdminMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/admin", JWTAuthAdminMiddleware(stubAdmin{}), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(AdminKey))
	})

	if w := do(r, http.MethodGet, "/admin", "cust"); w.Code != http.StatusUnauthorized {
		t.Errorf("non-admin token: %d", w.Code)
	}
	w := do(r, http.MethodGet, "/admin", "admin-token")
	if w.Code != http.StatusOK || w.Body.String() != "ops@nestly.test" {
		t.Errorf("admin token: %d %q", w.Code, w.Body.String())
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(20, zap.NewNop()))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	// 20 per minute allows a burst of 5 per client.
	for i := 0; i < 5; i++ {
		if w := do(r, http.MethodGet, "/ping", "", "X-Forwarded-For", "203.0.113.7"); w.Code != http.StatusOK {
			t.Fatalf("request %d: %d", i, w.Code)
		}
	}
	if w := do(r, http.MethodGet, "/ping", "", "X-Forwarded-For", "203.0.113.7"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("over limit: %d, want 429", w.Code)
	}
	if w := do(r, http.MethodGet, "/ping", "", "X-Forwarded-For", "203.0.113.8, 10.0.0.1"); w.Code != http.StatusOK {
		t.Fatalf("other client: %d", w.Code)
	}
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(zap.NewNop()))
	r.GET("/ping", func(c *gin.Context) {
		if _, ok := c.Get("logger"); !ok {
			t.Error("logger not in context")
		}
		c.Status(http.StatusOK)
	})

	w := do(r, http.MethodGet, "/ping", "", "X-Request-ID", "req-42")
	if got := w.Header().Get("X-Request-ID"); got != "req-42" {
		t.Errorf("X-Request-ID = %q", got)
	}
	w = do(r, http.MethodGet, "/ping", "")
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("no request id generated")
	}
}
