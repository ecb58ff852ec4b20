package handlers

import (
	"net/http"

	"nestly/services/identity"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const oauthStateCookie = "oauth_state"

// AuthHandler serves sign-up, sign-in and account endpoints.
type AuthHandler struct {
	Identity identity.IdentityService
}

func NewAuthHandler(svc identity.IdentityService) *AuthHandler {
	return &AuthHandler{Identity: svc}
}

// SignUp handles POST /api/auth/signup.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var input identity.SignUpInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}
	session, err := h.Identity.SignUp(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	getLogger(c).Info("Account registered", zap.String("uid", session.UID))
	c.JSON(http.StatusCreated, session)
}

// SignIn handles POST /api/auth/signin.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}
	session, err := h.Identity.SignIn(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// SignInWithGoogle handles POST /api/auth/google with an idToken or code.
func (h *AuthHandler) SignInWithGoogle(c *gin.Context) {
	var input identity.GoogleSignIn
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}
	session, err := h.Identity.SignInWithGoogle(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// GoogleAuthURL handles GET /api/auth/google/url.
func (h *AuthHandler) GoogleAuthURL(c *gin.Context) {
	state := uuid.NewString()
	url, err := h.Identity.GoogleAuthURL(state)
	if err != nil {
		respondError(c, err)
		return
	}
	c.SetCookie(oauthStateCookie, state, 600, "/api/auth/google", "", c.Request.TLS != nil, true)
	c.JSON(http.StatusOK, gin.H{"url": url, "state": state})
}

// GoogleCallback handles GET /api/auth/google/callback.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	state, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || state != c.Query("state") {
		badRequest(c, "OAuth state mismatch")
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/api/auth/google", "", c.Request.TLS != nil, true)

	session, err := h.Identity.SignInWithGoogle(c.Request.Context(), identity.GoogleSignIn{Code: c.Query("code")})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// SendVerificationEmail handles POST /api/auth/verification-email.
func (h *AuthHandler) SendVerificationEmail(c *gin.Context) {
	if err := h.Identity.SendVerificationEmail(c.Request.Context(), c.GetString("idToken")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Verification email sent"})
}

// Me handles GET /api/auth/me, re-reading the account from the identity provider.
func (h *AuthHandler) Me(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	ident, err := h.Identity.Reload(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ident)
}

// SignOut handles POST /api/auth/signout.
func (h *AuthHandler) SignOut(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	if err := h.Identity.SignOut(c.Request.Context(), actor.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}
