package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/umesh2702/OUTLAW/apperrors"
	"github.com/umesh2702/OUTLAW/auth"
	middlewares "github.com/umesh2702/OUTLAW/middleware"
	"github.com/umesh2702/OUTLAW/models"
	"github.com/umesh2702/OUTLAW/provider"
	"github.com/umesh2702/OUTLAW/storage"
)

// AuthProvider is the hosted provider surface the auth flow needs. Password
// storage and email verification live entirely on the provider side.
type AuthProvider interface {
	SignUp(ctx context.Context, email, password, redirectTo string) (*provider.User, error)
	SignInWithPassword(ctx context.Context, email, password string) (*provider.Session, error)
	ExchangeCode(ctx context.Context, code string) (*provider.Session, error)
	GetUser(ctx context.Context, accessToken string) (*provider.User, error)
	SignOut(ctx context.Context, accessToken, scope string) error
}

// ProfileStore reads and writes profile rows in the provider's database.
type ProfileStore interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
	FindByOutlawID(ctx context.Context, handle string) (*models.Profile, error)
	HandleTaken(ctx context.Context, handle string) (bool, error)
	Create(ctx context.Context, profile *models.Profile) error
}

// SessionEvents broadcasts session changes to other contexts.
type SessionEvents interface {
	Publish(ctx context.Context, ev auth.SessionEvent) error
}

// RegistrationNotifier announces new accounts downstream (best-effort).
type RegistrationNotifier interface {
	PublishUserRegistered(ctx context.Context, profile *models.Profile)
}

type AuthController struct {
	Provider    AuthProvider
	Profiles    ProfileStore
	Sessions    *auth.SessionStore
	Events      SessionEvents
	Notifier    RegistrationNotifier
	KV          storage.KV
	RedirectURL string
	Log         *zap.Logger
}

type signupRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Name      string `json:"name" binding:"required"`
	Mobile    string `json:"mobile"`
	OutlawID  string `json:"outlaw_id" binding:"required"`
	VaultCode string `json:"vault_code" binding:"required,min=4"`
}

type loginRequest struct {
	OutlawID  string `json:"outlaw_id" binding:"required"`
	VaultCode string `json:"vault_code" binding:"required"`
}

// Signup creates the auth user at the provider (vault code as password, email
// verification redirecting to the callback route) and inserts the profile row.
func (ac *AuthController) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signup details"})
		return
	}

	handle := auth.NormalizeOutlawID(req.OutlawID)
	if !auth.ValidateOutlawID(handle) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Outlaw ID must be 3-20 characters of a-z, 0-9 or _"})
		return
	}

	ctx := c.Request.Context()

	taken, err := ac.Profiles.HandleTaken(ctx, handle)
	if err != nil {
		ac.Log.Error("handle uniqueness check failed", zap.String("outlaw_id", handle), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error occurred"})
		return
	}
	if taken {
		c.JSON(apperrors.ErrHandleTaken.Code, gin.H{"error": apperrors.ErrHandleTaken.Message})
		return
	}

	user, err := ac.Provider.SignUp(ctx, req.Email, req.VaultCode, ac.RedirectURL)
	if err != nil {
		var apiErr *provider.APIError
		if errors.As(err, &apiErr) && apiErr.Status < 500 {
			c.JSON(apiErr.Status, gin.H{"error": apiErr.Message})
			return
		}
		ac.Log.Error("provider signup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error occurred"})
		return
	}

	profile := &models.Profile{
		ID:       user.ID,
		Email:    req.Email,
		Name:     req.Name,
		OutlawID: handle,
	}
	if req.Mobile != "" {
		profile.Mobile = &req.Mobile
	}

	if err := ac.Profiles.Create(ctx, profile); err != nil {
		ac.Log.Error("failed to create profile", zap.String("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create profile"})
		return
	}

	if ac.Notifier != nil {
		ac.Notifier.PublishUserRegistered(ctx, profile)
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created. Check your email to verify.",
		"profile": profile,
	})
}

// Login signs in by handle. Every failure mode answers with the same generic
// message so callers cannot tell a wrong handle from a wrong vault code.
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid login details"})
		return
	}

	ctx := c.Request.Context()
	handle := auth.NormalizeOutlawID(req.OutlawID)

	profile, err := ac.Profiles.FindByOutlawID(ctx, handle)
	if err != nil {
		c.JSON(apperrors.ErrInvalidCredentials.Code, gin.H{"error": apperrors.ErrInvalidCredentials.Message})
		return
	}

	session, err := ac.Provider.SignInWithPassword(ctx, profile.Email, req.VaultCode)
	if err != nil {
		c.JSON(apperrors.ErrInvalidCredentials.Code, gin.H{"error": apperrors.ErrInvalidCredentials.Message})
		return
	}

	if err := ac.establishSession(c, session, profile.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error occurred"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// Callback consumes the one-time code from the provider's email redirect and
// exchanges it for a session.
func (ac *AuthController) Callback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing code"})
		return
	}

	session, err := ac.Provider.ExchangeCode(c.Request.Context(), code)
	if err != nil {
		ac.Log.Warn("code exchange failed", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Sign-in link is invalid or expired"})
		return
	}

	userID := ""
	if session.User != nil {
		userID = session.User.ID
	}
	if err := ac.establishSession(c, session, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error occurred"})
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// Logout invalidates the session globally at the provider and clears local
// state. Local clearing happens even when the remote call fails.
func (ac *AuthController) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	sid := middlewares.SessionID(c)

	shadow := ac.shadow(sid)
	if err := shadow.SignOut(ctx); err != nil {
		ac.Log.Warn("remote sign-out failed, local state cleared anyway", zap.Error(err))
	}

	if err := ac.Sessions.Delete(ctx, sid); err != nil {
		ac.Log.Warn("failed to delete session record", zap.Error(err))
	}
	c.SetCookie(middlewares.TokenCookie, "", -1, "/", "", false, true)

	if ac.Events != nil {
		_ = ac.Events.Publish(ctx, auth.SessionEvent{SessionID: sid, Event: auth.EventSignedOut})
	}

	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

// Session reports the current auth state through the shadow: seeded from the
// cache, then reconciled against the provider. A transient provider failure
// leaves the cached state in place rather than showing the user signed out.
func (ac *AuthController) Session(c *gin.Context) {
	sid := middlewares.SessionID(c)

	shadow := ac.shadow(sid)
	shadow.Reconcile(c.Request.Context())

	loggedIn, profile, _ := shadow.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"logged_in": loggedIn,
		"profile":   profile,
	})
}

func (ac *AuthController) shadow(sid string) *auth.SessionShadow {
	source := auth.NewProviderSource(ac.Provider, ac.Sessions, sid)
	return auth.NewSessionShadow(ac.KV, sid, source, ac.Profiles, ac.Log)
}

func (ac *AuthController) establishSession(c *gin.Context, session *provider.Session, userID string) error {
	ctx := c.Request.Context()
	sid := middlewares.SessionID(c)

	rec := auth.SessionRecord{
		UserID:       userID,
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		IssuedAt:     time.Now(),
	}
	if err := ac.Sessions.Save(ctx, sid, rec); err != nil {
		ac.Log.Error("failed to save session record", zap.Error(err))
		return err
	}

	maxAge := session.ExpiresIn
	if maxAge <= 0 {
		maxAge = 3600
	}
	c.SetCookie(middlewares.TokenCookie, session.AccessToken, maxAge, "/", "", false, true)

	if ac.Events != nil {
		_ = ac.Events.Publish(ctx, auth.SessionEvent{SessionID: sid, Event: auth.EventSignedIn})
	}
	return nil
}
