package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/isdelr/bill-tracker-be/internal/models"
)

// CookieName is the cookie that carries the session token.
const CookieName = "token"

// ErrInvalidToken is returned for tokens that fail to parse or whose session
// is gone.
var ErrInvalidToken = errors.New("invalid auth token")

// SessionStore persists the server side of a login.
type SessionStore interface {
	CreateSession(ctx context.Context, userID string, data map[string]string, ttl time.Duration) (models.Session, error)
	GetSession(ctx context.Context, sid string) (models.Session, error)
	DeleteSession(ctx context.Context, sid string) error
}

// Claims defines the JWT claims structure. Subject is the user id and ID is
// the session id.
type Claims struct {
	Email    string `json:"email,omitempty"`
	Provider string `json:"provider"`
	jwt.RegisteredClaims
}

type contextKey string

// UserClaimsKey is the context key for user claims.
const UserClaimsKey = contextKey("userClaims")

// Manager issues and checks session tokens. A token is only honored while
// its session row exists, so logging out revokes it.
type Manager struct {
	secret   []byte
	ttl      time.Duration
	secure   bool
	sessions SessionStore
	now      func() time.Time
}

// NewManager creates a new Manager. secure marks the cookie Secure.
func NewManager(secret string, ttl time.Duration, secure bool, sessions SessionStore) *Manager {
	return &Manager{
		secret:   []byte(secret),
		ttl:      ttl,
		secure:   secure,
		sessions: sessions,
		now:      time.Now,
	}
}

// Login opens a session for user, sets the token cookie and returns the token.
func (m *Manager) Login(ctx context.Context, w http.ResponseWriter, user models.User) (string, error) {
	session, err := m.sessions.CreateSession(ctx, user.ID, map[string]string{
		"email":    user.Email,
		"provider": user.AuthProvider,
	}, m.ttl)
	if err != nil {
		return "", err
	}

	now := m.now()
	claims := &Claims{
		Email:    user.Email,
		Provider: user.AuthProvider,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        session.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.Expire),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  session.Expire,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

// Validate parses a token and checks that its session is still live.
func (m *Manager) Validate(ctx context.Context, tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	session, err := m.sessions.GetSession(ctx, claims.ID)
	if err != nil || session.UserID != claims.Subject {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Logout ends the request's session, if any, and clears the cookie.
func (m *Manager) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if tokenStr := tokenFromRequest(r); tokenStr != "" {
		claims := &Claims{}
		_, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
			return m.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
		if err == nil && claims.ID != "" {
			if err := m.sessions.DeleteSession(ctx, claims.ID); err != nil {
				log.Warn().Err(err).Str("sid", claims.ID).Msg("Failed to delete session")
			}
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Middleware rejects requests without a valid session token with 401.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := tokenFromRequest(r)
		if tokenStr == "" {
			unauthorized(w)
			return
		}

		claims, err := m.Validate(r.Context(), tokenStr)
		if err != nil {
			unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), UserClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClaimsFromContext returns the claims stored by Middleware.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(UserClaimsKey).(*Claims)
	return claims, ok
}

// UserID returns the authenticated user's id, or "" outside Middleware.
func UserID(ctx context.Context) string {
	if claims, ok := ClaimsFromContext(ctx); ok {
		return claims.Subject
	}
	return ""
}

// tokenFromRequest reads the bearer header first, then the cookie.
func tokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": "Unauthorized"})
}
