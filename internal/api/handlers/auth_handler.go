package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/hlog"

	"github.com/isdelr/bill-tracker-be/internal/auth"
	"github.com/isdelr/bill-tracker-be/internal/models"
	"github.com/isdelr/bill-tracker-be/internal/schema"
	"github.com/isdelr/bill-tracker-be/internal/services"
)

const stateCookie = "oauth_state"

// AuthHandler handles sign-up, sign-in and sign-out.
type AuthHandler struct {
	users  services.UserServiceProvider
	auth   *auth.Manager
	google *auth.GoogleOAuth
}

// NewAuthHandler creates a new AuthHandler. google may be nil, which turns
// the external sign-in routes off.
func NewAuthHandler(users services.UserServiceProvider, manager *auth.Manager, google *auth.GoogleOAuth) *AuthHandler {
	return &AuthHandler{users: users, auth: manager, google: google}
}

// User returns the signed-in user.
func (h *AuthHandler) User(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUser(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err, "User not found", "Failed to fetch user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Register handles new local account registration.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var reg schema.Registration
	if !decodeJSON(w, r, &reg) {
		return
	}

	user, err := h.users.CreateLocalUser(r.Context(), reg)
	if errors.Is(err, services.ErrEmailTaken) {
		writeMessage(w, http.StatusBadRequest, "User with this email already exists")
		return
	}
	if err != nil {
		writeError(w, r, err, "", "Registration failed")
		return
	}

	hlog.FromRequest(r).Info().Str("user_id", user.ID).Msg("User registered")
	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "User created successfully",
		"userId":  user.ID,
	})
}

// LocalLogin checks email and password and opens a session.
func (h *AuthHandler) LocalLogin(w http.ResponseWriter, r *http.Request) {
	var payload schema.Login
	if !decodeJSON(w, r, &payload) {
		return
	}

	user, err := h.users.AuthenticateUser(r.Context(), payload.Email, payload.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		hlog.FromRequest(r).Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		writeError(w, r, err, "", "Authentication error")
		return
	}

	token, err := h.auth.Login(r.Context(), w, user)
	if err != nil {
		writeError(w, r, err, "", "Login failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    user,
		"token":   token,
	})
}

// Logout ends the session and sends the browser home.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.Logout(r.Context(), w, r)
	http.Redirect(w, r, "/", http.StatusFound)
}

// GoogleLogin redirects to Google's consent page.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		writeMessage(w, http.StatusNotFound, "External sign-in is not configured")
		return
	}

	state, err := h.google.NewState()
	if err != nil {
		writeError(w, r, err, "", "Login failed")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/api",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.google.AuthURL(state), http.StatusFound)
}

// GoogleCallback finishes the Google flow: it mirrors the identity into the
// users table and opens a session.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		writeMessage(w, http.StatusNotFound, "External sign-in is not configured")
		return
	}

	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value != state || !h.google.VerifyState(state) {
		writeMessage(w, http.StatusBadRequest, "Invalid OAuth state")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/api", MaxAge: -1})

	gu, err := h.google.ExchangeAndVerify(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("Google sign-in failed")
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.users.UpsertUser(r.Context(), models.User{
		ID:              gu.Sub,
		Email:           gu.Email,
		FirstName:       gu.FirstName,
		LastName:        gu.LastName,
		ProfileImageURL: gu.Picture,
		AuthProvider:    models.ProviderGoogle,
	})
	if err != nil {
		writeError(w, r, err, "", "Login failed")
		return
	}
	if _, err := h.auth.Login(r.Context(), w, user); err != nil {
		writeError(w, r, err, "", "Login failed")
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}
