package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"
	"github.com/tendant/simple-showcase/pkg/showcase"
)

// DefaultTokenTTL is how long an admin session token stays valid.
const DefaultTokenTTL = 24 * time.Hour

// LoginRequest is the request body for admin login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the signed session token and account details
type LoginResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// ProfileResponse is the response body for the authenticated profile
type ProfileResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// AuthHandler handles admin authentication and issues session tokens
type AuthHandler struct {
	service   showcase.Service
	tokenAuth *jwtauth.JWTAuth
	tokenTTL  time.Duration
}

// NewAuthHandler creates an auth handler signing tokens with the given secret
func NewAuthHandler(service showcase.Service, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		service:   service,
		tokenAuth: jwtauth.New("HS256", []byte(jwtSecret), nil),
		tokenTTL:  DefaultTokenTTL,
	}
}

// TokenAuth exposes the JWT verifier for route protection
func (h *AuthHandler) TokenAuth() *jwtauth.JWTAuth {
	return h.tokenAuth
}

// Login verifies credentials and returns a signed session token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, showcase.ErrInvalidCredentials) {
			slog.Warn("Login failed", "username", req.Username)
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		slog.Error("Failed to authenticate", "username", req.Username, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	claims := map[string]interface{}{
		"user_id":  user.ID.String(),
		"username": user.Username,
		"role":     user.Role,
	}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, h.tokenTTL)

	_, tokenString, err := h.tokenAuth.Encode(claims)
	if err != nil {
		slog.Error("Failed to sign session token", "username", req.Username, "error", err)
		http.Error(w, "Failed to sign session token", http.StatusInternalServerError)
		return
	}

	slog.Info("Admin logged in", "username", user.Username)
	render.JSON(w, r, LoginResponse{
		Token:    tokenString,
		UserID:   user.ID.String(),
		Username: user.Username,
		Role:     user.Role,
	})
}

// Profile returns the account details from the verified session token
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	resp := ProfileResponse{}
	if v, ok := claims["user_id"].(string); ok {
		resp.UserID = v
	}
	if v, ok := claims["username"].(string); ok {
		resp.Username = v
	}
	if v, ok := claims["role"].(string); ok {
		resp.Role = v
	}

	render.JSON(w, r, resp)
}

// AdminOnly rejects requests whose verified token does not carry the
// admin role. It must run after jwtauth.Verifier and jwtauth.Authenticator.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}
		role, _ := claims["role"].(string)
		if role != showcase.RoleAdmin {
			http.Error(w, "Admin access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
