package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dsmirnov/bookshelf/internal/server/models"
	"github.com/dsmirnov/bookshelf/internal/server/services"
)

// AuthHandlers serves registration and login.
type AuthHandlers struct {
	auth *services.AuthService
}

func NewAuthHandlers(auth *services.AuthService) *AuthHandlers {
	return &AuthHandlers{auth: auth}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Token    string `json:"token"`
}

func (req *credentialsRequest) validate() map[string]string {
	fields := map[string]string{}
	if req.Email == "" {
		fields["email"] = "email is required"
	} else if !strings.Contains(req.Email, "@") {
		fields["email"] = "email must be a valid address"
	}
	if req.Password == "" {
		fields["password"] = "password is required"
	} else if len(req.Password) < 6 {
		fields["password"] = "password must be at least 6 characters"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func toAuthResponse(u *models.User, token string) authResponse {
	return authResponse{ID: u.ID, Username: u.Username, Email: u.Email, Token: token}
}

func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if fields := req.validate(); fields != nil {
		writeValidationError(w, fields)
		return
	}

	user, token, err := h.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAuthResponse(user, token))
}

func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if fields := req.validate(); fields != nil {
		writeValidationError(w, fields)
		return
	}

	user, token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAuthResponse(user, token))
}
