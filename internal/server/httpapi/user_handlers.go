package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/dsmirnov/bookshelf/internal/server/models"
	"github.com/dsmirnov/bookshelf/internal/server/services"
)

// UserHandlers serves the authenticated user's private endpoints.
type UserHandlers struct {
	users *services.UserService
}

func NewUserHandlers(users *services.UserService) *UserHandlers {
	return &UserHandlers{users: users}
}

type userResponse struct {
	ID            int64          `json:"id"`
	Username      string         `json:"username"`
	Email         string         `json:"email"`
	Role          models.Role    `json:"role"`
	IsFromDataset bool           `json:"isFromDataset"`
	ReadBooks     []bookResponse `json:"readBooks"`
}

type readBookRequest struct {
	BookID int64 `json:"bookId"`
}

func (h *UserHandlers) userDTO(r *http.Request, user *models.User) (*userResponse, error) {
	readBooks, err := h.users.ReadBooks(r.Context(), user.ID)
	if err != nil {
		return nil, err
	}

	books := make([]bookResponse, 0, len(readBooks))
	for _, b := range readBooks {
		books = append(books, bookResponse{
			ID:              b.ID,
			Title:           b.Title,
			Authors:         b.Authors,
			ISBN:            b.ISBN,
			PublicationYear: b.PublicationYear,
			Genre:           b.Genre,
			ImageURL:        b.ImageURL,
		})
	}

	return &userResponse{
		ID:            user.ID,
		Username:      user.Username,
		Email:         user.Email,
		Role:          user.Role,
		IsFromDataset: user.FromDataset,
		ReadBooks:     books,
	}, nil
}

// Username returns the caller's username, nothing more.
func (h *UserHandlers) Username(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromRequest(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}
	writeJSON(w, http.StatusOK, user.Username)
}

func (h *UserHandlers) ListReadBooks(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromRequest(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	dto, err := h.userDTO(r, user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ReadBooks)
}

func (h *UserHandlers) mutateReadBooks(w http.ResponseWriter, r *http.Request,
	mutate func(userID, bookID int64) error) {

	user, ok := UserFromRequest(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	var req readBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.BookID <= 0 {
		writeValidationError(w, map[string]string{"bookId": "bookId is required"})
		return
	}

	if err := mutate(user.ID, req.BookID); err != nil {
		writeError(w, err)
		return
	}

	dto, err := h.userDTO(r, user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

func (h *UserHandlers) AddReadBook(w http.ResponseWriter, r *http.Request) {
	h.mutateReadBooks(w, r, func(userID, bookID int64) error {
		return h.users.MarkBookRead(r.Context(), userID, bookID)
	})
}

func (h *UserHandlers) RemoveReadBook(w http.ResponseWriter, r *http.Request) {
	h.mutateReadBooks(w, r, func(userID, bookID int64) error {
		return h.users.UnmarkBookRead(r.Context(), userID, bookID)
	})
}
