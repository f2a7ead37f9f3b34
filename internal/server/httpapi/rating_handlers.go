package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/dsmirnov/bookshelf/internal/server/services"
)

// RatingHandlers serves rating creation. The rating's author is always the
// authenticated caller.
type RatingHandlers struct {
	ratings *services.RatingService
}

func NewRatingHandlers(ratings *services.RatingService) *RatingHandlers {
	return &RatingHandlers{ratings: ratings}
}

type ratingRequest struct {
	BookID int64 `json:"bookId"`
	Rating int   `json:"rating"`
}

type ratingResponse struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"userId"`
	BookID int64 `json:"bookId"`
	Rating int   `json:"rating"`
}

func (req *ratingRequest) validate() map[string]string {
	fields := map[string]string{}
	if req.BookID <= 0 {
		fields["bookId"] = "bookId is required"
	}
	if req.Rating < 1 || req.Rating > 5 {
		fields["rating"] = "rating must be between 1 and 5"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func (h *RatingHandlers) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromRequest(r)
	if !ok {
		// the policy guarantees an identity here
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	var req ratingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if fields := req.validate(); fields != nil {
		writeValidationError(w, fields)
		return
	}

	rating, err := h.ratings.Rate(r.Context(), user.ID, req.BookID, req.Rating)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ratingResponse{
		ID:     rating.ID,
		UserID: rating.UserID,
		BookID: rating.BookID,
		Rating: rating.Value,
	})
}
