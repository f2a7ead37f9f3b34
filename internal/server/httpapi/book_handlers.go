package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/dsmirnov/bookshelf/internal/server/services"
)

// BookHandlers serves the public catalog endpoints and the admin cover upload.
type BookHandlers struct {
	books *services.BookService
}

func NewBookHandlers(books *services.BookService) *BookHandlers {
	return &BookHandlers{books: books}
}

type bookResponse struct {
	ID              int64   `json:"id"`
	Title           string  `json:"title"`
	Authors         string  `json:"authors"`
	ISBN            string  `json:"isbn"`
	PublicationYear int     `json:"publicationYear"`
	Genre           string  `json:"genre"`
	ImageURL        string  `json:"imageUrl"`
	AverageRating   float64 `json:"averageRating"`
}

type paginatedResponse struct {
	Content       []bookResponse `json:"content"`
	Page          int            `json:"page"`
	Size          int            `json:"size"`
	TotalElements int64          `json:"totalElements"`
	TotalPages    int            `json:"totalPages"`
	Last          bool           `json:"last"`
}

type coverUploadResponse struct {
	Key       string `json:"key"`
	UploadURL string `json:"uploadUrl"`
}

func toBookResponse(b services.BookWithRating) bookResponse {
	return bookResponse{
		ID:              b.ID,
		Title:           b.Title,
		Authors:         b.Authors,
		ISBN:            b.ISBN,
		PublicationYear: b.PublicationYear,
		Genre:           b.Genre,
		ImageURL:        b.ImageURL,
		AverageRating:   b.AverageRating,
	}
}

func toBookResponses(items []services.BookWithRating) []bookResponse {
	out := make([]bookResponse, 0, len(items))
	for _, b := range items {
		out = append(out, toBookResponse(b))
	}
	return out
}

// queryInt reads an integer query parameter, falling back to def when the
// parameter is absent or unparsable.
func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func (h *BookHandlers) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.books.List(r.Context(), queryInt(r, "page", 0), queryInt(r, "size", 10))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, paginatedResponse{
		Content:       toBookResponses(page.Books),
		Page:          page.Page,
		Size:          page.Size,
		TotalElements: page.TotalElements,
		TotalPages:    page.TotalPages,
		Last:          page.Last,
	})
}

func (h *BookHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, "invalid book id")
		return
	}

	book, err := h.books.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBookResponse(*book))
}

func (h *BookHandlers) Search(w http.ResponseWriter, r *http.Request) {
	query := mux.Vars(r)["query"]
	if query == "" {
		writeBadRequest(w, "empty search query")
		return
	}

	items, err := h.books.Search(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBookResponses(items))
}

func (h *BookHandlers) PresignCover(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, "invalid book id")
		return
	}

	key, uploadURL, err := h.books.PresignCoverUpload(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, coverUploadResponse{Key: key, UploadURL: uploadURL})
}
