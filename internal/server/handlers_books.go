package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"tokobuku/internal/api"
	"tokobuku/internal/catalog"
)

type createBookRequest struct {
	Title           string  `json:"title" validate:"required"`
	Writer          string  `json:"writer" validate:"required"`
	Publisher       string  `json:"publisher"`
	Price           float64 `json:"price" validate:"required,gt=0"`
	Stock           int     `json:"stock" validate:"gte=0"`
	GenreID         int64   `json:"genre_id" validate:"required"`
	Condition       string  `json:"condition"`
	PublicationYear int     `json:"publication_year"`
	ISBN            string  `json:"isbn"`
	Description     string  `json:"description"`
}

// /api/books
func (s *Server) handleBooks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListBooks(w, r)
	case http.MethodPost:
		s.handleCreateBook(w, r)
	default:
		methodNotAllowed(w)
	}
}

// handleListBooks pages through the catalog. Page, sort, order, and
// condition changes refetch from the API; the q parameter filters the
// already-fetched page without a new request.
func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q := catalog.Query{
		Sort:      params.Get("sort"),
		Order:     params.Get("order"),
		Condition: params.Get("condition"),
	}
	if raw := params.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			writeError(w, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		q.Page = page
	}
	if s.catalog.Apply(q) {
		if err := s.catalog.Load(r.Context()); err != nil {
			writeRemoteError(w, err, "failed to load books")
			return
		}
	}
	books := s.catalog.Search(params.Get("q"))
	_, totalPages := s.catalog.Page()
	writeJSON(w, http.StatusOK, map[string]any{
		"data": books,
		"meta": map[string]any{
			"page":       s.catalog.Query().Page,
			"totalPages": totalPages,
		},
	})
}

func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var req createBookRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	err := s.api.CreateBook(r.Context(), api.NewBook{
		Title:           req.Title,
		Writer:          req.Writer,
		Publisher:       req.Publisher,
		Price:           req.Price,
		Stock:           req.Stock,
		GenreID:         req.GenreID,
		Condition:       req.Condition,
		PublicationYear: req.PublicationYear,
		ISBN:            req.ISBN,
		Description:     req.Description,
	})
	if err != nil {
		writeRemoteError(w, err, "failed to add book")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

// /api/books/{id}
func (s *Server) handleBookByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "/api/books/")
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		book, err := s.api.Book(r.Context(), id)
		if err != nil {
			writeRemoteError(w, err, "failed to load book")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": book})
	case http.MethodDelete:
		if err := s.api.DeleteBook(r.Context(), id); err != nil {
			writeRemoteError(w, err, "failed to delete book")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleGenres(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	genres := s.catalog.Genres()
	if len(genres) == 0 {
		var err error
		genres, err = s.api.Genres(r.Context())
		if err != nil {
			writeRemoteError(w, err, "failed to load genres")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": genres})
}

// pathID parses a numeric trailing path segment; responds 404 on junk.
func pathID(w http.ResponseWriter, r *http.Request, prefix string) (int64, bool) {
	raw := strings.TrimPrefix(r.URL.Path, prefix)
	if raw == "" || strings.Contains(raw, "/") {
		http.NotFound(w, r)
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return 0, false
	}
	return id, true
}
