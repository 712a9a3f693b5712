package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/avgui-demo/internal/model"
	"github.com/vyrodovalexey/avgui-demo/internal/tmdb"
)

// MovieSource looks movies up in The Movie Database.
type MovieSource interface {
	Movies(ctx context.Context, category tmdb.Category, query string) ([]model.TMDBMovieResult, error)
	Movie(ctx context.Context, movieID string) (*model.TMDBMovie, error)
}

// HomepageResponse carries the homepage the shell should open.
type HomepageResponse struct {
	MovieID  string `json:"movieId"`
	Homepage string `json:"homepage"`
}

// TMDBHandler proxies movie lookups to TMDB.
type TMDBHandler struct {
	responder
	source MovieSource
}

// NewTMDBHandler creates a new TMDBHandler instance.
func NewTMDBHandler(source MovieSource, logger *zap.Logger) *TMDBHandler {
	return &TMDBHandler{
		responder: responder{logger: logger},
		source:    source,
	}
}

// RegisterRoutes registers the TMDB routes with the router.
func (h *TMDBHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/tmdbmoviescontroller/movies", h.GetMovies).Methods(http.MethodGet)
	router.HandleFunc("/tmdbmoviescontroller/homepage", h.HomePage).
		Methods(http.MethodGet, http.MethodPost)
}

// GetMovies handles GET /tmdbmoviescontroller/movies?name=&query= requests.
// A missing or unknown listing name, or a search without a query, yields an
// empty list.
func (h *TMDBHandler) GetMovies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("query")

	category, ok := tmdb.ParseCategory(q.Get("name"))
	if !ok || (category == tmdb.CategorySearch && strings.TrimSpace(query) == "") {
		h.writeJSON(w, http.StatusOK, model.NewSuccessResponse([]model.TMDBMovieResult{}))
		return
	}

	movies, err := h.source.Movies(r.Context(), category, query)
	if err != nil {
		h.handleSourceError(w, err, string(category))
		return
	}

	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(movies))
}

// HomePage handles /tmdbmoviescontroller/homepage?movieid= requests. The
// shell opens the returned address; a missing movie id is ignored.
func (h *TMDBHandler) HomePage(w http.ResponseWriter, r *http.Request) {
	movieID := strings.TrimSpace(r.URL.Query().Get("movieid"))
	if movieID == "" {
		h.writeJSON(w, http.StatusOK, model.NewCommandResponse())
		return
	}

	movie, err := h.source.Movie(r.Context(), movieID)
	if err != nil {
		h.handleSourceError(w, err, "homepage")
		return
	}

	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(&HomepageResponse{
		MovieID:  movieID,
		Homepage: movie.Homepage,
	}))
}

// handleSourceError maps TMDB client errors to HTTP responses.
func (h *TMDBHandler) handleSourceError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, tmdb.ErrInvalidMovieID),
		errors.Is(err, tmdb.ErrEmptyQuery),
		errors.Is(err, tmdb.ErrUnknownCategory):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, tmdb.ErrUpstream):
		h.logger.Error("tmdb request failed", zap.String("operation", operation), zap.Error(err))
		h.writeError(w, http.StatusBadGateway, "movie database is unavailable")
	default:
		h.logger.Error("tmdb lookup failed", zap.String("operation", operation), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
