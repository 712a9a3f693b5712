package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/avgui-demo/internal/model"
)

// movieSource names the component that produced the demo rows.
const movieSource = "avgui-demo"

// DevToolsResponse carries the DevTools address the shell should open.
type DevToolsResponse struct {
	URL string `json:"url"`
}

// DemoHandler exposes the demo controller: a fixed movie table and the
// DevTools command.
type DemoHandler struct {
	responder
	devToolsURL string
	now         func() time.Time
}

// NewDemoHandler creates a new DemoHandler instance.
func NewDemoHandler(devToolsURL string, logger *zap.Logger) *DemoHandler {
	return &DemoHandler{
		responder:   responder{logger: logger},
		devToolsURL: devToolsURL,
		now:         time.Now,
	}
}

// RegisterRoutes registers the demo routes with the router.
func (h *DemoHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/democontroller/movies/get", h.GetMovies).Methods(http.MethodGet)
	router.HandleFunc("/democontroller/movies/post", h.SaveMovies).Methods(http.MethodPost)
	router.HandleFunc("/democontroller/showdevtools", h.ShowDevTools).
		Methods(http.MethodGet, http.MethodPost)
}

// GetMovies handles GET /democontroller/movies/get requests.
func (h *DemoHandler) GetMovies(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(h.movies()))
}

// SaveMovies handles POST /democontroller/movies/post requests. The rows are
// only counted; nothing is kept.
func (h *DemoHandler) SaveMovies(w http.ResponseWriter, r *http.Request) {
	var movies []model.MovieInfo
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&movies); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "post data is null or invalid")
		return
	}

	h.logger.Debug("movies received", zap.Int("rows", len(movies)))

	msg := fmt.Sprintf("%s: %d rows of data successfully saved.",
		h.now().Format(time.DateTime), len(movies))
	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(msg))
}

// ShowDevTools handles the /democontroller/showdevtools command by returning
// the DevTools address for the shell to open.
func (h *DemoHandler) ShowDevTools(w http.ResponseWriter, _ *http.Request) {
	if h.devToolsURL == "" {
		h.writeError(w, http.StatusNotFound, "devtools url is not configured")
		return
	}

	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(DevToolsResponse{URL: h.devToolsURL}))
}

func (h *DemoHandler) movies() []model.MovieInfo {
	now := h.now()
	movies := []model.MovieInfo{
		{ID: 1, Title: "The Shawshank Redemption", Year: 1994, Votes: 678790, Rating: 9.2},
		{ID: 2, Title: "The Godfather", Year: 1972, Votes: 511495, Rating: 9.2},
		{ID: 3, Title: "The Godfather: Part II", Year: 1974, Votes: 319352, Rating: 9.0},
		{ID: 4, Title: "The Good, the Bad and the Ugly", Year: 1966, Votes: 213030, Rating: 8.9},
		{ID: 5, Title: "My Fair Lady", Year: 1964, Votes: 533848, Rating: 8.9},
		{ID: 6, Title: "12 Angry Men", Year: 1957, Votes: 164558, Rating: 8.9},
	}
	for i := range movies {
		movies[i].Date = now
		movies[i].RestfulAssembly = movieSource
	}
	return movies
}
