package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/avgui-demo/internal/model"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	responder
}

// NewHealthHandler creates a new HealthHandler instance.
func NewHealthHandler(logger *zap.Logger) *HealthHandler {
	return &HealthHandler{responder: responder{logger: logger}}
}

// RegisterRoutes registers the probe routes with the router.
func (h *HealthHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/ready", h.ReadyCheck).Methods(http.MethodGet)
}

// HealthCheck handles GET /health requests.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	response := HealthResponse{
		Status:  "healthy",
		Version: Version,
	}
	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(response))
}

// ReadyCheck handles GET /ready requests.
func (h *HealthHandler) ReadyCheck(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(ReadyResponse{Status: "ready"}))
}
