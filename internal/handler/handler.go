// Package handler provides the HTTP controllers invoked by the web UI.
package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/vyrodovalexey/avgui-demo/internal/model"
)

// Version is the application version.
const Version = "1.0.0"

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Status string `json:"status"`
}

// responder writes JSON envelopes and is embedded by every controller.
type responder struct {
	logger *zap.Logger
}

// writeJSON writes a JSON response with the given status code.
func (h responder) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

// writeError writes an error response with the given status code and message.
func (h responder) writeError(w http.ResponseWriter, status int, message string) {
	response := model.ErrorResponse{
		Code:    status,
		Message: message,
	}
	h.writeJSON(w, status, response)
}
