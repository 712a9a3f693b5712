package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/avgui-demo/internal/model"
)

func TestHealthHandler_HealthCheck(t *testing.T) {
	// Arrange
	handler := NewHealthHandler(zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	// Act
	handler.HealthCheck(rr, req)

	// Assert
	if rr.Code != http.StatusOK {
		t.Errorf("HealthCheck() status = %d, want %d", rr.Code, http.StatusOK)
	}

	var response model.APIResponse[HealthResponse]
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if !response.Success {
		t.Error("HealthCheck() response.Success = false, want true")
	}
	if response.Data.Status != "healthy" {
		t.Errorf("HealthCheck() status = %s, want healthy", response.Data.Status)
	}
	if response.Data.Version != Version {
		t.Errorf("HealthCheck() version = %s, want %s", response.Data.Version, Version)
	}
}

func TestHealthHandler_ReadyCheck(t *testing.T) {
	// Arrange
	handler := NewHealthHandler(zap.NewNop())
	router := mux.NewRouter()
	handler.RegisterRoutes(router)
	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rr := httptest.NewRecorder()

	// Act
	router.ServeHTTP(rr, req)

	// Assert
	if rr.Code != http.StatusOK {
		t.Errorf("ReadyCheck() status = %d, want %d", rr.Code, http.StatusOK)
	}

	var response model.APIResponse[ReadyResponse]
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Data.Status != "ready" {
		t.Errorf("ReadyCheck() status = %s, want ready", response.Data.Status)
	}
}

func TestResponder_ContentType(t *testing.T) {
	// Arrange
	handler := NewHealthHandler(zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	// Act
	handler.HealthCheck(rr, req)

	// Assert
	contentType := rr.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("Content-Type = %s, want application/json", contentType)
	}
}

func TestResponder_NoContent(t *testing.T) {
	// Arrange
	r := responder{logger: zap.NewNop()}
	rr := httptest.NewRecorder()

	// Act
	r.writeJSON(rr, http.StatusNoContent, nil)

	// Assert
	if rr.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNoContent)
	}
	if rr.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", rr.Body.String())
	}
}

func TestVersion(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if Version != "1.0.0" {
		t.Errorf("Version = %s, want 1.0.0", Version)
	}
}
