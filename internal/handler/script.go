package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/avgui-demo/internal/model"
)

// ScriptExecutor runs a script inside a named browser frame.
type ScriptExecutor interface {
	Execute(ctx context.Context, frame, script string) error
}

// scriptRequest is the body of an execute request.
type scriptRequest struct {
	FrameName string `json:"framename"`
	Script    string `json:"script"`
}

// ScriptHandler exposes the JavaScript execution controller.
type ScriptHandler struct {
	responder
	executor ScriptExecutor
}

// NewScriptHandler creates a new ScriptHandler instance.
func NewScriptHandler(executor ScriptExecutor, logger *zap.Logger) *ScriptHandler {
	return &ScriptHandler{
		responder: responder{logger: logger},
		executor:  executor,
	}
}

// RegisterRoutes registers the script routes with the router.
func (h *ScriptHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/executejavascript/execute", h.Execute).Methods(http.MethodPost)
}

// Execute handles POST /executejavascript/execute requests.
func (h *ScriptHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req scriptRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&req); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		h.writeScriptResult(w, http.StatusBadRequest, "Error", "invalid request body")
		return
	}

	err := h.executor.Execute(r.Context(), req.FrameName, req.Script)
	switch {
	case err == nil:
		h.logger.Debug("script executed", zap.String("frame", req.FrameName))
		h.writeScriptResult(w, http.StatusOK, "OK", "Executed script :"+req.Script)
	case errors.Is(err, ErrFrameNotFound):
		h.writeScriptResult(w, http.StatusOK, "OK", fmt.Sprintf("Frame %s does not exist.", req.FrameName))
	default:
		h.logger.Error("script execution failed", zap.String("frame", req.FrameName), zap.Error(err))
		h.writeScriptResult(w, http.StatusBadRequest, "Error", err.Error())
	}
}

func (h *ScriptHandler) writeScriptResult(w http.ResponseWriter, status int, statusText, data string) {
	result := model.ScriptResult{
		Status:     status,
		StatusText: statusText,
		Data:       data,
	}

	if status >= http.StatusBadRequest {
		response := model.NewErrorResponse[model.ScriptResult](data)
		response.Data = result
		h.writeJSON(w, status, response)
		return
	}

	h.writeJSON(w, status, model.NewSuccessResponse(result))
}
