package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/avgui-demo/internal/model"
	"github.com/vyrodovalexey/avgui-demo/internal/store"
)

// maxRequestBody bounds the size of a decoded request body.
const maxRequestBody = 1 << 20

// TodoHandler exposes the to-do list controller.
type TodoHandler struct {
	responder
	store store.Store
}

// NewTodoHandler creates a new TodoHandler instance.
func NewTodoHandler(s store.Store, logger *zap.Logger) *TodoHandler {
	return &TodoHandler{
		responder: responder{logger: logger},
		store:     s,
	}
}

// RegisterRoutes registers the to-do routes with the router.
func (h *TodoHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/todolistcontroller/items", h.Items).
		Methods(http.MethodGet, http.MethodPost)
	router.HandleFunc("/todolistcontroller/toggleactive", h.ToggleActive).
		Methods(http.MethodGet, http.MethodPost)
}

// todoRequest carries the parameters of both to-do entry points. Values
// come from the query string or from a JSON body.
type todoRequest struct {
	Name      string   `json:"name"`
	ID        flexInt  `json:"id"`
	Text      string   `json:"text"`
	Todo      string   `json:"todo"`
	Completed flexBool `json:"completed"`
}

func (req todoRequest) candidate() model.TodoItem {
	text := req.Text
	if text == "" {
		text = req.Todo
	}
	return model.TodoItem{
		ID:        req.ID.Int(),
		Text:      text,
		Completed: bool(req.Completed),
	}
}

// Items handles GET and POST /todolistcontroller/items requests.
func (h *TodoHandler) Items(w http.ResponseWriter, r *http.Request) {
	req, err := decodeTodoRequest(r)
	if err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		h.writeJSON(w, http.StatusOK, model.NewSuccessResponse([]model.TodoItem{}))
		return
	}

	op, ok := model.ParseOperation(req.Name)
	if !ok {
		h.logger.Debug("unknown todo operation, returning current list", zap.String("name", req.Name))
		op = model.OpAll
	}

	items, err := h.store.Dispatch(r.Context(), op, req.candidate())
	if err != nil {
		h.handleStoreError(w, err, op.String())
		return
	}

	if !op.ReturnsList() {
		h.writeJSON(w, http.StatusOK, model.NewCommandResponse())
		return
	}

	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(items))
}

// ToggleActive handles GET and POST /todolistcontroller/toggleactive commands.
// A request without an id is ignored.
func (h *TodoHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	req, err := decodeTodoRequest(r)
	if err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !req.ID.set {
		h.writeJSON(w, http.StatusNoContent, nil)
		return
	}

	if err := h.store.ToggleItemComplete(r.Context(), req.ID.Int(), bool(req.Completed)); err != nil {
		h.handleStoreError(w, err, model.OpToggleItemComplete.String())
		return
	}

	h.writeJSON(w, http.StatusNoContent, nil)
}

// handleStoreError handles store errors and writes appropriate HTTP responses.
func (h *TodoHandler) handleStoreError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "todo item not found")
	case errors.Is(err, store.ErrInvalidID):
		h.writeError(w, http.StatusBadRequest, "invalid todo item ID")
	case errors.Is(err, store.ErrInvalidItem):
		h.writeError(w, http.StatusBadRequest, "todo item text cannot be empty")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.logger.Debug("todo request abandoned", zap.String("operation", operation), zap.Error(err))
		h.writeError(w, http.StatusServiceUnavailable, "request cancelled")
	default:
		h.logger.Error("store operation failed", zap.String("operation", operation), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeTodoRequest reads the query string and, for requests with a body,
// overlays the JSON fields on top of it.
func decodeTodoRequest(r *http.Request) (todoRequest, error) {
	q := r.URL.Query()
	req := todoRequest{
		Name: q.Get("name"),
		Text: q.Get("text"),
		Todo: q.Get("todo"),
	}
	if q.Has("id") {
		req.ID = parseFlexInt(q.Get("id"))
	}
	req.Completed = parseFlexBool(q.Get("completed"))

	if r.Body == nil || r.Method == http.MethodGet {
		return req, nil
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return req, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return req, nil
	}

	if err := json.Unmarshal(body, &req); err != nil {
		return req, err
	}

	return req, nil
}

// flexInt is an integer that also accepts a quoted or unparsable value,
// the latter decoding to zero.
type flexInt struct {
	value int
	set   bool
}

// Int returns the integer value.
func (f flexInt) Int() int {
	return f.value
}

// UnmarshalJSON accepts numbers and strings.
func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "null" {
		return nil
	}
	*f = parseFlexInt(s)
	return nil
}

func parseFlexInt(s string) flexInt {
	s = strings.TrimSpace(s)
	if s == "" {
		return flexInt{}
	}
	n, _ := strconv.Atoi(s)
	return flexInt{value: n, set: true}
}

// flexBool accepts true/false as well as the 1/0 wire format.
type flexBool bool

// UnmarshalJSON accepts booleans, numbers and strings.
func (f *flexBool) UnmarshalJSON(data []byte) error {
	*f = parseFlexBool(strings.Trim(strings.TrimSpace(string(data)), `"`))
	return nil
}

func parseFlexBool(s string) flexBool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true":
		return true
	default:
		return false
	}
}
