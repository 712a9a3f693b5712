package model

import "time"

// APIResponse is a generic wrapper for API responses. Data is always
// present so an empty list is sent as [].
type APIResponse[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error,omitempty"`
}

// NewSuccessResponse creates a successful API response.
func NewSuccessResponse[T any](data T) APIResponse[T] {
	return APIResponse[T]{
		Success: true,
		Data:    data,
	}
}

// NewErrorResponse creates an error API response.
func NewErrorResponse[T any](errMsg string) APIResponse[T] {
	return APIResponse[T]{
		Success: false,
		Error:   errMsg,
	}
}

// CommandResponse acknowledges a request that yields no data.
type CommandResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// NewCommandResponse creates a successful data-less response.
func NewCommandResponse() CommandResponse {
	return CommandResponse{Success: true}
}

// ErrorResponse represents an error response structure.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ScriptResult is the reply of a script execution request.
type ScriptResult struct {
	Status     int    `json:"status"`
	StatusText string `json:"statusText"`
	Data       string `json:"data"`
}

// FrameMessage is sent to a browser frame over its WebSocket connection.
type FrameMessage struct {
	Type      string    `json:"type"`
	Frame     string    `json:"frame,omitempty"`
	Script    string    `json:"script,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Frame message types.
const (
	FrameMessageTypeExecuteScript = "execute_script"
	FrameMessageTypeRegistered    = "registered"
)

// NewExecuteScriptMessage creates a frame message carrying a script.
func NewExecuteScriptMessage(frame, script string) FrameMessage {
	return FrameMessage{
		Type:      FrameMessageTypeExecuteScript,
		Frame:     frame,
		Script:    script,
		Timestamp: time.Now().UTC(),
	}
}

// NewRegisteredMessage acknowledges a frame registration.
func NewRegisteredMessage(frame string) FrameMessage {
	return FrameMessage{
		Type:      FrameMessageTypeRegistered,
		Frame:     frame,
		Timestamp: time.Now().UTC(),
	}
}
