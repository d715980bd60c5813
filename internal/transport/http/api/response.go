package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type FieldIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type Envelope struct {
	Success   bool         `json:"success"`
	Data      any          `json:"data,omitempty"`
	Error     string       `json:"error,omitempty"`
	Message   string       `json:"message,omitempty"`
	Reason    string       `json:"reason,omitempty"`
	Fields    []FieldIssue `json:"fields,omitempty"`
	RequestID string       `json:"requestId,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("write json failed", "err", err)
	}
}

func Success(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Created(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusCreated, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Fail(w http.ResponseWriter, status int, code, message, requestID string) {
	WriteJSON(w, status, Envelope{Error: code, Message: message, RequestID: requestID})
}

// FailReason is Fail with a machine-checkable reason, used for token rejections.
func FailReason(w http.ResponseWriter, status int, code, reason, message, requestID string) {
	WriteJSON(w, status, Envelope{Error: code, Reason: reason, Message: message, RequestID: requestID})
}

func FailValidation(w http.ResponseWriter, fields []FieldIssue, requestID string) {
	WriteJSON(w, http.StatusBadRequest, Envelope{
		Error: "validation_error", Message: "payload validation failed", Fields: fields, RequestID: requestID,
	})
}
