package web

import (
	"context"
	"encoding/json"
	"net/http"
)

// Respond converts a Go value to JSON and sends it to the client. If
// data is nil, a status code with no body is sent.
func Respond(ctx context.Context, w http.ResponseWriter, data any, statusCode int) error {
	v, err := GetValues(ctx)
	if err != nil {
		return err
	}
	v.StatusCode = statusCode

	if statusCode == http.StatusNoContent || data == nil {
		w.WriteHeader(statusCode)
		return nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	if _, err := w.Write(jsonData); err != nil {
		return err
	}

	return nil
}

// RespondError is a convenience wrapper that responds with a JSON
// {"error": message} body at the given status code.
func RespondError(ctx context.Context, w http.ResponseWriter, message string, statusCode int) error {
	resp := struct {
		Error string `json:"error"`
	}{Error: message}

	return Respond(ctx, w, resp, statusCode)
}
