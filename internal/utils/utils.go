package utils

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"climate-server/internal/modules/climate/types"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to write JSON", "error", err)
	}
}

// WriteError writes the error body shared by every endpoint:
// {"error": <status text>, "kind": <kind>, "message": <msg>}.
func WriteError(w http.ResponseWriter, status int, kind types.Kind, msg string) {
	WriteJSON(w, status, map[string]any{
		"error":   http.StatusText(status),
		"kind":    kind,
		"message": msg,
	})
}
