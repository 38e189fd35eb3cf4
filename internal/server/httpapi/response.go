package httpapi

import (
	"encoding/json"
	"net/http"

	wire "github.com/dkovalev/lotkeeper/internal/api"
)

func jsonResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func jsonError(w http.ResponseWriter, status int, msg string) {
	jsonResponse(w, status, wire.ErrorResponse{Error: msg})
}
