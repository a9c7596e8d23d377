package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/slidedeck/internal/common"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeSuccess writes {"success": true, key: v}.
func writeSuccess(w http.ResponseWriter, status int, key string, v any) {
	body := map[string]any{"success": true}
	if key != "" {
		body[key] = v
	}
	writeJSON(w, status, body)
}

// writeError maps a service error onto a status code. what names the
// resource in not-found messages. Unclassified errors are logged and
// reported without detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, what string) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		writeMessage(w, http.StatusBadRequest, common.Message(err, "invalid request"))
	case errors.Is(err, common.ErrorUnauthorized):
		writeMessage(w, http.StatusUnauthorized, "invalid username or password")
	case errors.Is(err, common.ErrorNotFound):
		writeMessage(w, http.StatusNotFound, what+" not found")
	case errors.Is(err, common.ErrorConflict):
		writeMessage(w, http.StatusConflict, common.Message(err, "conflict"))
	default:
		s.logger.Error(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON decodes the request body into dst, reporting a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// missingFields writes a 400 listing the empty fields, in the order given.
// It reports whether anything was missing.
func missingFields(w http.ResponseWriter, fields ...namedValue) bool {
	var missing []string
	for _, f := range fields {
		if !f.present {
			missing = append(missing, f.name)
		}
	}
	if len(missing) == 0 {
		return false
	}
	writeMessage(w, http.StatusBadRequest, fmt.Sprintf("Missing required fields: %s", strings.Join(missing, ", ")))
	return true
}

type namedValue struct {
	name    string
	present bool
}

func field(name, value string) namedValue {
	return namedValue{name: name, present: strings.TrimSpace(value) != ""}
}

// pathID returns the UUID path parameter key in canonical form. Malformed ids cannot name an
// existing resource and are reported as not found.
func pathID(w http.ResponseWriter, r *http.Request, key, what string) (string, bool) {
	id, err := uuid.Parse(chi.URLParam(r, key))
	if err != nil {
		writeMessage(w, http.StatusNotFound, what+" not found")
		return "", false
	}
	return id.String(), true
}
