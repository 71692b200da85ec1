package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	pkgerrors "github.com/varangian-core/magical-board/pkg/errors"
)

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 1 << 20

// responder holds the JSON helpers every handler shares
type responder struct {
	logger *zap.Logger
}

func (h responder) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h responder) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]interface{}{
		"error":   true,
		"message": message,
		"code":    status,
	})
}

// respondErr maps an error to its HTTP status. Messages of server-side
// failures are not exposed, except for an exhausted quota which the user
// can act on.
func (h responder) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	status := pkgerrors.HTTPStatus(err)
	message := http.StatusText(status)
	if appErr := pkgerrors.GetAppError(err); appErr != nil &&
		(status < http.StatusInternalServerError || pkgerrors.IsResourceExhausted(err)) {
		message = appErr.Message
	}
	if status >= http.StatusInternalServerError && !pkgerrors.IsResourceExhausted(err) {
		h.logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	h.respondError(w, status, message)
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func (h responder) decode(r *http.Request, v interface{}) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return pkgerrors.NewValidationError("Invalid request body: " + err.Error())
}
