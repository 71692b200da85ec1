package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// boardParams are the route params copied onto the access log line, keyed
// by their log field name
var boardParams = []struct{ param, field string }{
	{"boardID", "board_id"},
	{"elementID", "element_id"},
	{"nodeID", "node_id"},
	{"imageID", "image_id"},
}

// Logger writes one access line per request. Lines carry the request ID,
// the matched route and whichever board, element, node or image the route
// addressed, so a session's gestures can be followed across requests.
// Server errors log at error level and client errors at warn.
func Logger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []zap.Field{
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			}
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					fields = append(fields, zap.String("route", pattern))
				}
				for _, p := range boardParams {
					if v := rctx.URLParam(p.param); v != "" {
						fields = append(fields, zap.String(p.field, v))
					}
				}
			}
			if userID := r.Header.Get(UserIDHeader); userID != "" {
				fields = append(fields, zap.String("user_id", userID))
			}

			if ce := logger.Check(levelFor(status), "HTTP request"); ce != nil {
				ce.Write(fields...)
			}
		})
	}
}

func levelFor(status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}
