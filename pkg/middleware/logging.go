package middleware

import (
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/fieldstone-hq/fieldstone/pkg/composables"
	"github.com/fieldstone-hq/fieldstone/pkg/configuration"
)

type statusWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.written {
		w.status = code
		w.written = true
		w.ResponseWriter.WriteHeader(code)
	}
}

func (w *statusWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func getRequestID(r *http.Request, conf *configuration.Configuration) string {
	if v := strings.TrimSpace(r.Header.Get(conf.RequestIDHeader)); v != "" {
		return v
	}
	return uuid.New().String()
}

// WithLogger injects a request-scoped logrus entry, logs each completed
// request, and recovers panics into 500 responses.
func WithLogger(logger *logrus.Logger) mux.MiddlewareFunc {
	conf := configuration.Use()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := getRequestID(r, conf)

			entry := logger.WithFields(logrus.Fields{
				"request_id": requestID,
				"method":     r.Method,
				"path":       r.URL.Path,
			})
			ctx := composables.WithRequestID(r.Context(), requestID)
			ctx = composables.WithLogger(ctx, entry)
			r = r.WithContext(ctx)

			sw := &statusWriter{ResponseWriter: w}
			w.Header().Set(conf.RequestIDHeader, requestID)

			defer func() {
				if rec := recover(); rec != nil {
					entry.WithField("stack", string(debug.Stack())).
						Errorf("panic while handling request: %v", rec)
					if !sw.written {
						http.Error(sw, "internal server error", http.StatusInternalServerError)
					}
					return
				}
				entry.WithFields(logrus.Fields{
					"status":   sw.Status(),
					"duration": time.Since(start).String(),
				}).Info("request completed")
			}()

			next.ServeHTTP(sw, r)
		})
	}
}
