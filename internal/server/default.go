package server

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/fieldstone-hq/fieldstone/pkg/application"
	"github.com/fieldstone-hq/fieldstone/pkg/configuration"
	"github.com/fieldstone-hq/fieldstone/pkg/middleware"
	"github.com/fieldstone-hq/fieldstone/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
}

func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application

	middlewares := []mux.MiddlewareFunc{
		middleware.WithLogger(options.Logger),
		middleware.Cors(splitOrigins(options.Configuration.AllowedOrigins)...),
		middleware.TenantFromHeader(),
		middleware.RequestMetrics(),
	}
	app.RegisterMiddleware(middlewares...)

	serverInstance := server.NewHTTPServer(
		app,
		jsonError(http.StatusNotFound, "not found"),
		jsonError(http.StatusMethodNotAllowed, "method not allowed"),
	)
	return serverInstance, nil
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func jsonError(status int, message string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"message":"` + message + `"}`))
	})
}
