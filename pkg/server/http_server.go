// Package server assembles the HTTP surface: every registered controller
// mounts its routes on one gorilla router, the middleware chain wraps all
// of them, and responses are gzip compressed.
package server

import (
	"net/http"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/gorilla/mux"

	"github.com/fieldstone-hq/fieldstone/pkg/application"
)

const readHeaderTimeout = 10 * time.Second

type HTTPServer struct {
	controllers []application.Controller
	middlewares []mux.MiddlewareFunc
	notFound    http.Handler
	notAllowed  http.Handler
}

func NewHTTPServer(
	app application.Application,
	notFoundHandler, methodNotAllowedHandler http.Handler,
) *HTTPServer {
	return &HTTPServer{
		controllers: app.Controllers(),
		middlewares: app.Middleware(),
		notFound:    notFoundHandler,
		notAllowed:  methodNotAllowedHandler,
	}
}

// Router mounts every controller behind the middleware chain. The fallback
// handlers are wrapped manually because mux only applies Use middleware to
// matched routes, and unmatched requests still need logging and CORS.
func (s *HTTPServer) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.middlewares...)
	for _, c := range s.controllers {
		c.Register(r)
	}

	notFound, notAllowed := s.notFound, s.notAllowed
	for i := len(s.middlewares) - 1; i >= 0; i-- {
		notFound = s.middlewares[i](notFound)
		notAllowed = s.middlewares[i](notAllowed)
	}
	r.NotFoundHandler = notFound
	r.MethodNotAllowedHandler = notAllowed
	return r
}

func (s *HTTPServer) Handler() http.Handler {
	return gziphandler.GzipHandler(s.Router())
}

func (s *HTTPServer) Start(socketAddress string) error {
	srv := &http.Server{
		Addr:              socketAddress,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return srv.ListenAndServe()
}
