// Package metrics exposes the request counters and latency histograms
// collected by the HTTP middleware on a Prometheus scrape endpoint.
package metrics

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fieldstone-hq/fieldstone/pkg/application"
)

const defaultScrapePath = "/debug/prometheus"

// PrometheusController mounts the scrape endpoint. It is registered only
// when metrics are enabled in configuration, and it sits outside the tenant
// guard because scrapers carry no tenant header.
type PrometheusController struct {
	path string
}

func NewPrometheusController(path string) application.Controller {
	if path == "" {
		path = defaultScrapePath
	}
	return &PrometheusController{path: path}
}

func (c *PrometheusController) Key() string {
	return c.path
}

func (c *PrometheusController) Register(r *mux.Router) {
	r.Handle(c.path, promhttp.Handler()).Methods(http.MethodGet)
}
