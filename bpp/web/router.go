package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/benefits-network/benefits-bpp/bpp/logging"
	bppmiddleware "github.com/benefits-network/benefits-bpp/middleware"
)

// NewAPIRouter serves the protocol actions, the listing path and the operational
// endpoints. gatherer backs /metrics and may be nil to leave it out.
func NewAPIRouter(api *API, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		bppmiddleware.NewTransactionID,
		logging.NewStructuredLogger(),
		middleware.Recoverer,
		logging.NewCtxLogger,
		render.SetContentType(render.ContentTypeJSON),
		SecurityHeader,
		ConnectionClose,
	)

	r.Route("/benefits", func(r chi.Router) {
		r.Post("/search", api.Search)
		r.Post("/select", api.Select)
		r.Post("/init", api.Init)
		r.Post("/getBenefits", api.ListBenefits)
		r.Get("/getById/{id}", api.GetBenefit)
	})

	r.Get("/_version", api.Version)
	r.Get("/_health", api.HealthCheck)
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return r
}
