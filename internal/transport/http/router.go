package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-verification-mailer/internal/config"
	"github.com/go-verification-mailer/internal/metrics"
	"github.com/go-verification-mailer/internal/transport/http/handler"
	appmiddleware "github.com/go-verification-mailer/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds the HTTP router. The returned stop func releases the rate
// limiter's eviction goroutine.
func NewRouter(cfg *config.Config, deps *Deps) (http.Handler, func()) {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(appmiddleware.RequestLogger(log))
	r.Use(chimiddleware.Recoverer)

	// 20 deliveries/second per peer address, burst of 50.
	snsRL := appmiddleware.NewRateLimiter(rate.Limit(20), 50)

	healthH := handler.NewHealthHandler()
	snsH := handler.NewSNSHandler(handler.SNSHandlerDeps{
		Service:   deps.Service,
		Confirmer: deps.Confirmer,
		Verifier:  deps.Verifier,
		Counter:   deps.Counter,
		TopicARN:  cfg.SNSTopicARN,
		Logger:    log,
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(snsRL.Limit).Post("/sns", snsH.Receive)
	})
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	return r, snsRL.Stop
}
