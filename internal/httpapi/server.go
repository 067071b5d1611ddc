package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"

	"climate-server/internal/config"
	"climate-server/internal/observability"
)

func NewServer(cfg config.Config, mux *http.ServeMux, metrics *observability.Metrics) *http.Server {
	var handler http.Handler = mux
	handler = instrument(slog.Default(), clockwork.NewRealClock(), metrics)(handler)
	handler = withTimeout(cfg.RequestTimeout)(handler)
	handler = requestID(handler)

	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
