package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	SimulationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "simulations_total", Help: "Completed backtest runs"},
		[]string{"strategy"},
	)
	BarsSimulated = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "bars_simulated_total", Help: "Bars replayed through the simulator"},
		[]string{"ticker"},
	)
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orders_total", Help: "Fills executed against the paper account"},
		[]string{"ticker", "side"},
	)
	OrdersRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orders_rejected_total", Help: "Signals skipped because the ledger refused the order"},
		[]string{"ticker", "reason"},
	)
	FetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "fetches_total", Help: "Price series fetches by source and outcome"},
		[]string{"source", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(SimulationsTotal, BarsSimulated, OrdersTotal, OrdersRejected, FetchesTotal)
}

// Serve exposes /metrics on addr in the background. Listener failures other
// than a normal shutdown are logged.
func Serve(addr string, log zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()
	return srv
}
