package infra

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"assistant-gateway/middleware/ratelimit/domain"
)

// PrometheusStatsStore expõe as decisões do rate limit como métricas.
//
// Labels de baixa cardinalidade apenas (outcome). Chave e path ficam de fora.
type PrometheusStatsStore struct {
	decisions *prometheus.CounterVec
}

// NewPrometheusStatsStore registra as métricas em reg. tracked, se não for nil,
// vira o gauge ratelimit_tracked_identifiers.
func NewPrometheusStatsStore(reg prometheus.Registerer, tracked func() int) (*PrometheusStatsStore, error) {
	s := &PrometheusStatsStore{
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ratelimit_decisions_total",
				Help: "Admission decisions taken by the rate limiter",
			},
			[]string{"outcome"},
		),
	}
	if err := reg.Register(s.decisions); err != nil {
		return nil, err
	}
	if tracked != nil {
		gauge := prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "ratelimit_tracked_identifiers",
				Help: "Identifiers with an open counting window",
			},
			func() float64 { return float64(tracked()) },
		)
		if err := reg.Register(gauge); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *PrometheusStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	outcome := "denied"
	if ev.Allowed {
		outcome = "allowed"
	}
	s.decisions.WithLabelValues(outcome).Inc()
	return nil
}
