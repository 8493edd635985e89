// Package metrics collects application metrics. The interface decouples
// services from the Prometheus implementation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics interface {
	IncConfirmation(outcome string)
	IncPromotion()
	IncMatchFinalized()
	IncStandingsRequest()
}

var _ Metrics = (*Service)(nil)

type Service struct {
	Confirmations     *prometheus.CounterVec
	Promotions        prometheus.Counter
	MatchesFinalized  prometheus.Counter
	StandingsRequests prometheus.Counter
}

// NewService creates and registers the Prometheus metrics. If no
// registerer is provided, the default Prometheus registerer is used.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		Confirmations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "club_confirmations_total",
			Help: "The total number of attendance confirmation writes, by resulting status.",
		}, []string{"outcome"}),
		Promotions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "club_waitlist_promotions_total",
			Help: "The total number of waiting players promoted to confirmed.",
		}),
		MatchesFinalized: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "club_matches_finalized_total",
			Help: "The total number of matches moved to completed.",
		}),
		StandingsRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "club_standings_requests_total",
			Help: "The total number of standings computations served.",
		}),
	}

	reg.MustRegister(
		s.Confirmations,
		s.Promotions,
		s.MatchesFinalized,
		s.StandingsRequests,
	)
	return s
}

// NewMetricsHandler returns an http.Handler for the given Gatherer. If no
// gatherer is provided, the default one is used.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

func (s *Service) IncConfirmation(outcome string) { s.Confirmations.WithLabelValues(outcome).Inc() }
func (s *Service) IncPromotion()                  { s.Promotions.Inc() }
func (s *Service) IncMatchFinalized()             { s.MatchesFinalized.Inc() }
func (s *Service) IncStandingsRequest()           { s.StandingsRequests.Inc() }
