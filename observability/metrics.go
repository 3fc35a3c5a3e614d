package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// EngineCollector bundles the Prometheus metrics of the HTTP surface and the matching and
// pricing engines. A nil *EngineCollector is valid and records nothing.
type EngineCollector struct {
	gatherer prometheus.Gatherer

	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec

	MatchCandidates     prometheus.Histogram
	ProximityMultiplier prometheus.Histogram
	PriceQuotes         *prometheus.CounterVec
	LocationReports     *prometheus.CounterVec
}

// NewEngineCollector registers the engine metrics against reg, defaulting to the global
// registry when nil.
func NewEngineCollector(reg prometheus.Registerer) (*EngineCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of handled HTTP requests, labeled by method, route, and status code.",
	}, []string{"method", "route", "code"}), "http_requests_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"method", "route"}), "http_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	candidates, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "match_candidates",
		Help:    "Eligible providers per matching request, before the result cap.",
		Buckets: []float64{0, 1, 2, 3, 5, 10, 20, 50},
	}), "match_candidates")
	if err != nil {
		return nil, err
	}

	multiplier, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "proximity_multiplier",
		Help:    "Proximity multipliers applied to priced requests.",
		Buckets: []float64{0.8, 1, 1.1, 1.25, 1.5, 2, 3, 5},
	}), "proximity_multiplier")
	if err != nil {
		return nil, err
	}

	quotes, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "price_quotes_total",
		Help: "Price quotes produced, labeled by currency and whether the market minimum fee applied.",
	}, []string{"currency", "minimum_fee_applied"}), "price_quotes_total")
	if err != nil {
		return nil, err
	}

	reports, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "location_reports_total",
		Help: "Provider location reports, labeled by outcome.",
	}, []string{"result"}), "location_reports_total")
	if err != nil {
		return nil, err
	}

	return &EngineCollector{
		gatherer:            gatherer,
		HTTPRequests:        requests,
		HTTPDurations:       durations,
		MatchCandidates:     candidates,
		ProximityMultiplier: multiplier,
		PriceQuotes:         quotes,
		LocationReports:     reports,
	}, nil
}

// ObserveHTTP records one handled request.
func (c *EngineCollector) ObserveHTTP(method, route string, code int, elapsed time.Duration) {
	if c == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	c.HTTPDurations.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveMatch records the eligible candidate count of one matching request.
func (c *EngineCollector) ObserveMatch(candidates int) {
	if c == nil {
		return
	}
	c.MatchCandidates.Observe(float64(candidates))
}

// ObserveQuote records one price quote.
func (c *EngineCollector) ObserveQuote(currency string, minimumFeeApplied bool, proximityMultiplier float64) {
	if c == nil {
		return
	}
	c.PriceQuotes.WithLabelValues(currency, strconv.FormatBool(minimumFeeApplied)).Inc()
	c.ProximityMultiplier.Observe(proximityMultiplier)
}

// ObserveLocationReport records the outcome of one location report.
func (c *EngineCollector) ObserveLocationReport(result string) {
	if c == nil {
		return
	}
	c.LocationReports.WithLabelValues(result).Inc()
}

// Handler exposes a ready-to-use /metrics handler.
func (c *EngineCollector) Handler() http.Handler {
	if c == nil || c.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}
