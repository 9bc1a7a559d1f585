package metrics

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "collegegpt_request_duration_seconds",
			Help:    "End-to-end question handling duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 40},
		},
		[]string{"strategy"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collegegpt_requests_total",
			Help: "Total number of questions answered",
		},
		[]string{"strategy", "success"},
	)

	StageOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collegegpt_stage_outcomes_total",
			Help: "Cascade stage attempts by outcome (answered, skipped, panic)",
		},
		[]string{"stage", "outcome"},
	)

	FetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collegegpt_fetch_total",
			Help: "Page fetches by outcome",
		},
		[]string{"renderer", "outcome"},
	)

	FetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "collegegpt_fetch_duration_seconds",
			Help:    "Page fetch duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 15},
		},
		[]string{"renderer"},
	)

	ExtractedItems = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "collegegpt_extracted_items",
			Help:    "Items extracted per page",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		},
		[]string{"extractor"},
	)

	LLMRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collegegpt_llm_requests_total",
			Help: "Language model calls by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	LLMTokensUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collegegpt_llm_tokens_used",
			Help: "Total LLM tokens used",
		},
		[]string{"model", "type"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collegegpt_cache_hits_total",
			Help: "Total answer cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collegegpt_cache_misses_total",
			Help: "Total answer cache misses",
		},
		[]string{"cache_type"},
	)

	RateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "collegegpt_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestDuration,
			RequestsTotal,
			StageOutcomes,
			FetchTotal,
			FetchDuration,
			ExtractedItems,
			LLMRequests,
			LLMTokensUsed,
			CacheHits,
			CacheMisses,
			RateLimited,
		)
	})
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
