package probe

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the probe pipeline.
type Metrics struct {
	Registry        *prometheus.Registry
	PagesProbed     *prometheus.CounterVec
	CountsExtracted *prometheus.CounterVec
	FetchFailures   prometheus.Counter
	RenderFailures  prometheus.Counter
	RetriesTotal    prometheus.Counter
	BatchRuns       prometheus.Counter
	CountryErrors   *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	pagesProbed := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "probe_pages_total",
			Help: "Total candidate pages probed, by country.",
		},
		[]string{"country"},
	)
	countsExtracted := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "probe_counts_extracted_total",
			Help: "Total counts successfully extracted, by pipeline stage.",
		},
		[]string{"source"},
	)
	fetchFailures := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "probe_fetch_failures_total",
			Help: "Total lightweight retrievals that returned no markup.",
		},
	)
	renderFailures := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "probe_render_failures_total",
			Help: "Total rendering attempts that returned no text.",
		},
	)
	retries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "probe_retries_total",
			Help: "Total retry attempts scheduled during discovery.",
		},
	)
	batchRuns := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "probe_batch_runs_total",
			Help: "Total batch check invocations.",
		},
	)
	countryErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "probe_country_errors_total",
			Help: "Total country-level failures, by country.",
		},
		[]string{"country"},
	)

	registry.MustRegister(pagesProbed, countsExtracted, fetchFailures,
		renderFailures, retries, batchRuns, countryErrors)

	return &Metrics{
		Registry:        registry,
		PagesProbed:     pagesProbed,
		CountsExtracted: countsExtracted,
		FetchFailures:   fetchFailures,
		RenderFailures:  renderFailures,
		RetriesTotal:    retries,
		BatchRuns:       batchRuns,
		CountryErrors:   countryErrors,
	}
}

// All increment helpers tolerate a nil receiver so the prober can run
// without metrics in tests.

func (m *Metrics) IncPage(country string) {
	if m == nil {
		return
	}
	m.PagesProbed.WithLabelValues(country).Inc()
}

func (m *Metrics) IncExtracted(source string) {
	if m == nil {
		return
	}
	m.CountsExtracted.WithLabelValues(source).Inc()
}

func (m *Metrics) IncFetchFailure() {
	if m == nil {
		return
	}
	m.FetchFailures.Inc()
}

func (m *Metrics) IncRenderFailure() {
	if m == nil {
		return
	}
	m.RenderFailures.Inc()
}

func (m *Metrics) IncRetry() {
	if m == nil {
		return
	}
	m.RetriesTotal.Inc()
}

func (m *Metrics) IncBatchRun() {
	if m == nil {
		return
	}
	m.BatchRuns.Inc()
}

func (m *Metrics) IncCountryError(country string) {
	if m == nil {
		return
	}
	m.CountryErrors.WithLabelValues(country).Inc()
}
