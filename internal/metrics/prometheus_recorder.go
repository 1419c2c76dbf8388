package metrics

import (
	"strconv"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "mdpreview"

// Compile-time interface check
var _ Recorder = (*PrometheusRecorder)(nil)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once               sync.Once
	renderDuration     *prom.HistogramVec
	renders            *prom.CounterVec
	highlightFallbacks *prom.CounterVec
	cacheLookups       *prom.CounterVec
	exportDuration     *prom.HistogramVec
}

// NewPrometheusRecorder constructs the collectors and registers them on reg.
// A nil reg uses a private registry.
func NewPrometheusRecorder(reg prom.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.renderDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Duration of markdown to HTML renders",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"outcome"})
		pr.renders = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Renders by outcome",
		}, []string{"outcome"})
		pr.highlightFallbacks = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "highlight_fallbacks_total",
			Help:      "Code blocks rendered as escaped plain text, by language",
		}, []string{"lang"})
		pr.cacheLookups = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Preview cache lookups by result",
		}, []string{"result"})
		pr.exportDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "export_duration_seconds",
			Help:      "Duration of HTML and PDF exports",
			Buckets:   prom.DefBuckets,
		}, []string{"format", "success"})
		reg.MustRegister(pr.renderDuration, pr.renders, pr.highlightFallbacks, pr.cacheLookups, pr.exportDuration)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveRender(d time.Duration, outcome Outcome) {
	if p == nil || p.renderDuration == nil {
		return
	}
	p.renderDuration.WithLabelValues(string(outcome)).Observe(d.Seconds())
	p.renders.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncHighlightFallback(lang string) {
	if p == nil || p.highlightFallbacks == nil {
		return
	}
	if lang == "" {
		lang = "none"
	}
	p.highlightFallbacks.WithLabelValues(lang).Inc()
}

func (p *PrometheusRecorder) IncCacheLookup(hit bool) {
	if p == nil || p.cacheLookups == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	p.cacheLookups.WithLabelValues(result).Inc()
}

func (p *PrometheusRecorder) ObserveExport(format string, d time.Duration, success bool) {
	if p == nil || p.exportDuration == nil {
		return
	}
	p.exportDuration.WithLabelValues(format, strconv.FormatBool(success)).Observe(d.Seconds())
}
