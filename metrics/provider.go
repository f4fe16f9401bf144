// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricsNamespace  = "jirabugmonitor"
	httpNamespace     = "requests"
	outboundNamespace = "outbound"
	pipelineNamespace = "pipeline"
	cronNamespace     = "cron"

	defaultPrometheusTimeoutSeconds = 60
)

type Provider interface {
	ObserveHTTPRequestDuration(handler, method, statusCode string, elapsed float64)

	ObserveOutboundRequestDuration(handler, method, statusCode string, elapsed float64)
	IncreaseOutboundCacheHits(method, handler string)
	IncreaseOutboundCacheMisses(method, handler string)

	ObserveDashboardBuildDuration(source string, elapsed float64)
	IncreaseDashboardBuildErrors(source string)
	IncreaseLinkExpansionFailures(source string)

	ObserveCronTaskDuration(name string, elapsed float64)
	IncreaseCronTaskErrors(name string)
}

type PrometheusProvider struct {
	Registry *prometheus.Registry

	httpRequestsDuration *prometheus.HistogramVec

	outboundRequests    *prometheus.HistogramVec
	outboundCacheHits   *prometheus.CounterVec
	outboundCacheMisses *prometheus.CounterVec

	dashboardBuilds      *prometheus.HistogramVec
	dashboardBuildErrors *prometheus.CounterVec
	expansionFailures    *prometheus.CounterVec

	cronTasksDuration *prometheus.HistogramVec
	cronTasksErrors   *prometheus.CounterVec
}

func NewPrometheusProvider() *PrometheusProvider {
	provider := &PrometheusProvider{}
	provider.Registry = prometheus.NewRegistry()
	options := prometheus.ProcessCollectorOpts{
		Namespace: metricsNamespace,
	}
	provider.Registry.MustRegister(prometheus.NewProcessCollector(options))
	provider.Registry.MustRegister(prometheus.NewGoCollector())

	provider.httpRequestsDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: httpNamespace,
			Name:      "requests",
			Help:      "Duration of the received relay http requests.",
		},
		[]string{"method", "handler", "status_code"},
	)
	provider.Registry.MustRegister(provider.httpRequestsDuration)

	provider.outboundRequests = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: outboundNamespace,
			Name:      "requests",
			Help:      "Duration of the performed outbound http requests.",
		},
		[]string{"method", "handler", "status_code"},
	)
	provider.Registry.MustRegister(provider.outboundRequests)

	provider.outboundCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: outboundNamespace,
			Name:      "cache_hits",
			Help:      "Number of cache hits for requested method and handler.",
		},
		[]string{"method", "handler"},
	)
	provider.Registry.MustRegister(provider.outboundCacheHits)

	provider.outboundCacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: outboundNamespace,
			Name:      "cache_miss",
			Help:      "Number of cache misses for requested method and handler.",
		},
		[]string{"method", "handler"},
	)
	provider.Registry.MustRegister(provider.outboundCacheMisses)

	provider.dashboardBuilds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: pipelineNamespace,
			Name:      "dashboard_builds",
			Help:      "Duration of dashboard builds.",
		},
		[]string{"source"},
	)
	provider.Registry.MustRegister(provider.dashboardBuilds)

	provider.dashboardBuildErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: pipelineNamespace,
			Name:      "dashboard_build_errors",
			Help:      "Number of dashboard builds that failed at the search step.",
		},
		[]string{"source"},
	)
	provider.Registry.MustRegister(provider.dashboardBuildErrors)

	provider.expansionFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: pipelineNamespace,
			Name:      "link_expansion_failures",
			Help:      "Number of linked issues dropped because their fetch failed.",
		},
		[]string{"source"},
	)
	provider.Registry.MustRegister(provider.expansionFailures)

	provider.cronTasksDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: cronNamespace,
			Name:      "tasks",
			Help:      "Duration for the executed cron tasks.",
		},
		[]string{"name"},
	)
	provider.Registry.MustRegister(provider.cronTasksDuration)

	provider.cronTasksErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: cronNamespace,
			Name:      "errors",
			Help:      "Number of failed cron tasks.",
		},
		[]string{"name"},
	)
	provider.Registry.MustRegister(provider.cronTasksErrors)

	return provider
}

func (p *PrometheusProvider) ObserveHTTPRequestDuration(handler, method, statusCode string, elapsed float64) {
	p.httpRequestsDuration.With(
		prometheus.Labels{"method": method, "handler": handler, "status_code": statusCode},
	).Observe(elapsed)
}

func (p *PrometheusProvider) ObserveOutboundRequestDuration(handler, method, statusCode string, elapsed float64) {
	p.outboundRequests.With(
		prometheus.Labels{"method": method, "handler": handler, "status_code": statusCode},
	).Observe(elapsed)
}

func (p *PrometheusProvider) IncreaseOutboundCacheHits(method, handler string) {
	p.outboundCacheHits.WithLabelValues(method, handler).Add(1)
}

func (p *PrometheusProvider) IncreaseOutboundCacheMisses(method, handler string) {
	p.outboundCacheMisses.WithLabelValues(method, handler).Add(1)
}

func (p *PrometheusProvider) ObserveDashboardBuildDuration(source string, elapsed float64) {
	p.dashboardBuilds.With(prometheus.Labels{"source": source}).Observe(elapsed)
}

func (p *PrometheusProvider) IncreaseDashboardBuildErrors(source string) {
	p.dashboardBuildErrors.WithLabelValues(source).Add(1)
}

func (p *PrometheusProvider) IncreaseLinkExpansionFailures(source string) {
	p.expansionFailures.WithLabelValues(source).Add(1)
}

func (p *PrometheusProvider) ObserveCronTaskDuration(name string, elapsed float64) {
	p.cronTasksDuration.With(prometheus.Labels{"name": name}).Observe(elapsed)
}

func (p *PrometheusProvider) IncreaseCronTaskErrors(name string) {
	p.cronTasksErrors.WithLabelValues(name).Add(1)
}

func (p *PrometheusProvider) Handler() Handler {
	handler := promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{
		Timeout:           time.Duration(defaultPrometheusTimeoutSeconds) * time.Second,
		EnableOpenMetrics: true,
	})
	return Handler{
		Path:        "/metrics",
		Description: "Prometheus Metrics",
		Handler:     handler,
	}
}
