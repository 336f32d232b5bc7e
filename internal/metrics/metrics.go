// Package metrics collects and exposes Prometheus metrics for the tracker.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the metrics surface used by the syncer and the HTTP client.
type Recorder interface {
	RecordSourceSynced(domain string, ok bool)
	RecordCacheLookup(hit bool)
	RecordChapterRetry(domain string)
	RecordHTTPStatus(host string, statusCode int)
	RecordFetchLatency(host string, duration time.Duration)
	RecordSyncPass(duration time.Duration, newChapters int)
}

// Collector is the Prometheus implementation of Recorder.
type Collector struct {
	sourcesSynced *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
	retries       *prometheus.CounterVec
	httpStatus    *prometheus.CounterVec
	fetchLatency  *prometheus.HistogramVec
	passDuration  prometheus.Histogram
	newChapters   prometheus.Gauge
	lastPass      prometheus.Gauge
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		sourcesSynced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mangasync_sources_synced_total",
			Help: "Sources synchronized, by domain and outcome.",
		}, []string{"domain", "result"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mangasync_feed_cache_lookups_total",
			Help: "Feed cache lookups, by outcome.",
		}, []string{"result"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mangasync_chapter_retries_total",
			Help: "Fresh refetches triggered by a chapter marker missing from the feed.",
		}, []string{"domain"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mangasync_http_status_total",
			Help: "Remote responses by host and status code.",
		}, []string{"host", "status_code"}),
		fetchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mangasync_fetch_latency_seconds",
			Help:    "Latency of remote page fetches.",
			Buckets: prometheus.DefBuckets,
		}, []string{"host"}),
		passDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mangasync_sync_pass_duration_seconds",
			Help:    "Duration of full synchronization passes.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		newChapters: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mangasync_last_pass_new_chapters",
			Help: "Total unread chapters found by the last pass.",
		}),
		lastPass: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mangasync_last_pass_timestamp_seconds",
			Help: "Unix time the last pass finished.",
		}),
	}

	reg.MustRegister(
		c.sourcesSynced,
		c.cacheLookups,
		c.retries,
		c.httpStatus,
		c.fetchLatency,
		c.passDuration,
		c.newChapters,
		c.lastPass,
	)

	return c
}

func (c *Collector) RecordSourceSynced(domain string, ok bool) {
	result := "success"
	if !ok {
		result = "error"
	}
	c.sourcesSynced.WithLabelValues(domain, result).Inc()
}

func (c *Collector) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cacheLookups.WithLabelValues(result).Inc()
}

func (c *Collector) RecordChapterRetry(domain string) {
	c.retries.WithLabelValues(domain).Inc()
}

func (c *Collector) RecordHTTPStatus(host string, statusCode int) {
	c.httpStatus.WithLabelValues(host, strconv.Itoa(statusCode)).Inc()
}

func (c *Collector) RecordFetchLatency(host string, duration time.Duration) {
	c.fetchLatency.WithLabelValues(host).Observe(duration.Seconds())
}

// RecordSyncPass records a finished pass.
func (c *Collector) RecordSyncPass(duration time.Duration, newChapters int) {
	c.passDuration.Observe(duration.Seconds())
	c.newChapters.Set(float64(newChapters))
	c.lastPass.SetToCurrentTime()
}

// Nop discards every measurement.
type Nop struct{}

func (Nop) RecordSourceSynced(string, bool) {}
func (Nop) RecordCacheLookup(bool) {}
func (Nop) RecordChapterRetry(string) {}
func (Nop) RecordHTTPStatus(string, int) {}
func (Nop) RecordFetchLatency(string, time.Duration) {}
func (Nop) RecordSyncPass(time.Duration, int) {}

// Handler returns the HTTP handler Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
