// Package metrics 定義查核流程的 Prometheus 指標。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// Namespace 為所有指標的命名空間
	Namespace = "tiktok_factcheck"

	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Metrics 持有所有指標；nil 的 *Metrics 可安全呼叫任何方法
type Metrics struct {
	VideosProcessedTotal *prometheus.CounterVec
	VerdictsTotal        *prometheus.CounterVec
	SearchErrorsTotal    *prometheus.CounterVec
	LLMRequestSeconds    *prometheus.HistogramVec
	RunsTotal            *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New 在指定的 registry 上建立並註冊所有指標；reg 為 nil 時建立新的 registry
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		VideosProcessedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "videos_processed_total",
				Help:      "Total number of videos processed by the pipeline",
			},
			[]string{"status"},
		),
		VerdictsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "verdicts_total",
				Help:      "Video-level verdicts produced by the fact checker",
			},
			[]string{"verdict"},
		),
		SearchErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "search_errors_total",
				Help:      "Search requests that failed and were skipped",
			},
			[]string{"category"},
		),
		LLMRequestSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "llm_request_seconds",
				Help:      "Latency of LLM analysis requests",
				Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
			},
			[]string{"provider", "status"},
		),
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "runs_total",
				Help:      "Pipeline runs by trigger",
			},
			[]string{"trigger"},
		),
		gatherer: reg,
	}
}

// Handler 回傳 /metrics 使用的 HTTP handler
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveVideo 記錄一支影片的處理結果
func (m *Metrics) ObserveVideo(status string) {
	if m == nil {
		return
	}
	m.VideosProcessedTotal.WithLabelValues(status).Inc()
}

// ObserveVerdict 記錄一個影片層級的結論
func (m *Metrics) ObserveVerdict(verdict string) {
	if m == nil {
		return
	}
	m.VerdictsTotal.WithLabelValues(verdict).Inc()
}

// ObserveSearchError 記錄一次被略過的搜尋錯誤
func (m *Metrics) ObserveSearchError(category string) {
	if m == nil {
		return
	}
	m.SearchErrorsTotal.WithLabelValues(category).Inc()
}

// ObserveLLM 記錄一次 LLM 呼叫的耗時
func (m *Metrics) ObserveLLM(provider string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusFailed
	}
	m.LLMRequestSeconds.WithLabelValues(provider, status).Observe(elapsed.Seconds())
}

// ObserveRun 記錄一次流程執行的觸發來源
func (m *Metrics) ObserveRun(trigger string) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(trigger).Inc()
}
