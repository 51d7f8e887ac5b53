package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pdfDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cvbuilder",
			Subsystem: "pdf",
			Name:      "generation_duration_seconds",
			Help:      "PDF 生成耗时分布（秒），按引擎区分。",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
		[]string{"engine"},
	)

	pdfFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cvbuilder",
			Subsystem: "pdf",
			Name:      "generation_failures_total",
			Help:      "PDF 生成失败次数，按引擎区分。",
		},
		[]string{"engine"},
	)

	exportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cvbuilder",
			Subsystem: "export",
			Name:      "documents_total",
			Help:      "成功生成的文档数量（export / preview / async）。",
		},
		[]string{"kind"},
	)
)

// ObservePDFGeneration 记录一次生成尝试。
func ObservePDFGeneration(engine string, elapsed time.Duration, err error) {
	pdfDuration.WithLabelValues(engine).Observe(elapsed.Seconds())
	if err != nil {
		pdfFailures.WithLabelValues(engine).Inc()
	}
}

// CountDocument 记录一份成功交付的文档。
func CountDocument(kind string) {
	exportsTotal.WithLabelValues(kind).Inc()
}
