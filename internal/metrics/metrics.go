// Package metrics はエクスポート処理のPrometheusメトリクスを提供します。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReportsRendered は生成された単票PDFレポートの総数です。
	ReportsRendered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "report_renders_total",
			Help: "Total number of single-record PDF reports rendered",
		},
	)

	// RenderDuration は単票レポート生成にかかった時間です。
	RenderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "report_render_duration_seconds",
			Help:    "Duration of single-record PDF report rendering",
			Buckets: prometheus.DefBuckets,
		},
	)

	// ExportsTotal は結合・暗号化まで完了したエクスポートの総数です。
	ExportsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "report_exports_total",
			Help: "Total number of merged and encrypted report exports delivered",
		},
	)

	// ExportFailures はエクスポート失敗数をエラーコード別に数えます。
	ExportFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_export_failures_total",
			Help: "Total number of failed report exports by error code",
		},
		[]string{"code"},
	)
)
