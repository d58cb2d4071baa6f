// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラーやサービス層から利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestDuration(duration time.Duration)
	RecordReactionToggle(kind string)
	RecordCascadeDeleted(entity string, count int)
	RecordImageUpload()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus      *prometheus.CounterVec
	requestDuration prometheus.Histogram
	reactionToggles *prometheus.CounterVec
	cascadeDeleted  *prometheus.CounterVec
	imageUploads    prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "noteman_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "noteman_request_duration_seconds",
			Help:    "HTTPリクエスト処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		reactionToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "noteman_reaction_toggle_total",
			Help: "いいね・保存トグル操作の合計数",
		}, []string{"kind"}),
		cascadeDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "noteman_cascade_deleted_total",
			Help: "カスケード削除されたエンティティの合計数",
		}, []string{"entity"}),
		imageUploads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "noteman_image_uploads_total",
			Help: "ノート画像アップロードの合計数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestDuration,
		c.reactionToggles,
		c.cascadeDeleted,
		c.imageUploads,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestDuration はリクエストの処理時間を記録する。
func (c *Collector) RecordRequestDuration(duration time.Duration) {
	c.requestDuration.Observe(duration.Seconds())
}

// RecordReactionToggle はいいね・保存のトグル操作を記録する。
// kindは"like"または"save"。
func (c *Collector) RecordReactionToggle(kind string) {
	c.reactionToggles.WithLabelValues(kind).Inc()
}

// RecordCascadeDeleted はカスケード削除されたエンティティ数を記録する。
// entityは"topic"、"note"、"reaction"のいずれか。
func (c *Collector) RecordCascadeDeleted(entity string, count int) {
	c.cascadeDeleted.WithLabelValues(entity).Add(float64(count))
}

// RecordImageUpload は画像アップロードを記録する。
func (c *Collector) RecordImageUpload() {
	c.imageUploads.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
