// Package metrics 提供衣橱服务的 Prometheus 指标采集与暴露。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder 是服务层与 HTTP 层使用的指标接口。
type Recorder interface {
	RecordSuggestion(size int)
	RecordWear(garments int)
	RecordStoreFailure(op, kind string)
	RecordStaleRead(op string)
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
}

// Collector 是基于 Prometheus 的 Recorder 实现。
type Collector struct {
	suggestions      prometheus.Counter
	emptySuggestions prometheus.Counter
	outfitsWorn      prometheus.Counter
	garmentWears     prometheus.Counter
	storeFailures    *prometheus.CounterVec
	staleReads       *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpLatency      *prometheus.HistogramVec
}

// NewCollector 创建 Collector 并注册到指定的 registry。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		suggestions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "closet_suggestions_total",
			Help: "生成的穿搭推荐次数",
		}),
		emptySuggestions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "closet_suggestions_empty_total",
			Help: "没有任何候选衣物的推荐次数",
		}),
		outfitsWorn: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "closet_outfits_worn_total",
			Help: "记录为已穿着的穿搭次数",
		}),
		garmentWears: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "closet_garment_wears_total",
			Help: "衣物穿着次数累计",
		}),
		storeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "closet_store_failures_total",
			Help: "衣橱存储读写失败次数",
		}, []string{"op", "kind"}),
		staleReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "closet_stale_reads_total",
			Help: "返回缓存快照的读取次数",
		}, []string{"op"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "closet_http_requests_total",
			Help: "按路由与状态码统计的 HTTP 请求数",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "closet_http_request_duration_seconds",
			Help:    "HTTP 请求耗时（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		c.suggestions,
		c.emptySuggestions,
		c.outfitsWorn,
		c.garmentWears,
		c.storeFailures,
		c.staleReads,
		c.httpRequests,
		c.httpLatency,
	)

	return c
}

// RecordSuggestion 记录一次推荐及其结果大小。
func (c *Collector) RecordSuggestion(size int) {
	c.suggestions.Inc()
	if size == 0 {
		c.emptySuggestions.Inc()
	}
}

// RecordWear 记录一次穿着。
func (c *Collector) RecordWear(garments int) {
	c.outfitsWorn.Inc()
	c.garmentWears.Add(float64(garments))
}

// RecordStoreFailure 记录存储失败，kind 为 read 或 write。
func (c *Collector) RecordStoreFailure(op, kind string) {
	c.storeFailures.WithLabelValues(op, kind).Inc()
}

func (c *Collector) RecordStaleRead(op string) {
	c.staleReads.WithLabelValues(op).Inc()
}

// RecordHTTPRequest 记录 HTTP 请求。route 应为路由模板而非原始路径。
func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler 返回 Prometheus 抓取用的 HTTP handler。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop 丢弃所有指标，用于关闭指标或测试。
type Nop struct{}

func (Nop) RecordSuggestion(int) {}
func (Nop) RecordWear(int) {}
func (Nop) RecordStoreFailure(string, string) {}
func (Nop) RecordStaleRead(string) {}
func (Nop) RecordHTTPRequest(string, string, int, time.Duration) {}

var _ Recorder = (*Collector)(nil)
var _ Recorder = Nop{}
