// Package metrics 提供 Prometheus helper，包含常用 counter/gauge/histogram 模板
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wyfcoding/optionspricing/pkg/logger"
)

// Metrics 指标集合
type Metrics struct {
	// HTTP 请求计数
	HTTPRequestsTotal prometheus.Counter
	// HTTP 请求耗时
	HTTPRequestDuration prometheus.Histogram

	// 数据库查询计数
	DBQueriesTotal prometheus.Counter
	// 数据库查询耗时
	DBQueryDuration prometheus.Histogram

	// 缓存命中计数
	CacheHitsTotal prometheus.Counter
	// 缓存未命中计数
	CacheMissesTotal prometheus.Counter

	// 定价计算计数（按模型）
	PricingsTotal *prometheus.CounterVec
	// 定价失败计数（按模型）
	PricingErrorsTotal *prometheus.CounterVec
	// 单模型计算耗时（按模型）
	ModelDuration *prometheus.HistogramVec
	// 批量定价批次大小
	BatchSize prometheus.Histogram
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "options",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}),
		HTTPRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "options",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		DBQueriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "options",
			Subsystem: serviceName,
			Name:      "db_queries_total",
			Help:      "Total database queries",
		}),
		DBQueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "options",
			Subsystem: serviceName,
			Name:      "db_query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		CacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "options",
			Subsystem: serviceName,
			Name:      "cache_hits_total",
			Help:      "Total cache hits for latest pricing results",
		}),
		CacheMissesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "options",
			Subsystem: serviceName,
			Name:      "cache_misses_total",
			Help:      "Total cache misses for latest pricing results",
		}),

		PricingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "options",
			Subsystem: serviceName,
			Name:      "pricings_total",
			Help:      "Total option pricing calculations",
		}, []string{"model"}),
		PricingErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "options",
			Subsystem: serviceName,
			Name:      "pricing_errors_total",
			Help:      "Total failed option pricing calculations",
		}, []string{"model"}),
		ModelDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "options",
			Subsystem: serviceName,
			Name:      "model_duration_seconds",
			Help:      "Pricing model computation duration in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"model"}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "options",
			Subsystem: serviceName,
			Name:      "batch_size_contracts",
			Help:      "Number of contracts per batch pricing request",
			Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000},
		}),
	}
}

// Register 注册所有指标
func (m *Metrics) Register() error {
	collectors := []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueriesTotal,
		m.DBQueryDuration,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.PricingsTotal,
		m.PricingErrorsTotal,
		m.ModelDuration,
		m.BatchSize,
	}

	for _, c := range collectors {
		if err := prometheus.DefaultRegisterer.Register(c); err != nil {
			logger.Error(context.Background(), "Failed to register metric", "error", err)
			return err
		}
	}

	logger.Info(context.Background(), "Metrics registered successfully")
	return nil
}

// StartHTTPServer 启动 Prometheus HTTP 服务器
func StartHTTPServer(port int, path string) error {
	if path == "" {
		path = "/metrics"
	}

	http.Handle(path, promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info(context.Background(), "Starting Prometheus HTTP server", "addr", addr, "path", path)

	go func() {
		if err := http.ListenAndServe(addr, nil); err != nil {
			logger.Error(context.Background(), "Failed to start Prometheus HTTP server", "error", err)
		}
	}()

	return nil
}
