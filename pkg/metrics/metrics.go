// Package metrics 提供 Prometheus helper，包含常用 counter/gauge/histogram 模板
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wyfcoding/insurancerating/pkg/logger"
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

	// Redis 操作计数
	RedisOpsTotal prometheus.Counter

	// 业务指标
	QuotesEvaluatedTotal   prometheus.Counter
	QuotesReferredTotal    prometheus.Counter
	QuotesRejectedTotal    prometheus.Counter
	MinimumPremiumApplied  prometheus.Counter
	ConfigVersionsSaved    prometheus.Counter
	SnapshotCacheHitsTotal prometheus.Counter
	SnapshotCacheMissTotal prometheus.Counter
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rating",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}),
		HTTPRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rating",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		DBQueriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rating",
			Subsystem: serviceName,
			Name:      "db_queries_total",
			Help:      "Total database queries",
		}),
		DBQueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rating",
			Subsystem: serviceName,
			Name:      "db_query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		RedisOpsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rating",
			Subsystem: serviceName,
			Name:      "redis_ops_total",
			Help:      "Total Redis operations",
		}),

		QuotesEvaluatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rating",
			Subsystem: serviceName,
			Name:      "quotes_evaluated_total",
			Help:      "Total quotes evaluated successfully",
		}),
		QuotesReferredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rating",
			Subsystem: serviceName,
			Name:      "quotes_referred_total",
			Help:      "Quotes referred for manual underwriting",
		}),
		QuotesRejectedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rating",
			Subsystem: serviceName,
			Name:      "quotes_rejected_total",
			Help:      "Quote evaluations aborted with a rating error",
		}),
		MinimumPremiumApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rating",
			Subsystem: serviceName,
			Name:      "minimum_premium_applied_total",
			Help:      "Quotes where the minimum premium floor fired",
		}),
		ConfigVersionsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rating",
			Subsystem: serviceName,
			Name:      "config_versions_saved_total",
			Help:      "Product configuration versions written",
		}),
		SnapshotCacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rating",
			Subsystem: serviceName,
			Name:      "snapshot_cache_hits_total",
			Help:      "Configuration snapshot cache hits",
		}),
		SnapshotCacheMissTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rating",
			Subsystem: serviceName,
			Name:      "snapshot_cache_miss_total",
			Help:      "Configuration snapshot cache misses",
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
		m.RedisOpsTotal,
		m.QuotesEvaluatedTotal,
		m.QuotesReferredTotal,
		m.QuotesRejectedTotal,
		m.MinimumPremiumApplied,
		m.ConfigVersionsSaved,
		m.SnapshotCacheHitsTotal,
		m.SnapshotCacheMissTotal,
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
func StartHTTPServer(port int, path string) {
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
}
