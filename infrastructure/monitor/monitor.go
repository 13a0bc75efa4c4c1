package monitor

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Monitor Prometheus监控指标收集器
type Monitor struct {
	registry *prometheus.Registry

	// 行情/流水线指标
	TicksTotal      prometheus.Counter
	ReconcilePasses prometheus.Counter
	FeedReconnects  prometheus.Counter
	FeedErrors      prometheus.Counter

	// 订单指标
	OrdersPlaced   prometheus.Counter
	OrdersCanceled prometheus.Counter
	OrdersRejected prometheus.Counter
	FillsTotal     prometheus.Counter

	// 报价指标
	LastPrice    prometheus.Gauge
	TargetBid    prometheus.Gauge
	TargetAsk    prometheus.Gauge
	ReservePrice prometheus.Gauge

	// 仓位/盈亏指标
	LongPosition  prometheus.Gauge
	ShortPosition prometheus.Gauge
	NetInventory  prometheus.Gauge
	RealizedPnL   prometheus.Gauge
	UnrealizedPnL prometheus.Gauge

	// 会话指标
	SessionState prometheus.Gauge // 0=idle 1=running
	Restarts     prometheus.Counter
}

// Config 监控配置
type Config struct {
	Namespace string
	Subsystem string
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{Namespace: "mm", Subsystem: "gate"}
}

// New 创建监控器
func New(cfg Config) *Monitor {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace, Subsystem: cfg.Subsystem, Name: name, Help: help,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace, Subsystem: cfg.Subsystem, Name: name, Help: help,
		})
	}

	return &Monitor{
		registry: reg,

		TicksTotal:      counter("ticks_total", "Price ticks processed"),
		ReconcilePasses: counter("reconcile_passes_total", "Order reconciliation passes executed"),
		FeedReconnects:  counter("feed_reconnects_total", "Market data feed reconnects"),
		FeedErrors:      counter("feed_errors_total", "Malformed feed messages discarded"),

		OrdersPlaced:   counter("orders_placed_total", "Orders placed"),
		OrdersCanceled: counter("orders_canceled_total", "Orders canceled"),
		OrdersRejected: counter("orders_rejected_total", "Order placements rejected by the gateway"),
		FillsTotal:     counter("fills_total", "Fills applied to the ledger"),

		LastPrice:    gauge("last_price", "Last trade price"),
		TargetBid:    gauge("target_bid", "Current target bid"),
		TargetAsk:    gauge("target_ask", "Current target ask"),
		ReservePrice: gauge("reserve_price", "Inventory-adjusted reserve price"),

		LongPosition:  gauge("long_position", "Long position size"),
		ShortPosition: gauge("short_position", "Short position size"),
		NetInventory:  gauge("net_inventory", "Net inventory (long - short)"),
		RealizedPnL:   gauge("realized_pnl", "Realized PnL"),
		UnrealizedPnL: gauge("unrealized_pnl", "Unrealized PnL"),

		SessionState: gauge("session_state", "Session state (0=idle, 1=running)"),
		Restarts:     counter("session_restarts_total", "Guardian-triggered session restarts"),
	}
}

// Handler 返回 /metrics 的 http.Handler。
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve 在 addr 上启动指标服务器（非阻塞）。
func (m *Monitor) Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	go func() {
		_ = http.ListenAndServe(addr, mux)
	}()
}
