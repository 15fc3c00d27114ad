// monitor/monitor.go
package monitor

import (
	"expvar"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	OnlinePlayers  prometheus.Gauge
	ActiveRooms    prometheus.Gauge
	CommandsTotal  *prometheus.CounterVec
	CommandLatency prometheus.Histogram
	GamesFinished  prometheus.Counter
	Reconnects     prometheus.Counter
	GraceExpiries  prometheus.Counter
	ChatMessages   prometheus.Counter
}

func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OnlinePlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "online_players",
			Help:      "Number of open connections",
		}),
		ActiveRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_rooms",
			Help:      "Number of active rooms",
		}),
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Game commands processed, by action and outcome",
		}, []string{"action", "result"}),
		CommandLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_latency_seconds",
			Help:      "Time spent applying one command including the broadcast",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		GamesFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Games that reached a winner",
		}),
		Reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconnects_total",
			Help:      "Players that resumed their seat with a session token",
		}),
		GraceExpiries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grace_expiries_total",
			Help:      "Players removed after the reconnect grace period ran out",
		}),
		ChatMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_messages_total",
			Help:      "Chat messages accepted",
		}),
	}

	reg.MustRegister(
		m.OnlinePlayers,
		m.ActiveRooms,
		m.CommandsTotal,
		m.CommandLatency,
		m.GamesFinished,
		m.Reconnects,
		m.GraceExpiries,
		m.ChatMessages,
	)

	return m
}

// Monitor wraps the metrics. All methods are safe on a nil *Monitor, which
// is how rooms run in tests.
type Monitor struct {
	metrics      *Metrics
	startTime    time.Time
	requestCount int64
	mutex        sync.Mutex
}

// NewMonitor registers the metrics on reg; nil means the default registry.
func NewMonitor(namespace string, reg prometheus.Registerer) *Monitor {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &Monitor{
		metrics:   NewMetrics(namespace, reg),
		startTime: time.Now(),
	}
}

// Handler serves /metrics and /debug/vars.
func (m *Monitor) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/debug/vars", expvar.Handler())
	return mux
}

func (m *Monitor) StartServer(addr string) {
	// 添加expvar指标
	expvar.Publish("uptime", expvar.Func(func() interface{} {
		return time.Since(m.startTime).Seconds()
	}))
	expvar.Publish("requests", expvar.Func(func() interface{} {
		return m.Requests()
	}))

	go http.ListenAndServe(addr, m.Handler())
}

func (m *Monitor) IncOnlinePlayers() {
	if m == nil {
		return
	}
	m.metrics.OnlinePlayers.Inc()
}

func (m *Monitor) DecOnlinePlayers() {
	if m == nil {
		return
	}
	m.metrics.OnlinePlayers.Dec()
}

func (m *Monitor) SetActiveRooms(count int) {
	if m == nil {
		return
	}
	m.metrics.ActiveRooms.Set(float64(count))
}

// ObserveCommand counts one command and its latency.
func (m *Monitor) ObserveCommand(action string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "rejected"
	}
	m.metrics.CommandsTotal.WithLabelValues(action, result).Inc()
	m.metrics.CommandLatency.Observe(duration.Seconds())
	m.mutex.Lock()
	m.requestCount++
	m.mutex.Unlock()
}

func (m *Monitor) IncGamesFinished() {
	if m == nil {
		return
	}
	m.metrics.GamesFinished.Inc()
}

func (m *Monitor) IncReconnects() {
	if m == nil {
		return
	}
	m.metrics.Reconnects.Inc()
}

func (m *Monitor) IncGraceExpiries() {
	if m == nil {
		return
	}
	m.metrics.GraceExpiries.Inc()
}

func (m *Monitor) IncChatMessages() {
	if m == nil {
		return
	}
	m.metrics.ChatMessages.Inc()
}

// Requests is the number of commands observed since start.
func (m *Monitor) Requests() int64 {
	if m == nil {
		return 0
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.requestCount
}

func (m *Monitor) Uptime() time.Duration {
	if m == nil {
		return 0
	}
	return time.Since(m.startTime)
}
