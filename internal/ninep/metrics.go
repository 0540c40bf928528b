package ninep

import (
	"net"
	"sync"

	"github.com/higebu/netfd"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sys/unix"
)

// Metrics is a prometheus.Collector tracking live 9P connections and
// their TCP_INFO diagnostics, grounded in runZeroInc-conniver's
// pkg/exporter TCPInfoCollector: a map keyed by net.Conn, populated on
// accept and drained on close, collected on scrape rather than pushed.
type Metrics struct {
	mu    sync.Mutex
	conns map[net.Conn]connLabel

	activeConns  prometheus.Gauge
	rttDesc      *prometheus.Desc
	rttVarDesc   *prometheus.Desc
	retransDesc  *prometheus.Desc
}

type connLabel struct {
	id     string
	remote string
}

// NewMetrics creates an unregistered collector; callers register it
// with prometheus.MustRegister.
func NewMetrics() *Metrics {
	return &Metrics{
		conns: make(map[net.Conn]connLabel),
		activeConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ninep",
			Name:      "active_connections",
			Help:      "Number of currently open 9P connections.",
		}),
		rttDesc: prometheus.NewDesc(
			"ninep_tcp_rtt_microseconds",
			"Smoothed round-trip time reported by TCP_INFO for a connection.",
			[]string{"conn", "remote"}, nil,
		),
		rttVarDesc: prometheus.NewDesc(
			"ninep_tcp_rttvar_microseconds",
			"Round-trip time variance reported by TCP_INFO for a connection.",
			[]string{"conn", "remote"}, nil,
		),
		retransDesc: prometheus.NewDesc(
			"ninep_tcp_retransmits_total",
			"Retransmitted segment count reported by TCP_INFO for a connection.",
			[]string{"conn", "remote"}, nil,
		),
	}
}

// Add registers a newly accepted connection under the given
// correlation id (conventionally an xid.New().String(), see server.go).
func (m *Metrics) Add(conn net.Conn, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conns[conn] = connLabel{id: id, remote: conn.RemoteAddr().String()}
	m.activeConns.Inc()
}

// Remove drops a closed connection from the scrape set.
func (m *Metrics) Remove(conn net.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.conns[conn]; ok {
		delete(m.conns, conn)
		m.activeConns.Dec()
	}
}

func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- m.activeConns.Desc()
	ch <- m.rttDesc
	ch <- m.rttVarDesc
	ch <- m.retransDesc
}

func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	ch <- m.activeConns

	m.mu.Lock()
	snapshot := make(map[net.Conn]connLabel, len(m.conns))
	for c, l := range m.conns {
		snapshot[c] = l
	}
	m.mu.Unlock()

	for conn, label := range snapshot {
		tc, ok := conn.(*net.TCPConn)
		if !ok {
			continue
		}
		fd := netfd.GetFdFromConn(tc)
		info, err := unix.GetsockoptTCPInfo(fd, unix.IPPROTO_TCP, unix.TCP_INFO)
		if err != nil {
			continue
		}
		ch <- prometheus.MustNewConstMetric(m.rttDesc, prometheus.GaugeValue, float64(info.Rtt), label.id, label.remote)
		ch <- prometheus.MustNewConstMetric(m.rttVarDesc, prometheus.GaugeValue, float64(info.Rttvar), label.id, label.remote)
		ch <- prometheus.MustNewConstMetric(m.retransDesc, prometheus.CounterValue, float64(info.Total_retrans), label.id, label.remote)
	}
}
