package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics は同期エンジンの Prometheus メトリクス。
type Metrics struct {
	Reads          *prometheus.CounterVec
	Writes         *prometheus.CounterVec
	Conflicts      prometheus.Counter
	RetryExhausted prometheus.Counter
	Notifications  prometheus.Counter
}

// New はメトリクスを作成し、レジストリに登録する。
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Reads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "configsync_reads_total",
			Help: "Number of config reads by cache result.",
		}, []string{"result"}),
		Writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "configsync_writes_total",
			Help: "Number of committed bulk updates by source.",
		}, []string{"source"}),
		Conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "configsync_write_conflicts_total",
			Help: "Number of bulk updates rejected by version conflict.",
		}),
		RetryExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "configsync_retry_exhausted_total",
			Help: "Number of store operations that exhausted the retry budget.",
		}),
		Notifications: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "configsync_notifications_total",
			Help: "Number of change notifications handed to the broadcast channel.",
		}),
	}
	reg.MustRegister(m.Reads, m.Writes, m.Conflicts, m.RetryExhausted, m.Notifications)
	return m
}
