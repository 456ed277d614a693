package seed

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the seeder's Prometheus collectors. A nil *Metrics records
// nothing.
type Metrics struct {
	documentsCreated *prometheus.CounterVec
	documentsDeleted *prometheus.CounterVec
	filesUploaded    prometheus.Counter
	filesDeleted     *prometheus.CounterVec
	runDuration      prometheus.Gauge
	lastSuccess      prometheus.Gauge
	stepsCompleted   prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		documentsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "menuseed",
			Subsystem: "seed",
			Name:      "documents_created_total",
			Help:      "Documents created, by collection.",
		}, []string{"collection"}),
		documentsDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "menuseed",
			Subsystem: "seed",
			Name:      "documents_deleted_total",
			Help:      "Document deletes issued while clearing, by collection and result.",
		}, []string{"collection", "result"}),
		filesUploaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "menuseed",
			Subsystem: "seed",
			Name:      "files_uploaded_total",
			Help:      "Images uploaded to the bucket.",
		}),
		filesDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "menuseed",
			Subsystem: "seed",
			Name:      "files_deleted_total",
			Help:      "File deletes issued while clearing, by result.",
		}, []string{"result"}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "menuseed",
			Subsystem: "seed",
			Name:      "last_run_duration_seconds",
			Help:      "Duration of the last seed run.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "menuseed",
			Subsystem: "seed",
			Name:      "last_run_success",
			Help:      "1 if the last seed run succeeded, 0 otherwise.",
		}),
		stepsCompleted: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "menuseed",
			Subsystem: "seed",
			Name:      "last_run_steps_completed",
			Help:      "Steps completed by the last seed run.",
		}),
	}
	reg.MustRegister(
		m.documentsCreated,
		m.documentsDeleted,
		m.filesUploaded,
		m.filesDeleted,
		m.runDuration,
		m.lastSuccess,
		m.stepsCompleted,
	)
	return m
}

func (m *Metrics) documentCreated(collection string) {
	if m == nil {
		return
	}
	m.documentsCreated.WithLabelValues(collection).Inc()
}

func (m *Metrics) observeDocumentsDeleted(collection string, r ClearReport) {
	if m == nil {
		return
	}
	m.documentsDeleted.WithLabelValues(collection, "deleted").Add(float64(r.Deleted))
	m.documentsDeleted.WithLabelValues(collection, "not_found").Add(float64(r.NotFound))
	m.documentsDeleted.WithLabelValues(collection, "failed").Add(float64(r.Failed))
}

func (m *Metrics) fileUploaded() {
	if m == nil {
		return
	}
	m.filesUploaded.Inc()
}

func (m *Metrics) observeFilesDeleted(r ClearReport) {
	if m == nil {
		return
	}
	m.filesDeleted.WithLabelValues("deleted").Add(float64(r.Deleted))
	m.filesDeleted.WithLabelValues("not_found").Add(float64(r.NotFound))
	m.filesDeleted.WithLabelValues("failed").Add(float64(r.Failed))
}

func (m *Metrics) observeRun(r Result) {
	if m == nil {
		return
	}
	m.runDuration.Set(r.Duration.Seconds())
	m.stepsCompleted.Set(float64(r.StepsCompleted))
	if r.Success {
		m.lastSuccess.Set(1)
	} else {
		m.lastSuccess.Set(0)
	}
}
