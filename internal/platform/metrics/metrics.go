package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the consistency engine.
type Metrics struct {
	GroupsRecomputed   prometheus.Counter
	IncrementalUpdates prometheus.Counter
	TagCascadeDeletes  prometheus.Counter
	LockContention     prometheus.Counter
	RecomputeDuration  prometheus.Histogram
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		GroupsRecomputed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tagdex_groups_recomputed_total",
			Help: "Total number of full derived-group membership recomputations",
		}),
		IncrementalUpdates: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tagdex_incremental_membership_updates_total",
			Help: "Total number of single contact/group incremental membership updates",
		}),
		TagCascadeDeletes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tagdex_tag_cascade_deletes_total",
			Help: "Total number of tag deletions that cascaded into contacts or groups",
		}),
		LockContention: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tagdex_owner_lock_contention_total",
			Help: "Total number of operations rejected because the owner lock was not acquired in time",
		}),
		RecomputeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tagdex_group_recompute_duration_seconds",
			Help:    "Duration of full derived-group membership recomputations",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) IncrementGroupsRecomputed() {
	m.GroupsRecomputed.Inc()
}

func (m *Metrics) IncrementIncrementalUpdates() {
	m.IncrementalUpdates.Inc()
}

func (m *Metrics) IncrementTagCascadeDeletes() {
	m.TagCascadeDeletes.Inc()
}

func (m *Metrics) IncrementLockContention() {
	m.LockContention.Inc()
}

func (m *Metrics) ObserveRecomputeDuration(seconds float64) {
	m.RecomputeDuration.Observe(seconds)
}
