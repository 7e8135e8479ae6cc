package metric

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/RaphaelDarley/quadrille/pkg/occ"
)

const namespace = "quadrille"

// Collector exposes a handle's commit-path counters as Prometheus
// metrics. Counters come straight from occ.Stats on every scrape; the two
// gauges are optional callbacks for store size and root version.
type Collector struct {
	stats *occ.Stats

	keysFn    func() float64
	versionFn func() float64

	begins    *prometheus.Desc
	commits   *prometheus.Desc
	races     *prometheus.Desc
	resolves  *prometheus.Desc
	conflicts *prometheus.Desc
	exhausted *prometheus.Desc
	discards  *prometheus.Desc
	keys      *prometheus.Desc
	version   *prometheus.Desc
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithStoreKeys wires a gauge reporting the key count of the current
// published snapshot.
func WithStoreKeys(fn func() float64) CollectorOption {
	return func(c *Collector) {
		c.keysFn = fn
	}
}

// WithRootVersion wires a gauge reporting the root's current sequence
// number.
func WithRootVersion(fn func() float64) CollectorOption {
	return func(c *Collector) {
		c.versionFn = fn
	}
}

// NewCollector returns a Collector over stats.
func NewCollector(stats *occ.Stats, opts ...CollectorOption) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(namespace+"_"+name, help, nil, nil)
	}
	c := &Collector{
		stats:     stats,
		begins:    desc("transactions_begun_total", "Transactions opened with Begin or Update."),
		commits:   desc("commits_total", "Commits that published successfully."),
		races:     desc("publish_races_total", "Publish attempts lost to a concurrent writer."),
		resolves:  desc("resolves_total", "Snapshot merges attempted after a lost race."),
		conflicts: desc("conflicts_total", "Commits aborted because the store refused to merge."),
		exhausted: desc("retries_exhausted_total", "Commits aborted by the handle's attempt bound."),
		discards:  desc("discards_total", "Transactions dropped without committing."),
		keys:      desc("store_keys", "Keys in the current published snapshot."),
		version:   desc("root_version", "Sequence number of the current published snapshot."),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.begins
	ch <- c.commits
	ch <- c.races
	ch <- c.resolves
	ch <- c.conflicts
	ch <- c.exhausted
	ch <- c.discards
	if c.keysFn != nil {
		ch <- c.keys
	}
	if c.versionFn != nil {
		ch <- c.version
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.stats.Snapshot()

	counter := func(d *prometheus.Desc, v uint64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v))
	}
	counter(c.begins, snap.Begins)
	counter(c.commits, snap.Commits)
	counter(c.races, snap.Races)
	counter(c.resolves, snap.Resolves)
	counter(c.conflicts, snap.Conflicts)
	counter(c.exhausted, snap.Exhausted)
	counter(c.discards, snap.Discards)

	if c.keysFn != nil {
		ch <- prometheus.MustNewConstMetric(c.keys, prometheus.GaugeValue, c.keysFn())
	}
	if c.versionFn != nil {
		ch <- prometheus.MustNewConstMetric(c.version, prometheus.GaugeValue, c.versionFn())
	}
}
