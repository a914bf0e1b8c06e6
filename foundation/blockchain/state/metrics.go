package state

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "minichain"

// Collector reports the chain and mining counters of a State.
type Collector struct {
	state *State

	heightDesc    *prometheus.Desc
	mempoolDesc   *prometheus.Desc
	minedDesc     *prometheus.Desc
	txsDesc       *prometheus.Desc
	exhaustedDesc *prometheus.Desc
	cancelledDesc *prometheus.Desc
	failedDesc    *prometheus.Desc
}

// NewCollector constructs a collector for the specified state.
func NewCollector(state *State) *Collector {
	return &Collector{
		state: state,
		heightDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "chain", "tail_height"),
			"Height of the tail block.",
			nil, nil,
		),
		mempoolDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "mempool", "transactions"),
			"Number of transactions waiting to be mined.",
			nil, nil,
		),
		minedDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "mining", "blocks_total"),
			"Number of blocks mined and appended.",
			nil, nil,
		),
		txsDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "mining", "transactions_total"),
			"Number of transactions in mined blocks, reward transactions included.",
			nil, nil,
		),
		exhaustedDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "mining", "exhausted_total"),
			"Number of searches that ran out of nonces.",
			nil, nil,
		),
		cancelledDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "mining", "cancelled_total"),
			"Number of searches stopped by cancellation.",
			nil, nil,
		),
		failedDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "mining", "failed_total"),
			"Number of mining operations that failed for any other reason.",
			nil, nil,
		),
	}
}

// Describe implements the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.heightDesc
	ch <- c.mempoolDesc
	ch <- c.minedDesc
	ch <- c.txsDesc
	ch <- c.exhaustedDesc
	ch <- c.cancelledDesc
	ch <- c.failedDesc
}

// Collect implements the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.state

	ch <- prometheus.MustNewConstMetric(c.heightDesc, prometheus.GaugeValue, float64(s.Cursor().TailHeight))
	ch <- prometheus.MustNewConstMetric(c.mempoolDesc, prometheus.GaugeValue, float64(s.QueryMempoolLength()))
	ch <- prometheus.MustNewConstMetric(c.minedDesc, prometheus.CounterValue, float64(s.stats.blocksMined.Load()))
	ch <- prometheus.MustNewConstMetric(c.txsDesc, prometheus.CounterValue, float64(s.stats.transactionsMined.Load()))
	ch <- prometheus.MustNewConstMetric(c.exhaustedDesc, prometheus.CounterValue, float64(s.stats.miningExhausted.Load()))
	ch <- prometheus.MustNewConstMetric(c.cancelledDesc, prometheus.CounterValue, float64(s.stats.miningCancelled.Load()))
	ch <- prometheus.MustNewConstMetric(c.failedDesc, prometheus.CounterValue, float64(s.stats.miningFailed.Load()))
}
