package monitoring

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	flowLabels = []string{"flow", "source", "destination"}

	txPacketsDesc = prometheus.NewDesc(
		"wlanbench_flow_tx_packets_total",
		"Packets handed to the sending device",
		flowLabels, nil)
	rxPacketsDesc = prometheus.NewDesc(
		"wlanbench_flow_rx_packets_total",
		"Packets delivered to the destination",
		flowLabels, nil)
	txBytesDesc = prometheus.NewDesc(
		"wlanbench_flow_tx_bytes_total",
		"Bytes handed to the sending device",
		flowLabels, nil)
	rxBytesDesc = prometheus.NewDesc(
		"wlanbench_flow_rx_bytes_total",
		"Bytes delivered to the destination",
		flowLabels, nil)
	simTimeDesc = prometheus.NewDesc(
		"wlanbench_sim_time_seconds",
		"Current simulated time",
		nil, nil)
)

// flowCollector exports the flow counters and the simulated time as
// Prometheus metrics.
type flowCollector struct {
	m *Monitor
}

func newFlowCollector(m *Monitor) *flowCollector {
	return &flowCollector{m: m}
}

func (c *flowCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- txPacketsDesc
	ch <- rxPacketsDesc
	ch <- txBytesDesc
	ch <- rxBytesDesc
	ch <- simTimeDesc
}

func (c *flowCollector) Collect(ch chan<- prometheus.Metric) {
	if c.m.engine != nil {
		ch <- prometheus.MustNewConstMetric(simTimeDesc,
			prometheus.GaugeValue, float64(c.m.engine.CurrentTime()))
	}

	records := c.m.snapshot()
	for _, id := range dataFlowIDs(records) {
		r := records[id]
		labels := []string{
			strconv.FormatUint(uint64(id), 10),
			r.Tuple.Source.String(),
			r.Tuple.Destination.String(),
		}

		ch <- prometheus.MustNewConstMetric(txPacketsDesc,
			prometheus.CounterValue, float64(r.TxPackets), labels...)
		ch <- prometheus.MustNewConstMetric(rxPacketsDesc,
			prometheus.CounterValue, float64(r.RxPackets), labels...)
		ch <- prometheus.MustNewConstMetric(txBytesDesc,
			prometheus.CounterValue, float64(r.TxBytes), labels...)
		ch <- prometheus.MustNewConstMetric(rxBytesDesc,
			prometheus.CounterValue, float64(r.RxBytes), labels...)
	}
}
