package metrics

import "github.com/prometheus/client_golang/prometheus"

// DBPoolStatFunc returns database pool statistics without importing pgxpool.
type DBPoolStatFunc func() (total, idle, acquired int32)

// dbPoolCollector exposes pool stats as gauges, reading them at scrape time.
type dbPoolCollector struct {
	statFunc DBPoolStatFunc
	descs    [3]*prometheus.Desc
}

// NewDBPoolCollector creates a collector for connection-pool gauges.
func NewDBPoolCollector(statFunc DBPoolStatFunc) prometheus.Collector {
	c := &dbPoolCollector{statFunc: statFunc}
	for i, d := range []struct{ name, help string }{
		{"relife_db_pool_total_conns", "Total number of connections in the DB pool."},
		{"relife_db_pool_idle_conns", "Number of idle connections in the DB pool."},
		{"relife_db_pool_acquired_conns", "Number of acquired connections in the DB pool."},
	} {
		c.descs[i] = prometheus.NewDesc(d.name, d.help, nil, nil)
	}
	return c
}

func (c *dbPoolCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range c.descs {
		ch <- d
	}
}

func (c *dbPoolCollector) Collect(ch chan<- prometheus.Metric) {
	total, idle, acquired := c.statFunc()
	for i, v := range []int32{total, idle, acquired} {
		ch <- prometheus.MustNewConstMetric(c.descs[i], prometheus.GaugeValue, float64(v))
	}
}
