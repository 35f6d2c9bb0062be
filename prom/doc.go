// Package prom exports eigenverify engine metrics to Prometheus.
//
//	c, err := prom.NewCollector(prometheus.DefaultRegisterer)
//	eng, err := eigenverify.New(cfg, eigenverify.WithMetricsCollector(c))
//
// Serve the registry with promhttp as usual.
package prom
