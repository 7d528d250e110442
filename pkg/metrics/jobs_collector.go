package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/voxjob/transcriber/internal/store"
)

// jobsCollector reports the jobs found under the results root on every scrape.
type jobsCollector struct {
	store     store.Store
	totalJobs *prometheus.Desc
	jobsBy    *prometheus.Desc
}

func NewJobsCollector(s store.Store) prometheus.Collector {
	fqName := func(name string) string {
		return fmt.Sprintf("%s_store_%s", transcriber, name)
	}

	return &jobsCollector{
		store: s,
		totalJobs: prometheus.NewDesc(
			fqName("jobs_total"),
			"Total number of job directories.",
			nil,
			prometheus.Labels{},
		),
		jobsBy: prometheus.NewDesc(
			fqName("jobs_by_status_total"),
			"Job directories by derived status",
			[]string{statusLabel},
			prometheus.Labels{},
		),
	}
}

func (c *jobsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.totalJobs
	ch <- c.jobsBy
}

func (c *jobsCollector) Collect(ch chan<- prometheus.Metric) {
	stats, err := c.store.Statistics(context.Background())
	if err != nil {
		zap.S().Named("jobs_collector").Errorf("failed to collect job statistics: %s", err)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.totalJobs, prometheus.GaugeValue, float64(stats.Total))
	ch <- prometheus.MustNewConstMetric(c.jobsBy, prometheus.GaugeValue, float64(stats.Pending), "pending")
	ch <- prometheus.MustNewConstMetric(c.jobsBy, prometheus.GaugeValue, float64(stats.Done), "done")
	ch <- prometheus.MustNewConstMetric(c.jobsBy, prometheus.GaugeValue, float64(stats.Failed), "failed")
}
