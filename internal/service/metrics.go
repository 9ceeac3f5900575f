package service

import "github.com/prometheus/client_golang/prometheus"

var (
	TaskTreeNodes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "task_tree_nodes",
			Help:    "Number of tasks loaded per hydrated tree request",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)
	TaskTreeLevels = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "task_tree_levels",
			Help:    "Subtask query rounds per hydrated tree request",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		},
	)
)

func init() {
	prometheus.MustRegister(TaskTreeNodes)
	prometheus.MustRegister(TaskTreeLevels)
}
