package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Removal subsystem metrics
var (
	// FilesRemovedTotal counts files deleted through the native capability
	FilesRemovedTotal prometheus.Counter

	// DirsRemovedTotal counts directories removed, tree roots included
	DirsRemovedTotal prometheus.Counter

	// RemoveFailuresTotal counts absorbed delete failures by kind (file, dir, root)
	RemoveFailuresTotal *prometheus.CounterVec

	// TreesTotal counts tree removal requests by result (removed, incomplete, rejected, dry_run)
	TreesTotal *prometheus.CounterVec

	// TreeDuration tracks how long a whole tree removal takes
	TreeDuration prometheus.Histogram

	// EntriesEnumeratedTotal counts paths discovered by the enumerator
	EntriesEnumeratedTotal prometheus.Counter

	// ErrorsTotal tracks errors outside the delete loop (history writes, server)
	ErrorsTotal prometheus.Counter
)

func initRemovalMetrics() {
	FilesRemovedTotal = NewCounter(
		"rmlong_files_removed_total",
		"Total number of files removed.",
	)

	DirsRemovedTotal = NewCounter(
		"rmlong_dirs_removed_total",
		"Total number of directories removed.",
	)

	RemoveFailuresTotal = NewCounterVec(
		"rmlong_remove_failures_total",
		"Total number of delete calls that failed and were skipped.",
		[]string{"kind"},
	)

	TreesTotal = NewCounterVec(
		"rmlong_trees_total",
		"Total number of tree removal requests by result.",
		[]string{"result"},
	)

	TreeDuration = NewDurationHistogram(
		"rmlong_tree_duration_seconds",
		"Duration of tree removals in seconds.",
	)

	EntriesEnumeratedTotal = NewCounter(
		"rmlong_entries_enumerated_total",
		"Total number of files and directories discovered by enumeration.",
	)

	ErrorsTotal = NewCounter(
		"rmlong_errors_total",
		"Total number of errors outside the delete loop.",
	)
}

func registerRemovalMetrics() {
	prometheus.MustRegister(FilesRemovedTotal)
	prometheus.MustRegister(DirsRemovedTotal)
	prometheus.MustRegister(RemoveFailuresTotal)
	prometheus.MustRegister(TreesTotal)
	prometheus.MustRegister(TreeDuration)
	prometheus.MustRegister(EntriesEnumeratedTotal)
	prometheus.MustRegister(ErrorsTotal)
}

// RecordFailure counts one absorbed delete failure
func RecordFailure(kind string) {
	if RemoveFailuresTotal == nil {
		return
	}
	RemoveFailuresTotal.WithLabelValues(kind).Inc()
}

// RecordTree counts a finished tree removal and observes its duration
func RecordTree(result string, seconds float64) {
	if TreesTotal == nil {
		return
	}
	TreesTotal.WithLabelValues(result).Inc()
	TreeDuration.Observe(seconds)
}

// RecordEnumerated adds n discovered entries
func RecordEnumerated(n int) {
	if EntriesEnumeratedTotal == nil {
		return
	}
	EntriesEnumeratedTotal.Add(float64(n))
}

// IncFilesRemoved counts one removed file
func IncFilesRemoved() {
	if FilesRemovedTotal != nil {
		FilesRemovedTotal.Inc()
	}
}

// IncDirsRemoved counts one removed directory
func IncDirsRemoved() {
	if DirsRemovedTotal != nil {
		DirsRemovedTotal.Inc()
	}
}

// IncErrors counts one error outside the delete loop
func IncErrors() {
	if ErrorsTotal != nil {
		ErrorsTotal.Inc()
	}
}
