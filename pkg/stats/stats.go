package stats

import (
	"context"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

const (
	BYTE = 1 << (10 * iota)
	KILOBYTE
	MEGABYTE
	GIGABYTE
)

const namespace = "zumokit"

var (
	// SnapshotsApplied counts account snapshots applied to the state store
	SnapshotsApplied = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshots_applied_total",
		Help:      "Number of account data snapshots applied.",
	})
	// SnapshotsDropped counts stale account snapshots
	SnapshotsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshots_dropped_total",
		Help:      "Number of stale account data snapshots dropped.",
	})
	// Submissions counts transaction submissions by type and outcome
	Submissions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submissions_total",
		Help:      "Number of transaction submissions by type and outcome.",
	}, []string{"type", "outcome"})
	// Exchanges counts exchange submissions by outcome
	Exchanges = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "exchanges_total",
		Help:      "Number of exchange submissions by outcome.",
	}, []string{"outcome"})
	// RealtimeReconnects counts realtime channel reconnection attempts
	RealtimeReconnects = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "realtime_reconnects_total",
		Help:      "Number of realtime channel reconnection attempts.",
	})
	// ListenerPanics counts state listeners that panicked
	ListenerPanics = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listener_panics_total",
		Help:      "Number of recovered panics raised by state listeners.",
	})
)

// Register registers all collectors of this package to the given registerer
func Register(registerer prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		SnapshotsApplied, SnapshotsDropped, Submissions, Exchanges,
		RealtimeReconnects, ListenerPanics,
	} {
		if err := registerer.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// EnableMemoryStatistics enables go routine that periodically prints memory
// usage of the go process.
func EnableMemoryStatistics(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				PrintMemoryStatistics()
				PrintNumOfRoutines()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// toMegabytes returns given memory in bytes to megabytes.
func toMegabytes(bytes uint64) float64 {
	return float64(bytes) / MEGABYTE
}

// PrintMemoryStatistics prints memory statistics using go runtime library.
func PrintMemoryStatistics() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	log.WithFields(log.Fields{
		"total_alloc_mb": toMegabytes(memStats.TotalAlloc),
		"heap_alloc_mb":  toMegabytes(memStats.HeapAlloc),
		"mallocs":        memStats.Mallocs,
		"frees":          memStats.Frees,
	}).Info("memory statistics")
}

// PrintNumOfRoutines prints number of go routines currently running
func PrintNumOfRoutines() {
	log.Infof("num of go routines: %v", runtime.NumGoroutine())
}
