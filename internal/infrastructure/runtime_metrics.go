package infrastructure

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeStats is one sample of the Go runtime
type RuntimeStats struct {
	Goroutines  int64
	HeapAlloc   int64
	HeapSys     int64
	GCCount     uint32
	LastGCPause time.Duration
	Uptime      time.Duration
}

// RuntimeMetrics samples the Go runtime into gauges
type RuntimeMetrics struct {
	goroutines metric.Int64Gauge
	heapAlloc  metric.Int64Gauge
	heapSys    metric.Int64Gauge
	gcPause    metric.Float64Histogram
	uptime     metric.Float64Gauge

	startTime time.Time
	lastGC    uint32
}

// NewRuntimeMetrics registers the runtime instruments on meter
func NewRuntimeMetrics(meter metric.Meter) (*RuntimeMetrics, error) {
	m := &RuntimeMetrics{startTime: time.Now()}
	var err error

	if m.goroutines, err = meter.Int64Gauge(
		"runtime_goroutines",
		metric.WithDescription("Number of live goroutines"),
	); err != nil {
		return nil, err
	}
	if m.heapAlloc, err = meter.Int64Gauge(
		"runtime_heap_alloc_bytes",
		metric.WithDescription("Bytes of allocated heap objects"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, err
	}
	if m.heapSys, err = meter.Int64Gauge(
		"runtime_heap_sys_bytes",
		metric.WithDescription("Heap memory obtained from the OS"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, err
	}
	if m.gcPause, err = meter.Float64Histogram(
		"runtime_gc_pause_seconds",
		metric.WithDescription("Garbage collection pause duration"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.uptime, err = meter.Float64Gauge(
		"process_uptime_seconds",
		metric.WithDescription("Time since the process started serving"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	return m, nil
}

// Collect samples the runtime and records it. A GC pause is recorded only
// when a collection happened since the previous sample.
func (m *RuntimeMetrics) Collect(ctx context.Context) RuntimeStats {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	stats := RuntimeStats{
		Goroutines:  int64(runtime.NumGoroutine()),
		HeapAlloc:   int64(ms.HeapAlloc),
		HeapSys:     int64(ms.HeapSys),
		GCCount:     ms.NumGC,
		LastGCPause: time.Duration(ms.PauseNs[(ms.NumGC+255)%256]),
		Uptime:      time.Since(m.startTime),
	}

	m.goroutines.Record(ctx, stats.Goroutines)
	m.heapAlloc.Record(ctx, stats.HeapAlloc)
	m.heapSys.Record(ctx, stats.HeapSys)
	m.uptime.Record(ctx, stats.Uptime.Seconds())
	if stats.GCCount != m.lastGC && stats.GCCount > 0 {
		m.gcPause.Record(ctx, stats.LastGCPause.Seconds())
		m.lastGC = stats.GCCount
	}
	return stats
}

// Run samples every interval until ctx is done
func (m *RuntimeMetrics) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("runtime metrics interval must be positive, got %s", interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.Collect(ctx)
	for {
		select {
		case <-ticker.C:
			m.Collect(ctx)
		case <-ctx.Done():
			return nil
		}
	}
}
