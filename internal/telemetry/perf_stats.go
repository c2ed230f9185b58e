package telemetry

import (
	"context"
	"log/slog"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v4/process"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// InstrumentPerfStats registers gauges for the resource usage of this process, they are read
// whenever the meter provider collects. Call it after SetupOtel so the gauges bind to the real
// provider.
func InstrumentPerfStats(ctx context.Context) {
	meter := otel.Meter("ttvdrops/perf_stats")

	proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		slog.Warn("process stats unavailable", "err", err.Error())
		proc = nil
	}

	cpuGauge, _ := meter.Float64ObservableGauge("process.cpu_percent")
	rssGauge, _ := meter.Int64ObservableGauge("process.rss_bytes", metric.WithUnit("By"))
	heapGauge, _ := meter.Int64ObservableGauge("go.heap_alloc_bytes", metric.WithUnit("By"))
	goroutineGauge, _ := meter.Int64ObservableGauge("go.goroutines")

	_, err = meter.RegisterCallback(func(ctx context.Context, observer metric.Observer) error {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)
		observer.ObserveInt64(heapGauge, int64(memStats.HeapAlloc))
		observer.ObserveInt64(goroutineGauge, int64(runtime.NumGoroutine()))

		if proc == nil {
			return nil
		}
		if percent, err := proc.CPUPercentWithContext(ctx); err == nil {
			observer.ObserveFloat64(cpuGauge, percent)
		}
		if mem, err := proc.MemoryInfoWithContext(ctx); err == nil {
			observer.ObserveInt64(rssGauge, int64(mem.RSS))
		}
		return nil
	}, cpuGauge, rssGauge, heapGauge, goroutineGauge)
	if err != nil {
		slog.Warn("failed to register perf stats", "err", err.Error())
	}
}
