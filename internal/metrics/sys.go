package metrics

import (
	"fmt"
	"os"
	"runtime"
	"time"
)

var startedAt = time.Now()

// Health is what /healthz reports about the process and the metrics file.
type Health struct {
	Uptime      string `json:"uptime"`
	HeapMB      uint64 `json:"heapMb"`
	Goroutines  int    `json:"goroutines"`
	MetricsDB   string `json:"metricsDb,omitempty"`
	MetricsSize string `json:"metricsDbSize,omitempty"`
}

// Snapshot reads runtime stats and the on-disk size of the sqlite database
// at dbPath, counting its -wal and -shm companions. An empty dbPath means
// metrics are disabled and the file fields stay empty.
func Snapshot(dbPath string) Health {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	h := Health{
		Uptime:     time.Since(startedAt).Round(time.Second).String(),
		HeapMB:     m.HeapAlloc >> 20,
		Goroutines: runtime.NumGoroutine(),
	}
	if dbPath != "" {
		h.MetricsDB = dbPath
		h.MetricsSize = humanSize(sqliteSize(dbPath))
	}
	return h
}

func sqliteSize(path string) int64 {
	var total int64
	for _, suffix := range []string{"", "-wal", "-shm"} {
		if fi, err := os.Stat(path + suffix); err == nil {
			total += fi.Size()
		}
	}
	return total
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(n)/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}
