package server

import (
	"net/http"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
)

// NodeMetrics holds health metrics reported at /metrics.
type NodeMetrics struct {
	UptimeSeconds  int64   `json:"uptime_seconds"`
	ChainLength    int     `json:"chain_length"`
	PendingTxs     int     `json:"pending_txs"`
	CPULoadPercent float64 `json:"cpu_load_percent"`
	MemoryMB       float64 `json:"memory_mb"`
	LastBlockTime  string  `json:"last_block_time"`
}

var startTime = time.Now()

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	cpuLoad := 0.0
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		cpuLoad = percents[0]
	}

	writeJSON(w, http.StatusOK, NodeMetrics{
		UptimeSeconds:  int64(time.Since(startTime).Seconds()),
		ChainLength:    s.chain.Length(),
		PendingTxs:     len(s.chain.PendingTransactions()),
		CPULoadPercent: cpuLoad,
		MemoryMB:       float64(m.Alloc) / (1024 * 1024),
		LastBlockTime:  s.chain.LatestBlock().Timestamp.UTC().Format(time.RFC3339),
	})
}
