package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/MLiu666/EvoWrite/internal/logger"
)

type healthStatistics struct {
	TotalLearners         int `json:"total_learners"`
	TotalInteractions     int `json:"total_interactions"`
	TotalSessions         int `json:"total_sessions"`
	RecentInteractions24h int `json:"recent_interactions_24h"`
}

type healthHost struct {
	OS       string  `json:"os"`
	Arch     string  `json:"arch"`
	CPUUsage float64 `json:"cpu_usage_percent"`
	MemTotal uint64  `json:"mem_total_bytes"`
	MemUsed  uint64  `json:"mem_used_bytes"`
	MemUsage float64 `json:"mem_usage_percent"`
}

type healthResponse struct {
	Status     string           `json:"status"`
	Timestamp  string           `json:"timestamp"`
	Statistics healthStatistics `json:"statistics"`
	Host       healthHost       `json:"host"`
	Error      string           `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()

	if err := s.store.Ping(); err != nil {
		logger.Error("health check failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, healthResponse{
			Status:    "unhealthy",
			Timestamp: now.Format(time.RFC3339),
			Error:     err.Error(),
		})
		return
	}

	learners, _ := s.store.CountLearners()
	interactions, _ := s.store.CountInteractions()
	sessions, _ := s.store.CountWritingSessions()
	recent, _ := s.store.CountInteractionsSince(now.Add(-24 * time.Hour))

	host := healthHost{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
	}
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		host.CPUUsage = percents[0]
	}
	if info, err := mem.VirtualMemory(); err == nil {
		host.MemTotal = info.Total
		host.MemUsed = info.Used
		host.MemUsage = info.UsedPercent
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: now.Format(time.RFC3339),
		Statistics: healthStatistics{
			TotalLearners:         learners,
			TotalInteractions:     interactions,
			TotalSessions:         sessions,
			RecentInteractions24h: recent,
		},
		Host: host,
	})
}
