package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/Colin579M/AStock-AI-Agent-sub001/internal/scheduler"
)

// SystemHandlers handles health and operations endpoints
type SystemHandlers struct {
	log       zerolog.Logger
	scheduler *scheduler.Scheduler
	prefetch  scheduler.Job
	startedAt time.Time
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(log zerolog.Logger, sched *scheduler.Scheduler, prefetch scheduler.Job) *SystemHandlers {
	return &SystemHandlers{
		log:       log.With().Str("component", "system_handlers").Logger(),
		scheduler: sched,
		prefetch:  prefetch,
		startedAt: time.Now(),
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	CPUPercent    float64 `json:"cpu_percent"`
	RAMPercent    float64 `json:"ram_percent"`
}

// JobsStatusResponse represents scheduler job status
type JobsStatusResponse struct {
	TotalJobs int                 `json:"total_jobs"`
	Jobs      []scheduler.JobInfo `json:"jobs"`
}

// HandleHealth returns liveness plus basic system stats
// GET /health
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:        "ok",
		UptimeSeconds: time.Since(h.startedAt).Seconds(),
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		response.RAMPercent = vm.UsedPercent
	}
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		response.CPUPercent = percents[0]
	}

	h.writeJSON(w, response)
}

// HandleJobsStatus returns scheduler job status
// GET /api/system/jobs
func (h *SystemHandlers) HandleJobsStatus(w http.ResponseWriter, r *http.Request) {
	jobs := []scheduler.JobInfo{}
	if h.scheduler != nil {
		jobs = h.scheduler.Jobs()
	}

	h.writeJSON(w, JobsStatusResponse{
		TotalJobs: len(jobs),
		Jobs:      jobs,
	})
}

// HandleTriggerPrefetch triggers the cache prefetch job immediately
// POST /api/system/jobs/prefetch
func (h *SystemHandlers) HandleTriggerPrefetch(w http.ResponseWriter, r *http.Request) {
	if h.prefetch == nil || h.scheduler == nil {
		h.writeJSON(w, map[string]string{
			"status":  "error",
			"message": "Prefetch job not registered",
		})
		return
	}

	h.log.Info().Msg("Manual prefetch triggered")

	if err := h.scheduler.RunNow(h.prefetch); err != nil {
		h.log.Error().Err(err).Msg("Failed to trigger prefetch")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]string{
		"status":  "success",
		"message": "Prefetch triggered successfully",
	})
}

// writeJSON writes a JSON response
func (h *SystemHandlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
