package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/jchevalier/fundsim/internal/domain"
	"github.com/jchevalier/fundsim/internal/modules/metrics"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"version": "1.0.0",
		"service": "fundsim",
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handleSystemStatus handles system status requests
func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":     "running",
		"goroutines": runtime.NumGoroutine(),
	}

	if percentages, err := cpu.Percent(0, false); err == nil && len(percentages) > 0 {
		response["cpu_percent"] = percentages[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		response["memory"] = map[string]interface{}{
			"used_mb":      vm.Used / 1024 / 1024,
			"total_mb":     vm.Total / 1024 / 1024,
			"used_percent": vm.UsedPercent,
		}
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handleListProfiles returns the supported portfolio profiles
func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles := make([]string, 0, len(domain.AllProfiles))
	for _, p := range domain.AllProfiles {
		profiles = append(profiles, string(p))
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"profiles": profiles})
}

// handleProfileReturns returns the reconstructed daily return series
func (s *Server) handleProfileReturns(w http.ResponseWriter, r *http.Request) {
	profile, ok := s.profileFromURL(w, r)
	if !ok {
		return
	}

	series, err := s.metrics.ReconstructReturns(profile)
	if err != nil {
		s.log.Error().Err(err).Str("profile", string(profile)).Msg("Failed to reconstruct returns")
		s.writeError(w, http.StatusInternalServerError, "failed to reconstruct returns")
		return
	}

	type dailyReturn struct {
		Date  string  `json:"date"`
		Value float64 `json:"value"`
	}
	out := make([]dailyReturn, len(series))
	for i, d := range series {
		out[i] = dailyReturn{Date: d.Date.Format(domain.DateFormat), Value: d.Value}
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"profile": string(profile),
		"returns": out,
	})
}

// handleProfileMetrics returns the scalar statistics for a profile
func (s *Server) handleProfileMetrics(w http.ResponseWriter, r *http.Request) {
	profile, ok := s.profileFromURL(w, r)
	if !ok {
		return
	}

	series, err := s.metrics.ReconstructReturns(profile)
	if err != nil {
		s.log.Error().Err(err).Str("profile", string(profile)).Msg("Failed to reconstruct returns")
		s.writeError(w, http.StatusInternalServerError, "failed to reconstruct returns")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"profile": string(profile),
		"summary": metrics.Summarize(series),
	})
}

// handleProfilePlot returns a derived plot series as JSON points
func (s *Server) handleProfilePlot(w http.ResponseWriter, r *http.Request) {
	profile, ok := s.profileFromURL(w, r)
	if !ok {
		return
	}

	points, kind, ok := s.plotPoints(w, r, profile)
	if !ok {
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"profile": string(profile),
		"type":    string(kind),
		"points":  points,
	})
}

// handleProfileChart renders a plot series as a PNG chart
func (s *Server) handleProfileChart(w http.ResponseWriter, r *http.Request) {
	profile, ok := s.profileFromURL(w, r)
	if !ok {
		return
	}

	points, kind, ok := s.plotPoints(w, r, profile)
	if !ok {
		return
	}

	png, err := metrics.RenderChart(points, kind, string(profile))
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		s.log.Error().Err(err).Msg("Failed to write chart response")
	}
}

// handleTriggerRebalance runs the rebalancing job immediately
func (s *Server) handleTriggerRebalance(w http.ResponseWriter, r *http.Request) {
	if s.rebalanceJob == nil {
		s.writeError(w, http.StatusServiceUnavailable, "rebalance job not registered")
		return
	}

	s.log.Info().Msg("Manual rebalance triggered")

	if err := s.scheduler.RunNow(s.rebalanceJob); err != nil {
		s.log.Error().Err(err).Msg("Failed to run rebalance")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Rebalance completed",
	})
}

func (s *Server) plotPoints(w http.ResponseWriter, r *http.Request, profile domain.Profile) ([]metrics.Point, metrics.PlotKind, bool) {
	kindParam := r.URL.Query().Get("type")
	if kindParam == "" {
		kindParam = string(metrics.PlotCumulativeReturn)
	}
	kind, err := metrics.ParsePlotKind(kindParam)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return nil, "", false
	}

	start, err := parseDateParam(r.URL.Query().Get("start"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid start date, expected YYYY-MM-DD")
		return nil, "", false
	}
	end, err := parseDateParam(r.URL.Query().Get("end"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid end date, expected YYYY-MM-DD")
		return nil, "", false
	}

	series, err := s.metrics.ReconstructReturns(profile)
	if err != nil {
		s.log.Error().Err(err).Str("profile", string(profile)).Msg("Failed to reconstruct returns")
		s.writeError(w, http.StatusInternalServerError, "failed to reconstruct returns")
		return nil, "", false
	}

	points, err := metrics.PlotSeries(series, kind, start, end)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return nil, "", false
	}

	return points, kind, true
}

func (s *Server) profileFromURL(w http.ResponseWriter, r *http.Request) (domain.Profile, bool) {
	profile, err := domain.ParseProfile(chi.URLParam(r, "profile"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return "", false
	}
	return profile, true
}

func parseDateParam(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(domain.DateFormat, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
