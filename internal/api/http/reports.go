package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pareeksha/pareeksha/internal/report"
)

// GET /api/exam-schedules/{scheduleID}/score-report (admin)
func ScoreReportHandler(engine *report.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := engine.ScoreReport(r.Context(), chi.URLParam(r, "scheduleID"))
		if err != nil {
			failErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":      true,
			"schedule":     rep.Schedule,
			"allLocations": rep.AllLocations,
			"schoolWise":   rep.SchoolWise,
		})
	}
}
