package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pareeksha/pareeksha/internal/exam"
)

// POST /api/exam-schedules/attempts/start {scheduleId}
func StartAttemptHandler(engine *exam.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID, ok := requireStudent(w, r)
		if !ok {
			return
		}
		var req struct {
			ScheduleID string `json:"scheduleId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ScheduleID == "" {
			fail(w, http.StatusBadRequest, "scheduleId is required")
			return
		}
		res, err := engine.StartAttempt(r.Context(), studentID, req.ScheduleID)
		if err != nil {
			failErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, startPayload(res))
	}
}

// GET /api/exam-schedules/attempts/current
func CurrentAttemptHandler(engine *exam.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID, ok := requireStudent(w, r)
		if !ok {
			return
		}
		res, err := engine.ActiveAttempt(r.Context(), studentID)
		if err != nil {
			failErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, startPayload(res))
	}
}

// POST /api/exam-schedules/attempts/{attemptID}/submit {answers}
func SubmitAttemptHandler(engine *exam.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID, ok := requireStudent(w, r)
		if !ok {
			return
		}
		var req struct {
			Answers map[string]any `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Answers == nil {
			fail(w, http.StatusBadRequest, "answers object is required")
			return
		}
		attempt, err := engine.SubmitAttempt(r.Context(), chi.URLParam(r, "attemptID"), studentID, req.Answers)
		if err != nil {
			failErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "exam submitted",
			"attempt": attempt,
		})
	}
}

// GET /api/exam-schedules/attempts/{attemptID}/result
func AttemptResultHandler(engine *exam.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID, ok := requireStudent(w, r)
		if !ok {
			return
		}
		res, err := engine.Result(r.Context(), chi.URLParam(r, "attemptID"), studentID)
		if err != nil {
			failErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":  true,
			"schedule": map[string]string{"id": res.Schedule.ID, "title": res.Schedule.Title},
			"attempt":  map[string]string{"id": res.Attempt.ID, "submittedAt": res.Attempt.SubmittedAt},
			"score":    res.Score,
			"total":    res.Total,
			"results":  res.Results,
		})
	}
}

// GET /api/exam-schedules/attempts/mine — submitted history, newest first.
func MyAttemptsHandler(engine *exam.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID, ok := requireStudent(w, r)
		if !ok {
			return
		}
		attempts, err := engine.SubmittedAttempts(r.Context(), studentID)
		if err != nil {
			failErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "attempts": attempts})
	}
}

func startPayload(res exam.StartResult) map[string]any {
	return map[string]any{
		"success":   true,
		"attempt":   map[string]string{"id": res.Attempt.ID, "startedAt": res.Attempt.StartedAt},
		"schedule":  res.Schedule,
		"questions": res.Questions,
	}
}
