package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/pareeksha/pareeksha/internal/auth/middleware"
	"github.com/pareeksha/pareeksha/internal/exam"
	"github.com/pareeksha/pareeksha/internal/rbac"
)

func ListSchedulesHandler(engine *exam.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		schedules, err := engine.ListSchedules(r.Context())
		if err != nil {
			failErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "schedules": schedules})
	}
}

// GET /api/exam-schedules/{scheduleID}. Admins additionally see whether the
// schedule has attempts, i.e. whether its question set is frozen.
func GetScheduleHandler(engine *exam.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		schedule, err := engine.GetSchedule(r.Context(), chi.URLParam(r, "scheduleID"))
		if err != nil {
			failErr(w, err)
			return
		}
		payload := map[string]any{"success": true, "schedule": schedule}
		if rbac.RoleFromContext(r.Context()) == "admin" {
			attempted, err := engine.HasAttempts(r.Context(), schedule.ID)
			if err != nil {
				failErr(w, err)
				return
			}
			payload["hasAttempts"] = attempted
		}
		writeJSON(w, http.StatusOK, payload)
	}
}

func CreateScheduleHandler(engine *exam.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in exam.CreateScheduleInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			fail(w, http.StatusBadRequest, "request body must be a JSON object")
			return
		}
		creator := authmw.IdentityFromContext(r.Context()).UserID
		schedule, err := engine.CreateSchedule(r.Context(), creator, in)
		if err != nil {
			failErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"success":  true,
			"message":  "exam schedule created",
			"schedule": schedule,
		})
	}
}

func UpdateScheduleHandler(engine *exam.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in exam.UpdateScheduleInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			fail(w, http.StatusBadRequest, "request body must be a JSON object")
			return
		}
		schedule, err := engine.UpdateSchedule(r.Context(), chi.URLParam(r, "scheduleID"), in)
		if err != nil {
			failErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":  true,
			"message":  "exam schedule updated",
			"schedule": schedule,
		})
	}
}

func DeleteScheduleHandler(engine *exam.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := engine.DeleteSchedule(r.Context(), chi.URLParam(r, "scheduleID")); err != nil {
			failErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "exam schedule deleted"})
	}
}

// GET /api/exam-schedules/upcoming — future or currently-open schedules with
// the viewing student's registration flag.
func UpcomingSchedulesHandler(engine *exam.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID, ok := requireStudent(w, r)
		if !ok {
			return
		}
		schedules, err := engine.UpcomingSchedules(r.Context(), studentID)
		if err != nil {
			failErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "schedules": schedules})
	}
}

// GET /api/exam-schedules/{scheduleID}/registrations (admin)
func ScheduleRegistrationsHandler(engine *exam.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		regs, err := engine.Registrations(r.Context(), chi.URLParam(r, "scheduleID"))
		if err != nil {
			failErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "registrations": regs})
	}
}

func RegisterHandler(engine *exam.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID, ok := requireStudent(w, r)
		if !ok {
			return
		}
		if err := engine.Register(r.Context(), chi.URLParam(r, "scheduleID"), studentID); err != nil {
			failErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": "registered for exam"})
	}
}

func UnregisterHandler(engine *exam.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID, ok := requireStudent(w, r)
		if !ok {
			return
		}
		err := engine.Unregister(r.Context(), chi.URLParam(r, "scheduleID"), studentID)
		if errors.Is(err, exam.ErrNotRegistered) {
			fail(w, http.StatusNotFound, err.Error())
			return
		}
		if err != nil {
			failErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "unregistered from exam"})
	}
}

// requireStudent resolves the caller's linked student profile or writes 403.
func requireStudent(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := authmw.IdentityFromContext(r.Context()).StudentID
	if id == "" {
		fail(w, http.StatusForbidden, "student profile not linked")
		return "", false
	}
	return id, true
}
