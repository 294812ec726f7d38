package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pareeksha/pareeksha/internal/exam"
	"github.com/pareeksha/pareeksha/internal/question"
	"github.com/pareeksha/pareeksha/internal/student"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func fail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "message": msg})
}

// failErr maps domain errors onto HTTP statuses and the shared error envelope.
func failErr(w http.ResponseWriter, err error) {
	var active *exam.ActiveAttemptError
	if errors.As(err, &active) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"success":   false,
			"message":   active.Error(),
			"attemptId": active.AttemptID,
		})
		return
	}
	var bulk *question.BulkError
	if errors.As(err, &bulk) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "validation failed",
			"errors":  bulk.Items,
		})
		return
	}
	var fields student.ValidationErrors
	if errors.As(err, &fields) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "validation failed",
			"errors":  fields,
		})
		return
	}
	fail(w, errStatus(err), err.Error())
}

func errStatus(err error) int {
	var ev *exam.ValidationError
	var qv *question.ValidationError
	switch {
	case errors.Is(err, exam.ErrScheduleNotFound),
		errors.Is(err, exam.ErrAttemptNotFound),
		errors.Is(err, exam.ErrNoActiveAttempt),
		errors.Is(err, question.ErrNotFound),
		errors.Is(err, student.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, exam.ErrNotOwner),
		errors.Is(err, exam.ErrNotRegistered):
		return http.StatusForbidden
	case errors.Is(err, exam.ErrAlreadyRegistered):
		return http.StatusConflict
	case errors.Is(err, exam.ErrPastExam),
		errors.Is(err, exam.ErrWindowClosed),
		errors.Is(err, exam.ErrAlreadySubmitted),
		errors.Is(err, exam.ErrNotSubmitted),
		errors.Is(err, exam.ErrQuestionsLocked),
		errors.As(err, &ev),
		errors.As(err, &qv):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
