package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/pareeksha/pareeksha/internal/auth/middleware"
	"github.com/pareeksha/pareeksha/internal/question"
)

func ListQuestionsHandler(bank *question.Bank) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qs, err := bank.List(r.Context())
		if err != nil {
			failErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "questions": qs})
	}
}

func GetQuestionHandler(bank *question.Bank) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := bank.Get(r.Context(), chi.URLParam(r, "questionID"))
		if err != nil {
			failErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "question": q})
	}
}

func CreateQuestionHandler(bank *question.Bank) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in question.CreateInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			fail(w, http.StatusBadRequest, "request body must be a JSON object")
			return
		}
		creator := authmw.IdentityFromContext(r.Context()).UserID
		q, err := bank.Add(r.Context(), creator, in)
		if err != nil {
			failErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"success":  true,
			"message":  "question added",
			"question": q,
		})
	}
}

// POST /api/questions/bulk {questions: [...]}. All-or-nothing: one invalid
// item rejects the batch with per-index errors and nothing is persisted.
func BulkCreateQuestionsHandler(bank *question.Bank) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Questions []question.CreateInput `json:"questions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			fail(w, http.StatusBadRequest, "request body must be a JSON object")
			return
		}
		creator := authmw.IdentityFromContext(r.Context()).UserID
		qs, err := bank.BulkAdd(r.Context(), creator, req.Questions)
		if err != nil {
			failErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"success":   true,
			"message":   "questions added",
			"questions": qs,
		})
	}
}
