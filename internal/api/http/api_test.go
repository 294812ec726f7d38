package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	authmw "github.com/pareeksha/pareeksha/internal/auth/middleware"
	"github.com/pareeksha/pareeksha/internal/exam"
	"github.com/pareeksha/pareeksha/internal/question"
	"github.com/pareeksha/pareeksha/internal/rbac"
	"github.com/pareeksha/pareeksha/internal/report"
	"github.com/pareeksha/pareeksha/internal/student"
)

// testServer is the protected API surface over in-memory stores, with real
// JWT and RBAC middleware and a settable clock.
type testServer struct {
	router       *chi.Mux
	auth         *authmw.AuthService
	students     student.Store
	adminToken   string
	studentToken string

	mu  sync.Mutex
	now time.Time
}

var windowStart = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	s := &testServer{
		auth:     authmw.NewAuthService("test-secret", time.Hour),
		students: student.NewInMemoryStore(),
		now:      windowStart.Add(-time.Hour),
	}
	clock := func() time.Time {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.now
	}

	examStore := exam.NewInMemoryStore()
	questionStore := question.NewInMemoryStore()
	bank := question.NewBankWithClock(questionStore, clock)
	engine := exam.NewEngineWithClock(examStore, questionStore, clock)
	reports := report.NewEngine(examStore, questionStore, s.students)

	var err error
	if s.adminToken, err = s.auth.IssueJWT("u-admin", "admin@test", "admin", ""); err != nil {
		t.Fatalf("issue admin token: %v", err)
	}
	if s.studentToken, err = s.auth.IssueJWT("u-stu", "stu@test", "student", "stu-1"); err != nil {
		t.Fatalf("issue student token: %v", err)
	}

	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(s.auth))

		pr.Route("/api/questions", func(qr chi.Router) {
			qr.With(rbac.Require("question:view")).Get("/", ListQuestionsHandler(bank))
			qr.With(rbac.Require("question:create")).Post("/", CreateQuestionHandler(bank))
			qr.With(rbac.Require("question:create")).Post("/bulk", BulkCreateQuestionsHandler(bank))
			qr.With(rbac.Require("question:view")).Get("/{questionID}", GetQuestionHandler(bank))
		})

		pr.Route("/api/exam-schedules", func(er chi.Router) {
			er.With(rbac.Require("schedule:view")).Get("/upcoming", UpcomingSchedulesHandler(engine))

			er.Route("/attempts", func(ar chi.Router) {
				ar.With(rbac.Require("attempt:start")).Post("/start", StartAttemptHandler(engine))
				ar.With(rbac.Require("attempt:view-own")).Get("/current", CurrentAttemptHandler(engine))
				ar.With(rbac.Require("attempt:view-own")).Get("/mine", MyAttemptsHandler(engine))
				ar.With(rbac.Require("attempt:submit")).Post("/{attemptID}/submit", SubmitAttemptHandler(engine))
				ar.With(rbac.Require("attempt:view-own")).Get("/{attemptID}/result", AttemptResultHandler(engine))
			})

			er.With(rbac.Require("schedule:view")).Get("/", ListSchedulesHandler(engine))
			er.With(rbac.Require("schedule:manage")).Post("/", CreateScheduleHandler(engine))
			er.With(rbac.Require("schedule:view")).Get("/{scheduleID}", GetScheduleHandler(engine))
			er.With(rbac.Require("schedule:manage")).Put("/{scheduleID}", UpdateScheduleHandler(engine))
			er.With(rbac.Require("schedule:manage")).Delete("/{scheduleID}", DeleteScheduleHandler(engine))

			er.With(rbac.Require("schedule:manage")).Get("/{scheduleID}/registrations", ScheduleRegistrationsHandler(engine))

			er.With(rbac.Require("exam:register")).Post("/{scheduleID}/register", RegisterHandler(engine))
			er.With(rbac.Require("exam:register")).Delete("/{scheduleID}/register", UnregisterHandler(engine))

			er.With(rbac.Require("report:view")).Get("/{scheduleID}/score-report", ScoreReportHandler(reports))
		})
	})
	s.router = r
	return s
}

func (s *testServer) setNow(t time.Time) {
	s.mu.Lock()
	s.now = t
	s.mu.Unlock()
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var payload map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("%s %s: bad json %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec, payload
}

func TestExamFlow(t *testing.T) {
	s := newTestServer(t)

	// Admin loads two questions; Q1's answer is index 1, Q2's is index 0.
	rec, q1 := s.do(t, "POST", "/api/questions", s.adminToken, map[string]any{
		"questionText": "2 + 2?",
		"options":      []string{"3", "4"},
		"correctIndex": 1,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create q1: %d %v", rec.Code, q1)
	}
	_, q2 := s.do(t, "POST", "/api/questions", s.adminToken, map[string]any{
		"questionText": "Capital of India?",
		"options":      []string{"New Delhi", "Mumbai"},
		"correctIndex": 0,
	})
	q1ID := q1["question"].(map[string]any)["id"].(string)
	q2ID := q2["question"].(map[string]any)["id"].(string)

	// Admin schedules a 30-minute exam.
	rec, created := s.do(t, "POST", "/api/exam-schedules", s.adminToken, map[string]any{
		"title":           "Unit Test Exam",
		"scheduledAt":     windowStart.Format(time.RFC3339),
		"durationMinutes": 30,
		"questionIds":     []string{q1ID, q2ID},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create schedule: %d %v", rec.Code, created)
	}
	scheduleID := created["schedule"].(map[string]any)["id"].(string)

	// Student registers before the start.
	rec, _ = s.do(t, "POST", "/api/exam-schedules/"+scheduleID+"/register", s.studentToken, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: %d", rec.Code)
	}
	rec, _ = s.do(t, "POST", "/api/exam-schedules/"+scheduleID+"/register", s.studentToken, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register: %d", rec.Code)
	}
	rec, regs := s.do(t, "GET", "/api/exam-schedules/"+scheduleID+"/registrations", s.adminToken, nil)
	if rec.Code != http.StatusOK || len(regs["registrations"].([]any)) != 1 {
		t.Fatalf("registrations: %d %v", rec.Code, regs)
	}

	// Starting before the window fails.
	rec, _ = s.do(t, "POST", "/api/exam-schedules/attempts/start", s.studentToken, map[string]any{"scheduleId": scheduleID})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("early start: %d", rec.Code)
	}

	// Inside the window the attempt starts and the payload never leaks the
	// correct answers.
	s.setNow(windowStart.Add(5 * time.Minute))
	rec, started := s.do(t, "POST", "/api/exam-schedules/attempts/start", s.studentToken, map[string]any{"scheduleId": scheduleID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("start: %d %v", rec.Code, started)
	}
	if strings.Contains(rec.Body.String(), "correctIndex") {
		t.Fatal("start payload leaks correctIndex")
	}
	if n := len(started["questions"].([]any)); n != 2 {
		t.Fatalf("got %d questions", n)
	}
	attemptID := started["attempt"].(map[string]any)["id"].(string)

	// A second start resumes via 409 with the existing attempt id.
	rec, conflict := s.do(t, "POST", "/api/exam-schedules/attempts/start", s.studentToken, map[string]any{"scheduleId": scheduleID})
	if rec.Code != http.StatusConflict {
		t.Fatalf("second start: %d", rec.Code)
	}
	if conflict["attemptId"] != attemptID {
		t.Fatalf("conflict attemptId = %v", conflict["attemptId"])
	}

	// GET current returns the same attempt.
	rec, current := s.do(t, "GET", "/api/exam-schedules/attempts/current", s.studentToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("current: %d", rec.Code)
	}
	if current["attempt"].(map[string]any)["id"] != attemptID {
		t.Fatal("current attempt mismatch")
	}

	// Submit: Q1 right, Q2 wrong.
	rec, submitted := s.do(t, "POST", "/api/exam-schedules/attempts/"+attemptID+"/submit", s.studentToken, map[string]any{
		"answers": map[string]int{q1ID: 1, q2ID: 1},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("submit: %d %v", rec.Code, submitted)
	}
	rec, _ = s.do(t, "POST", "/api/exam-schedules/attempts/"+attemptID+"/submit", s.studentToken, map[string]any{
		"answers": map[string]int{},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("resubmit: %d", rec.Code)
	}

	// Result: 1 of 2.
	rec, result := s.do(t, "GET", "/api/exam-schedules/attempts/"+attemptID+"/result", s.studentToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("result: %d", rec.Code)
	}
	if result["score"].(float64) != 1 || result["total"].(float64) != 2 {
		t.Fatalf("score = %v/%v", result["score"], result["total"])
	}

	// History has one row.
	rec, mine := s.do(t, "GET", "/api/exam-schedules/attempts/mine", s.studentToken, nil)
	if rec.Code != http.StatusOK || len(mine["attempts"].([]any)) != 1 {
		t.Fatalf("mine: %d %v", rec.Code, mine)
	}

	// Admin pulls the score report.
	rec, rep := s.do(t, "GET", "/api/exam-schedules/"+scheduleID+"/score-report", s.adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("report: %d %v", rec.Code, rep)
	}
	rows := rep["allLocations"].([]any)
	if len(rows) != 1 {
		t.Fatalf("report rows = %d", len(rows))
	}
	row := rows[0].(map[string]any)
	if row["score"].(float64) != 1 || row["rank"].(float64) != 1 {
		t.Fatalf("report row = %v", row)
	}

	// Question set is now frozen; rescheduling still works.
	rec, _ = s.do(t, "PUT", "/api/exam-schedules/"+scheduleID, s.adminToken, map[string]any{
		"questionIds": []string{q1ID},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("locked questions: %d", rec.Code)
	}
	rec, _ = s.do(t, "PUT", "/api/exam-schedules/"+scheduleID, s.adminToken, map[string]any{
		"title": "Unit Test Exam (moved)",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("rename: %d", rec.Code)
	}

	// Admin view exposes the hasAttempts flag.
	rec, detail := s.do(t, "GET", "/api/exam-schedules/"+scheduleID, s.adminToken, nil)
	if rec.Code != http.StatusOK || detail["hasAttempts"] != true {
		t.Fatalf("detail: %d %v", rec.Code, detail)
	}
}

func TestAuthorization(t *testing.T) {
	s := newTestServer(t)

	// No token.
	rec, _ := s.do(t, "GET", "/api/questions", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: %d", rec.Code)
	}

	// Students cannot author content or read reports.
	rec, _ = s.do(t, "POST", "/api/questions", s.studentToken, map[string]any{
		"questionText": "x", "options": []string{"a", "b"}, "correctIndex": 0,
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("student create question: %d", rec.Code)
	}
	rec, _ = s.do(t, "GET", "/api/exam-schedules/some-id/score-report", s.studentToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("student score report: %d", rec.Code)
	}

	// An admin without a linked student profile cannot sit exams.
	rec, _ = s.do(t, "POST", "/api/exam-schedules/attempts/start", s.adminToken, map[string]any{"scheduleId": "x"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("admin start attempt: %d", rec.Code)
	}
}

func TestQuestionEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec, resp := s.do(t, "POST", "/api/questions/bulk", s.adminToken, map[string]any{
		"questions": []map[string]any{
			{"questionText": "ok", "options": []string{"a", "b"}, "correctIndex": 0},
			{"questionText": "", "options": []string{"a", "b"}, "correctIndex": 0},
		},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad bulk: %d %v", rec.Code, resp)
	}
	if len(resp["errors"].([]any)) != 1 {
		t.Fatalf("bulk errors = %v", resp["errors"])
	}

	rec, resp = s.do(t, "POST", "/api/questions/bulk", s.adminToken, map[string]any{
		"questions": []map[string]any{
			{"questionText": "q1", "options": []string{"a", "b"}, "correctIndex": 0},
			{"questionText": "q2", "options": []string{"a", "b"}, "correctIndex": 1},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("bulk: %d %v", rec.Code, resp)
	}

	rec, resp = s.do(t, "GET", "/api/questions", s.studentToken, nil)
	if rec.Code != http.StatusOK || len(resp["questions"].([]any)) != 2 {
		t.Fatalf("list: %d %v", rec.Code, resp)
	}

	rec, _ = s.do(t, "GET", "/api/questions/does-not-exist", s.adminToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing question: %d", rec.Code)
	}
}

func TestUpcomingEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec, created := s.do(t, "POST", "/api/exam-schedules", s.adminToken, map[string]any{
		"title":       "Future Exam",
		"scheduledAt": windowStart.Format(time.RFC3339),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d", rec.Code)
	}
	scheduleID := created["schedule"].(map[string]any)["id"].(string)

	rec, resp := s.do(t, "GET", "/api/exam-schedules/upcoming", s.studentToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("upcoming: %d", rec.Code)
	}
	list := resp["schedules"].([]any)
	if len(list) != 1 || list[0].(map[string]any)["registered"] != false {
		t.Fatalf("upcoming = %v", list)
	}

	rec, _ = s.do(t, "POST", "/api/exam-schedules/"+scheduleID+"/register", s.studentToken, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: %d", rec.Code)
	}
	_, resp = s.do(t, "GET", "/api/exam-schedules/upcoming", s.studentToken, nil)
	if resp["schedules"].([]any)[0].(map[string]any)["registered"] != true {
		t.Fatal("registered flag not set")
	}

	// Unregister, then the flag drops; a second unregister is a 404.
	rec, _ = s.do(t, "DELETE", "/api/exam-schedules/"+scheduleID+"/register", s.studentToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unregister: %d", rec.Code)
	}
	rec, _ = s.do(t, "DELETE", "/api/exam-schedules/"+scheduleID+"/register", s.studentToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("double unregister: %d", rec.Code)
	}
}
