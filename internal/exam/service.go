package exam

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pareeksha/pareeksha/internal/question"
)

// Engine runs the attempt lifecycle: NONE -> IN_PROGRESS -> SUBMITTED.
// Window expiry is evaluated lazily against the clock on every call; there is
// no background timer.
type Engine struct {
	store     Store
	questions question.Store
	now       func() time.Time

	// starts serializes StartAttempt per student. chi handles requests on
	// separate goroutines, so the existence-check-and-insert must be a single
	// atomic unit; the store's unique index is the backstop.
	startMu sync.Mutex
	starts  map[string]*sync.Mutex
}

func NewEngine(store Store, questions question.Store) *Engine {
	return NewEngineWithClock(store, questions, time.Now)
}

// NewEngineWithClock is for tests that need deterministic time.
func NewEngineWithClock(store Store, questions question.Store, now func() time.Time) *Engine {
	return &Engine{store: store, questions: questions, now: now, starts: map[string]*sync.Mutex{}}
}

// ScheduleSummary is the slice of a schedule sent along with an attempt.
type ScheduleSummary struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	DurationMinutes int    `json:"durationMinutes"`
}

// StartResult is what a student gets back when starting or resuming an
// attempt: the attempt, the schedule summary with the effective duration, and
// the question list with answers stripped.
type StartResult struct {
	Attempt   Attempt         `json:"attempt"`
	Schedule  ScheduleSummary `json:"schedule"`
	Questions []question.Safe `json:"questions"`
}

// StartAttempt creates a new in-progress attempt. Preconditions, checked in
// order: no active attempt anywhere for this student, schedule exists,
// student is registered, window open.
func (e *Engine) StartAttempt(ctx context.Context, studentID, scheduleID string) (StartResult, error) {
	unlock := e.lockStudent(studentID)
	defer unlock()

	if existing, ok, err := e.store.ActiveAttemptByStudent(ctx, studentID); err != nil {
		return StartResult{}, err
	} else if ok {
		return StartResult{}, &ActiveAttemptError{AttemptID: existing.ID}
	}

	schedule, err := e.store.GetSchedule(ctx, scheduleID)
	if err != nil {
		return StartResult{}, err
	}

	registered, err := e.store.IsRegistered(ctx, scheduleID, studentID)
	if err != nil {
		return StartResult{}, err
	}
	if !registered {
		return StartResult{}, ErrNotRegistered
	}

	if !schedule.IsOpen(e.now()) {
		return StartResult{}, ErrWindowClosed
	}

	attempt := Attempt{
		ID:         uuid.NewString(),
		ScheduleID: schedule.ID,
		StudentID:  studentID,
		StartedAt:  e.timestamp(),
	}
	if err := e.store.InsertAttempt(ctx, attempt); err != nil {
		return StartResult{}, err
	}
	return e.startResult(ctx, attempt, schedule)
}

// ActiveAttempt returns the student's current in-progress attempt, if any.
// An attempt whose window has closed, or whose schedule is gone, is treated
// as "no active attempt": it is not resumable, though it remains submittable.
func (e *Engine) ActiveAttempt(ctx context.Context, studentID string) (StartResult, error) {
	attempt, ok, err := e.store.ActiveAttemptByStudent(ctx, studentID)
	if err != nil {
		return StartResult{}, err
	}
	if !ok {
		return StartResult{}, ErrNoActiveAttempt
	}
	schedule, err := e.store.GetSchedule(ctx, attempt.ScheduleID)
	if err != nil {
		return StartResult{}, ErrNoActiveAttempt
	}
	if !schedule.IsOpen(e.now()) {
		return StartResult{}, ErrNoActiveAttempt
	}
	return e.startResult(ctx, attempt, schedule)
}

// SubmitAttempt freezes an attempt with the normalized answers. Late
// submissions are accepted: the window gates starting and resuming only.
func (e *Engine) SubmitAttempt(ctx context.Context, attemptID, studentID string, answers map[string]any) (Attempt, error) {
	attempt, err := e.store.GetAttempt(ctx, attemptID)
	if err != nil {
		return Attempt{}, err
	}
	if attempt.StudentID != studentID {
		return Attempt{}, ErrNotOwner
	}
	if attempt.Submitted() {
		return Attempt{}, ErrAlreadySubmitted
	}
	return e.store.MarkSubmitted(ctx, attemptID, e.timestamp(), NormalizeAnswers(answers))
}

// AttemptResult is the per-question breakdown of a submitted attempt.
type AttemptResult struct {
	Schedule ScheduleSummary  `json:"schedule"`
	Attempt  Attempt          `json:"attempt"`
	Score    int              `json:"score"`
	Total    int              `json:"total"`
	Results  []QuestionResult `json:"results"`
}

type QuestionResult struct {
	QuestionID    string   `json:"questionId"`
	QuestionText  string   `json:"questionText"`
	Options       []string `json:"options"`
	CorrectIndex  int      `json:"correctIndex"`
	SelectedIndex int      `json:"selectedIndex"` // -1 when unanswered
	Correct       bool     `json:"correct"`
}

// Result scores a submitted attempt against its schedule's question list.
func (e *Engine) Result(ctx context.Context, attemptID, studentID string) (AttemptResult, error) {
	attempt, err := e.store.GetAttempt(ctx, attemptID)
	if err != nil {
		return AttemptResult{}, err
	}
	if attempt.StudentID != studentID {
		return AttemptResult{}, ErrNotOwner
	}
	if !attempt.Submitted() {
		return AttemptResult{}, ErrNotSubmitted
	}
	schedule, err := e.store.GetSchedule(ctx, attempt.ScheduleID)
	if err != nil {
		return AttemptResult{}, err
	}
	qs, err := e.questions.GetByIDs(ctx, schedule.QuestionIDs)
	if err != nil {
		return AttemptResult{}, err
	}
	results := make([]QuestionResult, 0, len(qs))
	score := 0
	for _, q := range qs {
		selected, answered := attempt.Answers[q.ID]
		if !answered {
			selected = -1
		}
		correct := answered && selected == q.CorrectIndex
		if correct {
			score++
		}
		results = append(results, QuestionResult{
			QuestionID:    q.ID,
			QuestionText:  q.QuestionText,
			Options:       q.Options,
			CorrectIndex:  q.CorrectIndex,
			SelectedIndex: selected,
			Correct:       correct,
		})
	}
	return AttemptResult{
		Schedule: ScheduleSummary{ID: schedule.ID, Title: schedule.Title, DurationMinutes: schedule.EffectiveDuration()},
		Attempt:  attempt,
		Score:    score,
		Total:    len(results),
		Results:  results,
	}, nil
}

// AttemptSummary is one row of a student's submitted-attempt history.
type AttemptSummary struct {
	ID            string `json:"id"`
	ScheduleID    string `json:"examScheduleId"`
	ScheduleTitle string `json:"scheduleTitle"`
	SubmittedAt   string `json:"submittedAt"`
	Score         int    `json:"score"`
	Total         int    `json:"total"`
}

// SubmittedAttempts lists a student's submitted attempts, newest first. A
// dangling schedule degrades to a placeholder title and zero score.
func (e *Engine) SubmittedAttempts(ctx context.Context, studentID string) ([]AttemptSummary, error) {
	attempts, err := e.store.SubmittedByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	out := make([]AttemptSummary, 0, len(attempts))
	for _, a := range attempts {
		summary := AttemptSummary{
			ID:            a.ID,
			ScheduleID:    a.ScheduleID,
			ScheduleTitle: "Unknown exam",
			SubmittedAt:   a.SubmittedAt,
		}
		if schedule, err := e.store.GetSchedule(ctx, a.ScheduleID); err == nil {
			summary.ScheduleTitle = schedule.Title
			qs, err := e.questions.GetByIDs(ctx, schedule.QuestionIDs)
			if err != nil {
				return nil, err
			}
			summary.Score, summary.Total = Score(qs, a.Answers)
		}
		out = append(out, summary)
	}
	return out, nil
}

// Score counts correct answers for a question list. Unanswered or
// out-of-range entries never match; a nil answers map scores zero.
func Score(qs []question.Question, answers map[string]int) (score, total int) {
	total = len(qs)
	for _, q := range qs {
		if selected, ok := answers[q.ID]; ok && selected == q.CorrectIndex {
			score++
		}
	}
	return score, total
}

// NormalizeAnswers keeps only entries whose value is a non-negative integer.
// Malformed entries are dropped silently rather than failing the submission.
func NormalizeAnswers(raw map[string]any) map[string]int {
	out := map[string]int{}
	for qID, v := range raw {
		switch n := v.(type) {
		case int:
			if n >= 0 {
				out[qID] = n
			}
		case float64: // encoding/json decodes numbers as float64
			if n >= 0 && n == math.Trunc(n) && n <= math.MaxInt32 {
				out[qID] = int(n)
			}
		}
	}
	return out
}

func (e *Engine) startResult(ctx context.Context, attempt Attempt, schedule ExamSchedule) (StartResult, error) {
	qs, err := e.questions.GetByIDs(ctx, schedule.QuestionIDs)
	if err != nil {
		return StartResult{}, err
	}
	safe := make([]question.Safe, 0, len(qs))
	for _, q := range qs {
		safe = append(safe, q.Safe())
	}
	return StartResult{
		Attempt:   attempt,
		Schedule:  ScheduleSummary{ID: schedule.ID, Title: schedule.Title, DurationMinutes: schedule.EffectiveDuration()},
		Questions: safe,
	}, nil
}

func (e *Engine) lockStudent(studentID string) func() {
	e.startMu.Lock()
	mu, ok := e.starts[studentID]
	if !ok {
		mu = &sync.Mutex{}
		e.starts[studentID] = mu
	}
	e.startMu.Unlock()
	mu.Lock()
	return mu.Unlock
}

func (e *Engine) timestamp() string {
	return e.now().UTC().Format(time.RFC3339)
}
