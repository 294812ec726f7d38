package exam

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CreateScheduleInput is the caller-supplied part of a new schedule.
type CreateScheduleInput struct {
	Title           string   `json:"title"`
	ScheduledAt     string   `json:"scheduledAt"`
	DurationMinutes *int     `json:"durationMinutes,omitempty"`
	QuestionIDs     []string `json:"questionIds,omitempty"`
}

// UpdateScheduleInput is a partial update; nil fields are left unchanged.
type UpdateScheduleInput struct {
	Title           *string   `json:"title,omitempty"`
	ScheduledAt     *string   `json:"scheduledAt,omitempty"`
	DurationMinutes *int      `json:"durationMinutes,omitempty"`
	QuestionIDs     *[]string `json:"questionIds,omitempty"`
}

func (in UpdateScheduleInput) empty() bool {
	return in.Title == nil && in.ScheduledAt == nil && in.DurationMinutes == nil && in.QuestionIDs == nil
}

// CreateSchedule validates and persists a new exam schedule. Question ids are
// accepted without a foreign-key check; unknown ids simply contribute nothing
// at attempt time.
func (e *Engine) CreateSchedule(ctx context.Context, createdBy string, in CreateScheduleInput) (ExamSchedule, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return ExamSchedule{}, &ValidationError{Message: "title is required"}
	}
	scheduledAt, err := normalizeInstant(in.ScheduledAt)
	if err != nil {
		return ExamSchedule{}, err
	}
	duration := 0
	if in.DurationMinutes != nil {
		if err := checkDuration(*in.DurationMinutes); err != nil {
			return ExamSchedule{}, err
		}
		duration = *in.DurationMinutes
	}
	schedule := ExamSchedule{
		ID:              uuid.NewString(),
		Title:           title,
		ScheduledAt:     scheduledAt,
		DurationMinutes: duration,
		QuestionIDs:     cleanIDs(in.QuestionIDs),
		CreatedAt:       e.timestamp(),
		CreatedBy:       createdBy,
	}
	if err := e.store.PutSchedule(ctx, schedule); err != nil {
		return ExamSchedule{}, err
	}
	return schedule, nil
}

// UpdateSchedule applies a partial update. If any attempt exists for the
// schedule, supplying questionIds fails with ErrQuestionsLocked; the other
// fields remain editable so the exam can still be rescheduled.
func (e *Engine) UpdateSchedule(ctx context.Context, id string, in UpdateScheduleInput) (ExamSchedule, error) {
	if in.empty() {
		return ExamSchedule{}, &ValidationError{Message: "no fields to update"}
	}
	schedule, err := e.store.GetSchedule(ctx, id)
	if err != nil {
		return ExamSchedule{}, err
	}
	attempted, err := e.store.HasAttempts(ctx, id)
	if err != nil {
		return ExamSchedule{}, err
	}
	if attempted && in.QuestionIDs != nil {
		return ExamSchedule{}, ErrQuestionsLocked
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return ExamSchedule{}, &ValidationError{Message: "title must be a non-empty string"}
		}
		schedule.Title = title
	}
	if in.ScheduledAt != nil {
		scheduledAt, err := normalizeInstant(*in.ScheduledAt)
		if err != nil {
			return ExamSchedule{}, err
		}
		schedule.ScheduledAt = scheduledAt
	}
	if in.DurationMinutes != nil {
		if err := checkDuration(*in.DurationMinutes); err != nil {
			return ExamSchedule{}, err
		}
		schedule.DurationMinutes = *in.DurationMinutes
	}
	if in.QuestionIDs != nil {
		schedule.QuestionIDs = cleanIDs(*in.QuestionIDs)
	}
	if err := e.store.UpdateSchedule(ctx, schedule); err != nil {
		return ExamSchedule{}, err
	}
	return schedule, nil
}

func (e *Engine) DeleteSchedule(ctx context.Context, id string) error {
	return e.store.DeleteSchedule(ctx, id)
}

func (e *Engine) GetSchedule(ctx context.Context, id string) (ExamSchedule, error) {
	return e.store.GetSchedule(ctx, id)
}

func (e *Engine) ListSchedules(ctx context.Context) ([]ExamSchedule, error) {
	return e.store.ListSchedules(ctx)
}

func (e *Engine) HasAttempts(ctx context.Context, scheduleID string) (bool, error) {
	return e.store.HasAttempts(ctx, scheduleID)
}

// Register signs a student up for a schedule. Only allowed strictly before
// the scheduled start, not during the window.
func (e *Engine) Register(ctx context.Context, scheduleID, studentID string) error {
	schedule, err := e.store.GetSchedule(ctx, scheduleID)
	if err != nil {
		return err
	}
	start, err := schedule.StartTime()
	if err != nil {
		return ErrPastExam
	}
	if !e.now().Before(start) {
		return ErrPastExam
	}
	return e.store.AddRegistration(ctx, Registration{
		ScheduleID:   scheduleID,
		StudentID:    studentID,
		RegisteredAt: e.timestamp(),
	})
}

func (e *Engine) Unregister(ctx context.Context, scheduleID, studentID string) error {
	return e.store.RemoveRegistration(ctx, scheduleID, studentID)
}

func (e *Engine) IsRegistered(ctx context.Context, scheduleID, studentID string) (bool, error) {
	return e.store.IsRegistered(ctx, scheduleID, studentID)
}

// Registrations lists who signed up for a schedule.
func (e *Engine) Registrations(ctx context.Context, scheduleID string) ([]Registration, error) {
	if _, err := e.store.GetSchedule(ctx, scheduleID); err != nil {
		return nil, err
	}
	return e.store.RegistrationsBySchedule(ctx, scheduleID)
}

// UpcomingSchedule is a schedule plus the viewing student's registration flag.
type UpcomingSchedule struct {
	ExamSchedule
	Registered bool `json:"registered"`
}

// UpcomingSchedules lists schedules that are in the future or currently in
// their exam window, so "start exam" stays visible while an exam runs.
func (e *Engine) UpcomingSchedules(ctx context.Context, studentID string) ([]UpcomingSchedule, error) {
	schedules, err := e.store.ListSchedules(ctx)
	if err != nil {
		return nil, err
	}
	regs, err := e.store.RegistrationsByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	registered := make(map[string]bool, len(regs))
	for _, r := range regs {
		registered[r.ScheduleID] = true
	}
	now := e.now()
	out := []UpcomingSchedule{}
	for _, s := range schedules {
		start, err := s.StartTime()
		if err != nil {
			continue
		}
		if !now.Before(start) && !s.IsOpen(now) {
			continue
		}
		out = append(out, UpcomingSchedule{ExamSchedule: s, Registered: registered[s.ID]})
	}
	return out, nil
}

func normalizeInstant(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", &ValidationError{Message: "scheduledAt is required (ISO 8601 datetime)"}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return "", &ValidationError{Message: "scheduledAt must be a valid ISO 8601 datetime"}
	}
	return t.UTC().Format(time.RFC3339), nil
}

func checkDuration(d int) error {
	if d < 1 || d > 9999 {
		return &ValidationError{Message: fmt.Sprintf("durationMinutes must be between 1 and 9999, got %d", d)}
	}
	return nil
}

func cleanIDs(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if s := strings.TrimSpace(id); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
