package exam

import "time"

// DefaultDurationMinutes applies when a schedule carries no explicit duration.
const DefaultDurationMinutes = 60

// ExamSchedule is an administrator-defined exam instance. Once any attempt
// exists for it, the question set is frozen; only title, start time and
// duration may still change.
type ExamSchedule struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	ScheduledAt     string   `json:"scheduledAt"` // RFC 3339
	DurationMinutes int      `json:"durationMinutes,omitempty"`
	QuestionIDs     []string `json:"questionIds,omitempty"`
	CreatedAt       string   `json:"createdAt"`
	CreatedBy       string   `json:"createdBy,omitempty"`
}

// EffectiveDuration returns the schedule's duration in minutes, defaulted.
func (s ExamSchedule) EffectiveDuration() int {
	if s.DurationMinutes > 0 {
		return s.DurationMinutes
	}
	return DefaultDurationMinutes
}

// StartTime parses the scheduled start instant.
func (s ExamSchedule) StartTime() (time.Time, error) {
	return time.Parse(time.RFC3339, s.ScheduledAt)
}

// WindowEnd is scheduledAt + duration.
func (s ExamSchedule) WindowEnd() (time.Time, error) {
	start, err := s.StartTime()
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(time.Duration(s.EffectiveDuration()) * time.Minute), nil
}

// IsOpen reports whether now falls inside the half-open window
// [scheduledAt, scheduledAt+duration). An unparseable start counts as closed.
func (s ExamSchedule) IsOpen(now time.Time) bool {
	start, err := s.StartTime()
	if err != nil {
		return false
	}
	end := start.Add(time.Duration(s.EffectiveDuration()) * time.Minute)
	return !now.Before(start) && now.Before(end)
}

// Registration records that a student signed up for a scheduled exam.
// Unique per (schedule, student) pair.
type Registration struct {
	ScheduleID   string `json:"examScheduleId"`
	StudentID    string `json:"studentId"`
	RegisteredAt string `json:"registeredAt"`
}

// Attempt is one student's timed pass at a schedule's questions.
// SubmittedAt empty means the attempt is still in progress; once set, the
// attempt and its answers never change again.
type Attempt struct {
	ID          string         `json:"id"`
	ScheduleID  string         `json:"examScheduleId"`
	StudentID   string         `json:"studentId"`
	StartedAt   string         `json:"startedAt"`
	SubmittedAt string         `json:"submittedAt,omitempty"`
	Answers     map[string]int `json:"answers,omitempty"` // questionID -> selected option index
}

func (a Attempt) Submitted() bool { return a.SubmittedAt != "" }
