package exam

import "context"

// Store persists schedules, registrations and attempts. Implementations must
// propagate write failures to the caller; exam state is never allowed to
// advance in memory only.
type Store interface {
	// Schedules
	PutSchedule(ctx context.Context, s ExamSchedule) error
	GetSchedule(ctx context.Context, id string) (ExamSchedule, error)
	UpdateSchedule(ctx context.Context, s ExamSchedule) error
	DeleteSchedule(ctx context.Context, id string) error
	ListSchedules(ctx context.Context) ([]ExamSchedule, error)

	// Registrations
	AddRegistration(ctx context.Context, r Registration) error
	RemoveRegistration(ctx context.Context, scheduleID, studentID string) error
	IsRegistered(ctx context.Context, scheduleID, studentID string) (bool, error)
	RegistrationsByStudent(ctx context.Context, studentID string) ([]Registration, error)
	RegistrationsBySchedule(ctx context.Context, scheduleID string) ([]Registration, error)

	// Attempts
	// InsertAttempt fails with *ActiveAttemptError if the student already has
	// an in-progress attempt (backstop for the engine's per-student lock).
	InsertAttempt(ctx context.Context, a Attempt) error
	GetAttempt(ctx context.Context, id string) (Attempt, error)
	ActiveAttemptByStudent(ctx context.Context, studentID string) (Attempt, bool, error)
	// MarkSubmitted freezes the attempt. Fails with ErrAlreadySubmitted if the
	// attempt is no longer in progress.
	MarkSubmitted(ctx context.Context, attemptID, submittedAt string, answers map[string]int) (Attempt, error)
	// SubmittedByStudent returns submitted attempts newest first.
	SubmittedByStudent(ctx context.Context, studentID string) ([]Attempt, error)
	SubmittedBySchedule(ctx context.Context, scheduleID string) ([]Attempt, error)
	HasAttempts(ctx context.Context, scheduleID string) (bool, error)
}
