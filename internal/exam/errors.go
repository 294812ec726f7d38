package exam

import "errors"

var (
	// ErrScheduleNotFound is returned when a schedule id is unknown.
	ErrScheduleNotFound = errors.New("exam schedule not found")
	// ErrAttemptNotFound is returned when an attempt id is unknown.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrNotRegistered means the student never registered for the schedule.
	ErrNotRegistered = errors.New("not registered for this exam")
	// ErrAlreadyRegistered means the (schedule, student) pair already exists.
	ErrAlreadyRegistered = errors.New("already registered for this exam")
	// ErrPastExam means the exam has already started or passed.
	ErrPastExam = errors.New("cannot register for a past exam")
	// ErrWindowClosed means now is outside the schedule's exam window.
	ErrWindowClosed = errors.New("exam is not open for attempt at this time")
	// ErrNotOwner means the attempt belongs to a different student.
	ErrNotOwner = errors.New("not your attempt")
	// ErrAlreadySubmitted guards the submitted state: it is terminal.
	ErrAlreadySubmitted = errors.New("attempt already submitted")
	// ErrNotSubmitted is returned when a result is requested too early.
	ErrNotSubmitted = errors.New("attempt not yet submitted")
	// ErrQuestionsLocked means the schedule has attempts and its question set
	// can no longer be edited.
	ErrQuestionsLocked = errors.New("exam has been attempted; only title, scheduledAt and durationMinutes may change")
	// ErrNoActiveAttempt means the student has no resumable attempt.
	ErrNoActiveAttempt = errors.New("no active attempt")
)

// ActiveAttemptError is returned by Start when the student already has an
// attempt in progress. It carries the existing attempt id so clients can
// resume instead of retrying.
type ActiveAttemptError struct {
	AttemptID string
}

func (e *ActiveAttemptError) Error() string { return "you already have an active attempt" }

// ValidationError reports malformed schedule input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
