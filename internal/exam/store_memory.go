package exam

import (
	"context"
	"sort"
	"sync"
)

type memoryStore struct {
	mu            sync.RWMutex
	schedules     map[string]ExamSchedule
	registrations []Registration
	attempts      map[string]Attempt
}

// NewInMemoryStore returns a Store backed by process memory. Used by tests
// and DB-less development.
func NewInMemoryStore() Store {
	return &memoryStore{
		schedules: map[string]ExamSchedule{},
		attempts:  map[string]Attempt{},
	}
}

func (m *memoryStore) PutSchedule(ctx context.Context, s ExamSchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schedules[s.ID] = s
	return nil
}

func (m *memoryStore) GetSchedule(ctx context.Context, id string) (ExamSchedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.schedules[id]
	if !ok {
		return ExamSchedule{}, ErrScheduleNotFound
	}
	return s, nil
}

func (m *memoryStore) UpdateSchedule(ctx context.Context, s ExamSchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.schedules[s.ID]; !ok {
		return ErrScheduleNotFound
	}
	m.schedules[s.ID] = s
	return nil
}

func (m *memoryStore) DeleteSchedule(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.schedules[id]; !ok {
		return ErrScheduleNotFound
	}
	delete(m.schedules, id)
	return nil
}

func (m *memoryStore) ListSchedules(ctx context.Context) ([]ExamSchedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ExamSchedule, 0, len(m.schedules))
	for _, s := range m.schedules {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt < out[j].ScheduledAt })
	return out, nil
}

func (m *memoryStore) AddRegistration(ctx context.Context, r Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.registrations {
		if existing.ScheduleID == r.ScheduleID && existing.StudentID == r.StudentID {
			return ErrAlreadyRegistered
		}
	}
	m.registrations = append(m.registrations, r)
	return nil
}

func (m *memoryStore) RemoveRegistration(ctx context.Context, scheduleID, studentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.registrations {
		if r.ScheduleID == scheduleID && r.StudentID == studentID {
			m.registrations = append(m.registrations[:i], m.registrations[i+1:]...)
			return nil
		}
	}
	return ErrNotRegistered
}

func (m *memoryStore) IsRegistered(ctx context.Context, scheduleID, studentID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.registrations {
		if r.ScheduleID == scheduleID && r.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryStore) RegistrationsByStudent(ctx context.Context, studentID string) ([]Registration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Registration{}
	for _, r := range m.registrations {
		if r.StudentID == studentID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryStore) RegistrationsBySchedule(ctx context.Context, scheduleID string) ([]Registration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Registration{}
	for _, r := range m.registrations {
		if r.ScheduleID == scheduleID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryStore) InsertAttempt(ctx context.Context, a Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.attempts {
		if existing.StudentID == a.StudentID && !existing.Submitted() {
			return &ActiveAttemptError{AttemptID: existing.ID}
		}
	}
	m.attempts[a.ID] = cloneAttempt(a)
	return nil
}

func (m *memoryStore) GetAttempt(ctx context.Context, id string) (Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.attempts[id]
	if !ok {
		return Attempt{}, ErrAttemptNotFound
	}
	return cloneAttempt(a), nil
}

func (m *memoryStore) ActiveAttemptByStudent(ctx context.Context, studentID string) (Attempt, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.attempts {
		if a.StudentID == studentID && !a.Submitted() {
			return cloneAttempt(a), true, nil
		}
	}
	return Attempt{}, false, nil
}

func (m *memoryStore) MarkSubmitted(ctx context.Context, attemptID, submittedAt string, answers map[string]int) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[attemptID]
	if !ok {
		return Attempt{}, ErrAttemptNotFound
	}
	if a.Submitted() {
		return Attempt{}, ErrAlreadySubmitted
	}
	a.SubmittedAt = submittedAt
	a.Answers = make(map[string]int, len(answers))
	for k, v := range answers {
		a.Answers[k] = v
	}
	m.attempts[attemptID] = a
	return cloneAttempt(a), nil
}

func (m *memoryStore) SubmittedByStudent(ctx context.Context, studentID string) ([]Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Attempt{}
	for _, a := range m.attempts {
		if a.StudentID == studentID && a.Submitted() {
			out = append(out, cloneAttempt(a))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SubmittedAt > out[j].SubmittedAt })
	return out, nil
}

func (m *memoryStore) SubmittedBySchedule(ctx context.Context, scheduleID string) ([]Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Attempt{}
	for _, a := range m.attempts {
		if a.ScheduleID == scheduleID && a.Submitted() {
			out = append(out, cloneAttempt(a))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SubmittedAt < out[j].SubmittedAt })
	return out, nil
}

func (m *memoryStore) HasAttempts(ctx context.Context, scheduleID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.attempts {
		if a.ScheduleID == scheduleID {
			return true, nil
		}
	}
	return false, nil
}

// cloneAttempt keeps callers from mutating stored answer maps.
func cloneAttempt(a Attempt) Attempt {
	if a.Answers == nil {
		return a
	}
	answers := make(map[string]int, len(a.Answers))
	for k, v := range a.Answers {
		answers[k] = v
	}
	a.Answers = answers
	return a
}
