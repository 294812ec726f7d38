package report

import (
	"context"
	"testing"

	"github.com/pareeksha/pareeksha/internal/exam"
	"github.com/pareeksha/pareeksha/internal/question"
	"github.com/pareeksha/pareeksha/internal/student"
)

type reportFixture struct {
	engine   *Engine
	exams    exam.Store
	qs       question.Store
	students student.Store
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	f := &reportFixture{
		exams:    exam.NewInMemoryStore(),
		qs:       question.NewInMemoryStore(),
		students: student.NewInMemoryStore(),
	}
	f.engine = NewEngine(f.exams, f.qs, f.students)
	return f
}

func (f *reportFixture) seedSchedule(t *testing.T, questionIDs ...string) {
	t.Helper()
	ctx := context.Background()
	for i, id := range questionIDs {
		err := f.qs.Put(ctx, question.Question{
			ID:           id,
			QuestionText: "q " + id,
			Options:      []string{"a", "b"},
			CorrectIndex: i % 2,
		})
		if err != nil {
			t.Fatalf("put question: %v", err)
		}
	}
	err := f.exams.PutSchedule(ctx, exam.ExamSchedule{
		ID:          "s1",
		Title:       "Final",
		ScheduledAt: "2026-03-01T09:00:00Z",
		QuestionIDs: questionIDs,
	})
	if err != nil {
		t.Fatalf("put schedule: %v", err)
	}
}

func (f *reportFixture) seedAttempt(t *testing.T, studentID, submittedAt string, answers map[string]int) {
	t.Helper()
	ctx := context.Background()
	a := exam.Attempt{
		ID:         "a-" + studentID,
		ScheduleID: "s1",
		StudentID:  studentID,
		StartedAt:  "2026-03-01T09:00:00Z",
	}
	if err := f.exams.InsertAttempt(ctx, a); err != nil {
		t.Fatalf("insert attempt: %v", err)
	}
	if _, err := f.exams.MarkSubmitted(ctx, a.ID, submittedAt, answers); err != nil {
		t.Fatalf("submit: %v", err)
	}
}

func (f *reportFixture) seedStudent(t *testing.T, id, name, school, city, state string) {
	t.Helper()
	err := f.students.Put(context.Background(), student.Record{
		ID:                   id,
		FirstName:            name,
		LastName:             "Kumar",
		SchoolNameAndAddress: school,
		City:                 city,
		State:                state,
	})
	if err != nil {
		t.Fatalf("put student: %v", err)
	}
}

func TestScoreReportRanking(t *testing.T) {
	f := newReportFixture(t)
	// q1 correct=0, q2 correct=1, q3 correct=0.
	f.seedSchedule(t, "q1", "q2", "q3")

	full := map[string]int{"q1": 0, "q2": 1, "q3": 0}
	partial := map[string]int{"q1": 0, "q2": 0, "q3": 1}

	// Same score for stu-1 and stu-2; stu-2 submitted earlier and must rank
	// above. stu-3 trails on score.
	f.seedAttempt(t, "stu-1", "2026-03-01T09:20:00Z", full)
	f.seedAttempt(t, "stu-2", "2026-03-01T09:10:00Z", full)
	f.seedAttempt(t, "stu-3", "2026-03-01T09:05:00Z", partial)

	report, err := f.engine.ScoreReport(context.Background(), "s1")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.Schedule.ID != "s1" || report.Schedule.Title != "Final" {
		t.Fatalf("schedule = %+v", report.Schedule)
	}

	rows := report.AllLocations
	if len(rows) != 3 {
		t.Fatalf("got %d rows", len(rows))
	}
	wantOrder := []string{"stu-2", "stu-1", "stu-3"}
	for i, want := range wantOrder {
		if rows[i].StudentID != want {
			t.Fatalf("row %d = %s, want %s", i, rows[i].StudentID, want)
		}
		if rows[i].Rank != i+1 {
			t.Fatalf("row %d rank = %d", i, rows[i].Rank)
		}
	}
	if rows[0].Score != 3 || rows[2].Score != 1 || rows[0].Total != 3 {
		t.Fatalf("scores = %d, %d / %d", rows[0].Score, rows[2].Score, rows[0].Total)
	}
}

func TestScoreReportSchoolGroups(t *testing.T) {
	f := newReportFixture(t)
	f.seedSchedule(t, "q1")

	correct := map[string]int{"q1": 0}
	f.seedAttempt(t, "stu-1", "2026-03-01T09:10:00Z", correct)
	f.seedAttempt(t, "stu-2", "2026-03-01T09:11:00Z", correct)
	f.seedAttempt(t, "stu-3", "2026-03-01T09:12:00Z", nil)

	f.seedStudent(t, "stu-1", "Asha", "Zenith School, Pune", "Pune", "MH")
	f.seedStudent(t, "stu-2", "Ravi", "Akash Vidyalaya, Delhi", "Delhi", "DL")
	// stu-3 has a blank school.
	f.seedStudent(t, "stu-3", "Meena", "   ", "Pune", "MH")

	report, err := f.engine.ScoreReport(context.Background(), "s1")
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	groups := report.SchoolWise
	if len(groups) != 3 {
		t.Fatalf("got %d groups", len(groups))
	}
	// Sorted by school name; the blank bucket sorts first as "".
	if groups[0].SchoolNameAndAddress != "" {
		t.Fatalf("group 0 = %q", groups[0].SchoolNameAndAddress)
	}
	if groups[1].SchoolNameAndAddress != "Akash Vidyalaya, Delhi" {
		t.Fatalf("group 1 = %q", groups[1].SchoolNameAndAddress)
	}
	if groups[2].SchoolNameAndAddress != "Zenith School, Pune" {
		t.Fatalf("group 2 = %q", groups[2].SchoolNameAndAddress)
	}

	// Ranks restart inside each group.
	for _, g := range groups {
		if len(g.Students) != 1 || g.Students[0].Rank != 1 {
			t.Fatalf("group %q students = %+v", g.SchoolNameAndAddress, g.Students)
		}
	}
	if groups[2].Students[0].StudentName != "Asha Kumar" {
		t.Fatalf("name = %q", groups[2].Students[0].StudentName)
	}
}

func TestScoreReportMissingStudent(t *testing.T) {
	f := newReportFixture(t)
	f.seedSchedule(t, "q1")
	f.seedAttempt(t, "ghost", "2026-03-01T09:10:00Z", map[string]int{"q1": 0})

	report, err := f.engine.ScoreReport(context.Background(), "s1")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	row := report.AllLocations[0]
	if row.StudentName != "ghost" {
		t.Fatalf("name = %q, want student id fallback", row.StudentName)
	}
	if row.SchoolNameAndAddress != "—" || row.City != "—" || row.State != "—" {
		t.Fatalf("placeholders = %+v", row)
	}
	// The placeholder school lands in the blank bucket.
	if len(report.SchoolWise) != 1 || report.SchoolWise[0].SchoolNameAndAddress != "" {
		t.Fatalf("schoolWise = %+v", report.SchoolWise)
	}
}

func TestScoreReportUnknownSchedule(t *testing.T) {
	f := newReportFixture(t)
	if _, err := f.engine.ScoreReport(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for unknown schedule")
	}
}

func TestScoreReportEmpty(t *testing.T) {
	f := newReportFixture(t)
	f.seedSchedule(t, "q1")

	report, err := f.engine.ScoreReport(context.Background(), "s1")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(report.AllLocations) != 0 || len(report.SchoolWise) != 0 {
		t.Fatalf("report not empty: %+v", report)
	}
}
