// Package report aggregates submitted attempts into ranked score reports,
// overall and grouped by school.
package report

import (
	"context"
	"sort"
	"strings"

	"github.com/pareeksha/pareeksha/internal/exam"
	"github.com/pareeksha/pareeksha/internal/question"
	"github.com/pareeksha/pareeksha/internal/student"
)

const missingField = "—"

// Row is one ranked entry of a score report.
type Row struct {
	AttemptID            string `json:"attemptId"`
	StudentID            string `json:"studentId"`
	StudentName          string `json:"studentName"`
	SchoolNameAndAddress string `json:"schoolNameAndAddress"`
	City                 string `json:"city"`
	State                string `json:"state"`
	Score                int    `json:"score"`
	Total                int    `json:"total"`
	SubmittedAt          string `json:"submittedAt"`
	Rank                 int    `json:"rank"`
}

// SchoolGroup is the per-school leaderboard; ranks restart at 1 inside each
// group. A blank school collapses into one group with an empty display label.
type SchoolGroup struct {
	SchoolNameAndAddress string `json:"schoolNameAndAddress"`
	City                 string `json:"city"`
	State                string `json:"state"`
	Students             []Row  `json:"students"`
}

// ScheduleSummary identifies the reported exam.
type ScheduleSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	ScheduledAt string `json:"scheduledAt"`
}

// Report is the full score-and-rank report for one schedule.
type Report struct {
	Schedule     ScheduleSummary `json:"schedule"`
	AllLocations []Row           `json:"allLocations"`
	SchoolWise   []SchoolGroup   `json:"schoolWise"`
}

// Engine computes score reports from submitted attempts, the question bank
// and the student directory.
type Engine struct {
	store     exam.Store
	questions question.Store
	students  student.Store
}

func NewEngine(store exam.Store, questions question.Store, students student.Store) *Engine {
	return &Engine{store: store, questions: questions, students: students}
}

// ScoreReport builds the report for one schedule. A missing student record
// degrades to placeholder values rather than failing the report.
func (e *Engine) ScoreReport(ctx context.Context, scheduleID string) (Report, error) {
	schedule, err := e.store.GetSchedule(ctx, scheduleID)
	if err != nil {
		return Report{}, err
	}
	attempts, err := e.store.SubmittedBySchedule(ctx, scheduleID)
	if err != nil {
		return Report{}, err
	}
	questions, err := e.questions.GetByIDs(ctx, schedule.QuestionIDs)
	if err != nil {
		return Report{}, err
	}

	rows := make([]Row, 0, len(attempts))
	for _, a := range attempts {
		score, total := exam.Score(questions, a.Answers)
		row := Row{
			AttemptID:            a.ID,
			StudentID:            a.StudentID,
			StudentName:          a.StudentID,
			SchoolNameAndAddress: missingField,
			City:                 missingField,
			State:                missingField,
			Score:                score,
			Total:                total,
			SubmittedAt:          a.SubmittedAt,
		}
		if rec, err := e.students.Get(ctx, a.StudentID); err == nil {
			if name := rec.DisplayName(); name != "" {
				row.StudentName = name
			}
			row.SchoolNameAndAddress = rec.SchoolNameAndAddress
			row.City = rec.City
			row.State = rec.State
		}
		rows = append(rows, row)
	}

	return Report{
		Schedule:     ScheduleSummary{ID: schedule.ID, Title: schedule.Title, ScheduledAt: schedule.ScheduledAt},
		AllLocations: rank(rows),
		SchoolWise:   groupBySchool(rows),
	}, nil
}

// rank sorts by score descending, ties broken by earlier submission (ISO
// timestamps compare lexicographically), and assigns 1-based positions.
// Stability settles any remaining ties; ranks are never shared.
func rank(rows []Row) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].SubmittedAt < out[j].SubmittedAt
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

func groupBySchool(rows []Row) []SchoolGroup {
	buckets := map[string][]Row{}
	for _, r := range rows {
		key := strings.TrimSpace(r.SchoolNameAndAddress)
		if key == missingField {
			key = ""
		}
		buckets[key] = append(buckets[key], r)
	}
	out := make([]SchoolGroup, 0, len(buckets))
	for school, members := range buckets {
		ranked := rank(members)
		group := SchoolGroup{
			SchoolNameAndAddress: school,
			City:                 missingField,
			State:                missingField,
			Students:             ranked,
		}
		if len(ranked) > 0 {
			group.City = ranked[0].City
			group.State = ranked[0].State
		}
		out = append(out, group)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SchoolNameAndAddress < out[j].SchoolNameAndAddress
	})
	return out
}
