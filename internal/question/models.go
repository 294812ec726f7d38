package question

// Question is a multiple-choice question. Immutable once created.
type Question struct {
	ID           string   `json:"id"`
	QuestionText string   `json:"questionText"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	CreatedAt    string   `json:"createdAt"`
	CreatedBy    string   `json:"createdBy,omitempty"`
}

// Safe is the student-facing view of a question with the answer stripped.
type Safe struct {
	ID           string   `json:"id"`
	QuestionText string   `json:"questionText"`
	Options      []string `json:"options"`
}

func (q Question) Safe() Safe {
	return Safe{ID: q.ID, QuestionText: q.QuestionText, Options: q.Options}
}

// CreateInput is the caller-supplied part of a new question.
type CreateInput struct {
	QuestionText string   `json:"questionText"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
}
