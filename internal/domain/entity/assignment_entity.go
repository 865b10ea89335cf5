package entity

import "time"

type Assignment struct {
	ID          string       `json:"id"`
	CourseID    string       `json:"course_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	DueDate     time.Time    `json:"due_date"`
	Submissions []Submission `json:"submissions"`
	Grade       *Grade       `json:"grade,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Submission entries are kept in the order they were received.
type Submission struct {
	StudentID   string    `json:"student_id"`
	FileRef     string    `json:"file_ref"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type Grade struct {
	StudentID string    `json:"student_id"`
	Value     string    `json:"value"`
	GradedBy  string    `json:"graded_by"`
	GradedAt  time.Time `json:"graded_at"`
}
