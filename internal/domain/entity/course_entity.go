package entity

import "time"

// Course is owned by exactly one professor. Students is a set: no duplicates,
// order carries no meaning.
type Course struct {
	ID          string
	Title       string
	Description string
	ProfessorID string
	Students    []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (c *Course) HasStudent(id string) bool {
	for _, s := range c.Students {
		if s == id {
			return true
		}
	}
	return false
}

// CourseUpdate is a partial update of the descriptive fields.
type CourseUpdate struct {
	Title       *string
	Description *string
}

// CourseView is a course with owner and members resolved to public profiles.
type CourseView struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	ProfessorID string        `json:"professor_id"`
	Professor   *UserProfile  `json:"professor,omitempty"`
	Students    []UserProfile `json:"students"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
