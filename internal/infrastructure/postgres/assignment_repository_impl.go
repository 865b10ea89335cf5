package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/eduflex-backend/internal/domain/apperror"
	"github.com/oksasatya/eduflex-backend/internal/domain/entity"
	"github.com/oksasatya/eduflex-backend/internal/domain/repository"
)

type AssignmentRepository struct {
	pool *pgxpool.Pool
}

func NewAssignmentRepository(pool *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{pool: pool}
}

const assignmentColumns = `id::text, course_id::text, title, description, due_date, created_at,
	grade_student_id::text, grade_value, graded_by::text, graded_at`

func scanAssignment(row pgx.Row) (*entity.Assignment, error) {
	a := &entity.Assignment{Submissions: []entity.Submission{}}
	var (
		gStudent, gValue, gBy *string
		gAt                   *time.Time
	)
	if err := row.Scan(&a.ID, &a.CourseID, &a.Title, &a.Description, &a.DueDate, &a.CreatedAt,
		&gStudent, &gValue, &gBy, &gAt); err != nil {
		return nil, err
	}
	if gValue != nil && gStudent != nil {
		g := &entity.Grade{StudentID: *gStudent, Value: *gValue}
		if gBy != nil {
			g.GradedBy = *gBy
		}
		if gAt != nil {
			g.GradedAt = *gAt
		}
		a.Grade = g
	}
	return a, nil
}

func (r *AssignmentRepository) Create(ctx context.Context, a *entity.Assignment) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO assignments (course_id, title, description, due_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id::text, created_at
	`, a.CourseID, a.Title, a.Description, a.DueDate)
	if err := row.Scan(&a.ID, &a.CreatedAt); err != nil {
		return err
	}
	a.Submissions = []entity.Submission{}
	return nil
}

func (r *AssignmentRepository) GetByID(ctx context.Context, id string) (*entity.Assignment, error) {
	a, err := scanAssignment(r.pool.QueryRow(ctx, `SELECT `+assignmentColumns+` FROM assignments WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "assignment")
	}
	if err := r.loadSubmissions(ctx, []*entity.Assignment{a}); err != nil {
		return nil, err
	}
	return a, nil
}

func (r *AssignmentRepository) ListByCourse(ctx context.Context, courseID string) ([]entity.Assignment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+assignmentColumns+` FROM assignments WHERE course_id = $1 ORDER BY due_date`, courseID)
	if err != nil {
		if pgCode(err) == codeInvalidText {
			return []entity.Assignment{}, nil
		}
		return nil, err
	}
	list := make([]*entity.Assignment, 0)
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		list = append(list, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadSubmissions(ctx, list); err != nil {
		return nil, err
	}

	out := make([]entity.Assignment, 0, len(list))
	for _, a := range list {
		out = append(out, *a)
	}
	return out, nil
}

func (r *AssignmentRepository) loadSubmissions(ctx context.Context, list []*entity.Assignment) error {
	if len(list) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Assignment, len(list))
	ids := make([]string, 0, len(list))
	for _, a := range list {
		byID[a.ID] = a
		ids = append(ids, a.ID)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT assignment_id::text, student_id::text, file_ref, submitted_at
		FROM assignment_submissions
		WHERE assignment_id = ANY($1::uuid[])
		ORDER BY submitted_at, id
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			assignmentID string
			s            entity.Submission
		)
		if err := rows.Scan(&assignmentID, &s.StudentID, &s.FileRef, &s.SubmittedAt); err != nil {
			return err
		}
		if a, ok := byID[assignmentID]; ok {
			a.Submissions = append(a.Submissions, s)
		}
	}
	return rows.Err()
}

func (r *AssignmentRepository) AddSubmission(ctx context.Context, assignmentID string, s entity.Submission) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO assignment_submissions (assignment_id, student_id, file_ref, submitted_at)
		VALUES ($1, $2, $3, $4)
	`, assignmentID, s.StudentID, s.FileRef, s.SubmittedAt)
	if err != nil {
		if pgCode(err) == codeForeignKeyViolation {
			return apperror.NotFound("assignment")
		}
		return notFound(err, "assignment")
	}
	return nil
}

func (r *AssignmentRepository) SetGrade(ctx context.Context, assignmentID string, g entity.Grade) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE assignments
		SET grade_student_id = $1, grade_value = $2, graded_by = $3, graded_at = $4
		WHERE id = $5
	`, g.StudentID, g.Value, g.GradedBy, g.GradedAt, assignmentID)
	if err != nil {
		return notFound(err, "assignment")
	}
	if res.RowsAffected() == 0 {
		return apperror.NotFound("assignment")
	}
	return nil
}

var _ repository.AssignmentRepository = (*AssignmentRepository)(nil)
