package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/eduflex-backend/internal/domain/apperror"
	"github.com/oksasatya/eduflex-backend/internal/domain/entity"
	"github.com/oksasatya/eduflex-backend/internal/domain/repository"
)

// Membership lives in course_students, whose primary key (course_id, student_id)
// makes enrollment an idempotent insert.
type CourseRepository struct {
	pool *pgxpool.Pool
}

func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

const courseSelect = `
	SELECT c.id::text, c.title, c.description, c.professor_id::text, c.created_at, c.updated_at,
		COALESCE(
			(SELECT array_agg(cs.student_id::text ORDER BY cs.enrolled_at)
			 FROM course_students cs WHERE cs.course_id = c.id),
			'{}'
		)
	FROM courses c`

func scanCourse(row pgx.Row) (*entity.Course, error) {
	c := &entity.Course{}
	if err := row.Scan(&c.ID, &c.Title, &c.Description, &c.ProfessorID, &c.CreatedAt, &c.UpdatedAt, &c.Students); err != nil {
		return nil, err
	}
	if c.Students == nil {
		c.Students = []string{}
	}
	return c, nil
}

func (r *CourseRepository) Create(ctx context.Context, c *entity.Course) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO courses (title, description, professor_id)
		VALUES ($1, $2, $3)
		RETURNING id::text, created_at, updated_at
	`, c.Title, c.Description, c.ProfessorID)
	if err := row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return err
	}
	c.Students = []string{}
	return nil
}

func (r *CourseRepository) GetByID(ctx context.Context, id string) (*entity.Course, error) {
	c, err := scanCourse(r.pool.QueryRow(ctx, courseSelect+` WHERE c.id = $1`, id))
	if err != nil {
		return nil, notFound(err, "course")
	}
	return c, nil
}

func (r *CourseRepository) query(ctx context.Context, sql string, args ...any) ([]entity.Course, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		if pgCode(err) == codeInvalidText {
			return []entity.Course{}, nil
		}
		return nil, err
	}
	defer rows.Close()

	out := make([]entity.Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *CourseRepository) List(ctx context.Context) ([]entity.Course, error) {
	return r.query(ctx, courseSelect+` ORDER BY c.created_at`)
}

func (r *CourseRepository) ListByOwner(ctx context.Context, professorID string) ([]entity.Course, error) {
	return r.query(ctx, courseSelect+` WHERE c.professor_id = $1 ORDER BY c.created_at`, professorID)
}

func (r *CourseRepository) ListByStudent(ctx context.Context, studentID string) ([]entity.Course, error) {
	return r.query(ctx, courseSelect+`
		WHERE EXISTS (SELECT 1 FROM course_students m WHERE m.course_id = c.id AND m.student_id = $1)
		ORDER BY c.created_at`, studentID)
}

func (r *CourseRepository) Update(ctx context.Context, id string, upd entity.CourseUpdate) (*entity.Course, error) {
	res, err := r.pool.Exec(ctx, `
		UPDATE courses
		SET title = COALESCE($1, title), description = COALESCE($2, description), updated_at = now()
		WHERE id = $3
	`, upd.Title, upd.Description, id)
	if err != nil {
		return nil, notFound(err, "course")
	}
	if res.RowsAffected() == 0 {
		return nil, apperror.NotFound("course")
	}
	return r.GetByID(ctx, id)
}

func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return notFound(err, "course")
	}
	if res.RowsAffected() == 0 {
		return apperror.NotFound("course")
	}
	return nil
}

// addStudentSQL inserts the membership and bumps the course in one statement.
// The UPDATE only touches a row when the insert did, so RowsAffected reports
// whether the student was added.
const addStudentSQL = `
	WITH ins AS (
		INSERT INTO course_students (course_id, student_id)
		VALUES ($1, $2)
		ON CONFLICT (course_id, student_id) DO NOTHING
		RETURNING course_id
	)
	UPDATE courses SET updated_at = now()
	WHERE id IN (SELECT course_id FROM ins)
`

func (r *CourseRepository) AddStudent(ctx context.Context, courseID, studentID string) (bool, error) {
	res, err := r.pool.Exec(ctx, addStudentSQL, courseID, studentID)
	if err != nil {
		if pgCode(err) == codeForeignKeyViolation {
			return false, apperror.NotFound("course")
		}
		return false, notFound(err, "course")
	}
	return res.RowsAffected() == 1, nil
}

var _ repository.CourseRepository = (*CourseRepository)(nil)
