package repository

import (
	"context"

	"github.com/oksasatya/eduflex-backend/internal/domain/entity"
)

type CourseRepository interface {
	Create(ctx context.Context, c *entity.Course) error
	GetByID(ctx context.Context, id string) (*entity.Course, error)
	List(ctx context.Context) ([]entity.Course, error)
	ListByOwner(ctx context.Context, professorID string) ([]entity.Course, error)
	ListByStudent(ctx context.Context, studentID string) ([]entity.Course, error)
	Update(ctx context.Context, id string, upd entity.CourseUpdate) (*entity.Course, error)
	Delete(ctx context.Context, id string) error
	// AddStudent is an atomic add-if-absent; added is false when studentID was
	// already a member. Never implemented as read-modify-write.
	AddStudent(ctx context.Context, courseID, studentID string) (added bool, err error)
}
