package repository

import (
	"context"

	"github.com/oksasatya/eduflex-backend/internal/domain/entity"
)

type AssignmentRepository interface {
	Create(ctx context.Context, a *entity.Assignment) error
	GetByID(ctx context.Context, id string) (*entity.Assignment, error)
	ListByCourse(ctx context.Context, courseID string) ([]entity.Assignment, error)
	AddSubmission(ctx context.Context, assignmentID string, s entity.Submission) error
	SetGrade(ctx context.Context, assignmentID string, g entity.Grade) error
}
