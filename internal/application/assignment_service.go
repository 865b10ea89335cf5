package application

import (
	"context"
	"errors"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/eduflex-backend/internal/domain/apperror"
	"github.com/oksasatya/eduflex-backend/internal/domain/entity"
	"github.com/oksasatya/eduflex-backend/internal/domain/policy"
	repo "github.com/oksasatya/eduflex-backend/internal/domain/repository"
)

type AssignmentService struct {
	Assignments repo.AssignmentRepository
	Courses     repo.CourseRepository
	Files       FileStore
	Logger      *logrus.Logger

	Now func() time.Time
}

func NewAssignmentService(assignments repo.AssignmentRepository, courses repo.CourseRepository, files FileStore, logger *logrus.Logger) *AssignmentService {
	return &AssignmentService{Assignments: assignments, Courses: courses, Files: files, Logger: logger, Now: time.Now}
}

type CreateAssignmentInput struct {
	Title       string
	Description string
	DueDate     time.Time
}

// SubmitInput carries either an uploaded file or a reference to one hosted elsewhere.
type SubmitInput struct {
	File        io.Reader
	Filename    string
	ContentType string
	FileURL     string
}

type GradeInput struct {
	StudentID string
	Value     string
}

func (s *AssignmentService) Create(ctx context.Context, p policy.Principal, courseID string, in CreateAssignmentInput) (*entity.Assignment, error) {
	if err := policy.Authorize(p, policy.ActionAssignmentCreate); err != nil {
		return nil, err
	}
	c, err := s.course(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := policy.Decide(p, policy.ActionAssignmentCreate, policy.Resource{OwnerID: c.ProfessorID}); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" || in.DueDate.IsZero() {
		return nil, apperror.Validation("title and due date are required", nil)
	}
	a := &entity.Assignment{
		CourseID:    c.ID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		DueDate:     in.DueDate.UTC(),
		Submissions: []entity.Submission{},
	}
	if err := s.Assignments.Create(ctx, a); err != nil {
		return nil, apperror.Internal(err)
	}
	return a, nil
}

func (s *AssignmentService) ListByCourse(ctx context.Context, p policy.Principal, courseID string) ([]entity.Assignment, error) {
	if err := policy.Authorize(p, policy.ActionAssignmentRead); err != nil {
		return nil, err
	}
	if _, err := s.course(ctx, courseID); err != nil {
		return nil, err
	}
	list, err := s.Assignments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return list, nil
}

func (s *AssignmentService) Get(ctx context.Context, p policy.Principal, id string) (*entity.Assignment, error) {
	if err := policy.Authorize(p, policy.ActionAssignmentRead); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

// Submit appends a submission for the calling student, who must be enrolled in
// the assignment's course.
func (s *AssignmentService) Submit(ctx context.Context, p policy.Principal, id string, in SubmitInput) (*entity.Assignment, error) {
	if err := policy.Authorize(p, policy.ActionAssignmentSubmit); err != nil {
		return nil, err
	}
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	c, err := s.course(ctx, a.CourseID)
	if err != nil {
		return nil, err
	}
	if !c.HasStudent(p.UserID) {
		return nil, apperror.ErrForbidden
	}

	ref := strings.TrimSpace(in.FileURL)
	if in.File != nil {
		if s.Files == nil {
			return nil, apperror.Validation("file uploads are not available, provide file_url instead", nil)
		}
		ext := strings.ToLower(filepath.Ext(in.Filename))
		objectPath := path.Join("submissions", a.ID, p.UserID, uuid.NewString()+ext)
		ref, err = s.Files.Put(ctx, objectPath, in.ContentType, in.File)
		if err != nil {
			return nil, apperror.Internal(err)
		}
	}
	if ref == "" {
		return nil, apperror.Validation("a file or file_url is required", map[string]string{"file": "is required"})
	}

	sub := entity.Submission{StudentID: p.UserID, FileRef: ref, SubmittedAt: s.Now().UTC()}
	if err := s.Assignments.AddSubmission(ctx, a.ID, sub); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound("assignment")
		}
		return nil, apperror.Internal(err)
	}
	return s.load(ctx, a.ID)
}

// Grade records a grade; only the owner of the course or an admin may grade.
func (s *AssignmentService) Grade(ctx context.Context, p policy.Principal, id string, in GradeInput) (*entity.Assignment, error) {
	if err := policy.Authorize(p, policy.ActionAssignmentGrade); err != nil {
		return nil, err
	}
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	c, err := s.course(ctx, a.CourseID)
	if err != nil {
		return nil, err
	}
	if err := policy.Decide(p, policy.ActionAssignmentGrade, policy.Resource{OwnerID: c.ProfessorID}); err != nil {
		return nil, err
	}
	value := strings.TrimSpace(in.Value)
	if value == "" || in.StudentID == "" {
		return nil, apperror.Validation("student id and grade are required", nil)
	}
	if !c.HasStudent(in.StudentID) {
		return nil, apperror.Validation("student is not enrolled in this course", map[string]string{"student_id": "not enrolled"})
	}

	g := entity.Grade{StudentID: in.StudentID, Value: value, GradedBy: p.UserID, GradedAt: s.Now().UTC()}
	if err := s.Assignments.SetGrade(ctx, a.ID, g); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound("assignment")
		}
		return nil, apperror.Internal(err)
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"assignment_id": a.ID, "student_id": in.StudentID, "graded_by": p.UserID}).Info("assignment graded")
	}
	return s.load(ctx, a.ID)
}

func (s *AssignmentService) load(ctx context.Context, id string) (*entity.Assignment, error) {
	a, err := s.Assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound("assignment")
		}
		return nil, apperror.Internal(err)
	}
	return a, nil
}

func (s *AssignmentService) course(ctx context.Context, id string) (*entity.Course, error) {
	c, err := s.Courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound("course")
		}
		return nil, apperror.Internal(err)
	}
	return c, nil
}
