package application

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/eduflex-backend/internal/domain/apperror"
	"github.com/oksasatya/eduflex-backend/internal/domain/entity"
	"github.com/oksasatya/eduflex-backend/internal/domain/policy"
	repo "github.com/oksasatya/eduflex-backend/internal/domain/repository"
)

var (
	ErrInvalidStudent   = apperror.Validation("invalid student id or user is not a student", nil)
	ErrInvalidProfessor = apperror.Validation("invalid professor id provided", nil)
)

const searchLimit = 50

// CourseService holds course mutations and the Enrollment Coordinator.
type CourseService struct {
	Courses  repo.CourseRepository
	Users    repo.UserRepository
	Profiles *ProfileResolver
	Index    CourseIndex
	Logger   *logrus.Logger
}

func NewCourseService(courses repo.CourseRepository, users repo.UserRepository, profiles *ProfileResolver, index CourseIndex, logger *logrus.Logger) *CourseService {
	return &CourseService{Courses: courses, Users: users, Profiles: profiles, Index: index, Logger: logger}
}

type CreateCourseInput struct {
	Title       string
	Description string
	// ProfessorID is required when an admin creates a course and ignored for professors.
	ProfessorID string
}

type UpdateCourseInput struct {
	Title       *string
	Description *string
}

func (s *CourseService) Create(ctx context.Context, p policy.Principal, in CreateCourseInput) (*entity.CourseView, error) {
	if err := policy.Authorize(p, policy.ActionCourseCreate); err != nil {
		return nil, err
	}

	var professorID string
	switch p.Role {
	case entity.RoleProfessor:
		professorID = p.UserID
	case entity.RoleAdmin:
		if strings.TrimSpace(in.ProfessorID) == "" {
			return nil, apperror.Validation("admin must assign a professor id when creating a course", map[string]string{"professor_id": "is required"})
		}
		prof, err := s.Users.GetByID(ctx, in.ProfessorID)
		if errors.Is(err, apperror.ErrNotFound) || (err == nil && prof.Role != entity.RoleProfessor) {
			return nil, ErrInvalidProfessor
		}
		if err != nil {
			return nil, apperror.Internal(err)
		}
		professorID = prof.ID
	}

	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if title == "" || description == "" {
		return nil, apperror.Validation("title and description are required", nil)
	}

	c := &entity.Course{Title: title, Description: description, ProfessorID: professorID, Students: []string{}}
	if err := s.Courses.Create(ctx, c); err != nil {
		return nil, apperror.Internal(err)
	}
	s.index(ctx, c)
	return s.view(ctx, c)
}

// List returns every course, or the courses matching q when it is non-empty.
func (s *CourseService) List(ctx context.Context, p policy.Principal, q string) ([]entity.CourseView, error) {
	if err := policy.Authorize(p, policy.ActionCourseList); err != nil {
		return nil, err
	}
	q = strings.TrimSpace(q)
	if q == "" {
		courses, err := s.Courses.List(ctx)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		return s.views(ctx, courses)
	}
	return s.search(ctx, q)
}

func (s *CourseService) search(ctx context.Context, q string) ([]entity.CourseView, error) {
	if s.Index != nil {
		ids, err := s.Index.Search(ctx, q, searchLimit)
		if err == nil {
			courses := make([]entity.Course, 0, len(ids))
			for _, id := range ids {
				c, err := s.Courses.GetByID(ctx, id)
				if errors.Is(err, apperror.ErrNotFound) {
					continue // index lagging behind a delete
				}
				if err != nil {
					return nil, apperror.Internal(err)
				}
				courses = append(courses, *c)
			}
			return s.views(ctx, courses)
		}
		if s.Logger != nil {
			s.Logger.WithError(err).Warn("course search failed, falling back to store scan")
		}
	}

	all, err := s.Courses.List(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	needle := strings.ToLower(q)
	matched := make([]entity.Course, 0)
	for _, c := range all {
		if strings.Contains(strings.ToLower(c.Title), needle) || strings.Contains(strings.ToLower(c.Description), needle) {
			matched = append(matched, c)
		}
	}
	return s.views(ctx, matched)
}

// ListMine returns owned courses for professors, enrolled courses for students
// and every course for admins.
func (s *CourseService) ListMine(ctx context.Context, p policy.Principal) ([]entity.CourseView, error) {
	if err := policy.Authorize(p, policy.ActionCourseList); err != nil {
		return nil, err
	}
	var (
		courses []entity.Course
		err     error
	)
	switch p.Role {
	case entity.RoleProfessor:
		courses, err = s.Courses.ListByOwner(ctx, p.UserID)
	case entity.RoleStudent:
		courses, err = s.Courses.ListByStudent(ctx, p.UserID)
	default:
		courses, err = s.Courses.List(ctx)
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return s.views(ctx, courses)
}

func (s *CourseService) Get(ctx context.Context, p policy.Principal, id string) (*entity.CourseView, error) {
	if err := policy.Authorize(p, policy.ActionCourseRead); err != nil {
		return nil, err
	}
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, c)
}

// Students lists the enrolled students of a course.
func (s *CourseService) Students(ctx context.Context, p policy.Principal, id string) ([]entity.UserProfile, error) {
	if err := policy.Authorize(p, policy.ActionCourseRead); err != nil {
		return nil, err
	}
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	profiles, err := s.Profiles.GetMany(ctx, c.Students)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return profiles, nil
}

func (s *CourseService) Update(ctx context.Context, p policy.Principal, id string, in UpdateCourseInput) (*entity.CourseView, error) {
	if err := policy.Authorize(p, policy.ActionCourseUpdate); err != nil {
		return nil, err
	}
	upd := entity.CourseUpdate{}
	if in.Title != nil && strings.TrimSpace(*in.Title) != "" {
		t := strings.TrimSpace(*in.Title)
		upd.Title = &t
	}
	if in.Description != nil && strings.TrimSpace(*in.Description) != "" {
		d := strings.TrimSpace(*in.Description)
		upd.Description = &d
	}
	if upd.Title == nil && upd.Description == nil {
		return nil, apperror.Validation("no update data provided (title or description required)", nil)
	}

	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Decide(p, policy.ActionCourseUpdate, policy.Resource{OwnerID: c.ProfessorID}); err != nil {
		return nil, err
	}
	updated, err := s.Courses.Update(ctx, c.ID, upd)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound("course")
		}
		return nil, apperror.Internal(err)
	}
	s.index(ctx, updated)
	return s.view(ctx, updated)
}

// Delete removes a course. Assignments that reference it are left untouched.
func (s *CourseService) Delete(ctx context.Context, p policy.Principal, id string) error {
	if err := policy.Authorize(p, policy.ActionCourseDelete); err != nil {
		return err
	}
	c, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Decide(p, policy.ActionCourseDelete, policy.Resource{OwnerID: c.ProfessorID}); err != nil {
		return err
	}
	if err := s.Courses.Delete(ctx, c.ID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.NotFound("course")
		}
		return apperror.Internal(err)
	}
	if s.Index != nil {
		if err := s.Index.Remove(ctx, c.ID); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("course_id", c.ID).Warn("course index removal failed")
		}
	}
	return nil
}

// Enroll adds studentID to the course if it is not already a member. Repeated
// and concurrent calls converge to a single membership entry.
func (s *CourseService) Enroll(ctx context.Context, p policy.Principal, courseID, studentID string) (*entity.CourseView, error) {
	if err := policy.Authorize(p, policy.ActionCourseEnroll); err != nil {
		return nil, err
	}
	c, err := s.load(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := policy.Decide(p, policy.ActionCourseEnroll, policy.Resource{OwnerID: c.ProfessorID}); err != nil {
		return nil, err
	}

	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return nil, apperror.Validation("student id required", map[string]string{"studentId": "is required"})
	}
	student, err := s.Users.GetByID(ctx, studentID)
	if errors.Is(err, apperror.ErrNotFound) || (err == nil && student.Role != entity.RoleStudent) {
		return nil, ErrInvalidStudent
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	added, err := s.Courses.AddStudent(ctx, c.ID, student.ID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound("course")
		}
		return nil, apperror.Internal(err)
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"course_id": c.ID, "student_id": student.ID, "added": added}).Info("enrollment processed")
	}

	c, err = s.load(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, c)
}

func (s *CourseService) load(ctx context.Context, id string) (*entity.Course, error) {
	c, err := s.Courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound("course")
		}
		return nil, apperror.Internal(err)
	}
	return c, nil
}

func (s *CourseService) index(ctx context.Context, c *entity.Course) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, c); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("course_id", c.ID).Warn("course indexing failed")
	}
}

func (s *CourseService) view(ctx context.Context, c *entity.Course) (*entity.CourseView, error) {
	v := &entity.CourseView{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		ProfessorID: c.ProfessorID,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	prof, err := s.Profiles.Get(ctx, c.ProfessorID)
	switch {
	case err == nil:
		v.Professor = prof
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, apperror.Internal(err)
	}
	v.Students, err = s.Profiles.GetMany(ctx, c.Students)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return v, nil
}

func (s *CourseService) views(ctx context.Context, courses []entity.Course) ([]entity.CourseView, error) {
	out := make([]entity.CourseView, 0, len(courses))
	for i := range courses {
		v, err := s.view(ctx, &courses[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}
