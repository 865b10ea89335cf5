// Package memory is a process-local implementation of the repository ports,
// used by tests and by STORE_DRIVER=memory.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/eduflex-backend/internal/domain/apperror"
	"github.com/oksasatya/eduflex-backend/internal/domain/entity"
	repo "github.com/oksasatya/eduflex-backend/internal/domain/repository"
)

type Store struct {
	mu          sync.RWMutex
	users       map[string]*entity.User
	emails      map[string]string
	courses     map[string]*entity.Course
	assignments map[string]*entity.Assignment
	audit       []entity.AuditEntry
	now         func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:       make(map[string]*entity.User),
		emails:      make(map[string]string),
		courses:     make(map[string]*entity.Course),
		assignments: make(map[string]*entity.Assignment),
		now:         time.Now,
	}
}

func (s *Store) Users() repo.UserRepository             { return userRepo{s} }
func (s *Store) Courses() repo.CourseRepository         { return courseRepo{s} }
func (s *Store) Assignments() repo.AssignmentRepository { return assignmentRepo{s} }
func (s *Store) AuditLogs() repo.AuditLogRepository     { return auditRepo{s} }

// AuditEntries returns a copy of the recorded audit entries.
func (s *Store) AuditEntries() []entity.AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entity.AuditEntry(nil), s.audit...)
}

type userRepo struct{ s *Store }

func cloneUser(u *entity.User) *entity.User {
	c := *u
	if u.ResetTokenHash != nil {
		h := *u.ResetTokenHash
		c.ResetTokenHash = &h
	}
	if u.ResetTokenExpiry != nil {
		e := *u.ResetTokenExpiry
		c.ResetTokenExpiry = &e
	}
	return &c
}

func (r userRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email := entity.NormalizeEmail(u.Email)
	if _, ok := r.s.emails[email]; ok {
		return apperror.ErrDuplicateEmail
	}
	now := r.s.now().UTC()
	u.ID = uuid.NewString()
	u.Email = email
	u.CreatedAt, u.UpdatedAt = now, now
	r.s.users[u.ID] = cloneUser(u)
	r.s.emails[email] = u.ID
	return nil
}

func (r userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, apperror.NotFound("user")
	}
	return cloneUser(u), nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.emails[entity.NormalizeEmail(email)]
	if !ok {
		return nil, apperror.NotFound("user")
	}
	return cloneUser(r.s.users[id]), nil
}

func (r userRepo) findReset(hash string, now time.Time) *entity.User {
	for _, u := range r.s.users {
		if u.ResetTokenHash != nil && *u.ResetTokenHash == hash && u.HasActiveReset(now) {
			return u
		}
	}
	return nil
}

func (r userRepo) GetByResetTokenHash(_ context.Context, hash string, now time.Time) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if u := r.findReset(hash, now); u != nil {
		return cloneUser(u), nil
	}
	return nil, apperror.NotFound("user")
}

func (r userRepo) ConsumeResetToken(_ context.Context, hash, passwordHash string, now time.Time) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u := r.findReset(hash, now)
	if u == nil {
		return "", apperror.NotFound("user")
	}
	u.PasswordHash = passwordHash
	u.ResetTokenHash, u.ResetTokenExpiry = nil, nil
	u.UpdatedAt = r.s.now().UTC()
	return u.ID, nil
}

func (r userRepo) ClearExpiredReset(_ context.Context, hash string, now time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.ResetTokenHash != nil && *u.ResetTokenHash == hash && !u.HasActiveReset(now) {
			u.ResetTokenHash, u.ResetTokenExpiry = nil, nil
			u.UpdatedAt = r.s.now().UTC()
			return true, nil
		}
	}
	return false, nil
}

func (r userRepo) Update(_ context.Context, id string, upd entity.UserUpdate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return apperror.NotFound("user")
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	switch {
	case upd.Reset != nil:
		h, e := upd.Reset.Hash, upd.Reset.ExpiresAt
		u.ResetTokenHash, u.ResetTokenExpiry = &h, &e
	case upd.ClearReset:
		u.ResetTokenHash, u.ResetTokenExpiry = nil, nil
	}
	u.UpdatedAt = r.s.now().UTC()
	return nil
}

func (r userRepo) List(_ context.Context) ([]entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]entity.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, *cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type courseRepo struct{ s *Store }

func cloneCourse(c *entity.Course) entity.Course {
	out := *c
	out.Students = append([]string{}, c.Students...)
	return out
}

func (r courseRepo) Create(_ context.Context, c *entity.Course) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now().UTC()
	c.ID = uuid.NewString()
	c.CreatedAt, c.UpdatedAt = now, now
	if c.Students == nil {
		c.Students = []string{}
	}
	stored := cloneCourse(c)
	r.s.courses[c.ID] = &stored
	return nil
}

func (r courseRepo) GetByID(_ context.Context, id string) (*entity.Course, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.courses[id]
	if !ok {
		return nil, apperror.NotFound("course")
	}
	out := cloneCourse(c)
	return &out, nil
}

func (r courseRepo) filter(keep func(*entity.Course) bool) []entity.Course {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]entity.Course, 0)
	for _, c := range r.s.courses {
		if keep(c) {
			out = append(out, cloneCourse(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r courseRepo) List(_ context.Context) ([]entity.Course, error) {
	return r.filter(func(*entity.Course) bool { return true }), nil
}

func (r courseRepo) ListByOwner(_ context.Context, professorID string) ([]entity.Course, error) {
	return r.filter(func(c *entity.Course) bool { return c.ProfessorID == professorID }), nil
}

func (r courseRepo) ListByStudent(_ context.Context, studentID string) ([]entity.Course, error) {
	return r.filter(func(c *entity.Course) bool { return c.HasStudent(studentID) }), nil
}

func (r courseRepo) Update(_ context.Context, id string, upd entity.CourseUpdate) (*entity.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.courses[id]
	if !ok {
		return nil, apperror.NotFound("course")
	}
	if upd.Title != nil {
		c.Title = *upd.Title
	}
	if upd.Description != nil {
		c.Description = *upd.Description
	}
	c.UpdatedAt = r.s.now().UTC()
	out := cloneCourse(c)
	return &out, nil
}

func (r courseRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.courses[id]; !ok {
		return apperror.NotFound("course")
	}
	delete(r.s.courses, id)
	return nil
}

func (r courseRepo) AddStudent(_ context.Context, courseID, studentID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.courses[courseID]
	if !ok {
		return false, apperror.NotFound("course")
	}
	if c.HasStudent(studentID) {
		return false, nil
	}
	c.Students = append(c.Students, studentID)
	c.UpdatedAt = r.s.now().UTC()
	return true, nil
}

type assignmentRepo struct{ s *Store }

func cloneAssignment(a *entity.Assignment) entity.Assignment {
	out := *a
	out.Submissions = append([]entity.Submission{}, a.Submissions...)
	if a.Grade != nil {
		g := *a.Grade
		out.Grade = &g
	}
	return out
}

func (r assignmentRepo) Create(_ context.Context, a *entity.Assignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a.ID = uuid.NewString()
	a.CreatedAt = r.s.now().UTC()
	if a.Submissions == nil {
		a.Submissions = []entity.Submission{}
	}
	stored := cloneAssignment(a)
	r.s.assignments[a.ID] = &stored
	return nil
}

func (r assignmentRepo) GetByID(_ context.Context, id string) (*entity.Assignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.assignments[id]
	if !ok {
		return nil, apperror.NotFound("assignment")
	}
	out := cloneAssignment(a)
	return &out, nil
}

func (r assignmentRepo) ListByCourse(_ context.Context, courseID string) ([]entity.Assignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]entity.Assignment, 0)
	for _, a := range r.s.assignments {
		if a.CourseID == courseID {
			out = append(out, cloneAssignment(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (r assignmentRepo) AddSubmission(_ context.Context, id string, sub entity.Submission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.assignments[id]
	if !ok {
		return apperror.NotFound("assignment")
	}
	a.Submissions = append(a.Submissions, sub)
	return nil
}

func (r assignmentRepo) SetGrade(_ context.Context, id string, g entity.Grade) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.assignments[id]
	if !ok {
		return apperror.NotFound("assignment")
	}
	a.Grade = &g
	return nil
}

type auditRepo struct{ s *Store }

func (r auditRepo) Insert(_ context.Context, e entity.AuditEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.s.now().UTC()
	}
	r.s.audit = append(r.s.audit, e)
	return nil
}
