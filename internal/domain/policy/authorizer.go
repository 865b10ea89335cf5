package policy

import (
	"github.com/oksasatya/eduflex-backend/internal/domain/apperror"
	"github.com/oksasatya/eduflex-backend/internal/domain/entity"
)

// Principal is the authenticated caller, taken from verified session claims.
type Principal struct {
	UserID string
	Role   entity.Role
}

type Action string

const (
	ActionCourseList       Action = "course.list"
	ActionCourseRead       Action = "course.read"
	ActionCourseCreate     Action = "course.create"
	ActionCourseUpdate     Action = "course.update"
	ActionCourseDelete     Action = "course.delete"
	ActionCourseEnroll     Action = "course.enroll"
	ActionAssignmentRead   Action = "assignment.read"
	ActionAssignmentCreate Action = "assignment.create"
	ActionAssignmentSubmit Action = "assignment.submit"
	ActionAssignmentGrade  Action = "assignment.grade"
	ActionUserCreate       Action = "user.create"
	ActionUserList         Action = "user.list"
	ActionUserRole         Action = "user.role"
)

// Resource is whatever an ownership check needs to know about the target.
// OwnerID is the canonical user id of the owning professor.
type Resource struct {
	OwnerID string
}

type rule struct {
	roles     []entity.Role
	ownership bool
}

var anyRole = entity.Roles

var rules = map[Action]rule{
	ActionCourseList:       {roles: anyRole},
	ActionCourseRead:       {roles: anyRole},
	ActionAssignmentRead:   {roles: anyRole},
	ActionCourseCreate:     {roles: []entity.Role{entity.RoleProfessor, entity.RoleAdmin}},
	ActionCourseUpdate:     {roles: []entity.Role{entity.RoleProfessor, entity.RoleAdmin}, ownership: true},
	ActionCourseDelete:     {roles: []entity.Role{entity.RoleProfessor, entity.RoleAdmin}, ownership: true},
	ActionCourseEnroll:     {roles: []entity.Role{entity.RoleProfessor, entity.RoleAdmin}, ownership: true},
	ActionAssignmentCreate: {roles: []entity.Role{entity.RoleProfessor, entity.RoleAdmin}, ownership: true},
	ActionAssignmentGrade:  {roles: []entity.Role{entity.RoleProfessor, entity.RoleAdmin}, ownership: true},
	ActionAssignmentSubmit: {roles: []entity.Role{entity.RoleStudent}},
	ActionUserCreate:       {roles: []entity.Role{entity.RoleAdmin}},
	ActionUserList:         {roles: []entity.Role{entity.RoleAdmin}},
	ActionUserRole:         {roles: []entity.Role{entity.RoleAdmin}},
}

// errDenied is the single denial returned for every reason.
var errDenied = apperror.ErrForbidden

// Authorize evaluates the role allow-list only. It needs no data and should run
// before the target resource is loaded.
func Authorize(p Principal, action Action) error {
	r, ok := rules[action]
	if !ok || p.UserID == "" || !p.Role.Valid() {
		return errDenied
	}
	for _, role := range r.roles {
		if role == p.Role {
			return nil
		}
	}
	return errDenied
}

// Decide runs the role check and then, for owner-scoped actions, the ownership check.
func Decide(p Principal, action Action, res Resource) error {
	if err := Authorize(p, action); err != nil {
		return err
	}
	if !rules[action].ownership {
		return nil
	}
	if IsOwner(p, res) {
		return nil
	}
	return errDenied
}

// IsOwner is the ownership predicate: same canonical id, or an admin.
func IsOwner(p Principal, res Resource) bool {
	if p.Role == entity.RoleAdmin {
		return true
	}
	return res.OwnerID != "" && p.UserID == res.OwnerID
}

// RequiresOwnership reports whether action is owner-scoped.
func RequiresOwnership(action Action) bool {
	return rules[action].ownership
}
