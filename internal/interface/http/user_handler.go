package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/eduflex-backend/internal/application"
	"github.com/oksasatya/eduflex-backend/internal/domain/entity"
	"github.com/oksasatya/eduflex-backend/internal/interface/middleware"
	"github.com/oksasatya/eduflex-backend/pkg/response"
)

// UserHandler serves the admin user-management routes.
type UserHandler struct {
	Users  *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(users *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Users: users, Logger: logger}
}

type createUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required,role"`
}

// Create POST /api/admin/users
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.Users.CreateUser(c.Request.Context(), middleware.PrincipalFrom(c), application.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     entity.Role(req.Role),
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, out, "user created", nil)
}

// List GET /api/admin/users
func (h *UserHandler) List(c *gin.Context) {
	out, err := h.Users.ListUsers(c.Request.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, out, "ok", gin.H{"count": len(out)})
}

type changeRoleRequest struct {
	Role string `json:"role" binding:"required,role"`
}

// ChangeRole PATCH /api/admin/users/:id/role
func (h *UserHandler) ChangeRole(c *gin.Context) {
	var req changeRoleRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.Users.ChangeRole(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"), entity.Role(req.Role))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, out, "role updated", nil)
}
