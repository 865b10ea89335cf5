package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/eduflex-backend/internal/application"
	"github.com/oksasatya/eduflex-backend/internal/interface/middleware"
	"github.com/oksasatya/eduflex-backend/pkg/response"
)

type CourseHandler struct {
	Courses *application.CourseService
	Logger  *logrus.Logger
}

func NewCourseHandler(courses *application.CourseService, logger *logrus.Logger) *CourseHandler {
	return &CourseHandler{Courses: courses, Logger: logger}
}

// List GET /api/courses?q=
func (h *CourseHandler) List(c *gin.Context) {
	out, err := h.Courses.List(c.Request.Context(), middleware.PrincipalFrom(c), c.Query("q"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, out, "ok", gin.H{"count": len(out)})
}

// Mine GET /api/me/courses
func (h *CourseHandler) Mine(c *gin.Context) {
	out, err := h.Courses.ListMine(c.Request.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, out, "ok", gin.H{"count": len(out)})
}

type createCourseRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	ProfessorID string `json:"professor_id"`
}

// Create POST /api/courses
func (h *CourseHandler) Create(c *gin.Context) {
	var req createCourseRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.Courses.Create(c.Request.Context(), middleware.PrincipalFrom(c), application.CreateCourseInput{
		Title:       req.Title,
		Description: req.Description,
		ProfessorID: req.ProfessorID,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, out, "course created", nil)
}

// Get GET /api/courses/:id
func (h *CourseHandler) Get(c *gin.Context) {
	out, err := h.Courses.Get(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, out, "ok", nil)
}

// Students GET /api/courses/:id/students
func (h *CourseHandler) Students(c *gin.Context) {
	out, err := h.Courses.Students(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, out, "ok", gin.H{"count": len(out)})
}

type enrollRequest struct {
	StudentID string `json:"student_id" binding:"required"`
}

// Enroll POST /api/courses/:id/enroll
func (h *CourseHandler) Enroll(c *gin.Context) {
	var req enrollRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.Courses.Enroll(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"), req.StudentID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, out, "student enrolled", nil)
}

type updateCourseRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// Update PUT /api/courses/:id
func (h *CourseHandler) Update(c *gin.Context) {
	var req updateCourseRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.Courses.Update(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"), application.UpdateCourseInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, out, "course updated", nil)
}

// Delete DELETE /api/courses/:id
func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.Courses.Delete(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id")); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "course deleted", nil)
}
