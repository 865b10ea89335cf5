package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/eduflex-backend/internal/application"
	"github.com/oksasatya/eduflex-backend/internal/domain/apperror"
	"github.com/oksasatya/eduflex-backend/internal/interface/middleware"
	"github.com/oksasatya/eduflex-backend/pkg/response"
)

// MaxSubmissionBytes caps an uploaded submission file.
const MaxSubmissionBytes = 20 << 20

type AssignmentHandler struct {
	Assignments *application.AssignmentService
	Logger      *logrus.Logger
}

func NewAssignmentHandler(assignments *application.AssignmentService, logger *logrus.Logger) *AssignmentHandler {
	return &AssignmentHandler{Assignments: assignments, Logger: logger}
}

type createAssignmentRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date" binding:"required"`
}

// Create POST /api/courses/:id/assignments
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req createAssignmentRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.Assignments.Create(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"), application.CreateAssignmentInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, out, "assignment created", nil)
}

// ListByCourse GET /api/courses/:id/assignments
func (h *AssignmentHandler) ListByCourse(c *gin.Context) {
	out, err := h.Assignments.ListByCourse(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, out, "ok", gin.H{"count": len(out)})
}

// Get GET /api/assignments/:id
func (h *AssignmentHandler) Get(c *gin.Context) {
	out, err := h.Assignments.Get(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, out, "ok", nil)
}

type submitRequest struct {
	FileURL string `json:"file_url" binding:"required,url"`
}

// Submit POST /api/assignments/:id/submissions
// Accepts multipart form data with a "file" part, or JSON {"file_url": ...}.
func (h *AssignmentHandler) Submit(c *gin.Context) {
	in := application.SubmitInput{}
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxSubmissionBytes)
		fh, err := c.FormFile("file")
		if err != nil {
			in.FileURL = c.PostForm("file_url")
		} else {
			f, err := fh.Open()
			if err != nil {
				respondError(c, h.Logger, apperror.Validation("unreadable file", map[string]string{"file": "could not be read"}))
				return
			}
			defer func() { _ = f.Close() }()
			in.File = f
			in.Filename = fh.Filename
			in.ContentType = fh.Header.Get("Content-Type")
		}
	} else {
		var req submitRequest
		if !bindJSON(c, &req) {
			return
		}
		in.FileURL = req.FileURL
	}

	out, err := h.Assignments.Submit(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"), in)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, out, "submission received", nil)
}

type gradeRequest struct {
	StudentID string `json:"student_id" binding:"required"`
	Grade     string `json:"grade" binding:"required"`
}

// Grade PATCH /api/assignments/:id/grade
func (h *AssignmentHandler) Grade(c *gin.Context) {
	var req gradeRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.Assignments.Grade(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"), application.GradeInput{
		StudentID: req.StudentID,
		Value:     req.Grade,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, out, "assignment graded", nil)
}
