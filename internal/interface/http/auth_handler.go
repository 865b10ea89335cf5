package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/eduflex-backend/internal/application"
	"github.com/oksasatya/eduflex-backend/internal/domain/apperror"
	"github.com/oksasatya/eduflex-backend/internal/domain/entity"
	repo "github.com/oksasatya/eduflex-backend/internal/domain/repository"
	"github.com/oksasatya/eduflex-backend/internal/interface/middleware"
	"github.com/oksasatya/eduflex-backend/pkg/response"
)

// Audit actions.
const (
	auditRegister       = "register"
	auditLoginSuccess   = "login_success"
	auditLoginFailed    = "login_failed"
	auditResetRequested = "password_reset_requested"
	auditResetCompleted = "password_reset_completed"
	auditPasswordChange = "password_changed"
)

const forgotPasswordMessage = "if an account exists for that email, a reset link has been sent"

type AuthHandler struct {
	Auth   *application.AuthService
	Reset  *application.PasswordResetService
	Audit  repo.AuditLogRepository
	Logger *logrus.Logger
}

func NewAuthHandler(auth *application.AuthService, reset *application.PasswordResetService, audit repo.AuditLogRepository, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, Reset: reset, Audit: audit, Logger: logger}
}

// audit never fails the request and never records secrets.
func (h *AuthHandler) audit(c *gin.Context, userID, email, action string, metadata map[string]any) {
	if h.Audit == nil {
		return
	}
	err := h.Audit.Insert(c.Request.Context(), entity.AuditEntry{
		UserID:    userID,
		Email:     email,
		Action:    action,
		IP:        middleware.ClientIP(c),
		UserAgent: c.GetHeader("User-Agent"),
		Metadata:  metadata,
	})
	if err != nil && h.Logger != nil {
		h.Logger.WithError(err).WithField("action", action).Warn("audit insert failed")
	}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"omitempty,selfrole"`
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Auth.Register(c.Request.Context(), application.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     entity.Role(req.Role),
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	h.audit(c, res.User.ID, res.User.Email, auditRegister, map[string]any{"role": res.User.Role})
	response.Success(c, http.StatusCreated, res, "registered", nil)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, apperror.ErrInvalidCredentials) {
			h.audit(c, "", entity.NormalizeEmail(req.Email), auditLoginFailed, nil)
		}
		respondError(c, h.Logger, err)
		return
	}
	h.audit(c, res.User.ID, res.User.Email, auditLoginSuccess, nil)
	response.Success(c, http.StatusOK, res, "logged in", nil)
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword POST /api/auth/forgot-password
// The answer is the same whether or not the email is registered.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Reset.RequestReset(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	h.audit(c, "", entity.NormalizeEmail(req.Email), auditResetRequested, nil)
	response.Success[any](c, http.StatusOK, nil, forgotPasswordMessage, nil)
}

type resetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ResetPassword POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Reset.RedeemReset(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	h.audit(c, "", "", auditResetCompleted, nil)
	response.Success[any](c, http.StatusOK, nil, "password has been reset", nil)
}

// Me GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	prof, err := h.Auth.Me(c.Request.Context(), p.UserID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, prof, "ok", nil)
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangePassword POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	p := middleware.PrincipalFrom(c)
	if err := h.Auth.ChangePassword(c.Request.Context(), p.UserID, req.OldPassword, req.NewPassword); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	h.audit(c, p.UserID, "", auditPasswordChange, nil)
	response.Success[any](c, http.StatusOK, nil, "password updated", nil)
}
