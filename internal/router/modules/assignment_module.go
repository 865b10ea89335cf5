package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/eduflex-backend/internal/domain/policy"
	handlers "github.com/oksasatya/eduflex-backend/internal/interface/http"
	"github.com/oksasatya/eduflex-backend/internal/interface/middleware"
)

type AssignmentModule struct {
	Handler  *handlers.AssignmentHandler
	Verifier middleware.TokenVerifier
}

func NewAssignmentModule(h *handlers.AssignmentHandler, v middleware.TokenVerifier) *AssignmentModule {
	return &AssignmentModule{Handler: h, Verifier: v}
}

func (m *AssignmentModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("")
	auth.Use(middleware.Auth(m.Verifier))
	{
		auth.POST("/courses/:id/assignments", middleware.Allow(policy.ActionAssignmentCreate), m.Handler.Create)
		auth.GET("/courses/:id/assignments", m.Handler.ListByCourse)
		auth.GET("/assignments/:id", m.Handler.Get)
		auth.POST("/assignments/:id/submissions", middleware.Allow(policy.ActionAssignmentSubmit), m.Handler.Submit)
		auth.PATCH("/assignments/:id/grade", middleware.Allow(policy.ActionAssignmentGrade), m.Handler.Grade)
	}
}
