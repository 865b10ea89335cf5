package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/eduflex-backend/internal/domain/policy"
	handlers "github.com/oksasatya/eduflex-backend/internal/interface/http"
	"github.com/oksasatya/eduflex-backend/internal/interface/middleware"
)

type CourseModule struct {
	Handler  *handlers.CourseHandler
	Verifier middleware.TokenVerifier
}

func NewCourseModule(h *handlers.CourseHandler, v middleware.TokenVerifier) *CourseModule {
	return &CourseModule{Handler: h, Verifier: v}
}

func (m *CourseModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("")
	auth.Use(middleware.Auth(m.Verifier))
	{
		auth.GET("/courses", m.Handler.List)
		auth.GET("/me/courses", m.Handler.Mine)
		auth.POST("/courses", middleware.Allow(policy.ActionCourseCreate), m.Handler.Create)
		auth.GET("/courses/:id", m.Handler.Get)
		auth.GET("/courses/:id/students", m.Handler.Students)
		auth.POST("/courses/:id/enroll", middleware.Allow(policy.ActionCourseEnroll), m.Handler.Enroll)
		auth.PUT("/courses/:id", middleware.Allow(policy.ActionCourseUpdate), m.Handler.Update)
		auth.DELETE("/courses/:id", middleware.Allow(policy.ActionCourseDelete), m.Handler.Delete)
	}
}
