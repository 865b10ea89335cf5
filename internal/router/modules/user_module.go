package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/eduflex-backend/internal/domain/policy"
	handlers "github.com/oksasatya/eduflex-backend/internal/interface/http"
	"github.com/oksasatya/eduflex-backend/internal/interface/middleware"
)

// UserModule mounts the admin-only user management routes under /admin.
type UserModule struct {
	Handler  *handlers.UserHandler
	Verifier middleware.TokenVerifier
}

func NewUserModule(h *handlers.UserHandler, v middleware.TokenVerifier) *UserModule {
	return &UserModule{Handler: h, Verifier: v}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.Use(middleware.Auth(m.Verifier))
	{
		admin.POST("/users", middleware.Allow(policy.ActionUserCreate), m.Handler.Create)
		admin.GET("/users", middleware.Allow(policy.ActionUserList), m.Handler.List)
		admin.PATCH("/users/:id/role", middleware.Allow(policy.ActionUserRole), m.Handler.ChangeRole)
	}
}
