package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/eduflex-backend/internal/interface/http"
	"github.com/oksasatya/eduflex-backend/internal/interface/middleware"
)

// AuthModule
// Public: POST /auth/register, /auth/login, /auth/forgot-password, /auth/reset-password
// Protected: GET /auth/me, POST /auth/change-password
type AuthModule struct {
	Handler  *handlers.AuthHandler
	Verifier middleware.TokenVerifier
}

func NewAuthModule(h *handlers.AuthHandler, v middleware.TokenVerifier) *AuthModule {
	return &AuthModule{Handler: h, Verifier: v}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/auth")
	g.POST("/register", m.Handler.Register)
	g.POST("/login", m.Handler.Login)
	g.POST("/forgot-password", m.Handler.ForgotPassword)
	g.POST("/reset-password", m.Handler.ResetPassword)

	auth := g.Group("")
	auth.Use(middleware.Auth(m.Verifier))
	{
		auth.GET("/me", m.Handler.Me)
		auth.POST("/change-password", m.Handler.ChangePassword)
	}
}
