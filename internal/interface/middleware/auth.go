package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/eduflex-backend/internal/domain/apperror"
	"github.com/oksasatya/eduflex-backend/internal/domain/policy"
	"github.com/oksasatya/eduflex-backend/pkg/response"
)

// Context keys set by Auth.
const (
	CtxUserIDKey    = "userID"
	CtxRoleKey      = "role"
	CtxPrincipalKey = "principal"
)

// TokenVerifier turns a session token into the caller's principal.
type TokenVerifier interface {
	Verify(token string) (policy.Principal, error)
}

// Auth requires "Authorization: Bearer <token>". The principal comes from the
// token alone; the store is not consulted.
func Auth(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Abort(c, http.StatusUnauthorized, "no token provided",
				response.ErrorBody{Code: string(apperror.KindUnauthenticated)})
			return
		}
		p, err := v.Verify(token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "invalid or expired token",
				response.ErrorBody{Code: string(apperror.KindUnauthenticated)})
			return
		}
		c.Set(CtxUserIDKey, p.UserID)
		c.Set(CtxRoleKey, string(p.Role))
		c.Set(CtxPrincipalKey, p)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// PrincipalFrom returns the principal stored by Auth, or the zero principal,
// which every authorization check denies.
func PrincipalFrom(c *gin.Context) policy.Principal {
	if v, ok := c.Get(CtxPrincipalKey); ok {
		if p, ok := v.(policy.Principal); ok {
			return p
		}
	}
	return policy.Principal{}
}
