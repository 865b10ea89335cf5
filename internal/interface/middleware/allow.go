package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/eduflex-backend/internal/domain/apperror"
	"github.com/oksasatya/eduflex-backend/internal/domain/policy"
	"github.com/oksasatya/eduflex-backend/pkg/response"
)

// Allow runs the role allow-list for action before the handler binds or loads
// anything. Ownership is still checked by the service once the target is loaded.
func Allow(action policy.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := policy.Authorize(PrincipalFrom(c), action); err != nil {
			response.Abort(c, http.StatusForbidden, "forbidden",
				response.ErrorBody{Code: string(apperror.KindForbidden)})
			return
		}
		c.Next()
	}
}
