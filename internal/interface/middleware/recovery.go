package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/eduflex-backend/internal/domain/apperror"
	"github.com/oksasatya/eduflex-backend/pkg/response"
)

// Recovery turns a panic into the standard 500 envelope.
func Recovery(logger *logrus.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		if logger != nil {
			logger.WithFields(logrus.Fields{
				"panic":      recovered,
				"path":       c.FullPath(),
				"request_id": c.GetString("request_id"),
			}).Error("panic recovered")
		}
		response.Abort(c, http.StatusInternalServerError, "internal server error",
			response.ErrorBody{Code: string(apperror.KindInternal)})
	})
}
