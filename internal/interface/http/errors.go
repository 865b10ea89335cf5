package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/eduflex-backend/internal/domain/apperror"
	"github.com/oksasatya/eduflex-backend/pkg/response"
	"github.com/oksasatya/eduflex-backend/pkg/validation"
)

var statusByKind = map[apperror.Kind]int{
	apperror.KindValidation:            http.StatusBadRequest,
	apperror.KindDuplicateEmail:        http.StatusConflict,
	apperror.KindInvalidCredentials:    http.StatusBadRequest,
	apperror.KindUnauthenticated:       http.StatusUnauthorized,
	apperror.KindForbidden:             http.StatusForbidden,
	apperror.KindNotFound:              http.StatusNotFound,
	apperror.KindInvalidOrExpiredToken: http.StatusBadRequest,
	apperror.KindWeakPassword:          http.StatusBadRequest,
	apperror.KindInternal:              http.StatusInternalServerError,
}

// StatusFor maps an error kind to its single HTTP status.
func StatusFor(kind apperror.Kind) int {
	if s, ok := statusByKind[kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// respondError is the only place errors become responses. Internal errors are
// logged with their cause and rendered with an opaque message.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	ae := apperror.From(err)
	status := StatusFor(ae.Kind)
	message := ae.Message
	if ae.Kind == apperror.KindInternal {
		if logger != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"path":       c.FullPath(),
				"request_id": c.GetString("request_id"),
			}).Error("request failed")
		}
		message = "internal server error"
		ae = &apperror.Error{Kind: apperror.KindInternal}
	}
	response.Error[any](c, status, message, response.ErrorBody{Code: string(ae.Kind), Details: ae.Details})
}

// bindJSON binds the body into dst and answers 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", response.ErrorBody{
			Code:    string(apperror.KindValidation),
			Details: validation.ToDetails(err),
		})
		return false
	}
	return true
}
