package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/linskybing/fieldreport-go/internal/application"
	"github.com/linskybing/fieldreport-go/internal/domain/schema"
	"github.com/linskybing/fieldreport-go/pkg/response"
	"github.com/sirupsen/logrus"
)

const internalErrorMessage = "internal server error"

// respondError maps service errors to HTTP responses. Anything unexpected
// is logged and hidden behind a generic 500.
func respondError(c *gin.Context, err error) {
	var verr *schema.ValidationError
	switch {
	case errors.As(err, &verr):
		items := make([]response.FieldErrorItem, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			items = append(items, response.FieldErrorItem{FieldID: f.FieldID, Message: f.Message})
		}
		c.JSON(http.StatusUnprocessableEntity, response.ValidationErrorResponse{Error: "validation failed", Fields: items})
	case errors.Is(err, application.ErrUnknownFormType),
		errors.Is(err, application.ErrFormNotFound),
		errors.Is(err, application.ErrPhotoNotFound),
		errors.Is(err, application.ErrUserNotFound):
		c.JSON(http.StatusNotFound, response.ErrorResponse{Error: err.Error()})
	case errors.Is(err, application.ErrForbidden),
		errors.Is(err, application.ErrReservedAdminUser):
		c.JSON(http.StatusForbidden, response.ErrorResponse{Error: err.Error()})
	case errors.Is(err, application.ErrInvalidTransition),
		errors.Is(err, application.ErrNotEditable),
		errors.Is(err, application.ErrUsernameTaken):
		c.JSON(http.StatusConflict, response.ErrorResponse{Error: err.Error()})
	case errors.Is(err, application.ErrInvalidCredentials),
		errors.Is(err, application.ErrMissingOldPassword),
		errors.Is(err, application.ErrIncorrectPassword):
		c.JSON(http.StatusUnauthorized, response.ErrorResponse{Error: err.Error()})
	case errors.Is(err, application.ErrInvalidQuery):
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
	case errors.Is(err, application.ErrUploadFailed):
		c.JSON(http.StatusBadGateway, response.ErrorResponse{Error: "could not store the attached files, please try again"})
	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("request failed")
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: internalErrorMessage})
	}
}
