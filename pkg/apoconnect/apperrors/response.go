package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Respond writes err as a structured `{"error": ...}` payload.
// Internal errors are logged and answered with GenericMessage.
func Respond(c *gin.Context, logger *zap.Logger, err error) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = Internal("unclassified error", err)
	}

	if appErr.Kind == KindInternal {
		logger.Error(appErr.Message,
			zap.Error(appErr.Err),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": GenericMessage})
		return
	}

	c.JSON(appErr.Status(), gin.H{"error": appErr.Message})
}

// FromBinding converts a gin binding failure into a validation error with a
// readable message instead of the raw validator output.
func FromBinding(err error) *Error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, describeField(fe))
		}
		return Validation(strings.Join(msgs, "; "))
	}
	return Validation("Invalid request body")
}

func describeField(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gt", "gte":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
