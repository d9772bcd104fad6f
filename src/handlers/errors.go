package handlers

import (
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/gamehost/siteadmin/src/logging"
	"github.com/gamehost/siteadmin/src/middleware"
	"github.com/gamehost/siteadmin/src/services"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	// Report validation failures with the JSON field names clients send
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
	}
}

// bindJSON decodes and validates the request body. On failure it writes a
// 400 response and returns false.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, bindingError(err), "")
		return false
	}
	return true
}

// bindingError converts decoder and validator failures into a ValidationError
func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		var missing, invalid []string
		for _, fe := range verrs {
			if fe.Tag() == "required" {
				missing = append(missing, fe.Field())
			} else {
				invalid = append(invalid, fe.Field())
			}
		}
		if len(missing) > 0 {
			return &services.ValidationError{Fields: missing}
		}
		return &services.ValidationError{Fields: invalid, Reason: "invalid fields"}
	}
	if errors.Is(err, io.EOF) {
		return &services.ValidationError{Reason: "request body is required"}
	}
	return &services.ValidationError{Reason: "invalid request body"}
}

// errorStatus maps service errors onto HTTP status codes
func errorStatus(err error) int {
	switch {
	case services.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredential):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrMailerNotConfigured):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrFirstUserExists):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrUnknownKind):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": message}. Unexpected errors are logged in full
// and reported to the client as fallback (or a generic message).
func respondError(c *gin.Context, err error, fallback string) {
	status := errorStatus(err)
	message := err.Error()

	if status == http.StatusInternalServerError {
		logger := logging.ComponentLogger("api", middleware.GetRequestID(c))
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		message = fallback
		if message == "" {
			message = "internal server error"
		}
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
