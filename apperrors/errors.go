package apperrors

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error represents an application error with an HTTP status attached.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error types
var (
	ErrBadRequest     = New(http.StatusBadRequest, "Bad request", nil)
	ErrUnauthorized   = New(http.StatusUnauthorized, "Unauthorized", nil)
	ErrNotFound       = New(http.StatusNotFound, "Not found", nil)
	ErrInternalServer = New(http.StatusInternalServerError, "Internal server error", nil)
)

// Authentication error types. The credentials message is deliberately the
// same whether the handle or the vault code was wrong.
var (
	ErrInvalidCredentials = New(http.StatusUnauthorized, "Invalid Outlaw ID or Vault Code", nil)
	ErrHandleTaken        = New(http.StatusConflict, "This Outlaw ID is already taken", nil)
)

// ErrorMiddleware converts any error attached to the gin context into a JSON
// response. Unknown errors become a generic message; the underlying cause is
// never sent to the client.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			appErr, ok := err.(*Error)
			if !ok {
				appErr = New(http.StatusInternalServerError, "An unexpected error occurred", err)
			}

			c.JSON(appErr.Code, gin.H{"error": appErr.Message})
			c.Abort()
		}
	}
}
