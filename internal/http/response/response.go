package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/whisperweb-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondFromError maps a service error onto the wire. Messages on 5xx are
// replaced with a generic string; upstream and database details stay in logs.
func RespondFromError(c *gin.Context, err error) {
	status := apierr.Status(err)
	code := apierr.CodeOf(err)
	msg := "internal server error"
	if status < http.StatusInternalServerError && err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
