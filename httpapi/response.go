package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIError is the wire form of a failed request.
type APIError struct {
	Message       string   `json:"message"`
	Code          string   `json:"code,omitempty"`
	Remaining     *float64 `json:"remaining,omitempty"`
	RequiredTotal *float64 `json:"required_total,omitempty"`
}

// ErrorEnvelope wraps APIError for consistent error bodies.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func respondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

func respondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func respondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
