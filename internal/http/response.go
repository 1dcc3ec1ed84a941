package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vidtube/internal/domain"
)

// Response is the success envelope every endpoint returns.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// ErrorResponse is the failure envelope. Errors is reserved for field
// level detail and stays empty for now.
type ErrorResponse struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors"`
}

func respond(c *gin.Context, status int, data any, message string) {
	c.JSON(status, Response{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

// respondError is the single place service failures become HTTP
// responses. Known error kinds map to 4xx with the service message;
// everything else is a 500 with no internal detail.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	for _, kind := range []struct {
		err    error
		status int
	}{
		{domain.ErrValidation, http.StatusBadRequest},
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrConflict, http.StatusConflict},
	} {
		if errors.Is(err, kind.err) {
			status = kind.status
			message = clientMessage(err, kind.err)
			break
		}
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		StatusCode: status,
		Message:    message,
		Success:    false,
		Errors:     []string{},
	})
}

// clientMessage strips the trailing sentinel from a wrapped error so
// "user does not exist: not found" comes out as "user does not exist".
func clientMessage(err, kind error) string {
	msg := err.Error()
	if trimmed, ok := strings.CutSuffix(msg, ": "+kind.Error()); ok {
		return trimmed
	}
	return msg
}
