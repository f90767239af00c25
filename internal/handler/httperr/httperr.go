package httperr

import (
	"net/http"
	"strconv"

	"concert-reservation/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

// LockRetryAfter is advertised to clients that lost the seat lock race.
const LockRetryAfter = 1 // seconds

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

// preserves original error for future monitoring
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := Response{Status: status}
	resp.Error.Message = msg
	resp.Detail = detail

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}

// Abort maps the error category attached by the usecase layer to a status.
func Abort(c *gin.Context, err error) {
	status, msg := StatusOf(err)
	SetRetryAfter(c, err)
	AbortWithError(c, status, err, msg, nil)
}

// SetRetryAfter tells the client when to retry an error that is expected to clear.
func SetRetryAfter(c *gin.Context, err error) {
	if errs.Category(err) == errs.ErrLockTimeout {
		c.Header("Retry-After", strconv.Itoa(LockRetryAfter))
	}
}

func StatusOf(err error) (int, string) {
	switch errs.Category(err) {
	case errs.ErrInvalidArgument:
		return http.StatusBadRequest, "Invalid request"
	case errs.ErrUnauthorized:
		return http.StatusForbidden, "Queue token is not usable"
	case errs.ErrNotFound:
		return http.StatusNotFound, "Not found"
	case errs.ErrConflict:
		return http.StatusConflict, "Conflict"
	case errs.ErrLockTimeout:
		return http.StatusServiceUnavailable, "Seats are busy, try again"
	case errs.ErrTransientFailure:
		return http.StatusServiceUnavailable, "Temporarily unavailable"
	default:
		return http.StatusInternalServerError, "Internal error"
	}
}
