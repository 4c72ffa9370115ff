package api

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/yourname/fitcoach/internal"
	"github.com/yourname/fitcoach/internal/calendar"
	"github.com/yourname/fitcoach/internal/response"
)

func HandleError(c *gin.Context, logger internal.Logger, err error, status int, msg string) {
	requestID := c.GetString("request_id")
	logger.Errorf("[request_id=%s] %s: %v", requestID, msg, err)
	var resp response.APIResponse
	switch status {
	case 400:
		resp = response.BadRequest(msg + ": " + err.Error())
	case 403:
		resp = response.Forbidden(msg + ": " + err.Error())
	case 404:
		resp = response.NotFound(msg + ": " + err.Error())
	case 409:
		resp = response.Conflict(msg + ": " + err.Error())
	case 500:
		resp = response.InternalError(msg + ": " + err.Error())
	default:
		resp = response.NewAppError(status, msg+": "+err.Error())
	}
	c.JSON(status, resp)
}

// HandleDomainError maps sentinel errors from the service layer onto HTTP
// statuses so handlers don't repeat the switch.
func HandleDomainError(c *gin.Context, logger internal.Logger, err error, msg string) {
	status := 500
	switch {
	case errors.Is(err, internal.ErrNotFound), errors.Is(err, internal.ErrNoActivePlan):
		status = 404
	case errors.Is(err, internal.ErrInvalidUnit), errors.Is(err, internal.ErrOutOfRange):
		status = 400
	case errors.Is(err, internal.ErrConflict):
		status = 409
	case errors.Is(err, internal.ErrForbidden):
		status = 403
	case errors.Is(err, calendar.ErrNotConnected):
		status = 400
	}
	HandleError(c, logger, err, status, msg)
}

func HandleSuccess(c *gin.Context, logger internal.Logger, data interface{}, meta map[string]any) {
	requestID := c.GetString("request_id")
	logger.Infof("[request_id=%s] Success", requestID)
	c.JSON(200, response.Success(data, meta))
}
