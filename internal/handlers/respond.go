package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	apierrors "github.com/bookerloo/booking-api/internal/errors"
	"github.com/bookerloo/booking-api/internal/services"
)

// respondServiceError maps the service error taxonomy onto HTTP responses:
// not-found 404, forbidden 403, locked/invalid-transition/already-resolved
// 409, lock timeout 408, validation 400, everything else 500.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrBookingNotFound),
		errors.Is(err, services.ErrMilestoneNotFound),
		errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrApprovalNotFound):
		apierrors.NotFound(c, err.Error())

	case errors.Is(err, services.ErrForbidden):
		apierrors.Forbidden(c, "")

	case errors.Is(err, services.ErrMilestoneLocked),
		errors.Is(err, services.ErrTaskLocked):
		apierrors.Conflict(c, apierrors.ErrCodeLocked, err.Error())

	case errors.Is(err, services.ErrInvalidTransition):
		apierrors.Conflict(c, apierrors.ErrCodeInvalidTransition, err.Error())

	case errors.Is(err, services.ErrAlreadyResolved):
		apierrors.Conflict(c, apierrors.ErrCodeAlreadyResolved, err.Error())

	case errors.Is(err, services.ErrApprovalOpen):
		apierrors.Conflict(c, apierrors.ErrCodeAlreadyExists, err.Error())

	case errors.Is(err, services.ErrLockTimeout):
		apierrors.RequestTimeout(c, "")

	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrInvalidWeight),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidTarget),
		errors.Is(err, services.ErrInvalidDecision):
		apierrors.BadRequest(c, err.Error())

	default:
		apierrors.InternalError(c, "")
	}
}
