package handler

import (
	"errors"
	"net/http"

	"campusmart/internal/service"

	"github.com/gin-gonic/gin"
)

// All endpoints answer with a {success, data|errors, message} envelope.

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondMessage(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, gin.H{"success": true, "data": data, "message": message})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

func respondValidation(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "errors": err.Error(), "message": "validation failed"})
}

// respondServiceError maps domain errors onto HTTP statuses: missing
// entities → 404, wrong party → 403, bad state or input → 400. Anything
// unrecognized is an internal error (the operation already rolled back).
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOfferNotFound),
		errors.Is(err, service.ErrMeetupNotFound),
		errors.Is(err, service.ErrItemNotFound),
		errors.Is(err, service.ErrUserNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotReceiver),
		errors.Is(err, service.ErrNotSender),
		errors.Is(err, service.ErrNotParticipant),
		errors.Is(err, service.ErrNotItemOwner),
		errors.Is(err, service.ErrRoleMismatch):
		respondError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInsufficientBalance):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error(), "errors": gin.H{"coins": "insufficient balance"}})
	case errors.Is(err, service.ErrOfferNotPending),
		errors.Is(err, service.ErrChainResolved),
		errors.Is(err, service.ErrInvalidParent),
		errors.Is(err, service.ErrSelfOffer),
		errors.Is(err, service.ErrItemNotActive),
		errors.Is(err, service.ErrNegativeAmount),
		errors.Is(err, service.ErrMeetupNotOpen),
		errors.Is(err, service.ErrOfferNotAccepted),
		errors.Is(err, service.ErrItemNotReservable),
		errors.Is(err, service.ErrOwnItem),
		errors.Is(err, service.ErrMeetupExists),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrCoinAmountOutOfRange),
		errors.Is(err, service.ErrSignatureInvalid),
		errors.Is(err, service.ErrDuplicatePayment):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "something went wrong")
	}
}
