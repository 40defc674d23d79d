package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"auction-manager/internal/auctionerrors"
	"auction-manager/utils"
)

// UserIDKey is the gin context key the auth middleware stores the caller under
const UserIDKey = "user_id"

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, auctionerrors.ErrAuctionNotFound):
		return http.StatusNotFound, "auction not found"
	case errors.Is(err, auctionerrors.ErrItemNotFound):
		return http.StatusNotFound, "item not found"
	case errors.Is(err, auctionerrors.ErrBidNotFound):
		return http.StatusNotFound, "bid not found"
	case errors.Is(err, auctionerrors.ErrNotificationNotFound):
		return http.StatusNotFound, "notification not found"
	case errors.Is(err, auctionerrors.ErrNoBids):
		return http.StatusNotFound, "no bids found for item"
	case errors.Is(err, auctionerrors.ErrUserNoBids):
		return http.StatusNotFound, "no bids found for user"
	case errors.Is(err, auctionerrors.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, auctionerrors.ErrNotParticipant):
		return http.StatusForbidden, "user does not participate in auction"
	case errors.Is(err, auctionerrors.ErrBadCredentials):
		return http.StatusUnauthorized, "invalid username or password"
	case errors.Is(err, auctionerrors.ErrInactiveAccount):
		return http.StatusUnauthorized, "account is inactive"
	case errors.Is(err, auctionerrors.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, auctionerrors.ErrInvalidBid):
		return http.StatusBadRequest, "invalid bid details"
	case errors.Is(err, auctionerrors.ErrInvalidImage):
		return http.StatusBadRequest, "invalid image"
	case errors.Is(err, auctionerrors.ErrInvalidInput):
		return http.StatusBadRequest, "invalid input"
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		return http.StatusConflict, "bid amount too low"
	case errors.Is(err, auctionerrors.ErrUsernameTaken),
		errors.Is(err, auctionerrors.ErrAlreadyParticipant),
		errors.Is(err, auctionerrors.ErrAuctionNotPublished),
		errors.Is(err, auctionerrors.ErrAuctionNotOpen),
		errors.Is(err, auctionerrors.ErrAuctionOpen),
		errors.Is(err, auctionerrors.ErrAuctionArchived),
		errors.Is(err, auctionerrors.ErrItemClosed),
		errors.Is(err, auctionerrors.ErrItemSold),
		errors.Is(err, auctionerrors.ErrItemNotSold),
		errors.Is(err, auctionerrors.ErrItemPaid),
		errors.Is(err, auctionerrors.ErrItemHasBids),
		errors.Is(err, auctionerrors.ErrItemsUnpaid),
		errors.Is(err, auctionerrors.ErrWrongItemType),
		errors.Is(err, auctionerrors.ErrParticipantWon):
		return http.StatusConflict, conflictMessage(err)
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// conflictMessage returns the text of the sentinel wrapped by err
func conflictMessage(err error) string {
	for _, sentinel := range []error{
		auctionerrors.ErrUsernameTaken,
		auctionerrors.ErrAlreadyParticipant,
		auctionerrors.ErrAuctionNotPublished,
		auctionerrors.ErrAuctionNotOpen,
		auctionerrors.ErrAuctionOpen,
		auctionerrors.ErrAuctionArchived,
		auctionerrors.ErrItemClosed,
		auctionerrors.ErrItemSold,
		auctionerrors.ErrItemNotSold,
		auctionerrors.ErrItemPaid,
		auctionerrors.ErrItemHasBids,
		auctionerrors.ErrItemsUnpaid,
		auctionerrors.ErrWrongItemType,
		auctionerrors.ErrParticipantWon,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "conflict"
}

// RespondError writes the mapped error response and logs it. Server errors
// are logged at error level, client errors as warnings.
func RespondError(c *gin.Context, handlerName string, err error, fields map[string]any) {
	status, message := MapErrorToHTTP(err)
	utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)

	logFields := map[string]any{"handler": handlerName, "status": status, "error": err.Error()}
	for k, v := range fields {
		logFields[k] = v
	}
	if status >= http.StatusInternalServerError {
		utils.Error(handlerName+": request failed", logFields)
		return
	}
	utils.Warn(handlerName+": request rejected", logFields)
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}

// CurrentUserID returns the authenticated caller set by the auth middleware
func CurrentUserID(c *gin.Context) uint {
	return c.GetUint(UserIDKey)
}

// ParseIDParam reads a numeric path parameter. On failure it writes a 400
// response and returns false.
func ParseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		err = fmt.Errorf("%s must be a positive integer: %w", name, auctionerrors.ErrInvalidInput)
		utils.JSONError(c, http.StatusBadRequest, err, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
