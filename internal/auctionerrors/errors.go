package auctionerrors

import "errors"

// Repository-level errors
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrAuctionNotFound      = errors.New("auction not found")
	ErrItemNotFound         = errors.New("item not found")
	ErrBidNotFound          = errors.New("bid not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNoBids               = errors.New("no bids found for item")
	ErrUserNoBids           = errors.New("user has not placed any bids")
	ErrUsernameTaken        = errors.New("username already taken")
	ErrAlreadyParticipant   = errors.New("user already participates in auction")
)

// business logic errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidBid   = errors.New("invalid bid")
	ErrBidTooLow    = errors.New("bid amount too low")

	ErrAuctionNotPublished = errors.New("auction is not published")
	ErrAuctionNotOpen      = errors.New("auction is not open for bidding")
	ErrAuctionOpen         = errors.New("auction is open for bidding")
	ErrAuctionArchived     = errors.New("auction is archived")

	ErrItemClosed      = errors.New("item is not open for bidding")
	ErrItemSold        = errors.New("item already sold")
	ErrItemNotSold     = errors.New("item has not been sold")
	ErrItemPaid        = errors.New("item already paid")
	ErrItemHasBids     = errors.New("item already has bids")
	ErrItemsUnpaid     = errors.New("auction has sold items awaiting payment")
	ErrWrongItemType   = errors.New("operation not allowed for this auction type")
	ErrParticipantWon  = errors.New("participant has won items in auction")
	ErrInvalidImage    = errors.New("invalid image")
	ErrNotParticipant  = errors.New("user does not participate in auction")
	ErrForbidden       = errors.New("forbidden")
	ErrBadCredentials  = errors.New("invalid username or password")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInactiveAccount = errors.New("account is inactive")
)
