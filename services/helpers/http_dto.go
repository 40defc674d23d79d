package helpers

import (
	"time"

	"github.com/samber/lo"

	model "auction-manager/internal/models"
)

// Request/Response DTOs. Amounts are integer cents.

type RegisterRequest struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateAccountRequest struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

type CreateAuctionRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateAuctionRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type AddParticipantRequest struct {
	Username string `json:"username" binding:"required"`
}

type JoinAuctionRequest struct {
	EntryCode string `json:"entry_code" binding:"required"`
}

type CreateItemRequest struct {
	Name          string            `json:"name" binding:"required"`
	Description   string            `json:"description"`
	StartingPrice int64             `json:"starting_price" binding:"gte=0"`
	BidIncrement  int64             `json:"bid_increment" binding:"gte=0"`
	AuctionType   model.AuctionType `json:"auction_type"`
}

type UpdateItemRequest struct {
	Name          *string            `json:"name"`
	Description   *string            `json:"description"`
	StartingPrice *int64             `json:"starting_price"`
	BidIncrement  *int64             `json:"bid_increment"`
	AuctionType   *model.AuctionType `json:"auction_type"`
}

type SellItemRequest struct {
	WinnerID uint  `json:"winner_id" binding:"required"`
	Price    int64 `json:"price" binding:"required,gt=0"`
}

type PlaceBidRequest struct {
	Price int64 `json:"price" binding:"required,gt=0"`
}

type BidResponse struct {
	BidID     uint   `json:"bid_id"`
	ItemID    uint   `json:"item_id"`
	BidderID  uint   `json:"bidder_id"`
	Price     int64  `json:"price"`
	Won       bool   `json:"won"`
	CreatedAt string `json:"created_at"`
}

// NewBidResponse converts a bid into its wire form
func NewBidResponse(bid model.Bid) BidResponse {
	return BidResponse{
		BidID:     bid.ID,
		ItemID:    bid.ItemID,
		BidderID:  bid.BidderID,
		Price:     bid.Price,
		Won:       bid.Won,
		CreatedAt: bid.Timestamp.UTC().Format(time.RFC3339),
	}
}

// NewBidResponses converts a list of bids, never returning nil
func NewBidResponses(bids []model.Bid) []BidResponse {
	return lo.Map(bids, func(b model.Bid, _ int) BidResponse { return NewBidResponse(b) })
}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}
