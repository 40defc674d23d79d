package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"auction-manager/internal/auctionerrors"
	model "auction-manager/internal/models"
	"auction-manager/services/helpers"
	"auction-manager/utils"
)

//go:generate mockgen -destination=mock_service.go -package=handler auction-manager/services/bidding/handler BiddingServiceInterface

type BiddingServiceInterface interface {
	PlaceBid(ctx context.Context, userID, itemID uint, price int64) (model.Bid, error)
	RemoveBid(ctx context.Context, userID, bidID uint) (model.Item, error)
	GetBidsForItem(ctx context.Context, userID, itemID uint) ([]model.Bid, error)
	GetWinningBid(ctx context.Context, userID, itemID uint) (model.Bid, error)
	GetItemsByUser(ctx context.Context, userID uint) ([]model.Item, error)
	GetBidsByUser(ctx context.Context, userID uint) ([]model.Bid, error)
	GetWonItems(ctx context.Context, userID uint) ([]model.Item, error)
}

type BiddingHandler struct {
	service BiddingServiceInterface
}

func NewBiddingHandler(service BiddingServiceInterface) *BiddingHandler {
	return &BiddingHandler{service: service}
}

// RecordBidHandler handles POST /items/:item_id/bids
func (h *BiddingHandler) RecordBidHandler(c *gin.Context) {
	itemID, ok := helpers.ParseIDParam(c, "item_id")
	if !ok {
		return
	}
	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RecordBidHandler", err)
		return
	}

	userID := helpers.CurrentUserID(c)
	bid, err := h.service.PlaceBid(c.Request.Context(), userID, itemID, req.Price)
	if err != nil {
		helpers.RespondError(c, "RecordBidHandler", err, map[string]any{
			"item_id": itemID,
			"user_id": userID,
			"price":   req.Price,
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewBidResponse(bid), "bid recorded successfully")
	helpers.LogSuccess("RecordBidHandler", "bid recorded successfully", map[string]any{
		"bid_id":  bid.ID,
		"item_id": bid.ItemID,
		"user_id": userID,
		"price":   bid.Price,
	})
}

// RemoveBidHandler handles DELETE /bids/:bid_id
func (h *BiddingHandler) RemoveBidHandler(c *gin.Context) {
	bidID, ok := helpers.ParseIDParam(c, "bid_id")
	if !ok {
		return
	}

	userID := helpers.CurrentUserID(c)
	item, err := h.service.RemoveBid(c.Request.Context(), userID, bidID)
	if err != nil {
		helpers.RespondError(c, "RemoveBidHandler", err, map[string]any{"bid_id": bidID, "user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, item, "bid removed successfully")
	helpers.LogSuccess("RemoveBidHandler", "bid removed successfully", map[string]any{
		"bid_id":  bidID,
		"item_id": item.ID,
		"user_id": userID,
	})
}

// GetBidsByItemHandler handles GET /items/:item_id/bids
func (h *BiddingHandler) GetBidsByItemHandler(c *gin.Context) {
	itemID, ok := helpers.ParseIDParam(c, "item_id")
	if !ok {
		return
	}

	bids, err := h.service.GetBidsForItem(c.Request.Context(), helpers.CurrentUserID(c), itemID)
	if err != nil && !errors.Is(err, auctionerrors.ErrNoBids) {
		helpers.RespondError(c, "GetBidsByItemHandler", err, map[string]any{"item_id": itemID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewBidResponses(bids), "bids retrieved successfully")
	helpers.LogSuccess("GetBidsByItemHandler", "bids retrieved successfully", map[string]any{
		"item_id": itemID,
		"count":   len(bids),
	})
}

// GetWinningBidHandler handles GET /items/:item_id/winning
func (h *BiddingHandler) GetWinningBidHandler(c *gin.Context) {
	itemID, ok := helpers.ParseIDParam(c, "item_id")
	if !ok {
		return
	}

	bid, err := h.service.GetWinningBid(c.Request.Context(), helpers.CurrentUserID(c), itemID)
	if err != nil {
		// For auction, winning bid not found -> 404
		if errors.Is(err, auctionerrors.ErrNoBids) {
			utils.JSONError(c, http.StatusNotFound, err, "no winning bid found")
			utils.Info("GetWinningBidHandler: no winning bid found", map[string]any{"item_id": itemID})
			return
		}
		helpers.RespondError(c, "GetWinningBidHandler", err, map[string]any{"item_id": itemID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewBidResponse(bid), "winning bid retrieved successfully")
	helpers.LogSuccess("GetWinningBidHandler", "winning bid retrieved successfully", map[string]any{
		"bid_id":  bid.ID,
		"item_id": bid.ItemID,
		"user_id": bid.BidderID,
		"price":   bid.Price,
	})
}

// GetItemsByUserHandler handles GET /users/me/items
func (h *BiddingHandler) GetItemsByUserHandler(c *gin.Context) {
	userID := helpers.CurrentUserID(c)
	items, err := h.service.GetItemsByUser(c.Request.Context(), userID)
	if err != nil && !errors.Is(err, auctionerrors.ErrUserNoBids) {
		helpers.RespondError(c, "GetItemsByUserHandler", err, map[string]any{"user_id": userID})
		return
	}

	if items == nil {
		items = []model.Item{}
	}

	utils.JSONResponse(c, http.StatusOK, items, "items retrieved successfully")
	helpers.LogSuccess("GetItemsByUserHandler", "items retrieved successfully", map[string]any{
		"user_id":     userID,
		"items_count": len(items),
	})
}

// GetBidsByUserHandler handles GET /users/me/bids
func (h *BiddingHandler) GetBidsByUserHandler(c *gin.Context) {
	userID := helpers.CurrentUserID(c)
	bids, err := h.service.GetBidsByUser(c.Request.Context(), userID)
	if err != nil && !errors.Is(err, auctionerrors.ErrUserNoBids) {
		helpers.RespondError(c, "GetBidsByUserHandler", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewBidResponses(bids), "bids retrieved successfully")
	helpers.LogSuccess("GetBidsByUserHandler", "bids retrieved successfully", map[string]any{
		"user_id": userID,
		"count":   len(bids),
	})
}

// GetWonItemsHandler handles GET /users/me/won
func (h *BiddingHandler) GetWonItemsHandler(c *gin.Context) {
	userID := helpers.CurrentUserID(c)
	items, err := h.service.GetWonItems(c.Request.Context(), userID)
	if err != nil {
		helpers.RespondError(c, "GetWonItemsHandler", err, map[string]any{"user_id": userID})
		return
	}

	if items == nil {
		items = []model.Item{}
	}

	utils.JSONResponse(c, http.StatusOK, items, "won items retrieved successfully")
	helpers.LogSuccess("GetWonItemsHandler", "won items retrieved successfully", map[string]any{
		"user_id":     userID,
		"items_count": len(items),
	})
}
