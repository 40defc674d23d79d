package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"auction-manager/internal/auctionerrors"
	item "auction-manager/internal/itemService"
	model "auction-manager/internal/models"
	"auction-manager/services/helpers"
	"auction-manager/utils"
)

//go:generate mockgen -destination=mock_service.go -package=handler auction-manager/services/item/handler ItemServiceInterface

type ItemServiceInterface interface {
	AddItem(ctx context.Context, adminID, auctionID uint, p item.CreateParams) (model.Item, error)
	UpdateItem(ctx context.Context, adminID, itemID uint, p item.UpdateParams) (model.Item, error)
	DeleteItem(ctx context.Context, adminID, itemID uint) error
	ListItems(ctx context.Context, userID, auctionID uint) ([]model.Item, error)
	GetItem(ctx context.Context, userID, itemID uint) (model.Item, error)
	OpenItem(ctx context.Context, adminID, itemID uint) (model.Item, error)
	CloseItem(ctx context.Context, adminID, itemID uint) (model.Item, error)
	SellItem(ctx context.Context, adminID, itemID, winnerID uint, price int64) (model.Item, error)
	MarkPaid(ctx context.Context, adminID, itemID uint) (model.Item, error)
	UploadImage(ctx context.Context, adminID, itemID uint, r io.Reader) (model.Item, error)
}

type ItemHandler struct {
	service ItemServiceInterface
}

func NewItemHandler(service ItemServiceInterface) *ItemHandler {
	return &ItemHandler{service: service}
}

// AddItemHandler handles POST /auctions/:auction_id/items
func (h *ItemHandler) AddItemHandler(c *gin.Context) {
	auctionID, ok := helpers.ParseIDParam(c, "auction_id")
	if !ok {
		return
	}
	var req helpers.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "AddItemHandler", err)
		return
	}

	it, err := h.service.AddItem(c.Request.Context(), helpers.CurrentUserID(c), auctionID, item.CreateParams{
		Name:          req.Name,
		Description:   req.Description,
		StartingPrice: req.StartingPrice,
		BidIncrement:  req.BidIncrement,
		AuctionType:   req.AuctionType,
	})
	if err != nil {
		helpers.RespondError(c, "AddItemHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, it, "item created successfully")
	helpers.LogSuccess("AddItemHandler", "item created successfully", map[string]any{
		"auction_id": auctionID,
		"item_id":    it.ID,
	})
}

// ListItemsHandler handles GET /auctions/:auction_id/items
func (h *ItemHandler) ListItemsHandler(c *gin.Context) {
	auctionID, ok := helpers.ParseIDParam(c, "auction_id")
	if !ok {
		return
	}

	items, err := h.service.ListItems(c.Request.Context(), helpers.CurrentUserID(c), auctionID)
	if err != nil {
		helpers.RespondError(c, "ListItemsHandler", err, map[string]any{"auction_id": auctionID})
		return
	}
	if items == nil {
		items = []model.Item{}
	}

	utils.JSONResponse(c, http.StatusOK, items, "items retrieved successfully")
}

// GetItemHandler handles GET /items/:item_id
func (h *ItemHandler) GetItemHandler(c *gin.Context) {
	itemID, ok := helpers.ParseIDParam(c, "item_id")
	if !ok {
		return
	}

	it, err := h.service.GetItem(c.Request.Context(), helpers.CurrentUserID(c), itemID)
	if err != nil {
		helpers.RespondError(c, "GetItemHandler", err, map[string]any{"item_id": itemID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, it, "item retrieved successfully")
}

// UpdateItemHandler handles PATCH /items/:item_id
func (h *ItemHandler) UpdateItemHandler(c *gin.Context) {
	itemID, ok := helpers.ParseIDParam(c, "item_id")
	if !ok {
		return
	}
	var req helpers.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "UpdateItemHandler", err)
		return
	}

	it, err := h.service.UpdateItem(c.Request.Context(), helpers.CurrentUserID(c), itemID, item.UpdateParams{
		Name:          req.Name,
		Description:   req.Description,
		StartingPrice: req.StartingPrice,
		BidIncrement:  req.BidIncrement,
		AuctionType:   req.AuctionType,
	})
	if err != nil {
		helpers.RespondError(c, "UpdateItemHandler", err, map[string]any{"item_id": itemID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, it, "item updated successfully")
	helpers.LogSuccess("UpdateItemHandler", "item updated successfully", map[string]any{"item_id": itemID})
}

// DeleteItemHandler handles DELETE /items/:item_id
func (h *ItemHandler) DeleteItemHandler(c *gin.Context) {
	itemID, ok := helpers.ParseIDParam(c, "item_id")
	if !ok {
		return
	}

	if err := h.service.DeleteItem(c.Request.Context(), helpers.CurrentUserID(c), itemID); err != nil {
		helpers.RespondError(c, "DeleteItemHandler", err, map[string]any{"item_id": itemID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "item deleted successfully")
	helpers.LogSuccess("DeleteItemHandler", "item deleted successfully", map[string]any{"item_id": itemID})
}

// lifecycle builds the handlers of the POST /items/:item_id/{open,close,paid} routes
func (h *ItemHandler) lifecycle(name, message string, op func(ctx context.Context, adminID, itemID uint) (model.Item, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, ok := helpers.ParseIDParam(c, "item_id")
		if !ok {
			return
		}

		userID := helpers.CurrentUserID(c)
		it, err := op(c.Request.Context(), userID, itemID)
		if err != nil {
			helpers.RespondError(c, name, err, map[string]any{"item_id": itemID, "user_id": userID})
			return
		}

		utils.JSONResponse(c, http.StatusOK, it, message)
		helpers.LogSuccess(name, message, map[string]any{"item_id": itemID})
	}
}

// OpenItemHandler handles POST /items/:item_id/open
func (h *ItemHandler) OpenItemHandler() gin.HandlerFunc {
	return h.lifecycle("OpenItemHandler", "item opened successfully", h.service.OpenItem)
}

// CloseItemHandler handles POST /items/:item_id/close
func (h *ItemHandler) CloseItemHandler() gin.HandlerFunc {
	return h.lifecycle("CloseItemHandler", "item closed successfully", h.service.CloseItem)
}

// MarkPaidHandler handles POST /items/:item_id/paid
func (h *ItemHandler) MarkPaidHandler() gin.HandlerFunc {
	return h.lifecycle("MarkPaidHandler", "item marked as paid", h.service.MarkPaid)
}

// SellItemHandler handles POST /items/:item_id/sell
func (h *ItemHandler) SellItemHandler(c *gin.Context) {
	itemID, ok := helpers.ParseIDParam(c, "item_id")
	if !ok {
		return
	}
	var req helpers.SellItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "SellItemHandler", err)
		return
	}

	it, err := h.service.SellItem(c.Request.Context(), helpers.CurrentUserID(c), itemID, req.WinnerID, req.Price)
	if err != nil {
		helpers.RespondError(c, "SellItemHandler", err, map[string]any{
			"item_id":   itemID,
			"winner_id": req.WinnerID,
			"price":     req.Price,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, it, "item sold successfully")
	helpers.LogSuccess("SellItemHandler", "item sold successfully", map[string]any{
		"item_id":   itemID,
		"winner_id": req.WinnerID,
		"price":     req.Price,
	})
}

// UploadImageHandler handles POST /items/:item_id/image
func (h *ItemHandler) UploadImageHandler(c *gin.Context) {
	itemID, ok := helpers.ParseIDParam(c, "item_id")
	if !ok {
		return
	}
	file, err := c.FormFile("image")
	if err != nil {
		helpers.HandleBindError(c, "UploadImageHandler", fmt.Errorf("%w: %w", auctionerrors.ErrInvalidImage, err))
		return
	}
	f, err := file.Open()
	if err != nil {
		helpers.RespondError(c, "UploadImageHandler", err, map[string]any{"item_id": itemID})
		return
	}
	defer f.Close()

	it, err := h.service.UploadImage(c.Request.Context(), helpers.CurrentUserID(c), itemID, f)
	if err != nil {
		helpers.RespondError(c, "UploadImageHandler", err, map[string]any{"item_id": itemID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, it, "image uploaded successfully")
	helpers.LogSuccess("UploadImageHandler", "image uploaded successfully", map[string]any{
		"item_id":   itemID,
		"image_url": it.ImageURL,
	})
}
