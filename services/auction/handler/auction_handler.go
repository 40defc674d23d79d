package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	auction "auction-manager/internal/auctionService"
	"auction-manager/internal/auctionerrors"
	model "auction-manager/internal/models"
	"auction-manager/services/helpers"
	"auction-manager/utils"
)

//go:generate mockgen -destination=mock_service.go -package=handler auction-manager/services/auction/handler AuctionServiceInterface

type AuctionServiceInterface interface {
	CreateAuction(ctx context.Context, adminID uint, p auction.CreateParams) (model.Auction, error)
	GetAuction(ctx context.Context, userID, auctionID uint) (model.Auction, error)
	ListAuctions(ctx context.Context, userID uint) (model.AuctionList, error)
	UpdateAuction(ctx context.Context, adminID, auctionID uint, p auction.UpdateParams) (model.Auction, error)
	DeleteAuction(ctx context.Context, adminID, auctionID uint) error
	PublishAuction(ctx context.Context, adminID, auctionID uint) (model.Auction, error)
	OpenBidding(ctx context.Context, adminID, auctionID uint) (model.Auction, error)
	CloseBidding(ctx context.Context, adminID, auctionID uint) (model.Auction, error)
	ArchiveAuction(ctx context.Context, adminID, auctionID uint) (model.Auction, error)
	AddParticipant(ctx context.Context, adminID, auctionID uint, username string) (model.User, error)
	RemoveParticipant(ctx context.Context, adminID, auctionID, userID uint) error
	JoinAuction(ctx context.Context, userID uint, code string) (model.Auction, error)
	ListParticipants(ctx context.Context, userID, auctionID uint) ([]model.User, error)
	UploadImage(ctx context.Context, adminID, auctionID uint, r io.Reader) (model.Auction, error)
}

type AuctionHandler struct {
	service AuctionServiceInterface
}

func NewAuctionHandler(service AuctionServiceInterface) *AuctionHandler {
	return &AuctionHandler{service: service}
}

// CreateAuctionHandler handles POST /auctions
func (h *AuctionHandler) CreateAuctionHandler(c *gin.Context) {
	var req helpers.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateAuctionHandler", err)
		return
	}

	userID := helpers.CurrentUserID(c)
	a, err := h.service.CreateAuction(c.Request.Context(), userID, auction.CreateParams{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		helpers.RespondError(c, "CreateAuctionHandler", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, a, "auction created successfully")
	helpers.LogSuccess("CreateAuctionHandler", "auction created successfully", map[string]any{
		"auction_id": a.ID,
		"admin_id":   userID,
	})
}

// ListAuctionsHandler handles GET /auctions
func (h *AuctionHandler) ListAuctionsHandler(c *gin.Context) {
	userID := helpers.CurrentUserID(c)
	list, err := h.service.ListAuctions(c.Request.Context(), userID)
	if err != nil {
		helpers.RespondError(c, "ListAuctionsHandler", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, list, "auctions retrieved successfully")
}

// GetAuctionHandler handles GET /auctions/:auction_id
func (h *AuctionHandler) GetAuctionHandler(c *gin.Context) {
	auctionID, ok := helpers.ParseIDParam(c, "auction_id")
	if !ok {
		return
	}

	a, err := h.service.GetAuction(c.Request.Context(), helpers.CurrentUserID(c), auctionID)
	if err != nil {
		helpers.RespondError(c, "GetAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, a, "auction retrieved successfully")
}

// UpdateAuctionHandler handles PATCH /auctions/:auction_id
func (h *AuctionHandler) UpdateAuctionHandler(c *gin.Context) {
	auctionID, ok := helpers.ParseIDParam(c, "auction_id")
	if !ok {
		return
	}
	var req helpers.UpdateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "UpdateAuctionHandler", err)
		return
	}

	a, err := h.service.UpdateAuction(c.Request.Context(), helpers.CurrentUserID(c), auctionID, auction.UpdateParams{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		helpers.RespondError(c, "UpdateAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, a, "auction updated successfully")
	helpers.LogSuccess("UpdateAuctionHandler", "auction updated successfully", map[string]any{"auction_id": auctionID})
}

// DeleteAuctionHandler handles DELETE /auctions/:auction_id
func (h *AuctionHandler) DeleteAuctionHandler(c *gin.Context) {
	auctionID, ok := helpers.ParseIDParam(c, "auction_id")
	if !ok {
		return
	}

	if err := h.service.DeleteAuction(c.Request.Context(), helpers.CurrentUserID(c), auctionID); err != nil {
		helpers.RespondError(c, "DeleteAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "auction deleted successfully")
	helpers.LogSuccess("DeleteAuctionHandler", "auction deleted successfully", map[string]any{"auction_id": auctionID})
}

// lifecycle builds the handlers of the POST /auctions/:auction_id/{publish,open,close,archive} routes
func (h *AuctionHandler) lifecycle(name, message string, op func(ctx context.Context, adminID, auctionID uint) (model.Auction, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		auctionID, ok := helpers.ParseIDParam(c, "auction_id")
		if !ok {
			return
		}

		userID := helpers.CurrentUserID(c)
		a, err := op(c.Request.Context(), userID, auctionID)
		if err != nil {
			helpers.RespondError(c, name, err, map[string]any{"auction_id": auctionID, "user_id": userID})
			return
		}

		utils.JSONResponse(c, http.StatusOK, a, message)
		helpers.LogSuccess(name, message, map[string]any{"auction_id": auctionID})
	}
}

// PublishAuctionHandler handles POST /auctions/:auction_id/publish
func (h *AuctionHandler) PublishAuctionHandler() gin.HandlerFunc {
	return h.lifecycle("PublishAuctionHandler", "auction published successfully", h.service.PublishAuction)
}

// OpenBiddingHandler handles POST /auctions/:auction_id/open
func (h *AuctionHandler) OpenBiddingHandler() gin.HandlerFunc {
	return h.lifecycle("OpenBiddingHandler", "bidding opened successfully", h.service.OpenBidding)
}

// CloseBiddingHandler handles POST /auctions/:auction_id/close
func (h *AuctionHandler) CloseBiddingHandler() gin.HandlerFunc {
	return h.lifecycle("CloseBiddingHandler", "bidding closed successfully", h.service.CloseBidding)
}

// ArchiveAuctionHandler handles POST /auctions/:auction_id/archive
func (h *AuctionHandler) ArchiveAuctionHandler() gin.HandlerFunc {
	return h.lifecycle("ArchiveAuctionHandler", "auction archived successfully", h.service.ArchiveAuction)
}

// ListParticipantsHandler handles GET /auctions/:auction_id/participants
func (h *AuctionHandler) ListParticipantsHandler(c *gin.Context) {
	auctionID, ok := helpers.ParseIDParam(c, "auction_id")
	if !ok {
		return
	}

	users, err := h.service.ListParticipants(c.Request.Context(), helpers.CurrentUserID(c), auctionID)
	if err != nil {
		helpers.RespondError(c, "ListParticipantsHandler", err, map[string]any{"auction_id": auctionID})
		return
	}
	if users == nil {
		users = []model.User{}
	}

	utils.JSONResponse(c, http.StatusOK, users, "participants retrieved successfully")
}

// AddParticipantHandler handles POST /auctions/:auction_id/participants
func (h *AuctionHandler) AddParticipantHandler(c *gin.Context) {
	auctionID, ok := helpers.ParseIDParam(c, "auction_id")
	if !ok {
		return
	}
	var req helpers.AddParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "AddParticipantHandler", err)
		return
	}

	user, err := h.service.AddParticipant(c.Request.Context(), helpers.CurrentUserID(c), auctionID, req.Username)
	if err != nil {
		helpers.RespondError(c, "AddParticipantHandler", err, map[string]any{
			"auction_id": auctionID,
			"username":   req.Username,
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, user, "participant added successfully")
	helpers.LogSuccess("AddParticipantHandler", "participant added successfully", map[string]any{
		"auction_id": auctionID,
		"user_id":    user.ID,
	})
}

// RemoveParticipantHandler handles DELETE /auctions/:auction_id/participants/:user_id
func (h *AuctionHandler) RemoveParticipantHandler(c *gin.Context) {
	auctionID, ok := helpers.ParseIDParam(c, "auction_id")
	if !ok {
		return
	}
	userID, ok := helpers.ParseIDParam(c, "user_id")
	if !ok {
		return
	}

	if err := h.service.RemoveParticipant(c.Request.Context(), helpers.CurrentUserID(c), auctionID, userID); err != nil {
		helpers.RespondError(c, "RemoveParticipantHandler", err, map[string]any{
			"auction_id": auctionID,
			"user_id":    userID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "participant removed successfully")
	helpers.LogSuccess("RemoveParticipantHandler", "participant removed successfully", map[string]any{
		"auction_id": auctionID,
		"user_id":    userID,
	})
}

// JoinAuctionHandler handles POST /auctions/join
func (h *AuctionHandler) JoinAuctionHandler(c *gin.Context) {
	var req helpers.JoinAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "JoinAuctionHandler", err)
		return
	}

	userID := helpers.CurrentUserID(c)
	a, err := h.service.JoinAuction(c.Request.Context(), userID, req.EntryCode)
	if err != nil {
		helpers.RespondError(c, "JoinAuctionHandler", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, a, "joined auction successfully")
	helpers.LogSuccess("JoinAuctionHandler", "joined auction successfully", map[string]any{
		"auction_id": a.ID,
		"user_id":    userID,
	})
}

// UploadImageHandler handles POST /auctions/:auction_id/image
func (h *AuctionHandler) UploadImageHandler(c *gin.Context) {
	auctionID, ok := helpers.ParseIDParam(c, "auction_id")
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
		helpers.RespondError(c, "UploadImageHandler", err, map[string]any{"auction_id": auctionID})
		return
	}
	defer f.Close()

	a, err := h.service.UploadImage(c.Request.Context(), helpers.CurrentUserID(c), auctionID, f)
	if err != nil {
		helpers.RespondError(c, "UploadImageHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, a, "image uploaded successfully")
	helpers.LogSuccess("UploadImageHandler", "image uploaded successfully", map[string]any{
		"auction_id": auctionID,
		"image_url":  a.ImageURL,
	})
}
