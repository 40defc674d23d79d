package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	account "auction-manager/internal/accountService"
	model "auction-manager/internal/models"
	"auction-manager/services/helpers"
	"auction-manager/utils"
)

//go:generate mockgen -destination=mock_service.go -package=handler auction-manager/services/account/handler AccountServiceInterface

type AccountServiceInterface interface {
	Register(ctx context.Context, p account.RegisterParams) (model.User, error)
	Login(ctx context.Context, username, password string) (account.Session, error)
	GetUser(ctx context.Context, userID uint) (model.User, error)
	UpdateAccount(ctx context.Context, userID uint, p account.UpdateParams) (model.User, error)
	ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error
	GetBalance(ctx context.Context, userID uint) (model.BalanceSummary, error)
}

type AccountHandler struct {
	service AccountServiceInterface
}

func NewAccountHandler(service AccountServiceInterface) *AccountHandler {
	return &AccountHandler{service: service}
}

// RegisterHandler handles POST /auth/register
func (h *AccountHandler) RegisterHandler(c *gin.Context) {
	var req helpers.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RegisterHandler", err)
		return
	}

	user, err := h.service.Register(c.Request.Context(), account.RegisterParams{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		helpers.RespondError(c, "RegisterHandler", err, map[string]any{"username": req.Username})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, user, "account created successfully")
	helpers.LogSuccess("RegisterHandler", "account created successfully", map[string]any{
		"user_id":  user.ID,
		"username": user.Username,
	})
}

// LoginHandler handles POST /auth/login
func (h *AccountHandler) LoginHandler(c *gin.Context) {
	var req helpers.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "LoginHandler", err)
		return
	}

	session, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		helpers.RespondError(c, "LoginHandler", err, map[string]any{"username": req.Username})
		return
	}

	utils.JSONResponse(c, http.StatusOK, session, "logged in successfully")
	helpers.LogSuccess("LoginHandler", "logged in successfully", map[string]any{"user_id": session.User.ID})
}

// GetMeHandler handles GET /users/me
func (h *AccountHandler) GetMeHandler(c *gin.Context) {
	userID := helpers.CurrentUserID(c)
	user, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		helpers.RespondError(c, "GetMeHandler", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, user, "account retrieved successfully")
}

// UpdateMeHandler handles PATCH /users/me
func (h *AccountHandler) UpdateMeHandler(c *gin.Context) {
	var req helpers.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "UpdateMeHandler", err)
		return
	}

	userID := helpers.CurrentUserID(c)
	user, err := h.service.UpdateAccount(c.Request.Context(), userID, account.UpdateParams{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		helpers.RespondError(c, "UpdateMeHandler", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, user, "account updated successfully")
	helpers.LogSuccess("UpdateMeHandler", "account updated successfully", map[string]any{"user_id": userID})
}

// ChangePasswordHandler handles POST /users/me/password
func (h *AccountHandler) ChangePasswordHandler(c *gin.Context) {
	var req helpers.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "ChangePasswordHandler", err)
		return
	}

	userID := helpers.CurrentUserID(c)
	if err := h.service.ChangePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		helpers.RespondError(c, "ChangePasswordHandler", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "password changed successfully")
	helpers.LogSuccess("ChangePasswordHandler", "password changed successfully", map[string]any{"user_id": userID})
}

// GetBalanceHandler handles GET /users/me/balance
func (h *AccountHandler) GetBalanceHandler(c *gin.Context) {
	userID := helpers.CurrentUserID(c)
	summary, err := h.service.GetBalance(c.Request.Context(), userID)
	if err != nil {
		helpers.RespondError(c, "GetBalanceHandler", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, summary, "balance retrieved successfully")
}
