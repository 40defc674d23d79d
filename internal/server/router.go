package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"auction-manager/internal/metrics"
	accounthandler "auction-manager/services/account/handler"
	auctionhandler "auction-manager/services/auction/handler"
	biddinghandler "auction-manager/services/bidding/handler"
	itemhandler "auction-manager/services/item/handler"
	notificationhandler "auction-manager/services/notification/handler"
	"auction-manager/utils"
)

// Dependencies are the services and infrastructure the router serves
type Dependencies struct {
	Accounts      accounthandler.AccountServiceInterface
	Auctions      auctionhandler.AuctionServiceInterface
	Items         itemhandler.ItemServiceInterface
	Bidding       biddinghandler.BiddingServiceInterface
	Notifications notificationhandler.NotificationServiceInterface

	Tokens    TokenParser
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	Ping      func(ctx context.Context) error
	KeepAlive time.Duration
}

// SetupRouter configures all Gin routes for the application
func SetupRouter(d Dependencies) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery()) // recover from panics
	router.Use(RequestIDMiddleware)
	router.Use(RequestLoggerMiddleware) // custom request logging
	router.Use(d.Metrics.Handler())

	router.GET("/healthz", healthHandler(d.Ping))
	if d.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	accountHandler := accounthandler.NewAccountHandler(d.Accounts)
	auctionHandler := auctionhandler.NewAuctionHandler(d.Auctions)
	itemHandler := itemhandler.NewItemHandler(d.Items)
	biddingHandler := biddinghandler.NewBiddingHandler(d.Bidding)
	notificationHandler := notificationhandler.NewNotificationHandler(d.Notifications, d.KeepAlive)

	auth := router.Group("/auth")
	{
		auth.POST("/register", accountHandler.RegisterHandler)
		auth.POST("/login", accountHandler.LoginHandler)
	}

	protected := router.Group("", AuthMiddleware(d.Tokens))

	me := protected.Group("/users/me")
	{
		me.GET("", accountHandler.GetMeHandler)
		me.PATCH("", accountHandler.UpdateMeHandler)
		me.POST("/password", accountHandler.ChangePasswordHandler)
		me.GET("/balance", accountHandler.GetBalanceHandler)
		me.GET("/items", biddingHandler.GetItemsByUserHandler)
		me.GET("/bids", biddingHandler.GetBidsByUserHandler)
		me.GET("/won", biddingHandler.GetWonItemsHandler)
	}

	auctions := protected.Group("/auctions")
	{
		auctions.GET("", auctionHandler.ListAuctionsHandler)
		auctions.POST("", auctionHandler.CreateAuctionHandler)
		auctions.POST("/join", auctionHandler.JoinAuctionHandler)
		auctions.GET("/:auction_id", auctionHandler.GetAuctionHandler)
		auctions.PATCH("/:auction_id", auctionHandler.UpdateAuctionHandler)
		auctions.DELETE("/:auction_id", auctionHandler.DeleteAuctionHandler)
		auctions.POST("/:auction_id/publish", auctionHandler.PublishAuctionHandler())
		auctions.POST("/:auction_id/open", auctionHandler.OpenBiddingHandler())
		auctions.POST("/:auction_id/close", auctionHandler.CloseBiddingHandler())
		auctions.POST("/:auction_id/archive", auctionHandler.ArchiveAuctionHandler())
		auctions.POST("/:auction_id/image", auctionHandler.UploadImageHandler)
		auctions.GET("/:auction_id/participants", auctionHandler.ListParticipantsHandler)
		auctions.POST("/:auction_id/participants", auctionHandler.AddParticipantHandler)
		auctions.DELETE("/:auction_id/participants/:user_id", auctionHandler.RemoveParticipantHandler)
		auctions.GET("/:auction_id/items", itemHandler.ListItemsHandler)
		auctions.POST("/:auction_id/items", itemHandler.AddItemHandler)
	}

	items := protected.Group("/items")
	{
		items.GET("/:item_id", itemHandler.GetItemHandler)
		items.PATCH("/:item_id", itemHandler.UpdateItemHandler)
		items.DELETE("/:item_id", itemHandler.DeleteItemHandler)
		items.POST("/:item_id/open", itemHandler.OpenItemHandler())
		items.POST("/:item_id/close", itemHandler.CloseItemHandler())
		items.POST("/:item_id/sell", itemHandler.SellItemHandler)
		items.POST("/:item_id/paid", itemHandler.MarkPaidHandler())
		items.POST("/:item_id/image", itemHandler.UploadImageHandler)
		items.GET("/:item_id/bids", biddingHandler.GetBidsByItemHandler)
		items.POST("/:item_id/bids", biddingHandler.RecordBidHandler)
		items.GET("/:item_id/winning", biddingHandler.GetWinningBidHandler)
	}

	bids := protected.Group("/bids")
	{
		bids.DELETE("/:bid_id", biddingHandler.RemoveBidHandler)
	}

	notifications := protected.Group("/notifications")
	{
		notifications.GET("", notificationHandler.ListHandler)
		notifications.GET("/stream", notificationHandler.StreamHandler)
		notifications.POST("/read", notificationHandler.MarkAllReadHandler)
		notifications.POST("/:id/read", notificationHandler.MarkReadHandler)
		notifications.DELETE("/:id", notificationHandler.DeleteHandler)
	}

	return router
}

// healthHandler handles GET /healthz
func healthHandler(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				utils.JSONError(c, http.StatusServiceUnavailable, err, "database unavailable")
				utils.Error("healthHandler: database ping failed", map[string]any{"error": err.Error()})
				return
			}
		}
		utils.JSONResponse(c, http.StatusOK, gin.H{"database": "ok"}, "healthy")
	}
}
