//go:generate mockgen -destination=mock_repository.go -package=repository auction-manager/internal/repository AuctionDB

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	model "auction-manager/internal/models"
)

// UserStore persists accounts and their balances
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id uint) (model.User, error)
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
	UpdateUser(ctx context.Context, id uint, fields map[string]any) error
	GetBalanceSummary(ctx context.Context, userID uint) (model.BalanceSummary, error)
}

// AuctionStore persists auctions and their participants
type AuctionStore interface {
	CreateAuction(ctx context.Context, auction *model.Auction) error
	GetAuction(ctx context.Context, id uint) (model.Auction, error)
	GetAuctionByEntryCode(ctx context.Context, code string) (model.Auction, error)
	ListAuctionsByAdmin(ctx context.Context, userID uint) ([]model.Auction, error)
	ListAuctionsByParticipant(ctx context.Context, userID uint) ([]model.Auction, error)
	UpdateAuction(ctx context.Context, id uint, fields map[string]any) error
	DeleteAuction(ctx context.Context, id uint) error
	AddParticipant(ctx context.Context, auctionID, userID uint) error
	RemoveParticipant(ctx context.Context, auctionID, userID uint) error
	IsParticipant(ctx context.Context, auctionID, userID uint) (bool, error)
	ListParticipants(ctx context.Context, auctionID uint) ([]model.User, error)
}

// ItemStore persists items, their settlement and payment
type ItemStore interface {
	CreateItem(ctx context.Context, item *model.Item) error
	GetItem(ctx context.Context, id uint) (model.Item, error)
	ListItemsByAuction(ctx context.Context, auctionID uint) ([]model.Item, error)
	UpdateItem(ctx context.Context, id uint, fields map[string]any) error
	DeleteItem(ctx context.Context, id uint) error
	SettleItem(ctx context.Context, itemID uint, winning *model.Bid) (model.Item, error)
	MarkItemPaid(ctx context.Context, itemID uint, at time.Time) (model.Item, error)
	ListItemsWonByUser(ctx context.Context, userID uint) ([]model.Item, error)
	CountItemsWonInAuction(ctx context.Context, auctionID, userID uint) (int64, error)
}

// BidStore persists bids and keeps the denormalised item price in step
type BidStore interface {
	RecordBidForItem(ctx context.Context, bid *model.Bid) (*model.Bid, error)
	GetBid(ctx context.Context, id uint) (model.Bid, error)
	RemoveBid(ctx context.Context, bidID uint) (model.Item, error)
	GetBidsByItem(ctx context.Context, itemID uint) ([]model.Bid, error)
	GetWinningBid(ctx context.Context, itemID uint) (model.Bid, error)
	GetBidsByUser(ctx context.Context, userID uint) ([]model.Bid, error)
	GetItemsByUser(ctx context.Context, userID uint) ([]model.Item, error)
	GetBiddersForItem(ctx context.Context, itemID uint) ([]uint, error)
	CountBidsForItem(ctx context.Context, itemID uint) (int64, error)
}

// NotificationStore persists per-user notifications
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *model.Notification) error
	ListNotifications(ctx context.Context, userID uint, unreadOnly bool) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, id uint) error
	MarkAllNotificationsRead(ctx context.Context, userID uint) (int64, error)
	DeleteNotification(ctx context.Context, userID, id uint) error
}

// AuctionDB is the full storage interface of the auction system
type AuctionDB interface {
	UserStore
	AuctionStore
	ItemStore
	BidStore
	NotificationStore
}

// GormRepo implements AuctionDB on top of a relational database through gorm
type GormRepo struct {
	db *gorm.DB
}

var _ AuctionDB = (*GormRepo)(nil)

// NewGormRepo creates a new repository on an already migrated database
func NewGormRepo(db *gorm.DB) *GormRepo {
	return &GormRepo{db: db}
}

// DB exposes the underlying handle, e.g. for health checks
func (r *GormRepo) DB() *gorm.DB {
	return r.db
}

// notFound replaces gorm's record-not-found error with the domain sentinel
func notFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// wrap annotates err with the failing operation, keeping it matchable with errors.Is
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
