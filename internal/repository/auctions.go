package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"auction-manager/internal/auctionerrors"
	model "auction-manager/internal/models"
)

// CreateAuction inserts a new auction
func (r *GormRepo) CreateAuction(ctx context.Context, auction *model.Auction) error {
	return wrap("create auction", r.db.WithContext(ctx).Create(auction).Error)
}

// GetAuction returns the auction with the given id
func (r *GormRepo) GetAuction(ctx context.Context, id uint) (model.Auction, error) {
	var auction model.Auction
	if err := r.db.WithContext(ctx).First(&auction, id).Error; err != nil {
		return model.Auction{}, wrap("get auction", notFound(err, auctionerrors.ErrAuctionNotFound))
	}
	return auction, nil
}

// GetAuctionByEntryCode returns the auction a join code belongs to
func (r *GormRepo) GetAuctionByEntryCode(ctx context.Context, code string) (model.Auction, error) {
	var auction model.Auction
	if err := r.db.WithContext(ctx).Where("entry_code = ?", code).Take(&auction).Error; err != nil {
		return model.Auction{}, wrap("get auction by code", notFound(err, auctionerrors.ErrAuctionNotFound))
	}
	return auction, nil
}

// ListAuctionsByAdmin returns the auctions a user administers, newest first
func (r *GormRepo) ListAuctionsByAdmin(ctx context.Context, userID uint) ([]model.Auction, error) {
	auctions := []model.Auction{}
	err := r.db.WithContext(ctx).
		Where("admin_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&auctions).Error
	return auctions, wrap("list administered auctions", err)
}

// ListAuctionsByParticipant returns the auctions a user joined, newest first
func (r *GormRepo) ListAuctionsByParticipant(ctx context.Context, userID uint) ([]model.Auction, error) {
	auctions := []model.Auction{}
	err := r.db.WithContext(ctx).
		Joins("JOIN auction_participants ON auction_participants.auction_id = auctions.id").
		Where("auction_participants.user_id = ?", userID).
		Order("auctions.created_at DESC").Order("auctions.id DESC").
		Find(&auctions).Error
	return auctions, wrap("list joined auctions", err)
}

// UpdateAuction applies the given column updates to an auction
func (r *GormRepo) UpdateAuction(ctx context.Context, id uint, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&model.Auction{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return wrap("update auction", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrap("update auction", auctionerrors.ErrAuctionNotFound)
	}
	return nil
}

// DeleteAuction removes an auction together with its items, bids and
// participants. Auctions with sold items still awaiting payment are kept,
// since the winners' balances refer to them.
func (r *GormRepo) DeleteAuction(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var unpaid int64
		if err := tx.Model(&model.Item{}).
			Where("auction_id = ? AND is_sold = ? AND is_paid = ?", id, true, false).
			Count(&unpaid).Error; err != nil {
			return err
		}
		if unpaid > 0 {
			return fmt.Errorf("%d sold items: %w", unpaid, auctionerrors.ErrItemsUnpaid)
		}

		itemIDs := tx.Model(&model.Item{}).Select("id").Where("auction_id = ?", id)
		if err := tx.Where("item_id IN (?)", itemIDs).Delete(&model.Bid{}).Error; err != nil {
			return err
		}
		if err := tx.Where("auction_id = ?", id).Delete(&model.Item{}).Error; err != nil {
			return err
		}
		if err := tx.Where("auction_id = ?", id).Delete(&model.Participant{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Auction{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return auctionerrors.ErrAuctionNotFound
		}
		return nil
	})
	return wrap("delete auction", err)
}

// AddParticipant links a user to an auction
func (r *GormRepo) AddParticipant(ctx context.Context, auctionID, userID uint) error {
	p := model.Participant{AuctionID: auctionID, UserID: userID, JoinedAt: time.Now().UTC()}
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return wrap("add participant", auctionerrors.ErrAlreadyParticipant)
		}
		return wrap("add participant", err)
	}
	return nil
}

// RemoveParticipant unlinks a user from an auction and withdraws the user's
// bids on its unsold items, repricing each item they were placed on
func (r *GormRepo) RemoveParticipant(ctx context.Context, auctionID, userID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("auction_id = ? AND user_id = ?", auctionID, userID).Delete(&model.Participant{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return auctionerrors.ErrNotParticipant
		}

		var items []model.Item
		if err := tx.
			Where("auction_id = ? AND is_sold = ?", auctionID, false).
			Where("id IN (?)", tx.Model(&model.Bid{}).Select("item_id").Where("bidder_id = ?", userID)).
			Find(&items).Error; err != nil {
			return err
		}
		for _, item := range items {
			if err := tx.Where("item_id = ? AND bidder_id = ?", item.ID, userID).Delete(&model.Bid{}).Error; err != nil {
				return err
			}
			if err := reprice(tx, item); err != nil {
				return err
			}
		}
		return nil
	})
	return wrap("remove participant", err)
}

// IsParticipant reports whether the user participates in the auction
func (r *GormRepo) IsParticipant(ctx context.Context, auctionID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Participant{}).
		Where("auction_id = ? AND user_id = ?", auctionID, userID).
		Count(&count).Error
	if err != nil {
		return false, wrap("check participant", err)
	}
	return count > 0, nil
}

// ListParticipants returns the users taking part in an auction in joining order
func (r *GormRepo) ListParticipants(ctx context.Context, auctionID uint) ([]model.User, error) {
	users := []model.User{}
	err := r.db.WithContext(ctx).
		Joins("JOIN auction_participants ON auction_participants.user_id = users.id").
		Where("auction_participants.auction_id = ?", auctionID).
		Order("auction_participants.joined_at ASC").Order("users.id ASC").
		Find(&users).Error
	return users, wrap("list participants", err)
}
