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

// RecordBidForItem records a user's bid on an item and moves the item's
// current price to it. The item row is updated with a compare-and-set on
// min_bid so that of two concurrent bids at the same price only one wins.
// The previous leader is read after the update holds the row, so it is the
// bid this one displaced; nil for the first bid.
func (r *GormRepo) RecordBidForItem(ctx context.Context, bid *model.Bid) (*model.Bid, error) {
	var previous *model.Bid
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Item{}).
			Where("id = ? AND is_open = ? AND is_sold = ? AND min_bid <= ?", bid.ItemID, true, false, bid.Price).
			Updates(map[string]any{
				"current_price": bid.Price,
				"min_bid":       gorm.Expr("? + bid_increment", bid.Price),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return rejectBid(tx, bid.ItemID)
		}

		leader, err := winningBid(tx, bid.ItemID)
		switch {
		case err == nil:
			previous = &leader
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		if bid.Timestamp.IsZero() {
			bid.Timestamp = time.Now().UTC()
		}
		return tx.Create(bid).Error
	})
	if err != nil {
		return nil, fmt.Errorf("record bid for item %d: %w", bid.ItemID, err)
	}
	return previous, nil
}

// rejectBid explains why the compare-and-set on an item matched no row
func rejectBid(tx *gorm.DB, itemID uint) error {
	var item model.Item
	if err := tx.First(&item, itemID).Error; err != nil {
		return notFound(err, auctionerrors.ErrItemNotFound)
	}
	switch {
	case item.IsSold:
		return auctionerrors.ErrItemSold
	case !item.IsOpen:
		return auctionerrors.ErrItemClosed
	default:
		return fmt.Errorf("minimum bid is %d: %w", item.MinBid, auctionerrors.ErrBidTooLow)
	}
}

// GetBid returns the bid with the given id
func (r *GormRepo) GetBid(ctx context.Context, id uint) (model.Bid, error) {
	var bid model.Bid
	if err := r.db.WithContext(ctx).First(&bid, id).Error; err != nil {
		return model.Bid{}, wrap("get bid", notFound(err, auctionerrors.ErrBidNotFound))
	}
	return bid, nil
}

// RemoveBid deletes a bid and recomputes the item's current price from the
// remaining bids, falling back to the starting price.
func (r *GormRepo) RemoveBid(ctx context.Context, bidID uint) (model.Item, error) {
	var item model.Item
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var bid model.Bid
		if err := tx.First(&bid, bidID).Error; err != nil {
			return notFound(err, auctionerrors.ErrBidNotFound)
		}
		if err := tx.First(&item, bid.ItemID).Error; err != nil {
			return notFound(err, auctionerrors.ErrItemNotFound)
		}
		if item.IsSold {
			return auctionerrors.ErrItemSold
		}
		if err := tx.Delete(&model.Bid{}, bidID).Error; err != nil {
			return err
		}

		if err := reprice(tx, item); err != nil {
			return err
		}
		return tx.First(&item, item.ID).Error
	})
	if err != nil {
		return model.Item{}, fmt.Errorf("remove bid %d: %w", bidID, err)
	}
	return item, nil
}

// GetBidsByItem returns all bids for an item, oldest first
func (r *GormRepo) GetBidsByItem(ctx context.Context, itemID uint) ([]model.Bid, error) {
	var bids []model.Bid
	if err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("timestamp ASC").Order("id ASC").
		Find(&bids).Error; err != nil {
		return nil, fmt.Errorf("get bids for item %d: %w", itemID, err)
	}
	if len(bids) == 0 {
		return nil, fmt.Errorf("get bids for item %d: %w", itemID, auctionerrors.ErrNoBids)
	}
	return bids, nil
}

// GetWinningBid returns the highest bid for an item; ties go to the earliest bid
func (r *GormRepo) GetWinningBid(ctx context.Context, itemID uint) (model.Bid, error) {
	bid, err := winningBid(r.db.WithContext(ctx), itemID)
	if err != nil {
		return model.Bid{}, fmt.Errorf("get winning bid for item %d: %w", itemID, notFound(err, auctionerrors.ErrNoBids))
	}
	return bid, nil
}

// GetBidsByUser returns every bid a user placed, newest first
func (r *GormRepo) GetBidsByUser(ctx context.Context, userID uint) ([]model.Bid, error) {
	var bids []model.Bid
	if err := r.db.WithContext(ctx).
		Where("bidder_id = ?", userID).
		Order("timestamp DESC").Order("id DESC").
		Find(&bids).Error; err != nil {
		return nil, fmt.Errorf("get bids for user %d: %w", userID, err)
	}
	if len(bids) == 0 {
		return nil, fmt.Errorf("get bids for user %d: %w", userID, auctionerrors.ErrUserNoBids)
	}
	return bids, nil
}

// GetItemsByUser returns all items a user has bid on
func (r *GormRepo) GetItemsByUser(ctx context.Context, userID uint) ([]model.Item, error) {
	db := r.db.WithContext(ctx)
	var items []model.Item
	if err := db.
		Where("id IN (?)", db.Model(&model.Bid{}).Select("item_id").Where("bidder_id = ?", userID)).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("get items for user %d: %w", userID, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("get items for user %d: %w", userID, auctionerrors.ErrUserNoBids)
	}
	return items, nil
}

// GetBiddersForItem returns the distinct users that bid on an item
func (r *GormRepo) GetBiddersForItem(ctx context.Context, itemID uint) ([]uint, error) {
	var bidders []uint
	err := r.db.WithContext(ctx).Model(&model.Bid{}).
		Where("item_id = ?", itemID).
		Distinct().Order("bidder_id ASC").
		Pluck("bidder_id", &bidders).Error
	return bidders, wrap("get bidders for item", err)
}

// CountBidsForItem counts the bids placed on an item
func (r *GormRepo) CountBidsForItem(ctx context.Context, itemID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Bid{}).Where("item_id = ?", itemID).Count(&count).Error
	return count, wrap("count bids for item", err)
}

// winningBid returns gorm.ErrRecordNotFound when the item has no bids
func winningBid(db *gorm.DB, itemID uint) (model.Bid, error) {
	var bid model.Bid
	res := db.Where("item_id = ?", itemID).
		Order("price DESC").Order("timestamp ASC").Order("id ASC").
		Limit(1).
		Find(&bid)
	if res.Error != nil {
		return model.Bid{}, res.Error
	}
	if res.RowsAffected == 0 {
		return model.Bid{}, gorm.ErrRecordNotFound
	}
	return bid, nil
}

// reprice moves an item's current price and minimum bid back to its leading
// bid, or to the starting price once no bids remain
func reprice(tx *gorm.DB, item model.Item) error {
	current, minBid := item.StartingPrice, item.StartingPrice
	leader, err := winningBid(tx, item.ID)
	switch {
	case err == nil:
		current, minBid = leader.Price, leader.Price+item.BidIncrement
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}
	return tx.Model(&model.Item{}).Where("id = ?", item.ID).
		Updates(map[string]any{"current_price": current, "min_bid": minBid}).Error
}
