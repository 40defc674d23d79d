package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"auction-manager/internal/auctionerrors"
	model "auction-manager/internal/models"
)

// CreateItem inserts a new item
func (r *GormRepo) CreateItem(ctx context.Context, item *model.Item) error {
	return wrap("create item", r.db.WithContext(ctx).Create(item).Error)
}

// GetItem returns the item with the given id
func (r *GormRepo) GetItem(ctx context.Context, id uint) (model.Item, error) {
	var item model.Item
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return model.Item{}, wrap("get item", notFound(err, auctionerrors.ErrItemNotFound))
	}
	return item, nil
}

// ListItemsByAuction returns the items of an auction in creation order
func (r *GormRepo) ListItemsByAuction(ctx context.Context, auctionID uint) ([]model.Item, error) {
	items := []model.Item{}
	err := r.db.WithContext(ctx).Where("auction_id = ?", auctionID).Order("id ASC").Find(&items).Error
	return items, wrap("list items", err)
}

// UpdateItem applies the given column updates to an item
func (r *GormRepo) UpdateItem(ctx context.Context, id uint, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&model.Item{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return wrap("update item", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrap("update item", auctionerrors.ErrItemNotFound)
	}
	return nil
}

// DeleteItem removes an item and its bids
func (r *GormRepo) DeleteItem(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", id).Delete(&model.Bid{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Item{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return auctionerrors.ErrItemNotFound
		}
		return nil
	})
	return wrap("delete item", err)
}

// SettleItem closes an item. With a winning bid the item is sold: the bid is
// marked won (or recorded first when it has no id), the winner and final price
// are stored and the price is added to the winner's balance.
func (r *GormRepo) SettleItem(ctx context.Context, itemID uint, winning *model.Bid) (model.Item, error) {
	var item model.Item
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, itemID).Error; err != nil {
			return notFound(err, auctionerrors.ErrItemNotFound)
		}
		if item.IsSold {
			return auctionerrors.ErrItemSold
		}

		updates := map[string]any{"is_open": false}
		if winning != nil {
			winning.ItemID = itemID
			winning.Won = true
			if winning.ID == 0 {
				if winning.Timestamp.IsZero() {
					winning.Timestamp = time.Now().UTC()
				}
				if err := tx.Create(winning).Error; err != nil {
					return err
				}
			} else if err := tx.Model(&model.Bid{}).Where("id = ?", winning.ID).Update("won", true).Error; err != nil {
				return err
			}
			updates["is_sold"] = true
			updates["winner_id"] = winning.BidderID
			updates["current_price"] = winning.Price
		}

		res := tx.Model(&model.Item{}).Where("id = ? AND is_sold = ?", itemID, false).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return auctionerrors.ErrItemSold
		}

		if winning != nil {
			if err := tx.Model(&model.User{}).Where("id = ?", winning.BidderID).
				UpdateColumn("balance", gorm.Expr("balance + ?", winning.Price)).Error; err != nil {
				return err
			}
		}
		return tx.First(&item, itemID).Error
	})
	if err != nil {
		return model.Item{}, wrap("settle item", err)
	}
	return item, nil
}

// MarkItemPaid records payment for a sold item and settles the winner's balance
func (r *GormRepo) MarkItemPaid(ctx context.Context, itemID uint, at time.Time) (model.Item, error) {
	var item model.Item
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, itemID).Error; err != nil {
			return notFound(err, auctionerrors.ErrItemNotFound)
		}
		if !item.IsSold || item.WinnerID == nil {
			return auctionerrors.ErrItemNotSold
		}

		res := tx.Model(&model.Item{}).
			Where("id = ? AND is_paid = ?", itemID, false).
			Updates(map[string]any{"is_paid": true, "paid_time": at})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return auctionerrors.ErrItemPaid
		}

		if err := tx.Model(&model.User{}).Where("id = ?", *item.WinnerID).
			UpdateColumn("balance", gorm.Expr("balance - ?", item.CurrentPrice)).Error; err != nil {
			return err
		}
		return tx.First(&item, itemID).Error
	})
	if err != nil {
		return model.Item{}, wrap("mark item paid", err)
	}
	return item, nil
}

// ListItemsWonByUser returns the items sold to a user
func (r *GormRepo) ListItemsWonByUser(ctx context.Context, userID uint) ([]model.Item, error) {
	items := []model.Item{}
	err := r.db.WithContext(ctx).
		Where("winner_id = ? AND is_sold = ?", userID, true).
		Order("id ASC").
		Find(&items).Error
	return items, wrap("list won items", err)
}

// CountItemsWonInAuction counts the items of one auction sold to a user
func (r *GormRepo) CountItemsWonInAuction(ctx context.Context, auctionID, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Item{}).
		Where("auction_id = ? AND winner_id = ? AND is_sold = ?", auctionID, userID, true).
		Count(&count).Error
	return count, wrap("count won items", err)
}
