package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"auction-manager/internal/auctionerrors"
	model "auction-manager/internal/models"
)

// CreateUser inserts a new account; usernames are unique
func (r *GormRepo) CreateUser(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return wrap("create user "+user.Username, auctionerrors.ErrUsernameTaken)
		}
		return wrap("create user "+user.Username, err)
	}
	return nil
}

// GetUser returns the account with the given id
func (r *GormRepo) GetUser(ctx context.Context, id uint) (model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return model.User{}, wrap("get user", notFound(err, auctionerrors.ErrUserNotFound))
	}
	return user, nil
}

// GetUserByUsername returns the account with the given username
func (r *GormRepo) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).Take(&user).Error; err != nil {
		return model.User{}, wrap("get user "+username, notFound(err, auctionerrors.ErrUserNotFound))
	}
	return user, nil
}

// UpdateUser applies the given column updates to an account
func (r *GormRepo) UpdateUser(ctx context.Context, id uint, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return wrap("update user", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrap("update user", auctionerrors.ErrUserNotFound)
	}
	return nil
}

// GetBalanceSummary aggregates the items a user won and paid for
func (r *GormRepo) GetBalanceSummary(ctx context.Context, userID uint) (model.BalanceSummary, error) {
	user, err := r.GetUser(ctx, userID)
	if err != nil {
		return model.BalanceSummary{}, err
	}

	var won []model.Item
	if err := r.db.WithContext(ctx).
		Where("winner_id = ? AND is_sold = ?", userID, true).
		Find(&won).Error; err != nil {
		return model.BalanceSummary{}, wrap("balance summary", err)
	}

	summary := model.BalanceSummary{Balance: user.Balance, WonItems: len(won)}
	for _, item := range won {
		summary.TotalWon += item.CurrentPrice
		if item.IsPaid {
			summary.PaidItems++
			summary.TotalPaid += item.CurrentPrice
		}
	}
	return summary, nil
}
