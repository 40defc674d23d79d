package auction

import (
	"context"
	"fmt"

	"auction-manager/internal/auctionerrors"
	model "auction-manager/internal/models"
	"auction-manager/internal/repository"
)

// Role is a user's relation to an auction
type Role int

const (
	RoleNone Role = iota
	RoleParticipant
	RoleAdmin
)

// ResolveRole reports whether userID administers or participates in a
func ResolveRole(ctx context.Context, repo repository.AuctionStore, userID uint, a model.Auction) (Role, error) {
	if a.IsAdmin(userID) {
		return RoleAdmin, nil
	}
	ok, err := repo.IsParticipant(ctx, a.ID, userID)
	if err != nil {
		return RoleNone, err
	}
	if ok {
		return RoleParticipant, nil
	}
	return RoleNone, nil
}

// LoadVisible returns an auction the user may see: admins always see their
// auctions, participants only once it is published. Everybody else gets
// ErrAuctionNotFound so that unpublished auctions do not leak.
func LoadVisible(ctx context.Context, repo repository.AuctionStore, userID, auctionID uint) (model.Auction, Role, error) {
	a, err := repo.GetAuction(ctx, auctionID)
	if err != nil {
		return model.Auction{}, RoleNone, err
	}
	role, err := ResolveRole(ctx, repo, userID, a)
	if err != nil {
		return model.Auction{}, RoleNone, err
	}
	if role == RoleAdmin || role == RoleParticipant && a.Published {
		return a, role, nil
	}
	return model.Auction{}, RoleNone, fmt.Errorf("auction %d: %w", auctionID, auctionerrors.ErrAuctionNotFound)
}

// LoadAdministered returns an auction only when userID is its admin.
// Participants who can see the auction get ErrForbidden.
func LoadAdministered(ctx context.Context, repo repository.AuctionStore, userID, auctionID uint) (model.Auction, error) {
	a, role, err := LoadVisible(ctx, repo, userID, auctionID)
	if err != nil {
		return model.Auction{}, err
	}
	if role != RoleAdmin {
		return model.Auction{}, fmt.Errorf("auction %d: %w", auctionID, auctionerrors.ErrForbidden)
	}
	return a, nil
}
