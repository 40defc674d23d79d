package bidding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"

	auction "auction-manager/internal/auctionService"
	"auction-manager/internal/auctionerrors"
	"auction-manager/internal/metrics"
	model "auction-manager/internal/models"
	notification "auction-manager/internal/notificationService"
	"auction-manager/internal/repository"
	"auction-manager/utils"
)

// BiddingService defines the business logic for auction bidding
type BiddingService struct {
	repo     repository.AuctionDB
	notifier notification.Notifier
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewBiddingService creates a new BiddingService instance
func NewBiddingService(repo repository.AuctionDB, notifier notification.Notifier, m *metrics.Metrics) *BiddingService {
	return &BiddingService{
		repo:     repo,
		notifier: notifier,
		metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// PlaceBid validates and records a user's bid for an item. When the bid
// takes the lead from another user, that user is told they were outbid.
func (s *BiddingService) PlaceBid(ctx context.Context, userID, itemID uint, price int64) (model.Bid, error) {
	item, a, err := s.validateBid(ctx, userID, itemID, price)
	if err != nil {
		s.metrics.BidRejected(rejectReason(err))
		return model.Bid{}, err
	}

	bid := model.Bid{
		ItemID:    item.ID,
		BidderID:  userID,
		Price:     price,
		Timestamp: s.now(),
	}

	previous, err := s.repo.RecordBidForItem(ctx, &bid)
	if err != nil {
		s.metrics.BidRejected(rejectReason(err))
		return model.Bid{}, fmt.Errorf("service: failed to record bid for item %d by user %d: %w", itemID, userID, err)
	}
	s.metrics.BidPlaced()

	if previous != nil && previous.BidderID != userID {
		n := model.Notification{
			UserID:    previous.BidderID,
			AuctionID: lo.ToPtr(a.ID),
			ItemID:    lo.ToPtr(item.ID),
			Kind:      model.KindOutbid,
			Text:      fmt.Sprintf("You have been outbid on %q.", item.Name),
		}
		if err := s.notifier.Notify(ctx, n); err != nil {
			utils.Warn("Failed to send outbid notification", map[string]any{
				"item_id": item.ID,
				"user_id": previous.BidderID,
				"error":   err.Error(),
			})
		}
	}

	return bid, nil
}

// validateBid checks input validity and business rules for bidding
func (s *BiddingService) validateBid(ctx context.Context, userID, itemID uint, price int64) (model.Item, model.Auction, error) {
	if itemID == 0 || userID == 0 {
		return model.Item{}, model.Auction{}, fmt.Errorf("service: %w - missing itemID or userID", auctionerrors.ErrInvalidBid)
	}
	if price <= 0 {
		return model.Item{}, model.Auction{}, fmt.Errorf("service: %w - non-positive bid amount", auctionerrors.ErrInvalidBid)
	}

	item, a, role, err := s.loadVisible(ctx, userID, itemID)
	if err != nil {
		return model.Item{}, model.Auction{}, err
	}

	switch {
	case role == auction.RoleAdmin:
		return model.Item{}, model.Auction{}, fmt.Errorf("service: %w - the admin cannot bid in their own auction", auctionerrors.ErrForbidden)
	case a.Archived:
		return model.Item{}, model.Auction{}, fmt.Errorf("service: %w", auctionerrors.ErrAuctionArchived)
	case !a.OpenedForBidding:
		return model.Item{}, model.Auction{}, fmt.Errorf("service: %w", auctionerrors.ErrAuctionNotOpen)
	case item.AuctionType != model.Silent:
		return model.Item{}, model.Auction{}, fmt.Errorf("service: %w - live items are sold by the admin", auctionerrors.ErrWrongItemType)
	case item.IsSold:
		return model.Item{}, model.Auction{}, fmt.Errorf("service: %w", auctionerrors.ErrItemSold)
	case !item.IsOpen:
		return model.Item{}, model.Auction{}, fmt.Errorf("service: %w", auctionerrors.ErrItemClosed)
	case price < item.MinBid:
		return model.Item{}, model.Auction{}, fmt.Errorf("service: %w - minimum bid is %d", auctionerrors.ErrBidTooLow, item.MinBid)
	}

	return item, a, nil
}

// RemoveBid withdraws a bid. Bidders may remove their own bids and admins
// any bid of their auction, as long as the item is still open.
func (s *BiddingService) RemoveBid(ctx context.Context, userID, bidID uint) (model.Item, error) {
	bid, err := s.repo.GetBid(ctx, bidID)
	if err != nil {
		return model.Item{}, fmt.Errorf("service: failed to get bid %d: %w", bidID, err)
	}
	item, _, role, err := s.loadVisible(ctx, userID, bid.ItemID)
	if err != nil {
		if errors.Is(err, auctionerrors.ErrItemNotFound) {
			return model.Item{}, fmt.Errorf("service: bid %d: %w", bidID, auctionerrors.ErrBidNotFound)
		}
		return model.Item{}, err
	}

	switch {
	case bid.BidderID != userID && role != auction.RoleAdmin:
		return model.Item{}, fmt.Errorf("service: bid %d: %w", bidID, auctionerrors.ErrForbidden)
	case item.IsSold:
		return model.Item{}, fmt.Errorf("service: %w", auctionerrors.ErrItemSold)
	case !item.IsOpen:
		return model.Item{}, fmt.Errorf("service: %w", auctionerrors.ErrItemClosed)
	}

	updated, err := s.repo.RemoveBid(ctx, bidID)
	if err != nil {
		return model.Item{}, fmt.Errorf("service: failed to remove bid %d: %w", bidID, err)
	}
	return updated, nil
}

// GetBidsForItem returns all bids for a specific item
func (s *BiddingService) GetBidsForItem(ctx context.Context, userID, itemID uint) ([]model.Bid, error) {
	if itemID == 0 {
		return nil, fmt.Errorf("service: %w - empty item ID", auctionerrors.ErrInvalidBid)
	}
	if _, _, _, err := s.loadVisible(ctx, userID, itemID); err != nil {
		return nil, err
	}

	bids, err := s.repo.GetBidsByItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for item %d: %w", itemID, err)
	}

	return bids, nil
}

// GetWinningBid returns the highest bid for a specific item
func (s *BiddingService) GetWinningBid(ctx context.Context, userID, itemID uint) (model.Bid, error) {
	if itemID == 0 {
		return model.Bid{}, fmt.Errorf("service: %w - empty item ID", auctionerrors.ErrInvalidBid)
	}
	if _, _, _, err := s.loadVisible(ctx, userID, itemID); err != nil {
		return model.Bid{}, err
	}

	winningBid, err := s.repo.GetWinningBid(ctx, itemID)
	if err != nil {
		return model.Bid{}, fmt.Errorf("service: failed to get winning bid for item %d: %w", itemID, err)
	}

	return winningBid, nil
}

// GetItemsByUser returns all items a user has placed bids on
func (s *BiddingService) GetItemsByUser(ctx context.Context, userID uint) ([]model.Item, error) {
	if userID == 0 {
		return nil, fmt.Errorf("service: %w - empty user ID", auctionerrors.ErrInvalidBid)
	}

	items, err := s.repo.GetItemsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get items for user %d: %w", userID, err)
	}

	return items, nil
}

// GetBidsByUser returns every bid a user placed, newest first
func (s *BiddingService) GetBidsByUser(ctx context.Context, userID uint) ([]model.Bid, error) {
	if userID == 0 {
		return nil, fmt.Errorf("service: %w - empty user ID", auctionerrors.ErrInvalidBid)
	}

	bids, err := s.repo.GetBidsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for user %d: %w", userID, err)
	}

	return bids, nil
}

// GetWonItems returns the items sold to a user
func (s *BiddingService) GetWonItems(ctx context.Context, userID uint) ([]model.Item, error) {
	items, err := s.repo.ListItemsWonByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get won items for user %d: %w", userID, err)
	}
	return items, nil
}

// loadVisible loads an item together with its auction, hiding items of
// auctions the user cannot see
func (s *BiddingService) loadVisible(ctx context.Context, userID, itemID uint) (model.Item, model.Auction, auction.Role, error) {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return model.Item{}, model.Auction{}, auction.RoleNone, fmt.Errorf("service: %w", err)
	}
	a, role, err := auction.LoadVisible(ctx, s.repo, userID, item.AuctionID)
	if err != nil {
		if errors.Is(err, auctionerrors.ErrAuctionNotFound) {
			return model.Item{}, model.Auction{}, auction.RoleNone, fmt.Errorf("service: item %d: %w", itemID, auctionerrors.ErrItemNotFound)
		}
		return model.Item{}, model.Auction{}, auction.RoleNone, fmt.Errorf("service: %w", err)
	}
	return item, a, role, nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		return "too_low"
	case errors.Is(err, auctionerrors.ErrItemClosed), errors.Is(err, auctionerrors.ErrItemSold),
		errors.Is(err, auctionerrors.ErrAuctionNotOpen), errors.Is(err, auctionerrors.ErrAuctionArchived):
		return "closed"
	case errors.Is(err, auctionerrors.ErrForbidden), errors.Is(err, auctionerrors.ErrItemNotFound):
		return "forbidden"
	case errors.Is(err, auctionerrors.ErrInvalidBid), errors.Is(err, auctionerrors.ErrWrongItemType):
		return "invalid"
	default:
		return "error"
	}
}
