package item

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/samber/lo"

	auction "auction-manager/internal/auctionService"
	"auction-manager/internal/auctionerrors"
	"auction-manager/internal/metrics"
	model "auction-manager/internal/models"
	notification "auction-manager/internal/notificationService"
	"auction-manager/internal/repository"
	"auction-manager/internal/storage"
	"auction-manager/utils"
)

const defaultBidIncrement int64 = 100

// CreateParams holds the data of a new item; prices are in cents
type CreateParams struct {
	Name          string
	Description   string
	StartingPrice int64
	BidIncrement  int64
	AuctionType   model.AuctionType
}

// UpdateParams holds the item fields to change; nil fields stay untouched.
// Prices and the auction type can only change while the item has no bids.
type UpdateParams struct {
	Name          *string
	Description   *string
	StartingPrice *int64
	BidIncrement  *int64
	AuctionType   *model.AuctionType
}

// ItemService defines the business logic of items, their sale and payment
type ItemService struct {
	repo          repository.AuctionDB
	notifier      notification.Notifier
	images        storage.ImageStore
	metrics       *metrics.Metrics
	maxImageBytes int64
	policy        *bluemonday.Policy
	now           func() time.Time
}

var _ auction.ItemSettler = (*ItemService)(nil)

// NewItemService creates a new ItemService instance
func NewItemService(repo repository.AuctionDB, notifier notification.Notifier, images storage.ImageStore, m *metrics.Metrics, maxImageBytes int64) *ItemService {
	return &ItemService{
		repo:          repo,
		notifier:      notifier,
		images:        images,
		metrics:       m,
		maxImageBytes: maxImageBytes,
		policy:        bluemonday.UGCPolicy(),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// AddItem adds an item to an auction that is not archived
func (s *ItemService) AddItem(ctx context.Context, adminID, auctionID uint, p CreateParams) (model.Item, error) {
	a, err := s.loadMutableAuction(ctx, adminID, auctionID)
	if err != nil {
		return model.Item{}, err
	}

	if p.AuctionType == "" {
		p.AuctionType = model.Silent
	}
	if p.BidIncrement == 0 {
		p.BidIncrement = defaultBidIncrement
	}
	name := strings.TrimSpace(p.Name)
	if err := validateItem(name, p.StartingPrice, p.BidIncrement, p.AuctionType); err != nil {
		return model.Item{}, err
	}

	item := model.Item{
		AuctionID:     a.ID,
		Name:          name,
		Description:   s.policy.Sanitize(strings.TrimSpace(p.Description)),
		StartingPrice: p.StartingPrice,
		CurrentPrice:  p.StartingPrice,
		BidIncrement:  p.BidIncrement,
		MinBid:        p.StartingPrice,
		AuctionType:   p.AuctionType,
	}
	if err := s.repo.CreateItem(ctx, &item); err != nil {
		return model.Item{}, fmt.Errorf("service: failed to add item to auction %d: %w", a.ID, err)
	}
	return item, nil
}

// UpdateItem edits an unsold item
func (s *ItemService) UpdateItem(ctx context.Context, adminID, itemID uint, p UpdateParams) (model.Item, error) {
	item, a, err := s.loadAdministered(ctx, adminID, itemID)
	if err != nil {
		return model.Item{}, err
	}
	switch {
	case a.Archived:
		return model.Item{}, fmt.Errorf("service: cannot update item %d: %w", item.ID, auctionerrors.ErrAuctionArchived)
	case item.IsSold:
		return model.Item{}, fmt.Errorf("service: cannot update item %d: %w", item.ID, auctionerrors.ErrItemSold)
	}

	fields := map[string]any{}
	name, start, increment, kind := item.Name, item.StartingPrice, item.BidIncrement, item.AuctionType
	if p.Name != nil {
		name = strings.TrimSpace(*p.Name)
		fields["name"] = name
	}
	if p.Description != nil {
		fields["description"] = s.policy.Sanitize(strings.TrimSpace(*p.Description))
	}

	if p.StartingPrice != nil || p.BidIncrement != nil || p.AuctionType != nil {
		bids, err := s.repo.CountBidsForItem(ctx, item.ID)
		if err != nil {
			return model.Item{}, fmt.Errorf("service: failed to count bids of item %d: %w", item.ID, err)
		}
		if bids > 0 {
			return model.Item{}, fmt.Errorf("service: cannot change pricing of item %d: %w", item.ID, auctionerrors.ErrItemHasBids)
		}
		if p.StartingPrice != nil {
			start = *p.StartingPrice
			fields["starting_price"] = start
			fields["current_price"] = start
			fields["min_bid"] = start
		}
		if p.BidIncrement != nil {
			increment = *p.BidIncrement
			fields["bid_increment"] = increment
		}
		if p.AuctionType != nil {
			kind = *p.AuctionType
			fields["auction_type"] = kind
		}
	}

	if len(fields) == 0 {
		return model.Item{}, fmt.Errorf("service: %w - nothing to update", auctionerrors.ErrInvalidInput)
	}
	if err := validateItem(name, start, increment, kind); err != nil {
		return model.Item{}, err
	}

	if err := s.repo.UpdateItem(ctx, item.ID, fields); err != nil {
		return model.Item{}, fmt.Errorf("service: failed to update item %d: %w", item.ID, err)
	}
	return s.reload(ctx, item.ID)
}

// DeleteItem removes an item that has not been sold
func (s *ItemService) DeleteItem(ctx context.Context, adminID, itemID uint) error {
	item, a, err := s.loadAdministered(ctx, adminID, itemID)
	if err != nil {
		return err
	}
	switch {
	case a.Archived:
		return fmt.Errorf("service: cannot delete item %d: %w", item.ID, auctionerrors.ErrAuctionArchived)
	case item.IsSold:
		return fmt.Errorf("service: cannot delete item %d: %w", item.ID, auctionerrors.ErrItemSold)
	}
	if err := s.repo.DeleteItem(ctx, item.ID); err != nil {
		return fmt.Errorf("service: failed to delete item %d: %w", item.ID, err)
	}
	return nil
}

// ListItems returns the items of an auction visible to userID
func (s *ItemService) ListItems(ctx context.Context, userID, auctionID uint) ([]model.Item, error) {
	a, _, err := auction.LoadVisible(ctx, s.repo, userID, auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	items, err := s.repo.ListItemsByAuction(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list items of auction %d: %w", a.ID, err)
	}
	return items, nil
}

// GetItem returns an item whose auction is visible to userID
func (s *ItemService) GetItem(ctx context.Context, userID, itemID uint) (model.Item, error) {
	item, _, _, err := s.loadVisible(ctx, userID, itemID)
	return item, err
}

// OpenItem starts bidding on an item of a published auction
func (s *ItemService) OpenItem(ctx context.Context, adminID, itemID uint) (model.Item, error) {
	item, a, err := s.loadAdministered(ctx, adminID, itemID)
	if err != nil {
		return model.Item{}, err
	}
	switch {
	case a.Archived:
		return model.Item{}, fmt.Errorf("service: cannot open item %d: %w", item.ID, auctionerrors.ErrAuctionArchived)
	case !a.Published:
		return model.Item{}, fmt.Errorf("service: cannot open item %d: %w", item.ID, auctionerrors.ErrAuctionNotPublished)
	case item.IsSold:
		return model.Item{}, fmt.Errorf("service: cannot open item %d: %w", item.ID, auctionerrors.ErrItemSold)
	case item.IsOpen:
		return item, nil
	}

	if err := s.repo.UpdateItem(ctx, item.ID, map[string]any{"is_open": true}); err != nil {
		return model.Item{}, fmt.Errorf("service: failed to open item %d: %w", item.ID, err)
	}

	participants, err := s.repo.ListParticipants(ctx, a.ID)
	if err != nil {
		utils.Warn("Failed to list participants for notification", map[string]any{"auction_id": a.ID, "error": err.Error()})
	} else if len(participants) > 0 {
		ids := lo.Map(participants, func(u model.User, _ int) uint { return u.ID })
		s.notifyAll(ctx, ids, model.Notification{
			AuctionID: lo.ToPtr(a.ID),
			ItemID:    lo.ToPtr(item.ID),
			Kind:      model.KindItemOpen,
			Text:      fmt.Sprintf("Bidding on %q is open.", item.Name),
		})
	}
	return s.reload(ctx, item.ID)
}

// CloseItem stops bidding on an item. A silent item goes to its highest
// bidder (earliest bid on ties); without bids, and for live items, it just closes.
func (s *ItemService) CloseItem(ctx context.Context, adminID, itemID uint) (model.Item, error) {
	item, a, err := s.loadAdministered(ctx, adminID, itemID)
	if err != nil {
		return model.Item{}, err
	}
	if item.IsSold {
		return model.Item{}, fmt.Errorf("service: cannot close item %d: %w", item.ID, auctionerrors.ErrItemSold)
	}
	if !item.IsOpen {
		return model.Item{}, fmt.Errorf("service: cannot close item %d: %w", item.ID, auctionerrors.ErrItemClosed)
	}
	return s.settle(ctx, a, item)
}

// SellItem records the outcome of a live item: the winner and the hammer price
func (s *ItemService) SellItem(ctx context.Context, adminID, itemID, winnerID uint, price int64) (model.Item, error) {
	item, a, err := s.loadAdministered(ctx, adminID, itemID)
	if err != nil {
		return model.Item{}, err
	}
	switch {
	case item.AuctionType != model.Live:
		return model.Item{}, fmt.Errorf("service: cannot sell item %d: %w", item.ID, auctionerrors.ErrWrongItemType)
	case a.Archived:
		return model.Item{}, fmt.Errorf("service: cannot sell item %d: %w", item.ID, auctionerrors.ErrAuctionArchived)
	case item.IsSold:
		return model.Item{}, fmt.Errorf("service: cannot sell item %d: %w", item.ID, auctionerrors.ErrItemSold)
	case price < item.StartingPrice:
		return model.Item{}, fmt.Errorf("service: %w - price must be at least %d", auctionerrors.ErrBidTooLow, item.StartingPrice)
	}

	ok, err := s.repo.IsParticipant(ctx, a.ID, winnerID)
	if err != nil {
		return model.Item{}, fmt.Errorf("service: failed to check participant %d: %w", winnerID, err)
	}
	if !ok {
		return model.Item{}, fmt.Errorf("service: cannot sell item %d to user %d: %w", item.ID, winnerID, auctionerrors.ErrNotParticipant)
	}

	sold, err := s.repo.SettleItem(ctx, item.ID, &model.Bid{BidderID: winnerID, Price: price, Timestamp: s.now()})
	if err != nil {
		return model.Item{}, fmt.Errorf("service: failed to sell item %d: %w", item.ID, err)
	}

	s.metrics.ItemSold(sold.AuctionType)
	s.notify(ctx, wonNotification(a, sold, winnerID))
	utils.Info("Item sold", map[string]any{"item_id": sold.ID, "winner_id": winnerID, "price": price})
	return sold, nil
}

// MarkPaid records that the winner paid for a sold item
func (s *ItemService) MarkPaid(ctx context.Context, adminID, itemID uint) (model.Item, error) {
	item, a, err := s.loadAdministered(ctx, adminID, itemID)
	if err != nil {
		return model.Item{}, err
	}

	paid, err := s.repo.MarkItemPaid(ctx, item.ID, s.now())
	if err != nil {
		return model.Item{}, fmt.Errorf("service: failed to mark item %d paid: %w", item.ID, err)
	}
	if paid.WinnerID != nil {
		s.notify(ctx, model.Notification{
			UserID:    *paid.WinnerID,
			AuctionID: lo.ToPtr(a.ID),
			ItemID:    lo.ToPtr(paid.ID),
			Kind:      model.KindPaid,
			Text:      fmt.Sprintf("Your payment for %q has been received.", paid.Name),
		})
	}
	return paid, nil
}

// UploadImage stores a picture of an item
func (s *ItemService) UploadImage(ctx context.Context, adminID, itemID uint, r io.Reader) (model.Item, error) {
	item, a, err := s.loadAdministered(ctx, adminID, itemID)
	if err != nil {
		return model.Item{}, err
	}
	if a.Archived {
		return model.Item{}, fmt.Errorf("service: auction %d: %w", a.ID, auctionerrors.ErrAuctionArchived)
	}

	img, err := storage.ReadImage(r, s.maxImageBytes)
	if err != nil {
		return model.Item{}, fmt.Errorf("service: %w", err)
	}
	key := fmt.Sprintf("items/%d/%s.%s", item.ID, utils.GenerateID(), img.Extension)
	url, err := s.images.Save(ctx, key, img.ContentType, img.Data)
	if err != nil {
		return model.Item{}, fmt.Errorf("service: failed to store image: %w", err)
	}

	if err := s.repo.UpdateItem(ctx, item.ID, map[string]any{"image_url": url}); err != nil {
		return model.Item{}, fmt.Errorf("service: failed to update item %d: %w", item.ID, err)
	}
	return s.reload(ctx, item.ID)
}

// SettleOpenItems closes every open, unsold item of an auction
func (s *ItemService) SettleOpenItems(ctx context.Context, auctionID uint) error {
	a, err := s.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return fmt.Errorf("service: %w", err)
	}
	items, err := s.repo.ListItemsByAuction(ctx, a.ID)
	if err != nil {
		return fmt.Errorf("service: failed to list items of auction %d: %w", a.ID, err)
	}

	var errs []error
	for _, item := range lo.Filter(items, func(it model.Item, _ int) bool { return it.IsOpen && !it.IsSold }) {
		if _, err := s.settle(ctx, a, item); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// settle closes an open item, selling a silent one to the winning bid
func (s *ItemService) settle(ctx context.Context, a model.Auction, item model.Item) (model.Item, error) {
	var winning *model.Bid
	if item.AuctionType == model.Silent {
		bid, err := s.repo.GetWinningBid(ctx, item.ID)
		switch {
		case err == nil:
			winning = &bid
		case !errors.Is(err, auctionerrors.ErrNoBids):
			return model.Item{}, fmt.Errorf("service: failed to find winning bid of item %d: %w", item.ID, err)
		}
	}

	settled, err := s.repo.SettleItem(ctx, item.ID, winning)
	if err != nil {
		return model.Item{}, fmt.Errorf("service: failed to close item %d: %w", item.ID, err)
	}
	if winning == nil {
		return settled, nil
	}

	s.metrics.ItemSold(settled.AuctionType)
	s.notify(ctx, wonNotification(a, settled, winning.BidderID))

	bidders, err := s.repo.GetBiddersForItem(ctx, item.ID)
	if err != nil {
		utils.Warn("Failed to list bidders for notification", map[string]any{"item_id": item.ID, "error": err.Error()})
		return settled, nil
	}
	losers := lo.Without(bidders, winning.BidderID)
	if len(losers) > 0 {
		s.notifyAll(ctx, losers, model.Notification{
			AuctionID: lo.ToPtr(a.ID),
			ItemID:    lo.ToPtr(item.ID),
			Kind:      model.KindLost,
			Text:      fmt.Sprintf("Bidding on %q has closed; another bid won.", item.Name),
		})
	}
	utils.Info("Item sold", map[string]any{"item_id": settled.ID, "winner_id": winning.BidderID, "price": winning.Price})
	return settled, nil
}

func wonNotification(a model.Auction, item model.Item, winnerID uint) model.Notification {
	return model.Notification{
		UserID:    winnerID,
		AuctionID: lo.ToPtr(a.ID),
		ItemID:    lo.ToPtr(item.ID),
		Kind:      model.KindWon,
		Text:      fmt.Sprintf("You won %q for %s.", item.Name, FormatCents(item.CurrentPrice)),
	}
}

// FormatCents renders an amount of cents as units with two decimals
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign, cents = "-", -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

func (s *ItemService) loadVisible(ctx context.Context, userID, itemID uint) (model.Item, model.Auction, auction.Role, error) {
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

func (s *ItemService) loadAdministered(ctx context.Context, adminID, itemID uint) (model.Item, model.Auction, error) {
	item, a, role, err := s.loadVisible(ctx, adminID, itemID)
	if err != nil {
		return model.Item{}, model.Auction{}, err
	}
	if role != auction.RoleAdmin {
		return model.Item{}, model.Auction{}, fmt.Errorf("service: item %d: %w", itemID, auctionerrors.ErrForbidden)
	}
	return item, a, nil
}

func (s *ItemService) loadMutableAuction(ctx context.Context, adminID, auctionID uint) (model.Auction, error) {
	a, err := auction.LoadAdministered(ctx, s.repo, adminID, auctionID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("service: %w", err)
	}
	if a.Archived {
		return model.Auction{}, fmt.Errorf("service: auction %d: %w", a.ID, auctionerrors.ErrAuctionArchived)
	}
	return a, nil
}

func (s *ItemService) reload(ctx context.Context, itemID uint) (model.Item, error) {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return model.Item{}, fmt.Errorf("service: %w", err)
	}
	return item, nil
}

func (s *ItemService) notify(ctx context.Context, n model.Notification) {
	if err := s.notifier.Notify(ctx, n); err != nil {
		utils.Warn("Failed to send notification", map[string]any{"user_id": n.UserID, "kind": n.Kind, "error": err.Error()})
	}
}

func (s *ItemService) notifyAll(ctx context.Context, userIDs []uint, n model.Notification) {
	if err := s.notifier.NotifyAll(ctx, userIDs, n); err != nil {
		utils.Warn("Failed to notify users", map[string]any{"kind": n.Kind, "error": err.Error()})
	}
}

func validateItem(name string, startingPrice, increment int64, kind model.AuctionType) error {
	switch {
	case utf8.RuneCountInString(name) < 1 || utf8.RuneCountInString(name) > 200:
		return fmt.Errorf("service: %w - name must be 1-200 characters", auctionerrors.ErrInvalidInput)
	case startingPrice < 0:
		return fmt.Errorf("service: %w - starting price cannot be negative", auctionerrors.ErrInvalidInput)
	case increment <= 0:
		return fmt.Errorf("service: %w - bid increment must be positive", auctionerrors.ErrInvalidInput)
	case !kind.Valid():
		return fmt.Errorf("service: %w - unknown auction type %q", auctionerrors.ErrInvalidInput, kind)
	}
	return nil
}
