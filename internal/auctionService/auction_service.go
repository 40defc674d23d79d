//go:generate mockgen -destination=mock_settler.go -package=auction auction-manager/internal/auctionService ItemSettler

package auction

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/samber/lo"

	"auction-manager/internal/auctionerrors"
	model "auction-manager/internal/models"
	notification "auction-manager/internal/notificationService"
	"auction-manager/internal/repository"
	"auction-manager/internal/storage"
	"auction-manager/utils"
)

// ItemSettler closes every open item of an auction, selling silent items
// to their highest bidder
type ItemSettler interface {
	SettleOpenItems(ctx context.Context, auctionID uint) error
}

// CreateParams holds the data of a new auction
type CreateParams struct {
	Name        string
	Description string
}

// UpdateParams holds the auction fields to change; nil fields stay untouched
type UpdateParams struct {
	Name        *string
	Description *string
}

// AuctionService defines the business logic of auctions and their participants
type AuctionService struct {
	repo          repository.AuctionDB
	notifier      notification.Notifier
	settler       ItemSettler
	images        storage.ImageStore
	maxImageBytes int64
	policy        *bluemonday.Policy
}

// NewAuctionService creates a new AuctionService instance
func NewAuctionService(repo repository.AuctionDB, notifier notification.Notifier, settler ItemSettler, images storage.ImageStore, maxImageBytes int64) *AuctionService {
	return &AuctionService{
		repo:          repo,
		notifier:      notifier,
		settler:       settler,
		images:        images,
		maxImageBytes: maxImageBytes,
		policy:        bluemonday.UGCPolicy(),
	}
}

// CreateAuction creates an unpublished auction administered by adminID
func (s *AuctionService) CreateAuction(ctx context.Context, adminID uint, p CreateParams) (model.Auction, error) {
	name := strings.TrimSpace(p.Name)
	if err := validateName(name); err != nil {
		return model.Auction{}, err
	}

	a := model.Auction{
		Name:        name,
		Description: s.policy.Sanitize(strings.TrimSpace(p.Description)),
		AdminID:     adminID,
		EntryCode:   utils.GenerateEntryCode(),
	}
	if err := s.repo.CreateAuction(ctx, &a); err != nil {
		return model.Auction{}, fmt.Errorf("service: failed to create auction: %w", err)
	}

	utils.Info("Auction created", map[string]any{"auction_id": a.ID, "admin_id": adminID})
	return a, nil
}

// GetAuction returns an auction visible to userID
func (s *AuctionService) GetAuction(ctx context.Context, userID, auctionID uint) (model.Auction, error) {
	a, role, err := LoadVisible(ctx, s.repo, userID, auctionID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("service: %w", err)
	}
	if role != RoleAdmin {
		a.EntryCode = ""
	}
	return a, nil
}

// ListAuctions returns the auctions a user administers and the published ones they joined
func (s *AuctionService) ListAuctions(ctx context.Context, userID uint) (model.AuctionList, error) {
	administered, err := s.repo.ListAuctionsByAdmin(ctx, userID)
	if err != nil {
		return model.AuctionList{}, fmt.Errorf("service: failed to list auctions of user %d: %w", userID, err)
	}
	joined, err := s.repo.ListAuctionsByParticipant(ctx, userID)
	if err != nil {
		return model.AuctionList{}, fmt.Errorf("service: failed to list auctions of user %d: %w", userID, err)
	}

	joined = lo.FilterMap(joined, func(a model.Auction, _ int) (model.Auction, bool) {
		a.EntryCode = ""
		return a, a.Published
	})
	return model.AuctionList{Administered: administered, Joined: joined}, nil
}

// UpdateAuction renames or re-describes an auction that is not archived
func (s *AuctionService) UpdateAuction(ctx context.Context, adminID, auctionID uint, p UpdateParams) (model.Auction, error) {
	a, err := s.loadMutable(ctx, adminID, auctionID)
	if err != nil {
		return model.Auction{}, err
	}

	fields := map[string]any{}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if err := validateName(name); err != nil {
			return model.Auction{}, err
		}
		fields["name"] = name
	}
	if p.Description != nil {
		fields["description"] = s.policy.Sanitize(strings.TrimSpace(*p.Description))
	}
	if len(fields) == 0 {
		return model.Auction{}, fmt.Errorf("service: %w - nothing to update", auctionerrors.ErrInvalidInput)
	}

	if err := s.repo.UpdateAuction(ctx, a.ID, fields); err != nil {
		return model.Auction{}, fmt.Errorf("service: failed to update auction %d: %w", a.ID, err)
	}
	return s.reload(ctx, a.ID)
}

// DeleteAuction removes an auction with all its items and bids. Auctions
// open for bidding, or with sold items not yet paid, cannot be deleted.
func (s *AuctionService) DeleteAuction(ctx context.Context, adminID, auctionID uint) error {
	a, err := LoadAdministered(ctx, s.repo, adminID, auctionID)
	if err != nil {
		return fmt.Errorf("service: %w", err)
	}
	if a.OpenedForBidding {
		return fmt.Errorf("service: cannot delete auction %d: %w", a.ID, auctionerrors.ErrAuctionOpen)
	}
	if err := s.repo.DeleteAuction(ctx, a.ID); err != nil {
		return fmt.Errorf("service: failed to delete auction %d: %w", a.ID, err)
	}

	utils.Info("Auction deleted", map[string]any{"auction_id": a.ID, "admin_id": adminID})
	return nil
}

// PublishAuction makes an auction visible to its participants and tells them so
func (s *AuctionService) PublishAuction(ctx context.Context, adminID, auctionID uint) (model.Auction, error) {
	a, err := s.loadMutable(ctx, adminID, auctionID)
	if err != nil {
		return model.Auction{}, err
	}
	if a.Published {
		return a, nil
	}

	if err := s.repo.UpdateAuction(ctx, a.ID, map[string]any{"published": true}); err != nil {
		return model.Auction{}, fmt.Errorf("service: failed to publish auction %d: %w", a.ID, err)
	}
	s.notifyParticipants(ctx, a, model.KindPublished, fmt.Sprintf("Auction %q has been published.", a.Name))
	return s.reload(ctx, a.ID)
}

// OpenBidding lets participants bid on the open items of a published auction
func (s *AuctionService) OpenBidding(ctx context.Context, adminID, auctionID uint) (model.Auction, error) {
	a, err := s.loadMutable(ctx, adminID, auctionID)
	if err != nil {
		return model.Auction{}, err
	}
	if !a.Published {
		return model.Auction{}, fmt.Errorf("service: cannot open auction %d: %w", a.ID, auctionerrors.ErrAuctionNotPublished)
	}

	if err := s.repo.UpdateAuction(ctx, a.ID, map[string]any{"opened_for_bidding": true}); err != nil {
		return model.Auction{}, fmt.Errorf("service: failed to open auction %d: %w", a.ID, err)
	}
	return s.reload(ctx, a.ID)
}

// CloseBidding stops bidding on the whole auction; items keep their state
func (s *AuctionService) CloseBidding(ctx context.Context, adminID, auctionID uint) (model.Auction, error) {
	a, err := s.loadMutable(ctx, adminID, auctionID)
	if err != nil {
		return model.Auction{}, err
	}

	if err := s.repo.UpdateAuction(ctx, a.ID, map[string]any{"opened_for_bidding": false}); err != nil {
		return model.Auction{}, fmt.Errorf("service: failed to close auction %d: %w", a.ID, err)
	}
	return s.reload(ctx, a.ID)
}

// ArchiveAuction settles every open item and freezes the auction
func (s *AuctionService) ArchiveAuction(ctx context.Context, adminID, auctionID uint) (model.Auction, error) {
	a, err := s.loadMutable(ctx, adminID, auctionID)
	if err != nil {
		return model.Auction{}, err
	}

	if err := s.settler.SettleOpenItems(ctx, a.ID); err != nil {
		return model.Auction{}, fmt.Errorf("service: failed to settle items of auction %d: %w", a.ID, err)
	}
	if err := s.repo.UpdateAuction(ctx, a.ID, map[string]any{"archived": true, "opened_for_bidding": false}); err != nil {
		return model.Auction{}, fmt.Errorf("service: failed to archive auction %d: %w", a.ID, err)
	}

	s.notifyParticipants(ctx, a, model.KindArchived, fmt.Sprintf("Auction %q has ended.", a.Name))
	utils.Info("Auction archived", map[string]any{"auction_id": a.ID})
	return s.reload(ctx, a.ID)
}

// AddParticipant invites a user by username
func (s *AuctionService) AddParticipant(ctx context.Context, adminID, auctionID uint, username string) (model.User, error) {
	a, err := s.loadMutable(ctx, adminID, auctionID)
	if err != nil {
		return model.User{}, err
	}

	user, err := s.repo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return model.User{}, fmt.Errorf("service: failed to find user %s: %w", username, err)
	}
	if user.ID == a.AdminID {
		return model.User{}, fmt.Errorf("service: %w - the admin cannot participate in their own auction", auctionerrors.ErrInvalidInput)
	}
	if err := s.repo.AddParticipant(ctx, a.ID, user.ID); err != nil {
		return model.User{}, fmt.Errorf("service: failed to add %s to auction %d: %w", username, a.ID, err)
	}

	s.notify(ctx, model.Notification{
		UserID:    user.ID,
		AuctionID: lo.ToPtr(a.ID),
		Kind:      model.KindInvited,
		Text:      fmt.Sprintf("You have been added to auction %q.", a.Name),
	})
	return user, nil
}

// RemoveParticipant takes a user out of an auction unless they already won an
// item in it. Their bids on unsold items are withdrawn.
func (s *AuctionService) RemoveParticipant(ctx context.Context, adminID, auctionID, userID uint) error {
	a, err := s.loadMutable(ctx, adminID, auctionID)
	if err != nil {
		return err
	}

	won, err := s.repo.CountItemsWonInAuction(ctx, a.ID, userID)
	if err != nil {
		return fmt.Errorf("service: failed to check items won by user %d: %w", userID, err)
	}
	if won > 0 {
		return fmt.Errorf("service: cannot remove user %d: %w", userID, auctionerrors.ErrParticipantWon)
	}
	if err := s.repo.RemoveParticipant(ctx, a.ID, userID); err != nil {
		return fmt.Errorf("service: failed to remove user %d from auction %d: %w", userID, a.ID, err)
	}

	s.notify(ctx, model.Notification{
		UserID:    userID,
		AuctionID: lo.ToPtr(a.ID),
		Kind:      model.KindRemoved,
		Text:      fmt.Sprintf("You have been removed from auction %q.", a.Name),
	})
	return nil
}

// JoinAuction adds the caller to the auction an entry code belongs to
func (s *AuctionService) JoinAuction(ctx context.Context, userID uint, code string) (model.Auction, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return model.Auction{}, fmt.Errorf("service: %w - empty entry code", auctionerrors.ErrInvalidInput)
	}

	a, err := s.repo.GetAuctionByEntryCode(ctx, code)
	if err != nil {
		return model.Auction{}, fmt.Errorf("service: failed to join auction: %w", err)
	}
	if a.IsAdmin(userID) {
		return model.Auction{}, fmt.Errorf("service: %w - the admin cannot participate in their own auction", auctionerrors.ErrInvalidInput)
	}
	if a.Archived {
		return model.Auction{}, fmt.Errorf("service: cannot join auction %d: %w", a.ID, auctionerrors.ErrAuctionArchived)
	}
	if err := s.repo.AddParticipant(ctx, a.ID, userID); err != nil {
		return model.Auction{}, fmt.Errorf("service: failed to join auction %d: %w", a.ID, err)
	}

	a.EntryCode = ""
	return a, nil
}

// ListParticipants returns the users taking part in an auction
func (s *AuctionService) ListParticipants(ctx context.Context, userID, auctionID uint) ([]model.User, error) {
	a, _, err := LoadVisible(ctx, s.repo, userID, auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	users, err := s.repo.ListParticipants(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list participants of auction %d: %w", a.ID, err)
	}
	return users, nil
}

// UploadImage stores a cover picture for the auction
func (s *AuctionService) UploadImage(ctx context.Context, adminID, auctionID uint, r io.Reader) (model.Auction, error) {
	a, err := s.loadMutable(ctx, adminID, auctionID)
	if err != nil {
		return model.Auction{}, err
	}

	img, err := storage.ReadImage(r, s.maxImageBytes)
	if err != nil {
		return model.Auction{}, fmt.Errorf("service: %w", err)
	}
	key := fmt.Sprintf("auctions/%d/%s.%s", a.ID, utils.GenerateID(), img.Extension)
	url, err := s.images.Save(ctx, key, img.ContentType, img.Data)
	if err != nil {
		return model.Auction{}, fmt.Errorf("service: failed to store image: %w", err)
	}

	if err := s.repo.UpdateAuction(ctx, a.ID, map[string]any{"image_url": url}); err != nil {
		return model.Auction{}, fmt.Errorf("service: failed to update auction %d: %w", a.ID, err)
	}
	return s.reload(ctx, a.ID)
}

// loadMutable returns an auction administered by adminID that is not archived
func (s *AuctionService) loadMutable(ctx context.Context, adminID, auctionID uint) (model.Auction, error) {
	a, err := LoadAdministered(ctx, s.repo, adminID, auctionID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("service: %w", err)
	}
	if a.Archived {
		return model.Auction{}, fmt.Errorf("service: auction %d: %w", a.ID, auctionerrors.ErrAuctionArchived)
	}
	return a, nil
}

func (s *AuctionService) reload(ctx context.Context, auctionID uint) (model.Auction, error) {
	a, err := s.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("service: %w", err)
	}
	return a, nil
}

func (s *AuctionService) notifyParticipants(ctx context.Context, a model.Auction, kind model.NotificationKind, text string) {
	users, err := s.repo.ListParticipants(ctx, a.ID)
	if err != nil {
		utils.Warn("Failed to list participants for notification", map[string]any{"auction_id": a.ID, "error": err.Error()})
		return
	}
	ids := lo.Map(users, func(u model.User, _ int) uint { return u.ID })
	if len(ids) == 0 {
		return
	}
	if err := s.notifier.NotifyAll(ctx, ids, model.Notification{AuctionID: lo.ToPtr(a.ID), Kind: kind, Text: text}); err != nil {
		utils.Warn("Failed to notify participants", map[string]any{"auction_id": a.ID, "kind": kind, "error": err.Error()})
	}
}

func (s *AuctionService) notify(ctx context.Context, n model.Notification) {
	if err := s.notifier.Notify(ctx, n); err != nil {
		utils.Warn("Failed to send notification", map[string]any{"user_id": n.UserID, "kind": n.Kind, "error": err.Error()})
	}
}

func validateName(name string) error {
	if n := utf8.RuneCountInString(name); n < 1 || n > 200 {
		return fmt.Errorf("service: %w - name must be 1-200 characters", auctionerrors.ErrInvalidInput)
	}
	return nil
}
