package auction

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"auction-manager/internal/auctionerrors"
	"auction-manager/internal/config"
	model "auction-manager/internal/models"
	notification "auction-manager/internal/notificationService"
	"auction-manager/internal/repository"
	"auction-manager/internal/storage"
)

type fixture struct {
	repo     *repository.GormRepo
	notifier *notification.MockNotifier
	settler  *MockItemSettler
	service  *AuctionService
	admin    model.User
	bob      model.User
	carol    model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := repository.Open(config.DBConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString()),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	ctrl := gomock.NewController(t)
	images, err := storage.NewLocalStore(t.TempDir(), "/media")
	require.NoError(t, err)

	f := &fixture{
		repo:     repository.NewGormRepo(db),
		notifier: notification.NewMockNotifier(ctrl),
		settler:  NewMockItemSettler(ctrl),
	}
	f.service = NewAuctionService(f.repo, f.notifier, f.settler, images, 1<<10)
	for _, u := range []*model.User{&f.admin, &f.bob, &f.carol} {
		*u = model.User{Username: uuid.NewString()[:12], PasswordHash: "x", IsActive: true}
		require.NoError(t, f.repo.CreateUser(context.Background(), u))
	}
	return f
}

func (f *fixture) create(t *testing.T) model.Auction {
	t.Helper()
	a, err := f.service.CreateAuction(context.Background(), f.admin.ID, CreateParams{
		Name:        "Spring gala",
		Description: `<p>Lots of <b>art</b></p><script>alert(1)</script>`,
	})
	require.NoError(t, err)
	return a
}

func TestAuctionService_CreateAuction(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	a := f.create(t)
	require.NotZero(t, a.ID)
	require.Len(t, a.EntryCode, 8)
	require.Equal(t, strings.ToUpper(a.EntryCode), a.EntryCode)
	require.Equal(t, "<p>Lots of <b>art</b></p>", a.Description)
	require.False(t, a.Published)

	_, err := f.service.CreateAuction(context.Background(), f.admin.ID, CreateParams{Name: "  "})
	require.ErrorIs(t, err, auctionerrors.ErrInvalidInput)
	_, err = f.service.CreateAuction(context.Background(), f.admin.ID, CreateParams{Name: strings.Repeat("x", 201)})
	require.ErrorIs(t, err, auctionerrors.ErrInvalidInput)
}

func TestAuctionService_Visibility(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	a := f.create(t)

	f.notifier.EXPECT().Notify(ctx, gomock.Any()).Return(nil)
	_, err := f.service.AddParticipant(ctx, f.admin.ID, a.ID, f.bob.Username)
	require.NoError(t, err)

	got, err := f.service.GetAuction(ctx, f.admin.ID, a.ID)
	require.NoError(t, err)
	require.NotEmpty(t, got.EntryCode)

	// unpublished auctions are hidden from participants and strangers
	_, err = f.service.GetAuction(ctx, f.bob.ID, a.ID)
	require.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)
	_, err = f.service.GetAuction(ctx, f.carol.ID, a.ID)
	require.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)

	list, err := f.service.ListAuctions(ctx, f.bob.ID)
	require.NoError(t, err)
	require.Empty(t, list.Joined)

	f.notifier.EXPECT().NotifyAll(ctx, []uint{f.bob.ID}, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ []uint, n model.Notification) error {
			require.Equal(t, model.KindPublished, n.Kind)
			return nil
		})
	_, err = f.service.PublishAuction(ctx, f.admin.ID, a.ID)
	require.NoError(t, err)

	got, err = f.service.GetAuction(ctx, f.bob.ID, a.ID)
	require.NoError(t, err)
	require.Empty(t, got.EntryCode)

	_, err = f.service.GetAuction(ctx, f.carol.ID, a.ID)
	require.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)

	list, err = f.service.ListAuctions(ctx, f.bob.ID)
	require.NoError(t, err)
	require.Len(t, list.Joined, 1)
	require.Empty(t, list.Administered)

	// participants cannot administer
	_, err = f.service.UpdateAuction(ctx, f.bob.ID, a.ID, UpdateParams{Name: lo.ToPtr("mine")})
	require.ErrorIs(t, err, auctionerrors.ErrForbidden)
	// publishing twice is a no-op
	_, err = f.service.PublishAuction(ctx, f.admin.ID, a.ID)
	require.NoError(t, err)
}

func TestAuctionService_Lifecycle(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	a := f.create(t)

	_, err := f.service.OpenBidding(ctx, f.admin.ID, a.ID)
	require.ErrorIs(t, err, auctionerrors.ErrAuctionNotPublished)

	_, err = f.service.PublishAuction(ctx, f.admin.ID, a.ID)
	require.NoError(t, err)

	opened, err := f.service.OpenBidding(ctx, f.admin.ID, a.ID)
	require.NoError(t, err)
	require.True(t, opened.OpenedForBidding)

	require.ErrorIs(t, f.service.DeleteAuction(ctx, f.admin.ID, a.ID), auctionerrors.ErrAuctionOpen)

	closed, err := f.service.CloseBidding(ctx, f.admin.ID, a.ID)
	require.NoError(t, err)
	require.False(t, closed.OpenedForBidding)

	f.settler.EXPECT().SettleOpenItems(ctx, a.ID).Return(nil)
	archived, err := f.service.ArchiveAuction(ctx, f.admin.ID, a.ID)
	require.NoError(t, err)
	require.True(t, archived.Archived)

	_, err = f.service.UpdateAuction(ctx, f.admin.ID, a.ID, UpdateParams{Name: lo.ToPtr("Later")})
	require.ErrorIs(t, err, auctionerrors.ErrAuctionArchived)
	_, err = f.service.JoinAuction(ctx, f.carol.ID, archived.EntryCode)
	require.ErrorIs(t, err, auctionerrors.ErrAuctionArchived)

	require.NoError(t, f.service.DeleteAuction(ctx, f.admin.ID, a.ID))
	_, err = f.service.GetAuction(ctx, f.admin.ID, a.ID)
	require.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)
}

func TestAuctionService_ArchiveSettleFails(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	a := f.create(t)

	f.settler.EXPECT().SettleOpenItems(ctx, a.ID).Return(errors.New("boom"))
	_, err := f.service.ArchiveAuction(ctx, f.admin.ID, a.ID)
	require.Error(t, err)

	got, err := f.service.GetAuction(ctx, f.admin.ID, a.ID)
	require.NoError(t, err)
	require.False(t, got.Archived)
}

func TestAuctionService_Participants(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	a := f.create(t)

	_, err := f.service.AddParticipant(ctx, f.admin.ID, a.ID, f.admin.Username)
	require.ErrorIs(t, err, auctionerrors.ErrInvalidInput)
	_, err = f.service.AddParticipant(ctx, f.admin.ID, a.ID, "nobody")
	require.ErrorIs(t, err, auctionerrors.ErrUserNotFound)

	f.notifier.EXPECT().Notify(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, n model.Notification) error {
		require.Equal(t, f.bob.ID, n.UserID)
		require.Equal(t, model.KindInvited, n.Kind)
		return nil
	})
	_, err = f.service.AddParticipant(ctx, f.admin.ID, a.ID, f.bob.Username)
	require.NoError(t, err)
	_, err = f.service.AddParticipant(ctx, f.admin.ID, a.ID, f.bob.Username)
	require.ErrorIs(t, err, auctionerrors.ErrAlreadyParticipant)

	_, err = f.service.JoinAuction(ctx, f.admin.ID, a.EntryCode)
	require.ErrorIs(t, err, auctionerrors.ErrInvalidInput)
	_, err = f.service.JoinAuction(ctx, f.carol.ID, "nope")
	require.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)
	joined, err := f.service.JoinAuction(ctx, f.carol.ID, strings.ToLower(a.EntryCode))
	require.NoError(t, err)
	require.Equal(t, a.ID, joined.ID)

	users, err := f.service.ListParticipants(ctx, f.admin.ID, a.ID)
	require.NoError(t, err)
	require.Len(t, users, 2)

	// carol wins an item and can no longer be removed
	item := model.Item{AuctionID: a.ID, Name: "Vase", StartingPrice: 100, CurrentPrice: 100, MinBid: 100, BidIncrement: 100, AuctionType: model.Live}
	require.NoError(t, f.repo.CreateItem(ctx, &item))
	_, err = f.repo.SettleItem(ctx, item.ID, &model.Bid{BidderID: f.carol.ID, Price: 300})
	require.NoError(t, err)
	require.ErrorIs(t, f.service.RemoveParticipant(ctx, f.admin.ID, a.ID, f.carol.ID), auctionerrors.ErrParticipantWon)

	f.notifier.EXPECT().Notify(ctx, gomock.Any()).Return(errors.New("ignored"))
	require.NoError(t, f.service.RemoveParticipant(ctx, f.admin.ID, a.ID, f.bob.ID))
	require.ErrorIs(t, f.service.RemoveParticipant(ctx, f.admin.ID, a.ID, f.bob.ID), auctionerrors.ErrNotParticipant)
}

func TestAuctionService_RemoveParticipant_WithdrawsBids(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	a := f.create(t)
	require.NoError(t, f.repo.AddParticipant(ctx, a.ID, f.bob.ID))
	require.NoError(t, f.repo.AddParticipant(ctx, a.ID, f.carol.ID))

	item := model.Item{AuctionID: a.ID, Name: "Vase", StartingPrice: 100, CurrentPrice: 100, MinBid: 100, BidIncrement: 100, AuctionType: model.Silent, IsOpen: true}
	require.NoError(t, f.repo.CreateItem(ctx, &item))
	_, err := f.repo.RecordBidForItem(ctx, &model.Bid{ItemID: item.ID, BidderID: f.carol.ID, Price: 100})
	require.NoError(t, err)
	_, err = f.repo.RecordBidForItem(ctx, &model.Bid{ItemID: item.ID, BidderID: f.bob.ID, Price: 500})
	require.NoError(t, err)

	f.notifier.EXPECT().Notify(ctx, gomock.Any()).Return(nil)
	require.NoError(t, f.service.RemoveParticipant(ctx, f.admin.ID, a.ID, f.bob.ID))

	leader, err := f.repo.GetWinningBid(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, f.carol.ID, leader.BidderID)
	got, err := f.repo.GetItem(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, int64(100), got.CurrentPrice)
	require.Equal(t, int64(200), got.MinBid)
}

func TestAuctionService_DeleteAuction_UnpaidItems(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	a := f.create(t)

	item := model.Item{AuctionID: a.ID, Name: "Vase", StartingPrice: 100, CurrentPrice: 100, MinBid: 100, BidIncrement: 100, AuctionType: model.Live}
	require.NoError(t, f.repo.CreateItem(ctx, &item))
	_, err := f.repo.SettleItem(ctx, item.ID, &model.Bid{BidderID: f.carol.ID, Price: 1500})
	require.NoError(t, err)

	require.ErrorIs(t, f.service.DeleteAuction(ctx, f.admin.ID, a.ID), auctionerrors.ErrItemsUnpaid)

	_, err = f.repo.MarkItemPaid(ctx, item.ID, time.Now())
	require.NoError(t, err)
	require.NoError(t, f.service.DeleteAuction(ctx, f.admin.ID, a.ID))

	summary, err := f.repo.GetBalanceSummary(ctx, f.carol.ID)
	require.NoError(t, err)
	require.Zero(t, summary.Balance)
}

func TestAuctionService_UploadImage(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	a := f.create(t)

	png := []byte("\x89PNG\x0D\x0A\x1A\x0A\x00\x00\x00\x0DIHDR")
	got, err := f.service.UploadImage(ctx, f.admin.ID, a.ID, bytes.NewReader(png))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(got.ImageURL, fmt.Sprintf("/media/auctions/%d/", a.ID)))
	require.True(t, strings.HasSuffix(got.ImageURL, ".png"))

	_, err = f.service.UploadImage(ctx, f.admin.ID, a.ID, strings.NewReader("plain text"))
	require.ErrorIs(t, err, auctionerrors.ErrInvalidImage)

	_, err = f.service.UploadImage(ctx, f.admin.ID, a.ID, bytes.NewReader(bytes.Repeat(png, 200)))
	require.ErrorIs(t, err, auctionerrors.ErrInvalidImage)
}
