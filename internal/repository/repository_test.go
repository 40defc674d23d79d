package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"auction-manager/internal/auctionerrors"
	"auction-manager/internal/config"
	model "auction-manager/internal/models"
)

// newTestRepo opens a private in-memory sqlite database
func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()
	db, err := Open(config.DBConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString()),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewGormRepo(db)
}

func seedUser(t *testing.T, r *GormRepo, username string) model.User {
	t.Helper()
	u := model.User{Username: username, PasswordHash: "x", FirstName: "F", LastName: "L", IsActive: true}
	require.NoError(t, r.CreateUser(context.Background(), &u))
	return u
}

func seedAuction(t *testing.T, r *GormRepo, admin model.User, participants ...model.User) model.Auction {
	t.Helper()
	a := model.Auction{Name: "Charity", AdminID: admin.ID, EntryCode: uuid.NewString()[:8], Published: true, OpenedForBidding: true}
	require.NoError(t, r.CreateAuction(context.Background(), &a))
	for _, p := range participants {
		require.NoError(t, r.AddParticipant(context.Background(), a.ID, p.ID))
	}
	return a
}

func seedItem(t *testing.T, r *GormRepo, auction model.Auction, start int64) model.Item {
	t.Helper()
	it := model.Item{
		AuctionID:     auction.ID,
		Name:          "Painting",
		StartingPrice: start,
		CurrentPrice:  start,
		BidIncrement:  100,
		MinBid:        start,
		AuctionType:   model.Silent,
		IsOpen:        true,
	}
	require.NoError(t, r.CreateItem(context.Background(), &it))
	return it
}

func TestGormRepo_Users(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	u := seedUser(t, r, "alice")
	require.NotZero(t, u.ID)

	t.Run("duplicate_username", func(t *testing.T) {
		dup := model.User{Username: "alice", PasswordHash: "y"}
		err := r.CreateUser(ctx, &dup)
		require.ErrorIs(t, err, auctionerrors.ErrUsernameTaken)
	})

	t.Run("get_by_username", func(t *testing.T) {
		got, err := r.GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
	})

	t.Run("missing_user", func(t *testing.T) {
		_, err := r.GetUser(ctx, 9999)
		require.ErrorIs(t, err, auctionerrors.ErrUserNotFound)
		err = r.UpdateUser(ctx, 9999, map[string]any{"email": "x@y.z"})
		require.ErrorIs(t, err, auctionerrors.ErrUserNotFound)
	})

	t.Run("update", func(t *testing.T) {
		require.NoError(t, r.UpdateUser(ctx, u.ID, map[string]any{"email": "alice@example.com"}))
		got, err := r.GetUser(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, "alice@example.com", got.Email)
	})
}

func TestGormRepo_Participants(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	admin := seedUser(t, r, "admin")
	bob := seedUser(t, r, "bob")
	carol := seedUser(t, r, "carol")
	a := seedAuction(t, r, admin, bob)

	require.ErrorIs(t, r.AddParticipant(ctx, a.ID, bob.ID), auctionerrors.ErrAlreadyParticipant)
	require.NoError(t, r.AddParticipant(ctx, a.ID, carol.ID))

	users, err := r.ListParticipants(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, users, 2)

	ok, err := r.IsParticipant(ctx, a.ID, admin.ID)
	require.NoError(t, err)
	require.False(t, ok)

	joined, err := r.ListAuctionsByParticipant(ctx, carol.ID)
	require.NoError(t, err)
	require.Len(t, joined, 1)
	require.Equal(t, a.ID, joined[0].ID)

	administered, err := r.ListAuctionsByAdmin(ctx, admin.ID)
	require.NoError(t, err)
	require.Len(t, administered, 1)

	require.NoError(t, r.RemoveParticipant(ctx, a.ID, carol.ID))
	require.ErrorIs(t, r.RemoveParticipant(ctx, a.ID, carol.ID), auctionerrors.ErrNotParticipant)

	byCode, err := r.GetAuctionByEntryCode(ctx, a.EntryCode)
	require.NoError(t, err)
	require.Equal(t, a.ID, byCode.ID)
}

func TestGormRepo_RecordBidForItem(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	admin := seedUser(t, r, "admin")
	bob := seedUser(t, r, "bob")
	carol := seedUser(t, r, "carol")
	a := seedAuction(t, r, admin, bob, carol)
	item := seedItem(t, r, a, 1000)

	// first bid may equal the starting price
	prev, err := r.RecordBidForItem(ctx, &model.Bid{ItemID: item.ID, BidderID: bob.ID, Price: 1000, Timestamp: time.Now()})
	require.NoError(t, err)
	require.Nil(t, prev)

	// the next one must clear the increment
	_, err = r.RecordBidForItem(ctx, &model.Bid{ItemID: item.ID, BidderID: carol.ID, Price: 1050, Timestamp: time.Now()})
	require.ErrorIs(t, err, auctionerrors.ErrBidTooLow)

	prev, err = r.RecordBidForItem(ctx, &model.Bid{ItemID: item.ID, BidderID: carol.ID, Price: 1100, Timestamp: time.Now()})
	require.NoError(t, err)
	require.NotNil(t, prev)
	require.Equal(t, bob.ID, prev.BidderID)

	got, err := r.GetItem(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1100), got.CurrentPrice)
	require.Equal(t, int64(1200), got.MinBid)

	_, err = r.RecordBidForItem(ctx, &model.Bid{ItemID: 9999, BidderID: carol.ID, Price: 5000, Timestamp: time.Now()})
	require.ErrorIs(t, err, auctionerrors.ErrItemNotFound)

	require.NoError(t, r.UpdateItem(ctx, item.ID, map[string]any{"is_open": false}))
	_, err = r.RecordBidForItem(ctx, &model.Bid{ItemID: item.ID, BidderID: bob.ID, Price: 5000, Timestamp: time.Now()})
	require.ErrorIs(t, err, auctionerrors.ErrItemClosed)

	count, err := r.CountBidsForItem(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	bidders, err := r.GetBiddersForItem(ctx, item.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []uint{bob.ID, carol.ID}, bidders)
}

func TestGormRepo_RecordBidForItem_Concurrent(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	admin := seedUser(t, r, "admin")
	a := seedAuction(t, r, admin)
	item := seedItem(t, r, a, 500)

	const n = 10
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := r.RecordBidForItem(ctx, &model.Bid{ItemID: item.ID, BidderID: uint(100 + i), Price: 700, Timestamp: time.Now()})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, auctionerrors.ErrBidTooLow)
	}
	require.Equal(t, 1, succeeded)

	bids, err := r.GetBidsByItem(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, bids, 1)
}

func TestGormRepo_GetWinningBid(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	admin := seedUser(t, r, "admin")
	a := seedAuction(t, r, admin)
	item := seedItem(t, r, a, 100)

	_, err := r.GetWinningBid(ctx, item.ID)
	require.ErrorIs(t, err, auctionerrors.ErrNoBids)
	_, err = r.GetBidsByItem(ctx, item.ID)
	require.ErrorIs(t, err, auctionerrors.ErrNoBids)

	now := time.Now().UTC()
	early := model.Bid{ItemID: item.ID, BidderID: 7, Price: 900, Timestamp: now.Add(-time.Minute)}
	late := model.Bid{ItemID: item.ID, BidderID: 8, Price: 900, Timestamp: now}
	low := model.Bid{ItemID: item.ID, BidderID: 9, Price: 300, Timestamp: now.Add(-time.Hour)}
	require.NoError(t, r.db.Create(&late).Error)
	require.NoError(t, r.db.Create(&early).Error)
	require.NoError(t, r.db.Create(&low).Error)

	winner, err := r.GetWinningBid(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, early.ID, winner.ID)
}

func TestGormRepo_RemoveBid(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	admin := seedUser(t, r, "admin")
	bob := seedUser(t, r, "bob")
	a := seedAuction(t, r, admin, bob)
	item := seedItem(t, r, a, 1000)

	first := &model.Bid{ItemID: item.ID, BidderID: bob.ID, Price: 1000, Timestamp: time.Now()}
	_, err := r.RecordBidForItem(ctx, first)
	require.NoError(t, err)
	second := &model.Bid{ItemID: item.ID, BidderID: bob.ID, Price: 1500, Timestamp: time.Now()}
	_, err = r.RecordBidForItem(ctx, second)
	require.NoError(t, err)

	got, err := r.RemoveBid(ctx, second.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1000), got.CurrentPrice)
	require.Equal(t, int64(1100), got.MinBid)

	got, err = r.RemoveBid(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1000), got.CurrentPrice)
	require.Equal(t, int64(1000), got.MinBid)

	_, err = r.RemoveBid(ctx, first.ID)
	require.ErrorIs(t, err, auctionerrors.ErrBidNotFound)
}

func TestGormRepo_SettleAndPay(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	admin := seedUser(t, r, "admin")
	bob := seedUser(t, r, "bob")
	a := seedAuction(t, r, admin, bob)
	item := seedItem(t, r, a, 1000)

	_, err := r.MarkItemPaid(ctx, item.ID, time.Now())
	require.ErrorIs(t, err, auctionerrors.ErrItemNotSold)

	bid := &model.Bid{ItemID: item.ID, BidderID: bob.ID, Price: 2500, Timestamp: time.Now()}
	_, err = r.RecordBidForItem(ctx, bid)
	require.NoError(t, err)

	settled, err := r.SettleItem(ctx, item.ID, bid)
	require.NoError(t, err)
	require.True(t, settled.IsSold)
	require.False(t, settled.IsOpen)
	require.NotNil(t, settled.WinnerID)
	require.Equal(t, bob.ID, *settled.WinnerID)

	stored, err := r.GetBid(ctx, bid.ID)
	require.NoError(t, err)
	require.True(t, stored.Won)

	_, err = r.SettleItem(ctx, item.ID, nil)
	require.ErrorIs(t, err, auctionerrors.ErrItemSold)

	summary, err := r.GetBalanceSummary(ctx, bob.ID)
	require.NoError(t, err)
	require.Equal(t, model.BalanceSummary{Balance: 2500, WonItems: 1, TotalWon: 2500}, summary)

	won, err := r.CountItemsWonInAuction(ctx, a.ID, bob.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), won)

	paid, err := r.MarkItemPaid(ctx, item.ID, time.Now())
	require.NoError(t, err)
	require.True(t, paid.IsPaid)
	require.NotNil(t, paid.PaidTime)

	_, err = r.MarkItemPaid(ctx, item.ID, time.Now())
	require.ErrorIs(t, err, auctionerrors.ErrItemPaid)

	summary, err = r.GetBalanceSummary(ctx, bob.ID)
	require.NoError(t, err)
	require.Equal(t, model.BalanceSummary{Balance: 0, WonItems: 1, PaidItems: 1, TotalWon: 2500, TotalPaid: 2500}, summary)

	items, err := r.ListItemsWonByUser(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestGormRepo_SettleItem_LiveSale(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	admin := seedUser(t, r, "admin")
	bob := seedUser(t, r, "bob")
	a := seedAuction(t, r, admin, bob)
	item := seedItem(t, r, a, 1000)

	sale := &model.Bid{BidderID: bob.ID, Price: 4200}
	settled, err := r.SettleItem(ctx, item.ID, sale)
	require.NoError(t, err)
	require.NotZero(t, sale.ID)
	require.Equal(t, int64(4200), settled.CurrentPrice)

	bids, err := r.GetBidsByUser(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, bids, 1)
	require.True(t, bids[0].Won)

	itemsByUser, err := r.GetItemsByUser(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, itemsByUser, 1)

	_, err = r.GetItemsByUser(ctx, admin.ID)
	require.ErrorIs(t, err, auctionerrors.ErrUserNoBids)
}

func TestGormRepo_SettleItem_NoWinner(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	admin := seedUser(t, r, "admin")
	item := seedItem(t, r, seedAuction(t, r, admin), 1000)

	settled, err := r.SettleItem(ctx, item.ID, nil)
	require.NoError(t, err)
	require.False(t, settled.IsSold)
	require.False(t, settled.IsOpen)
	require.Nil(t, settled.WinnerID)
}

func TestGormRepo_DeleteCascades(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	admin := seedUser(t, r, "admin")
	bob := seedUser(t, r, "bob")
	a := seedAuction(t, r, admin, bob)
	item := seedItem(t, r, a, 1000)
	other := seedItem(t, r, a, 500)
	_, err := r.RecordBidForItem(ctx, &model.Bid{ItemID: item.ID, BidderID: bob.ID, Price: 1000, Timestamp: time.Now()})
	require.NoError(t, err)

	require.NoError(t, r.DeleteItem(ctx, other.ID))
	require.ErrorIs(t, r.DeleteItem(ctx, other.ID), auctionerrors.ErrItemNotFound)

	require.NoError(t, r.DeleteAuction(ctx, a.ID))
	_, err = r.GetAuction(ctx, a.ID)
	require.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)
	_, err = r.GetItem(ctx, item.ID)
	require.ErrorIs(t, err, auctionerrors.ErrItemNotFound)
	_, err = r.GetBidsByUser(ctx, bob.ID)
	require.ErrorIs(t, err, auctionerrors.ErrUserNoBids)

	ok, err := r.IsParticipant(ctx, a.ID, bob.ID)
	require.NoError(t, err)
	require.False(t, ok)

	require.ErrorIs(t, r.DeleteAuction(ctx, a.ID), auctionerrors.ErrAuctionNotFound)
}

func TestGormRepo_Notifications(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	bob := seedUser(t, r, "bob")
	carol := seedUser(t, r, "carol")

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		n := model.Notification{UserID: bob.ID, Kind: model.KindOutbid, Text: fmt.Sprintf("n%d", i), Timestamp: now.Add(time.Duration(i) * time.Second)}
		require.NoError(t, r.CreateNotification(ctx, &n))
	}

	list, err := r.ListNotifications(ctx, bob.ID, false)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "n2", list[0].Text)

	require.NoError(t, r.MarkNotificationRead(ctx, bob.ID, list[0].ID))
	require.ErrorIs(t, r.MarkNotificationRead(ctx, carol.ID, list[1].ID), auctionerrors.ErrNotificationNotFound)

	unread, err := r.ListNotifications(ctx, bob.ID, true)
	require.NoError(t, err)
	require.Len(t, unread, 2)

	marked, err := r.MarkAllNotificationsRead(ctx, bob.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), marked)

	require.ErrorIs(t, r.DeleteNotification(ctx, carol.ID, list[0].ID), auctionerrors.ErrNotificationNotFound)
	require.NoError(t, r.DeleteNotification(ctx, bob.ID, list[0].ID))

	list, err = r.ListNotifications(ctx, bob.ID, false)
	require.NoError(t, err)
	require.Len(t, list, 2)
}

func TestGormRepo_RecordBidForItem_PreviousLeaderChain(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	admin := seedUser(t, r, "admin")
	a := seedAuction(t, r, admin)
	item := seedItem(t, r, a, 100)

	type placed struct {
		bid      *model.Bid
		previous *model.Bid
		err      error
	}
	const n = 20
	var wg sync.WaitGroup
	results := make(chan placed, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			bid := &model.Bid{ItemID: item.ID, BidderID: uint(100 + i), Price: int64(100 + i*100), Timestamp: time.Now()}
			previous, err := r.RecordBidForItem(ctx, bid)
			results <- placed{bid: bid, previous: previous, err: err}
		}(i)
	}
	wg.Wait()
	close(results)

	accepted := map[uint]placed{}
	for p := range results {
		if p.err != nil {
			require.ErrorIs(t, p.err, auctionerrors.ErrBidTooLow)
			continue
		}
		accepted[p.bid.ID] = p
	}
	bids, err := r.GetBidsByItem(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, bids, len(accepted))

	// every accepted bid reports the bid accepted right before it
	ids := make([]uint, 0, len(bids))
	for _, b := range bids {
		ids = append(ids, b.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for i, id := range ids {
		p := accepted[id]
		if i == 0 {
			require.Nil(t, p.previous)
			continue
		}
		require.NotNil(t, p.previous)
		require.Equal(t, ids[i-1], p.previous.ID)
		require.Greater(t, p.bid.Price, p.previous.Price)
	}
}

func TestGormRepo_RemoveParticipant_WithdrawsBids(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	admin := seedUser(t, r, "admin")
	bob := seedUser(t, r, "bob")
	carol := seedUser(t, r, "carol")
	a := seedAuction(t, r, admin, bob, carol)
	other := seedAuction(t, r, admin, bob)

	contested := seedItem(t, r, a, 1000)
	bobOnly := seedItem(t, r, a, 500)
	soldToCarol := seedItem(t, r, a, 100)
	elsewhere := seedItem(t, r, other, 100)

	bid := func(item model.Item, bidder model.User, price int64) *model.Bid {
		b := &model.Bid{ItemID: item.ID, BidderID: bidder.ID, Price: price, Timestamp: time.Now()}
		_, err := r.RecordBidForItem(ctx, b)
		require.NoError(t, err)
		return b
	}
	bid(contested, carol, 1000)
	bid(contested, bob, 1500)
	bid(bobOnly, bob, 700)
	bid(soldToCarol, bob, 100)
	won := bid(soldToCarol, carol, 200)
	bid(elsewhere, bob, 100)
	_, err := r.SettleItem(ctx, soldToCarol.ID, won)
	require.NoError(t, err)

	require.NoError(t, r.RemoveParticipant(ctx, a.ID, bob.ID))

	got, err := r.GetItem(ctx, contested.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1000), got.CurrentPrice)
	require.Equal(t, int64(1100), got.MinBid)
	leader, err := r.GetWinningBid(ctx, contested.ID)
	require.NoError(t, err)
	require.Equal(t, carol.ID, leader.BidderID)

	got, err = r.GetItem(ctx, bobOnly.ID)
	require.NoError(t, err)
	require.Equal(t, int64(500), got.CurrentPrice)
	require.Equal(t, int64(500), got.MinBid)
	_, err = r.GetWinningBid(ctx, bobOnly.ID)
	require.ErrorIs(t, err, auctionerrors.ErrNoBids)

	// history of sold items and other auctions is kept
	bidders, err := r.GetBiddersForItem(ctx, soldToCarol.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []uint{bob.ID, carol.ID}, bidders)
	leader, err = r.GetWinningBid(ctx, elsewhere.ID)
	require.NoError(t, err)
	require.Equal(t, bob.ID, leader.BidderID)
}

func TestGormRepo_DeleteAuction_UnpaidItems(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	admin := seedUser(t, r, "admin")
	bob := seedUser(t, r, "bob")
	a := seedAuction(t, r, admin, bob)
	item := seedItem(t, r, a, 1000)

	_, err := r.SettleItem(ctx, item.ID, &model.Bid{BidderID: bob.ID, Price: 1500})
	require.NoError(t, err)

	require.ErrorIs(t, r.DeleteAuction(ctx, a.ID), auctionerrors.ErrItemsUnpaid)
	_, err = r.GetItem(ctx, item.ID)
	require.NoError(t, err)

	summary, err := r.GetBalanceSummary(ctx, bob.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1500), summary.Balance)

	_, err = r.MarkItemPaid(ctx, item.ID, time.Now())
	require.NoError(t, err)
	require.NoError(t, r.DeleteAuction(ctx, a.ID))

	summary, err = r.GetBalanceSummary(ctx, bob.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), summary.Balance)
}

// not parallel: the hook observes the global logger
func TestOpen_MissingRowsAreNotLogged(t *testing.T) {
	hook := logtest.NewGlobal()
	t.Cleanup(func() { log.StandardLogger().ReplaceHooks(make(log.LevelHooks)) })

	r := newTestRepo(t)
	ctx := context.Background()
	admin := seedUser(t, r, "admin")
	item := seedItem(t, r, seedAuction(t, r, admin), 100)
	hook.Reset()

	_, err := r.GetWinningBid(ctx, item.ID)
	require.ErrorIs(t, err, auctionerrors.ErrNoBids)
	_, err = r.GetUser(ctx, 9999)
	require.ErrorIs(t, err, auctionerrors.ErrUserNotFound)
	_, err = r.RecordBidForItem(ctx, &model.Bid{ItemID: item.ID, BidderID: admin.ID, Price: 100})
	require.NoError(t, err)

	for _, entry := range hook.AllEntries() {
		require.NotContains(t, entry.Message, "record not found")
	}

	// real failures still reach the application log
	require.Error(t, r.db.Exec("SELECT * FROM missing_table").Error)
	require.NotEmpty(t, hook.AllEntries())
	require.Contains(t, hook.LastEntry().Message, "missing_table")
}
