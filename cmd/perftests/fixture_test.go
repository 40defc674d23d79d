package perftests

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	bidding "auction-manager/internal/biddingService"
	"auction-manager/internal/config"
	"auction-manager/internal/events"
	model "auction-manager/internal/models"
	notification "auction-manager/internal/notificationService"
	"auction-manager/internal/repository"
	"auction-manager/utils"
)

// shape describes the auctions a fixture seeds
type shape struct {
	auctions     int
	participants int // per auction
	items        int // per auction
	openItems    int // per auction; the remaining items stay closed
}

// lot is one seeded auction: its items, open ones first, and its bidders
type lot struct {
	auctionID uint
	items     []uint
	open      int
	bidders   []uint
}

type fixture struct {
	repo *repository.GormRepo
	svc  *bidding.BiddingService
	lots []lot
}

// newFixture seeds a fresh sqlite database with published auctions open for
// bidding, each with its own participants and silent items
func newFixture(b *testing.B, s shape) *fixture {
	b.Helper()
	utils.SetLevel("error")
	ctx := context.Background()

	db, err := repository.Open(config.DBConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString()),
	})
	require.NoError(b, err)
	b.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	f := &fixture{repo: repository.NewGormRepo(db)}

	admin := model.User{Username: "bench_admin", PasswordHash: "x", IsActive: true}
	require.NoError(b, f.repo.CreateUser(ctx, &admin))

	for i := 0; i < s.auctions; i++ {
		a := model.Auction{
			Name:             fmt.Sprintf("Benchmark auction %d", i),
			AdminID:          admin.ID,
			EntryCode:        uuid.NewString()[:8],
			Published:        true,
			OpenedForBidding: true,
		}
		require.NoError(b, f.repo.CreateAuction(ctx, &a))

		l := lot{auctionID: a.ID, open: s.openItems}
		for j := 0; j < s.participants; j++ {
			u := model.User{Username: fmt.Sprintf("bidder_%d_%d", i, j), PasswordHash: "x", IsActive: true}
			require.NoError(b, f.repo.CreateUser(ctx, &u))
			require.NoError(b, f.repo.AddParticipant(ctx, a.ID, u.ID))
			l.bidders = append(l.bidders, u.ID)
		}
		for j := 0; j < s.items; j++ {
			it := model.Item{
				AuctionID:     a.ID,
				Name:          fmt.Sprintf("lot_%d_%d", i, j),
				StartingPrice: 100,
				CurrentPrice:  100,
				BidIncrement:  1,
				MinBid:        100,
				AuctionType:   model.Silent,
				IsOpen:        j < s.openItems,
			}
			require.NoError(b, f.repo.CreateItem(ctx, &it))
			l.items = append(l.items, it.ID)
		}
		f.lots = append(f.lots, l)
	}

	hub := notification.NewHub()
	b.Cleanup(hub.Close)
	notifications := notification.NewNotificationService(f.repo, hub, events.LogPublisher{}, nil)
	f.svc = bidding.NewBiddingService(f.repo, notifications, nil)
	return f
}

// single seeds one auction whose items are all open
func single(b *testing.B, items, participants int) (*fixture, lot) {
	b.Helper()
	f := newFixture(b, shape{auctions: 1, participants: participants, items: items, openItems: items})
	return f, f.lots[0]
}
