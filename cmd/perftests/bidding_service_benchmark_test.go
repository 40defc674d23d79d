package perftests

import (
	"context"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"
)

// Benchmark 1: PlaceBid on a different item each iteration (low contention)
func Benchmark_PlaceBid_Isolated(b *testing.B) {
	f, l := single(b, b.N, 10)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		bidder := l.bidders[i%len(l.bidders)]
		price := int64(100 + rand.Intn(100))
		if _, err := f.svc.PlaceBid(ctx, bidder, l.items[i], price); err != nil {
			b.Fatalf("failed to place bid: %v", err)
		}
	}
}

// Benchmark 2: many bidders racing on one item (high contention)
func Benchmark_PlaceBid_ConcurrentSharedItem(b *testing.B) {
	f, l := single(b, 1, 50)
	ctx := context.Background()
	itemID := l.items[0]

	var lastBid int64 = 100
	var accepted, rejected int64

	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		for pb.Next() {
			bidder := l.bidders[rnd.Intn(len(l.bidders))]
			price := atomic.AddInt64(&lastBid, int64(rnd.Intn(5)+1))
			if _, err := f.svc.PlaceBid(ctx, bidder, itemID, price); err != nil {
				atomic.AddInt64(&rejected, 1)
				continue
			}
			atomic.AddInt64(&accepted, 1)
		}
	})

	b.StopTimer()
	winning, err := f.svc.GetWinningBid(ctx, l.bidders[0], itemID)
	if accepted > 0 && err != nil {
		b.Fatalf("failed to get winning bid: %v", err)
	}
	b.Logf("accepted: %d rejected: %d winning price: %d", accepted, rejected, winning.Price)
}

// Benchmark 3: GetWinningBid on items with ten bids each
func Benchmark_GetWinningBid_SingleThreaded(b *testing.B) {
	const numItems = 100
	f, l := single(b, numItems, 10)
	ctx := context.Background()

	for _, itemID := range l.items {
		for j, bidder := range l.bidders {
			if _, err := f.svc.PlaceBid(ctx, bidder, itemID, int64(100+j*10)); err != nil {
				b.Fatalf("failed to seed bid: %v", err)
			}
		}
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := f.svc.GetWinningBid(ctx, l.bidders[0], l.items[i%numItems]); err != nil {
			b.Fatalf("failed to get winning bid: %v", err)
		}
	}
}

// Benchmark 4: concurrent readers of one item
func Benchmark_GetWinningBid_ConcurrentSharedItem(b *testing.B) {
	f, l := single(b, 1, 100)
	ctx := context.Background()
	itemID := l.items[0]

	for j, bidder := range l.bidders {
		if _, err := f.svc.PlaceBid(ctx, bidder, itemID, int64(100+j)); err != nil {
			b.Fatalf("failed to seed bid: %v", err)
		}
	}

	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := f.svc.GetWinningBid(ctx, l.bidders[0], itemID); err != nil {
				b.Errorf("failed to get winning bid: %v", err)
				return
			}
		}
	})
}

// Benchmark 5: 70% readers, 30% writers on one item
func Benchmark_MixedWorkload_SharedItem(b *testing.B) {
	f, l := single(b, 1, 50)
	ctx := context.Background()
	itemID := l.items[0]

	for j, bidder := range l.bidders {
		if _, err := f.svc.PlaceBid(ctx, bidder, itemID, int64(100+j*2)); err != nil {
			b.Fatalf("failed to seed bid: %v", err)
		}
	}

	var lastBid int64 = 300

	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		for pb.Next() {
			bidder := l.bidders[rnd.Intn(len(l.bidders))]
			if rnd.Intn(10) < 3 {
				price := atomic.AddInt64(&lastBid, int64(rnd.Intn(5)+1))
				_, _ = f.svc.PlaceBid(ctx, bidder, itemID, price)
				continue
			}
			_, _ = f.svc.GetWinningBid(ctx, bidder, itemID)
		}
	})
}
