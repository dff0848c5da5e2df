package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

const (
	shoppers      = 200
	checkoutRaces = 50
	gundamPrice   = 100000
	zakuPrice     = 500000
)

func main() {
	ctx := context.Background()

	gundam := domain.Product{ID: "gundam", Name: domain.Ptr("RG Gundam"), Price: domain.Ptr(int64(gundamPrice)), Type: domain.ProductTypeAvailable}
	zaku := domain.Product{ID: "zaku", Name: domain.Ptr("MG Zaku"), Price: domain.Ptr(int64(zakuPrice)), Type: domain.ProductTypePreorder}

	cart := domain.NewCart()
	var notifications atomic.Int64
	cart.Subscribe(func(domain.CartView) { notifications.Add(1) })

	// Each shopper adds two Gundams and one Zaku, then puts one Gundam back,
	// while readers keep rendering the cart.
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < shoppers; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			cart.Add(gundam)
			cart.Add(zaku)
			cart.Add(gundam)
			cart.Remove(gundam)
		}()
		go func() {
			defer wg.Done()
			view := cart.View()
			if view.CheckoutEnabled != (len(view.Lines) > 0) {
				log.Printf("inconsistent view: %+v", view)
			}
		}()
	}

	wg.Wait()
	cartElapsed := time.Since(start)

	view := cart.View()
	wantQty := 2 * shoppers
	wantAmount := int64(shoppers) * (gundamPrice + zakuPrice/10)

	// Concurrent checkouts racing on the same request id
	store, cleanup := idempotencyStore(ctx)
	defer cleanup()

	key := fmt.Sprintf("checkout:stress:%s", uuid.NewString())
	var claimed atomic.Int32
	var rejected atomic.Int32

	start = time.Now()
	for i := 0; i < checkoutRaces; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.SetIdempotency(ctx, key)
			switch {
			case err != nil:
				log.Printf("idempotency error: %v", err)
			case ok:
				claimed.Add(1)
			default:
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()
	checkoutElapsed := time.Since(start)
	store.ReleaseIdempotency(ctx, key)

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Shoppers:         %d\n", shoppers)
	fmt.Printf("Cart Lines:       %d\n", len(view.Lines))
	fmt.Printf("Total Qty:        %d\n", view.TotalQty)
	fmt.Printf("Total Amount:     %s\n", view.TotalAmountLabel)
	fmt.Printf("Notifications:    %d\n", notifications.Load())
	fmt.Printf("Cart Version:     %d\n", view.Version)
	fmt.Printf("Cart Duration:    %v\n", cartElapsed)
	fmt.Printf("Checkout Races:   %d\n", checkoutRaces)
	fmt.Printf("Claimed:          %d\n", claimed.Load())
	fmt.Printf("Rejected:         %d\n", rejected.Load())
	fmt.Printf("Checkout Duration: %v\n", checkoutElapsed)
	fmt.Println("==========================================")

	failed := false
	if view.TotalQty == wantQty && view.TotalAmount == wantAmount && len(view.Lines) == 2 {
		fmt.Printf("PASS: cart holds %d items worth %s\n", wantQty, domain.FormatVND(wantAmount))
	} else {
		fmt.Printf("FAIL: expected %d items worth %d, got %d worth %d\n",
			wantQty, wantAmount, view.TotalQty, view.TotalAmount)
		failed = true
	}

	if want := int64(4 * shoppers); notifications.Load() == want && view.Version == uint64(want) {
		fmt.Println("PASS: every mutation notified the observer")
	} else {
		fmt.Printf("FAIL: expected %d notifications at version %d, got %d at version %d\n",
			want, want, notifications.Load(), view.Version)
		failed = true
	}

	if claimed.Load() == 1 && rejected.Load() == checkoutRaces-1 {
		fmt.Println("PASS: exactly one checkout claimed the request id")
	} else {
		fmt.Printf("FAIL: expected 1 claim, got %d\n", claimed.Load())
		failed = true
	}

	if failed {
		os.Exit(1)
	}
}

// idempotencyStore uses Redis when REDIS_ADDR is set and the in-process
// store otherwise.
func idempotencyStore(ctx context.Context) (port.IdempotencyStore, func()) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		fmt.Println("REDIS_ADDR not set, using in-memory idempotency store")
		return storage.NewMemoryAdapter(), func() {}
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	return storage.NewRedisAdapter(rdb), func() { rdb.Close() }
}
