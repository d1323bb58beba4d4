package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/rl1809/beer-stock/internal/adapter/storage"
	"github.com/rl1809/beer-stock/internal/config"
	"github.com/rl1809/beer-stock/internal/core/domain"
	"github.com/rl1809/beer-stock/internal/core/service"
	"github.com/rl1809/beer-stock/internal/platform/observability"
)

const (
	initialStock  = 20
	totalRequests = 50
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.ServiceName+"-stress", false)
	defer logger.Sync()

	repo, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to open store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer closeStore()

	// each conflict means another request went through, so this many
	// attempts never gives up while stock remains
	beerService := service.NewBeerService(repo, totalRequests)

	name := fmt.Sprintf("stress-%d", time.Now().UnixNano())
	id, err := beerService.Create(ctx, domain.Beer{
		Name:     name,
		Brand:    "stress",
		Max:      initialStock,
		Quantity: initialStock,
		Type:     domain.BeerTypeLager,
	})
	if err != nil {
		logger.Fatal("failed to create beer", zap.Error(err))
	}
	defer beerService.Delete(ctx, id)

	// Counters
	var successCount atomic.Int32
	var soldOutCount atomic.Int32
	var otherCount atomic.Int32

	// Spawn concurrent requests
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := beerService.AdjustQuantity(ctx, id, -1)
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, domain.ErrInsufficientStock):
				soldOutCount.Add(1)
			default:
				otherCount.Add(1)
				logger.Warn("adjustment failed", zap.Error(err))
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	// Results
	success := successCount.Load()
	soldOut := soldOutCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Store:            %s\n", cfg.StoreDriver)
	fmt.Printf("Initial Stock:    %d\n", initialStock)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Sold Out:         %d\n", soldOut)
	fmt.Printf("Other Errors:     %d\n", otherCount.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	failed := false

	// Assertions
	if success == initialStock && soldOut == totalRequests-initialStock {
		fmt.Printf("PASS: Exactly %d adjustments succeeded, %d sold out\n", initialStock, totalRequests-initialStock)
	} else {
		fmt.Printf("FAIL: Expected %d success/%d sold out, got %d/%d\n",
			initialStock, totalRequests-initialStock, success, soldOut)
		failed = true
	}

	// Verify final stock
	beer, err := beerService.ReadByName(ctx, name)
	if err != nil {
		logger.Fatal("failed to read beer", zap.Error(err))
	}
	fmt.Printf("Final Stock: %d\n", beer.Quantity)

	if beer.Quantity == 0 {
		fmt.Println("PASS: Stock depleted to 0")
	} else {
		fmt.Printf("FAIL: Expected stock 0, got %d\n", beer.Quantity)
		failed = true
	}

	if failed {
		beerService.Delete(ctx, id)
		closeStore()
		os.Exit(1)
	}
}
