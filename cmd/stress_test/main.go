package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rl1809/order-ledger/internal/adapter/sink"
	"github.com/rl1809/order-ledger/internal/core/domain"
	"github.com/rl1809/order-ledger/internal/core/service"
	"github.com/rl1809/order-ledger/internal/logger"
)

const (
	totalRequests = 1000
	cancelRounds  = 3
	queueSize     = 100
)

func main() {
	ctx := context.Background()

	log, err := logger.New("warn")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ledger := service.NewOrderLedger(
		service.WithEventSink(sink.NewZapSink(log)),
		service.WithPersistQueue(queueSize),
	)

	// Drain the persist queue in background
	var persisted atomic.Int32
	drained := make(chan struct{})
	go func() {
		for range ledger.GetPersistQueue() {
			persisted.Add(1)
		}
		close(drained)
	}()

	// Counters
	var created atomic.Int32
	var cancelled atomic.Int32
	var rejected atomic.Int32
	ids := make([]int64, totalRequests)

	fmt.Printf("Starting stress test: %d concurrent creates\n", totalRequests)
	start := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			amount := decimal.NewFromInt(int64(n%20) * 100)
			id, err := ledger.CreateOrder(ctx, fmt.Sprintf("user-%d", n), amount)
			if err != nil {
				log.Error("create failed", zap.Error(err))
				return
			}
			ids[n] = id
			created.Add(1)
		}(i)
	}
	wg.Wait()

	// Every even id is cancelled by several goroutines at once
	for id := int64(2); id <= totalRequests; id += 2 {
		for r := 0; r < cancelRounds; r++ {
			wg.Add(1)
			go func(id int64) {
				defer wg.Done()
				err := ledger.CancelOrder(ctx, id)
				switch {
				case err == nil:
					cancelled.Add(1)
				case errors.Is(err, domain.ErrInvalidState):
					rejected.Add(1)
				default:
					log.Error("cancel failed", zap.Int64("order_id", id), zap.Error(err))
				}
			}(id)
		}
	}
	wg.Wait()

	duration := time.Since(start)
	ledger.Close()
	<-drained

	seen := make(map[int64]bool, totalRequests)
	duplicates := 0
	for _, id := range ids {
		if seen[id] {
			duplicates++
		}
		seen[id] = true
	}
	missing := 0
	for id := int64(1); id <= totalRequests; id++ {
		if !seen[id] {
			missing++
		}
	}

	fmt.Println("\n========== RESULTS ==========")
	fmt.Printf("Duration:         %v\n", duration)
	fmt.Printf("Orders created:   %d\n", created.Load())
	fmt.Printf("Cancelled:        %d\n", cancelled.Load())
	fmt.Printf("Double cancels:   %d\n", rejected.Load())
	fmt.Printf("Snapshots queued: %d\n", persisted.Load())
	fmt.Printf("Duplicate ids:    %d\n", duplicates)
	fmt.Printf("Missing ids:      %d\n", missing)
	fmt.Println("==============================")

	expectedCancels := int32(totalRequests / 2)
	if created.Load() == totalRequests &&
		cancelled.Load() == expectedCancels &&
		rejected.Load() == expectedCancels*(cancelRounds-1) &&
		duplicates == 0 && missing == 0 {
		fmt.Println("PASS: ids unique and dense, each order cancelled exactly once")
	} else {
		fmt.Printf("FAIL: expected %d created/%d cancelled/%d rejected, got %d/%d/%d\n",
			totalRequests, expectedCancels, expectedCancels*(cancelRounds-1),
			created.Load(), cancelled.Load(), rejected.Load())
	}
}
