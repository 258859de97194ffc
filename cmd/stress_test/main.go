package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rl1809/cart-sync/internal/adapter/gateway"
	"github.com/rl1809/cart-sync/internal/core/domain"
)

type stressOptions struct {
	storeURL      string
	itemID        int
	totalRequests int
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &stressOptions{}

	cmd := &cobra.Command{
		Use:          "stress_test",
		Short:        "Fire concurrent cart creates for one item at a running store",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.storeURL, "store-url", "http://localhost:3000", "base URL of the store")
	cmd.Flags().IntVar(&opts.itemID, "item-id", 4242, "cart record id to contend on")
	cmd.Flags().IntVar(&opts.totalRequests, "requests", 50, "number of concurrent creates")

	return cmd
}

func run(ctx context.Context, opts *stressOptions) error {
	if opts.totalRequests <= 0 || opts.itemID <= 0 {
		return fmt.Errorf("requests and item-id must be positive")
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer logger.Sync()

	runID := uuid.NewString()
	gw := gateway.NewHTTPGateway(opts.storeURL, &http.Client{Timeout: 10 * time.Second}, logger)

	// Clear a record left by a previous run.
	if err := gw.DeleteCartRecord(ctx, opts.itemID); err != nil {
		if _, ok := domain.IsRequestFailed(err); !ok {
			return fmt.Errorf("store not reachable: %w", err)
		}
	}

	item := domain.InventoryItem{
		ID:      opts.itemID,
		Content: "stress-" + runID,
		Amount:  1,
	}

	var successCount, conflictCount, failCount atomic.Int32
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < opts.totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := gw.CreateCartRecord(ctx, item)
			switch status, ok := domain.IsRequestFailed(err); {
			case err == nil:
				successCount.Add(1)
			case ok && status == http.StatusConflict:
				conflictCount.Add(1)
			default:
				failCount.Add(1)
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	success := successCount.Load()
	conflicts := conflictCount.Load()
	fail := failCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Run ID:           %s\n", runID)
	fmt.Printf("Item ID:          %d\n", opts.itemID)
	fmt.Printf("Total Requests:   %d\n", opts.totalRequests)
	fmt.Printf("Created:          %d\n", success)
	fmt.Printf("Conflicts:        %d\n", conflicts)
	fmt.Printf("Failed:           %d\n", fail)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	passed := success == 1 && conflicts == int32(opts.totalRequests-1)
	if passed {
		fmt.Printf("PASS: exactly 1 record created, %d conflicts\n", conflicts)
	} else {
		fmt.Printf("FAIL: expected 1 created/%d conflicts, got %d/%d\n",
			opts.totalRequests-1, success, conflicts)
	}

	if err := gw.DeleteCartRecord(ctx, opts.itemID); err != nil {
		fmt.Printf("FAIL: cleanup delete: %v\n", err)
		passed = false
	} else {
		fmt.Println("PASS: record deleted")
	}

	if !passed {
		return fmt.Errorf("stress test failed")
	}
	return nil
}
