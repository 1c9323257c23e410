package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/techstore/internal/adapter/mail"
	"github.com/rl1809/techstore/internal/adapter/storage"
	"github.com/rl1809/techstore/internal/core/notify"
	"github.com/rl1809/techstore/internal/core/service"
	"github.com/rl1809/techstore/internal/logging"
)

const (
	userCount       = 10
	ordersPerUser   = 20
	duplicateFactor = 2
)

func main() {
	ctx := context.Background()
	store := storage.NewMemoryAdapter()

	catalog := service.NewCatalogService(store, nil)
	if _, err := catalog.Seed(ctx); err != nil {
		log.Fatalf("failed to seed catalog: %v", err)
	}

	registration := service.NewRegistrationService(store, mail.LogMailer{})
	for i := 0; i < userCount; i++ {
		email := fmt.Sprintf("user-%d@example.com", i)
		if _, err := registration.Register(ctx, email, "pw", fmt.Sprintf("User %d", i)); err != nil {
			log.Fatalf("failed to register %s: %v", email, err)
		}
	}

	var logBuf bytes.Buffer
	lg := logging.Default()
	lg.SetOutput(&logBuf)

	hub := notify.NewHub()
	hub.Attach(notify.NewEmailChannel(lg))
	hub.Attach(notify.NewSMSChannel(lg))
	orders := service.NewOrderService(store, store, store, store, hub, nopMailer{})

	// Counters
	var successCount atomic.Int32
	var duplicateCount atomic.Int32
	var failCount atomic.Int32
	var ids sync.Map

	// Every request id is sent duplicateFactor times concurrently
	var wg sync.WaitGroup
	start := time.Now()

	for u := 0; u < userCount; u++ {
		for o := 0; o < ordersPerUser; o++ {
			requestID := uuid.NewString()
			email := fmt.Sprintf("user-%d@example.com", u)
			productID := int64(o%2 + 1)
			for d := 0; d < duplicateFactor; d++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					order, err := orders.PlaceOrder(ctx, requestID, email, productID)
					switch {
					case err == nil:
						successCount.Add(1)
						if _, loaded := ids.LoadOrStore(order.ID, requestID); loaded {
							log.Printf("order id %d issued twice", order.ID)
						}
					case errors.Is(err, service.ErrDuplicateRequest):
						duplicateCount.Add(1)
					default:
						failCount.Add(1)
					}
				}()
			}
		}
	}

	wg.Wait()
	elapsed := time.Since(start)

	// Results
	expected := int32(userCount * ordersPerUser)
	success := successCount.Load()
	dups := duplicateCount.Load()
	lines := strings.Count(logBuf.String(), "\n")

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Unique Requests:  %d\n", expected)
	fmt.Printf("Total Requests:   %d\n", expected*duplicateFactor)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Duplicates:       %d\n", dups)
	fmt.Printf("Failed:           %d\n", failCount.Load())
	fmt.Printf("Broadcast Lines:  %d\n", lines)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	// Assertions
	if success == expected && dups == expected*(duplicateFactor-1) {
		fmt.Printf("PASS: exactly %d orders placed, %d duplicates rejected\n", expected, dups)
	} else {
		fmt.Printf("FAIL: expected %d success/%d duplicates, got %d/%d\n",
			expected, expected*(duplicateFactor-1), success, dups)
	}

	if lines == int(success)*2 {
		fmt.Println("PASS: every order broadcast to both channels")
	} else {
		fmt.Printf("FAIL: expected %d broadcast lines, got %d\n", success*2, lines)
	}
}

type nopMailer struct{}

func (nopMailer) SendConfirmation(context.Context, string, string)              {}
func (nopMailer) SendOrderConfirmation(context.Context, string, string, string) {}
