package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

func main() {
	targetURL := flag.String("url", "http://localhost:8080/v1/sessions/analyze", "Target URL for session analysis")
	concurrency := flag.Int("c", 10, "Number of concurrent workers")
	duration := flag.Duration("d", 30*time.Second, "Duration of the load test")
	rps := flag.Int("rps", 200, "Requests per second limit")
	events := flag.Int("events", 50, "Events per synthetic session")
	flag.Parse()

	log.Printf("Starting load test on %s", *targetURL)
	log.Printf("Concurrency: %d, Duration: %s, RPS: %d, Events/session: %d", *concurrency, *duration, *rps, *events)

	var wg sync.WaitGroup
	var successCount, errorCount atomic.Int64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	limiter := rate.NewLimiter(rate.Limit(*rps), 100) // Allow bursts up to 100

	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			client := &http.Client{
				Timeout: 5 * time.Second,
			}
			rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

			for {
				select {
				case <-ctx.Done():
					return
				default:
					limiter.Wait(ctx) // Wait for token from rate limiter

					payload := syntheticSession(rng, *events)

					req, err := http.NewRequestWithContext(ctx, http.MethodPost, *targetURL, bytes.NewBuffer(payload))
					if err != nil {
						continue // Should not happen
					}
					req.Header.Set("Content-Type", "application/json")

					resp, err := client.Do(req)
					if err != nil {
						errorCount.Add(1)
						continue
					}

					if resp.StatusCode == http.StatusOK {
						successCount.Add(1)
					} else {
						errorCount.Add(1)
					}
					resp.Body.Close()
				}
			}
		}(i)
	}

	wg.Wait()

	totalRequests := successCount.Load() + errorCount.Load()
	actualRPS := float64(totalRequests) / duration.Seconds()

	log.Println("Load test finished.")
	log.Printf("Total Requests: %d", totalRequests)
	log.Printf("Successful (200 OK): %d", successCount.Load())
	log.Printf("Errors: %d", errorCount.Load())
	log.Printf("Actual RPS: %.2f", actualRPS)
}

// syntheticSession builds an analyze request with a meta event, a small DOM
// snapshot, and a random mix of clicks, scrolls, and inputs.
func syntheticSession(rng *rand.Rand, events int) []byte {
	var buf bytes.Buffer
	sessionID := uuid.NewString()
	ts := time.Now().UnixMilli()

	buf.WriteString(`{"events": [`)
	fmt.Fprintf(&buf, `{"type": 4, "timestamp": %d, "data": {"href": "https://loadtest.local/%s", "width": 1280, "height": 800}}`, ts, sessionID)
	fmt.Fprintf(&buf, `,{"type": 2, "timestamp": %d, "data": {"node": {"type": 2, "id": 1, "tagName": "body", "childNodes": [{"type": 2, "id": 2, "tagName": "button", "childNodes": [{"type": 3, "id": 3, "textContent": "Buy now"}]}]}}}`, ts+10)

	for i := 0; i < events; i++ {
		ts += int64(rng.Intn(800) + 50)
		switch rng.Intn(3) {
		case 0:
			fmt.Fprintf(&buf, `,{"type": 3, "timestamp": %d, "data": {"source": 2, "type": 2, "id": 2, "x": %d, "y": %d}}`, ts, rng.Intn(1280), rng.Intn(800))
		case 1:
			fmt.Fprintf(&buf, `,{"type": 3, "timestamp": %d, "data": {"source": 3, "id": 1, "x": 0, "y": %d}}`, ts, rng.Intn(2400))
		default:
			fmt.Fprintf(&buf, `,{"type": 3, "timestamp": %d, "data": {"source": 5, "id": 2, "text": "worker input %d"}}`, ts, i)
		}
	}
	buf.WriteString(`]}`)
	return buf.Bytes()
}
