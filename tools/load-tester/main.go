package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

func main() {
	targetURL := flag.String("url", "http://localhost:8080/ingest", "Target URL for ingestion")
	apiKey := flag.String("api-key", "supersecretkey", "API Key for authentication")
	concurrency := flag.Int("c", 10, "Number of concurrent workers")
	duration := flag.Duration("d", 30*time.Second, "Duration of the load test")
	rps := flag.Int("rps", 1000, "Requests per second limit")
	linesPerReq := flag.Int("lines", 5, "Log lines per submission")
	flag.Parse()

	log.Printf("Starting load test on %s", *targetURL)
	log.Printf("Concurrency: %d, Duration: %s, RPS: %d, Lines/req: %d", *concurrency, *duration, *rps, *linesPerReq)

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
			deviceID := fmt.Sprintf("device-%s", uuid.NewString()[:8])

			for {
				select {
				case <-ctx.Done():
					return
				default:
					limiter.Wait(ctx) // Wait for token from rate limiter

					// Several lines sharing a second exercises the
					// sequencing path.
					stamp := time.Now().Format(time.Stamp)
					var sb strings.Builder
					for n := 0; n < *linesPerReq; n++ {
						fmt.Fprintf(&sb, "%s %s load test line %d from worker %d\n", stamp, deviceID, n, workerID)
					}

					req, err := http.NewRequestWithContext(ctx, http.MethodPost, *targetURL, strings.NewReader(sb.String()))
					if err != nil {
						continue // Should not happen
					}
					req.Header.Set("Content-Type", "text/plain")
					req.Header.Set("X-API-Key", *apiKey)
					req.Header.Set("X-Device-ID", deviceID)

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
	log.Printf("Load test complete. Success: %d, Errors: %d", successCount.Load(), errorCount.Load())
}
