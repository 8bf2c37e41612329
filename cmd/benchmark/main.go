package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds the benchmark settings
var (
	targetURL   string
	concurrency int
	duration    time.Duration
	amountStr   string
	opening     string
)

// Metrics
var (
	totalRequests uint64
	deposits      uint64
	withdrawals   uint64
	fail422       uint64 // Insufficient funds
	failOther     uint64
)

func init() {
	flag.StringVar(&targetURL, "url", "http://localhost:8080", "API Base URL")
	flag.IntVar(&concurrency, "workers", 10, "Number of concurrent workers")
	flag.DurationVar(&duration, "duration", 30*time.Second, "Test duration")
	flag.StringVar(&amountStr, "amount", "10.00", "Amount per deposit or withdrawal")
	flag.StringVar(&opening, "opening", "100.00", "Opening balance of the hot account")
}

func main() {
	flag.Parse()
	amount := decimal.RequireFromString(amountStr)
	client := &http.Client{Timeout: 5 * time.Second}

	acctID, err := setup(client)
	if err != nil {
		log.Fatalf("Setup failed: %v", err)
	}
	log.Printf("Starting Benchmark: account %d | Workers: %d | Duration: %s", acctID, concurrency, duration)

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go worker(&wg, client, start, acctID, amount)
	}
	wg.Wait()
	elapsed := time.Since(start)

	var acct struct {
		Balance decimal.Decimal `json:"balance"`
	}
	if err := getJSON(client, fmt.Sprintf("%s/api/v1/accounts/%d", targetURL, acctID), &acct); err != nil {
		log.Fatalf("Reading final balance failed: %v", err)
	}

	dep := atomic.LoadUint64(&deposits)
	wd := atomic.LoadUint64(&withdrawals)
	expected := decimal.RequireFromString(opening).
		Add(amount.Mul(decimal.NewFromInt(int64(dep)))).
		Sub(amount.Mul(decimal.NewFromInt(int64(wd))))

	consistent := acct.Balance.Equal(expected) && !acct.Balance.IsNegative()
	printResults(elapsed, acct.Balance, expected, consistent)
	if !consistent {
		os.Exit(1)
	}
}

// setup creates a customer and one account that every worker hits.
func setup(client *http.Client) (int64, error) {
	var cust struct {
		ID int64 `json:"id"`
	}
	err := postJSON(client, targetURL+"/api/v1/customers", map[string]any{
		"first_name": "Bench",
		"last_name":  fmt.Sprintf("Run%d", time.Now().Unix()),
	}, http.StatusCreated, &cust)
	if err != nil {
		return 0, err
	}

	var acct struct {
		ID int64 `json:"id"`
	}
	err = postJSON(client, targetURL+"/api/v1/accounts", map[string]any{
		"customer_id":     cust.ID,
		"account_type":    "Checking",
		"initial_deposit": opening,
	}, http.StatusCreated, &acct)
	return acct.ID, err
}

func worker(wg *sync.WaitGroup, client *http.Client, start time.Time, acctID int64, amount decimal.Decimal) {
	defer wg.Done()
	body, _ := json.Marshal(map[string]string{"amount": amount.String()})

	for time.Since(start) < duration {
		path, counter := "deposits", &deposits
		if rand.Float32() < 0.5 {
			path, counter = "withdrawals", &withdrawals
		}

		url := fmt.Sprintf("%s/api/v1/accounts/%d/%s", targetURL, acctID, path)
		resp, err := client.Post(url, "application/json", bytes.NewReader(body))
		if err != nil {
			atomic.AddUint64(&failOther, 1)
			continue
		}

		atomic.AddUint64(&totalRequests, 1)
		switch resp.StatusCode {
		case http.StatusOK:
			atomic.AddUint64(counter, 1)
		case http.StatusUnprocessableEntity:
			atomic.AddUint64(&fail422, 1)
		default:
			atomic.AddUint64(&failOther, 1)
		}
		resp.Body.Close()
	}
}

func postJSON(client *http.Client, url string, payload any, want int, dst any) error {
	body, _ := json.Marshal(payload)
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != want {
		return fmt.Errorf("POST %s: status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

func getJSON(client *http.Client, url string, dst any) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

func printResults(d time.Duration, final, expected decimal.Decimal, consistent bool) {
	total := atomic.LoadUint64(&totalRequests)

	results := map[string]interface{}{
		"duration_sec":       d.Seconds(),
		"total_requests":     total,
		"throughput_tps":     float64(total) / d.Seconds(),
		"deposits":           atomic.LoadUint64(&deposits),
		"withdrawals":        atomic.LoadUint64(&withdrawals),
		"insufficient_funds": atomic.LoadUint64(&fail422),
		"errors":             atomic.LoadUint64(&failOther),
		"final_balance":      final.StringFixed(2),
		"expected_balance":   expected.StringFixed(2),
		"consistent":         consistent,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(results)
}
