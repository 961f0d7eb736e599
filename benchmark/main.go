// Package main provides a load benchmarking tool for the reviewdash web dashboard.
// It attacks each dashboard endpoint in turn at a fixed rate, collects latency
// and success metrics with vegeta, and writes a CSV summary for documentation.
//
// Prerequisites:
// - a running dashboard: reviewdash serve --listen :8080
// - a reachable review backend behind it (see --server)
//
// Usage: go run benchmark/main.go [dashboard-url]
//
//	dashboard-url: Base URL of the dashboard (default http://localhost:8080)
package main

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	vegeta "github.com/tsenart/vegeta/v12/lib"
)

// BenchmarkResult holds the metrics of one endpoint attack.
type BenchmarkResult struct {
	Scenario string
	Requests uint64
	Success  float64
	Mean     time.Duration
	P95      time.Duration
	P99      time.Duration
	Max      time.Duration
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	BaseURL   string
	Rate      int
	Duration  time.Duration
	Timeout   time.Duration
	Scenarios []Scenario
}

// Scenario is one endpoint under attack.
type Scenario struct {
	Name string
	Path string
}

func main() {
	baseURL := "http://localhost:8080"
	switch len(os.Args) {
	case 1:
	case 2:
		baseURL = strings.TrimRight(os.Args[1], "/")
	default:
		fmt.Printf("Usage: %s [dashboard-url]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		BaseURL:  baseURL,
		Rate:     20,
		Duration: 30 * time.Second,
		Timeout:  10 * time.Second,
		Scenarios: []Scenario{
			{Name: "health", Path: "/health"},
			{Name: "logs-mr", Path: "/api/view/logs?type=mr"},
			{Name: "logs-push", Path: "/api/view/logs?type=push"},
			{Name: "stats", Path: "/api/view/stats"},
			{Name: "filter-options", Path: "/api/view/filter-options"},
			{Name: "table-page", Path: "/"},
			{Name: "charts-page", Path: "/charts"},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the dashboard answers its health check
func checkPrerequisites(config BenchmarkConfig) error {
	client := &http.Client{Timeout: config.Timeout}
	resp, err := client.Get(config.BaseURL + "/health")
	if err != nil {
		return fmt.Errorf("dashboard not reachable at %s: %w", config.BaseURL, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("dashboard health check returned %d", resp.StatusCode)
	}
	return nil
}

// runBenchmarks attacks every scenario in order
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	fmt.Printf("Starting benchmark: %d scenarios, %d req/s for %s each against %s\n",
		len(config.Scenarios), config.Rate, config.Duration, config.BaseURL)

	results := make([]BenchmarkResult, 0, len(config.Scenarios))
	for _, sc := range config.Scenarios {
		fmt.Printf("Attacking %s (%s)\n", sc.Name, sc.Path)
		result := runAttack(config, sc)
		fmt.Printf("  Requests: %d, Success: %.2f%%, Mean: %s, P95: %s\n",
			result.Requests, result.Success*100, result.Mean, result.P95)
		results = append(results, result)
	}
	return results
}

// runAttack runs one vegeta attack and reduces it to a result
func runAttack(config BenchmarkConfig, sc Scenario) BenchmarkResult {
	rate := vegeta.Rate{Freq: config.Rate, Per: time.Second}
	targeter := vegeta.NewStaticTargeter(vegeta.Target{
		Method: http.MethodGet,
		URL:    config.BaseURL + sc.Path,
		Header: http.Header{"Accept": {"application/json, text/html"}},
	})
	attacker := vegeta.NewAttacker(vegeta.Timeout(config.Timeout))

	var metrics vegeta.Metrics
	for res := range attacker.Attack(targeter, rate, config.Duration, sc.Name) {
		metrics.Add(res)
	}
	metrics.Close()

	return BenchmarkResult{
		Scenario: sc.Name,
		Requests: metrics.Requests,
		Success:  metrics.Success,
		Mean:     metrics.Latencies.Mean,
		P95:      metrics.Latencies.P95,
		P99:      metrics.Latencies.P99,
		Max:      metrics.Latencies.Max,
	}
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/reviewdash_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"scenario", "requests", "success", "mean_ms", "p95_ms", "p99_ms", "max_ms"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range results {
		record := []string{
			r.Scenario,
			fmt.Sprintf("%d", r.Requests),
			fmt.Sprintf("%.4f", r.Success),
			millis(r.Mean), millis(r.P95), millis(r.P99), millis(r.Max),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

func millis(d time.Duration) string {
	return fmt.Sprintf("%.3f", float64(d)/float64(time.Millisecond))
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, r := range results {
		fmt.Printf("  %-16s: Success: %6.2f%%, Mean: %s, P99: %s, Max: %s\n", r.Scenario, r.Success*100, r.Mean, r.P99, r.Max)
	}
}
