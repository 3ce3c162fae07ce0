package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "leaveledger-cli",
		Short: "LeaveLedger CLI tool",
		Long:  `A command line interface for interacting with the LeaveLedger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the LeaveLedger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	// Balance commands
	balanceCmd := &cobra.Command{
		Use:   "balance",
		Short: "Balance ledger operations",
	}

	var asOf string
	overviewCmd := &cobra.Command{
		Use:   "overview <employee-id> <category-id>",
		Short: "Show the balance overview for an employee and category",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			showOverview(args[0], args[1], asOf)
		},
	}
	overviewCmd.Flags().StringVar(&asOf, "as-of", "", "Date to evaluate the overview at (YYYY-MM-DD)")

	var limit, offset int
	listCmd := &cobra.Command{
		Use:   "list <employee-id> <category-id>",
		Short: "List the balance entries for an employee and category",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			listBalances(args[0], args[1], limit, offset)
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of entries")
	listCmd.Flags().IntVar(&offset, "offset", 0, "Number of entries to skip")

	verifyCmd := &cobra.Command{
		Use:   "verify <employee-id> <category-id>",
		Short: "Verify the running-balance chain for an employee and category",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			verifyBalances(args[0], args[1])
		},
	}

	balanceCmd.AddCommand(overviewCmd)
	balanceCmd.AddCommand(listCmd)
	balanceCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(balanceCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func showOverview(employeeID, categoryID, asOf string) {
	endpoint := fmt.Sprintf("%s/api/v1/employees/%s/categories/%s/overview", baseURL, employeeID, categoryID)
	if asOf != "" {
		endpoint += "?as_of=" + url.QueryEscape(asOf)
	}

	result := getJSON(endpoint)

	fmt.Printf("Employee:  %v\n", result["employee_id"])
	fmt.Printf("Category:  %v\n", result["category_id"])
	fmt.Printf("Period:    %v .. %v\n", result["period_start"], result["period_end"])
	fmt.Printf("Balance:   %v minutes (%v days)\n", result["balance"], result["balance_days"])
}

func listBalances(employeeID, categoryID string, limit, offset int) {
	endpoint := fmt.Sprintf("%s/api/v1/employees/%s/categories/%s/balances?limit=%d&offset=%d",
		baseURL, employeeID, categoryID, limit, offset)

	result := getJSON(endpoint)

	balances, ok := result["balances"].([]any)
	if !ok {
		fmt.Println("No entries found")
		return
	}

	fmt.Printf("Total: %v\n", result["total"])
	for _, item := range balances {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		fmt.Printf("%v  %-18v balance=%v\n", entry["effective_at"], entry["type"], entry["balance"])
	}
}

func verifyBalances(employeeID, categoryID string) {
	endpoint := fmt.Sprintf("%s/api/v1/employees/%s/categories/%s/balances?limit=10000&offset=0",
		baseURL, employeeID, categoryID)

	result := getJSON(endpoint)

	balances, ok := result["balances"].([]any)
	if !ok || len(balances) == 0 {
		fmt.Println("No entries to verify")
		return
	}

	var previous float64
	mismatches := 0
	for _, item := range balances {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}

		amount := number(entry["resource_amount"]) + number(entry["manual_amount"]) + number(entry["related_amount"])
		expected := previous + amount
		if entry["type"] == "reset" {
			expected = amount
		}

		balance := number(entry["balance"])
		if balance != expected {
			fmt.Printf("MISMATCH  %v  %-18v balance=%v expected=%v\n",
				entry["effective_at"], entry["type"], balance, expected)
			mismatches++
		}
		previous = balance
	}

	if mismatches > 0 {
		fmt.Printf("Chain verification FAILED: %d mismatched entries of %d\n", mismatches, len(balances))
		os.Exit(1)
	}
	fmt.Printf("Chain verified: %d entries consistent\n", len(balances))
}

func number(v any) float64 {
	f, _ := v.(float64)
	return f
}

func getJSON(endpoint string) map[string]any {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(endpoint)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	return result
}
