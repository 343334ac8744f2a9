package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/warp/party-budget/budget"
	"github.com/warp/party-budget/legacy"
)

var quoteCmd = &cobra.Command{
	Use:   "quote <file.json>",
	Short: "Price a saved budget file",
	Long: `Reads a budget saved by this service or by the previous editor, prices
it and prints the breakdown and validation findings.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := loadConfig(); err != nil {
			return err
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		b, err := readBudget(data)
		if err != nil {
			return err
		}
		return printQuote(cmd.OutOrStdout(), b, time.Now())
	},
}

// readBudget accepts the current snake_case format or a legacy camelCase one.
func readBudget(data []byte) (budget.Budget, error) {
	doc := gjson.ParseBytes(data)
	if doc.Get("selected_meals").Exists() || doc.Get("transport_assignments").Exists() {
		var b budget.Budget
		if err := json.Unmarshal(data, &b); err != nil {
			return budget.Budget{}, fmt.Errorf("failed to parse budget: %w", err)
		}
		return b, nil
	}
	return legacy.Import(data)
}

func printQuote(out io.Writer, b budget.Budget, now time.Time) error {
	q := b.Quote()

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(out, "Budget %s for %q, %d guests\n\n", b.ID, b.ClientName, b.GuestCount)
	fmt.Fprintf(tw, "meals\t%s\t\n", q.Breakdown.Meals.StringFixed(2))
	fmt.Fprintf(tw, "activities\t%s\t\n", q.Breakdown.Activities.StringFixed(2))
	fmt.Fprintf(tw, "transport\t%s\t\n", q.Breakdown.Transport.StringFixed(2))
	fmt.Fprintf(tw, "stay\t%s\t\n", q.Breakdown.Stay.StringFixed(2))
	fmt.Fprintf(tw, "extras\t%s\t\n", q.Breakdown.Extras.StringFixed(2))
	fmt.Fprintf(tw, "total\t%s\t\n", q.TotalAmount.StringFixed(2))
	if err := tw.Flush(); err != nil {
		return err
	}

	findings := budget.Validate(b, now)
	if len(findings) > 0 {
		fmt.Fprintln(out)
		for _, f := range findings {
			fmt.Fprintf(out, "[%s] %s: %s\n", f.Severity, f.Section, f.Message)
		}
	}
	return nil
}
