package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/niharm/paisatrail/internal/cli"
	"github.com/spf13/cobra"
)

func summaryCmd() *cobra.Command {
	var month string
	var byMerchant bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show spend per category for a month",
		Long: `Show completed spend per category. Soft-deleted and provisional
transactions are excluded.

Examples:
  paisa summary                  # current month
  paisa summary --month 2026-07  # a specific month
  paisa summary --by-merchant    # group by merchant instead`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			start, end, err := monthRange(month)
			if err != nil {
				return err
			}

			db, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(db)

			var summary map[string]int64
			if byMerchant {
				summary, err = db.GetMerchantSummary(ctx, start, end)
			} else {
				summary, err = db.GetCategorySummary(ctx, start, end)
			}
			if err != nil {
				return fmt.Errorf("failed to load summary: %w", err)
			}

			if len(summary) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No completed transactions in range."))
				return nil
			}

			names := make([]string, 0, len(summary))
			for name := range summary {
				names = append(names, name)
			}
			sort.Strings(names)

			fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("Spend %s – %s",
				start.Format("2006-01-02"), end.Format("2006-01-02"))))
			var total int64
			for _, name := range names {
				fmt.Printf("%-28s %s\n", name, formatPaisa(summary[name]))
				total += summary[name]
			}
			fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf("%-28s %s", "total", formatPaisa(total))))

			return nil
		},
	}

	cmd.Flags().StringVarP(&month, "month", "m", "", "Month to summarize (format: 2026-07)")
	cmd.Flags().BoolVar(&byMerchant, "by-merchant", false, "Group by merchant instead of category")

	return cmd
}

func monthRange(month string) (time.Time, time.Time, error) {
	var start time.Time
	if month == "" {
		now := time.Now().UTC()
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	} else {
		parsed, err := time.Parse("2006-01", month)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid month %q (want 2026-07): %w", month, err)
		}
		start = parsed
	}
	return start, start.AddDate(0, 1, 0).Add(-time.Millisecond), nil
}
