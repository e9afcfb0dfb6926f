package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/niharm/paisatrail/internal/cli"
	"github.com/niharm/paisatrail/internal/model"
	"github.com/niharm/paisatrail/internal/rules"
	"github.com/spf13/cobra"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Short:   "Edit stored transactions",
		Aliases: []string{"transactions"},
	}

	cmd.AddCommand(txSetCategoryCmd())
	cmd.AddCommand(txStatusCmd())
	cmd.AddCommand(txDeleteCmd())

	return cmd
}

func parseTransactionID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid transaction id %q", arg)
	}
	return id, nil
}

func txSetCategoryCmd() *cobra.Command {
	var manualType string

	cmd := &cobra.Command{
		Use:   "set-category <id> <category-name>",
		Short: "Recategorize a transaction",
		Long: `Recategorize a transaction. The transaction type is re-resolved for
the new category; an explicit --type is honored as a manual
classification. If the resolved type is not legal for the category, the
category's default type is used instead of failing.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseTransactionID(args[0])
			if err != nil {
				return err
			}

			db, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(db)

			cat, err := db.GetCategoryByName(ctx, args[1])
			if err != nil {
				return fmt.Errorf("category %q not found: %w", args[1], err)
			}

			// Manual edits carry no SMS direction context, so the
			// invariant corrections stay out of the picture here.
			txType := rules.ResolveTransactionType(rules.ResolveInput{
				Category:             cat,
				ManualClassification: manualType,
			})
			if v := rules.ValidateCategoryType(txType, cat); !v.Valid {
				fallback := rules.AllowedTypes(cat)[0]
				fmt.Println(cli.WarningStyle.Render(fmt.Sprintf(
					"%s; using %s instead", v.Reason, fallback)))
				txType = fallback
			}

			if err := db.UpdateTransactionType(ctx, id, cat.ID, txType); err != nil {
				return fmt.Errorf("failed to update transaction %d: %w", id, err)
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf(
				"Transaction %d → %s (%s)", id, cat.Name, txType)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&manualType, "type", "t", "", "Explicit transaction type (e.g. TRANSFER)")

	return cmd
}

func txStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Move a transaction through its lifecycle",
		Long: `Set a transaction's lifecycle status. Valid statuses: INTENT,
PENDING, COMPLETED, CANCELLED. Only COMPLETED transactions count toward
summaries.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseTransactionID(args[0])
			if err != nil {
				return err
			}

			status := model.TransactionStatus(args[1])
			switch status {
			case model.StatusIntent, model.StatusPending, model.StatusCompleted, model.StatusCancelled:
			default:
				return fmt.Errorf("invalid status %q", args[1])
			}

			db, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(db)

			if err := db.UpdateTransactionStatus(ctx, id, status); err != nil {
				return fmt.Errorf("failed to update transaction %d: %w", id, err)
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Transaction %d → %s", id, status)))
			return nil
		},
	}
}

func txDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Soft-delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseTransactionID(args[0])
			if err != nil {
				return err
			}

			db, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(db)

			if err := db.SoftDeleteTransaction(ctx, id, time.Now().UTC()); err != nil {
				return fmt.Errorf("failed to delete transaction %d: %w", id, err)
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Transaction %d deleted", id)))
			return nil
		},
	}
}
