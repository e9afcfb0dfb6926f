package main

import (
	"fmt"

	"github.com/niharm/paisatrail/internal/cli"
	"github.com/niharm/paisatrail/internal/dedup"
	"github.com/niharm/paisatrail/internal/engine"
	"github.com/niharm/paisatrail/internal/memory"
	"github.com/niharm/paisatrail/internal/model"
	"github.com/spf13/cobra"
)

func merchantsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merchants",
		Short: "Inspect and confirm learned merchant mappings",
	}

	cmd.AddCommand(merchantsListCmd())
	cmd.AddCommand(merchantsConfirmCmd())

	return cmd
}

func merchantsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List learned merchant mappings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			db, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(db)

			memories, err := db.GetAllMerchantMemories(ctx)
			if err != nil {
				return fmt.Errorf("failed to load merchant memories: %w", err)
			}

			if len(memories) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No merchant mappings learned yet."))
				return nil
			}

			fmt.Println(cli.HeaderStyle.Render(fmt.Sprintf("%-28s %-6s %-6s %-10s %s", "MERCHANT", "CAT", "SEEN", "LOCKED", "CONFIRMED")))
			for _, mem := range memories {
				locked := ""
				if mem.Locked {
					locked = "yes"
				}
				confirmed := ""
				if mem.UserConfirmed {
					confirmed = "yes"
				}
				fmt.Printf("%-28s %-6d %-6d %-10s %s\n",
					mem.NormalizedName, mem.CategoryID, mem.OccurrenceCount, locked, confirmed)
			}

			return nil
		},
	}
}

func merchantsConfirmCmd() *cobra.Command {
	var txType string

	cmd := &cobra.Command{
		Use:   "confirm <merchant> <category-id>",
		Short: "Confirm a merchant's category, locking the mapping immediately",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var categoryID int
			if _, err := fmt.Sscanf(args[1], "%d", &categoryID); err != nil {
				return fmt.Errorf("invalid category id %q: %w", args[1], err)
			}

			parsedType, ok := model.ParseTransactionType(txType)
			if txType != "" && !ok {
				return fmt.Errorf("unrecognized transaction type %q", txType)
			}
			if txType == "" {
				parsedType = ""
			}

			db, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(db)

			eng := engine.New(db, dedup.NewDetector(db), memory.NewManager(db), nil)
			mem, err := eng.ConfirmMerchant(ctx, args[0], categoryID, parsedType)
			if err != nil {
				return fmt.Errorf("failed to confirm mapping: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf(
				"Locked %s → category %d", mem.NormalizedName, mem.CategoryID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&txType, "type", "t", "", "Transaction type to pin (optional)")

	return cmd
}
