package main

import (
	"fmt"

	"github.com/niharm/paisatrail/internal/cli"
	"github.com/niharm/paisatrail/internal/model"
	"github.com/spf13/cobra"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage spending categories",
	}

	cmd.AddCommand(categoriesListCmd())
	cmd.AddCommand(categoriesAddCmd())
	cmd.AddCommand(categoriesMergeCmd())

	return cmd
}

func categoriesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			db, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(db)

			categories, err := db.GetCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to load categories: %w", err)
			}

			fmt.Println(cli.HeaderStyle.Render(fmt.Sprintf("%-4s %-24s %-18s %s", "ID", "NAME", "TYPE", "DESCRIPTION")))
			for _, cat := range categories {
				desc := cat.Description
				if desc == "" {
					desc = cli.SubtleStyle.Render("(no description)")
				}
				fmt.Printf("%-4d %-24s %-18s %s\n", cat.ID, cat.Name, cat.Type, desc)
			}

			return nil
		},
	}
}

func categoriesAddCmd() *cobra.Command {
	var description string
	var categoryType string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			catType := model.CategoryType(categoryType)
			valid := false
			for _, t := range model.AllCategoryTypes {
				if t == catType {
					valid = true
					break
				}
			}
			if !valid {
				return fmt.Errorf("invalid category type %q (valid: %v)", categoryType, model.AllCategoryTypes)
			}

			db, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(db)

			cat, err := db.CreateCategory(ctx, args[0], description, catType)
			if err != nil {
				return fmt.Errorf("failed to create category: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Created category %q (id %d)", cat.Name, cat.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Category description")
	cmd.Flags().StringVarP(&categoryType, "type", "t", "VARIABLE_EXPENSE", "Category type")

	return cmd
}

func categoriesMergeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge <from-name> <to-name>",
		Short: "Move every transaction from one category into another",
		Long: `Move every transaction from one category into another as a single
atomic update. The source category is left in place; remove it with a
follow-up edit once it is empty.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			db, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(db)

			from, err := db.GetCategoryByName(ctx, args[0])
			if err != nil {
				return fmt.Errorf("category %q not found: %w", args[0], err)
			}
			to, err := db.GetCategoryByName(ctx, args[1])
			if err != nil {
				return fmt.Errorf("category %q not found: %w", args[1], err)
			}
			if from.ID == to.ID {
				return fmt.Errorf("source and target are the same category")
			}

			if err := db.UpdateTransactionCategoriesByID(ctx, from.ID, to.ID); err != nil {
				return fmt.Errorf("failed to merge categories: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf(
				"Moved transactions from %q to %q", from.Name, to.Name)))
			return nil
		},
	}
}
