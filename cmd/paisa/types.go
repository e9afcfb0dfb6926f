package main

import (
	"fmt"

	"github.com/niharm/paisatrail/internal/cli"
	"github.com/niharm/paisatrail/internal/rules"
	"github.com/spf13/cobra"
)

func typesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types <category-name>",
		Short: "Show the transaction types a category may hold",
		Long: `Show the transaction types legal for a category, in preference
order. The first entry is the fallback used when resolution produces an
invalid combination.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			db, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(db)

			cat, err := db.GetCategoryByName(ctx, args[0])
			if err != nil {
				return fmt.Errorf("category %q not found: %w", args[0], err)
			}

			fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("%s (%s)", cat.Name, cat.Type)))
			for i, t := range rules.AllowedTypes(cat) {
				marker := "  "
				if i == 0 {
					marker = cli.SuccessStyle.Render("* ")
				}
				fmt.Printf("%s%s\n", marker, t)
			}

			return nil
		},
	}
}
