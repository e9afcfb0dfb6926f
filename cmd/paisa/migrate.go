package main

import (
	"fmt"

	"github.com/niharm/paisatrail/internal/cli"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// openStorage migrates as part of opening.
			db, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStorage(db)

			fmt.Println(cli.SuccessStyle.Render("Database is up to date."))
			return nil
		},
	}
}
