package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/niharm/paisatrail/internal/classification"
	"github.com/niharm/paisatrail/internal/cli"
	"github.com/niharm/paisatrail/internal/common"
	"github.com/niharm/paisatrail/internal/dedup"
	"github.com/niharm/paisatrail/internal/engine"
	"github.com/niharm/paisatrail/internal/importer"
	"github.com/niharm/paisatrail/internal/memory"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <file.jsonl> [more files...]",
		Short: "Ingest parsed SMS bundles",
		Long: `Ingest normalized parsed-SMS bundles from JSONL files.

Each message runs through duplicate detection, type resolution, and
merchant memory before being stored. Duplicates are reported, not saved.

Examples:
  paisa ingest inbox_scan.jsonl
  paisa ingest --dry-run inbox_scan.jsonl`,
		Args: cobra.MinimumNArgs(1),
		RunE: runIngest,
	}

	cmd.Flags().Bool("dry-run", false, "Preview without saving changes")
	_ = viper.BindPFlag("ingest.dry_run", cmd.Flags().Lookup("dry-run"))

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dryRun := viper.GetBool("ingest.dry_run")

	slog.Info("Starting SMS ingest", "files", len(args), "dry_run", dryRun)

	db, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStorage(db)

	eng := engine.New(
		db,
		dedup.NewDetector(db),
		memory.NewManager(db),
		classification.NewKeywordClassifier(),
	)

	var imported, duplicates, failed, total int
	for _, path := range args {
		messages, err := importer.ReadMessagesFile(path)
		if err != nil {
			return common.NewUserError(fmt.Sprintf("could not read %s", path), err)
		}
		if len(messages) == 0 {
			slog.Warn("No messages in file", "file", path)
			continue
		}
		total += len(messages)

		bar := progressbar.Default(int64(len(messages)), path)
		for _, msg := range messages {
			_ = bar.Add(1)

			if dryRun {
				continue
			}

			result, err := eng.ProcessMessage(ctx, msg)
			switch {
			case errors.Is(err, common.ErrInvalidMessage):
				failed++
				slog.Warn("Skipping invalid message", "error", err)
			case err != nil:
				return fmt.Errorf("ingest failed at %s: %w", path, err)
			case result.Duplicate != nil:
				duplicates++
			default:
				imported++
			}
		}
		_ = bar.Finish()
	}

	if total == 0 {
		return common.NewUserError("nothing to ingest", common.ErrNoMessages)
	}

	if dryRun {
		fmt.Println(cli.SubtleStyle.Render("Dry run: nothing written."))
		return nil
	}

	fmt.Println(cli.TitleStyle.Render("Ingest complete"))
	fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("  %d transaction(s) stored", imported)))
	if duplicates > 0 {
		fmt.Println(cli.WarningStyle.Render(fmt.Sprintf("  %d duplicate(s) skipped", duplicates)))
	}
	if failed > 0 {
		fmt.Println(cli.ErrorStyle.Render(fmt.Sprintf("  %d invalid message(s) ignored", failed)))
	}

	return nil
}
