package main

import (
	"fmt"

	"github.com/Baaaki/trail-catalog/internal/assets"
	"github.com/Baaaki/trail-catalog/internal/journal"
	"github.com/Baaaki/trail-catalog/internal/repository"
	"github.com/Baaaki/trail-catalog/internal/service"
	"github.com/spf13/cobra"
)

var sweepAssetsCmd = &cobra.Command{
	Use:   "sweep-assets",
	Short: "Remove track directories that no trail owns",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := assets.NewStore(cfg.UploadBaseDir)
		if err != nil {
			return err
		}
		orphans, err := journal.Open(cfg.AssetJournalPath)
		if err != nil {
			return err
		}
		defer orphans.Close()

		userRepo := repository.NewUserRepository(db)
		trailRepo := repository.NewTrailRepository(db)
		trails := service.NewTrailService(
			db,
			trailRepo,
			service.NewReferenceChecker(userRepo, trailRepo),
			service.NewCascader(userRepo, repository.NewFeedbackRepository(db), repository.NewReportRepository(db)),
			store,
			orphans,
			nil,
		)

		res, err := trails.SweepOrphans(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Removed %d, failed %d\n", len(res.Removed), len(res.Failed))
		for _, id := range res.Failed {
			fmt.Fprintf(out, "  still present: %s\n", id)
		}
		if len(res.Failed) > 0 {
			return fmt.Errorf("%d asset directories could not be removed", len(res.Failed))
		}
		return nil
	},
}
