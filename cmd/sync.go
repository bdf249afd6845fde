package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jvesely/portfolio/internal/content"
	"github.com/jvesely/portfolio/internal/progress"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Copy the hosted content store into the local store",
	Long: `Fetches every project, service, testimonial and skill from the hosted
content store and imports them into the local SQLite store, so the site
can be served offline with content.source local.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client, err := newCMSClient(cfg)
		if err != nil {
			return err
		}

		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()
		store := content.NewStore(database)

		ctx := cmd.Context()
		bundle, err := client.Snapshot(ctx)
		if err != nil {
			return fmt.Errorf("fetching hosted content: %w", err)
		}
		if bundle.Len() == 0 {
			fmt.Println("The hosted content store is empty, nothing to sync.")
			return nil
		}

		reporter := progress.NewReporter("Syncing content")
		stats, err := store.Import(ctx, bundle, progress.Track(reporter))
		reporter.Finish()
		if err != nil {
			return fmt.Errorf("importing hosted content: %w", err)
		}

		logger.Info("sync complete", zap.String("project", cfg.CMS.ProjectID), zap.Int("documents", stats.Total()))
		fmt.Printf("Synced %d projects, %d services, %d testimonials and %d skills into %s\n",
			stats.Projects, stats.Services, stats.Testimonials, stats.Skills, database.Path())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
