package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jvesely/portfolio/internal/content"
)

var seedCmd = &cobra.Command{
	Use:   "seed [patterns...]",
	Short: "Import YAML content bundles into the local store",
	Long: `Imports projects, services, testimonials and skills from YAML bundles
into the local SQLite store. Patterns are doublestar globs and default to
content.seed from the config. Re-importing the same files updates the
existing documents instead of duplicating them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		patterns := cfg.Content.Seed
		if len(args) > 0 {
			patterns = args
		}

		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()
		store := content.NewStore(database)

		stats, files, err := seedStore(cmd.Context(), store, patterns, true)
		if err != nil {
			return fmt.Errorf("seeding: %w", err)
		}
		if len(files) == 0 {
			return fmt.Errorf("no files match %v", patterns)
		}

		counts, err := store.Counts(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d documents from %d files into %s\n", stats.Total(), len(files), database.Path())
		for _, typ := range content.DocTypes {
			fmt.Printf("  %-12s %d\n", typ, counts[typ])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
