// Command trailctl runs maintenance tasks against the trail catalog database
// and asset store.
package main

import (
	"fmt"
	"os"

	"github.com/Baaaki/trail-catalog/internal/config"
	"github.com/Baaaki/trail-catalog/internal/database"
	"github.com/Baaaki/trail-catalog/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// verbose is set by the --verbose flag.
	verbose bool

	cfg *config.Config
	db  *gorm.DB
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "trailctl",
	Short:         "Maintenance commands for the trail catalog",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if err := logger.Init(verbose, zap.String("app", "trailctl")); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		var err error
		db, err = database.Connect(cfg)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		logger.Sync()
		if db == nil {
			return nil
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "development logging")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedAdminCmd)
	rootCmd.AddCommand(sweepAssetsCmd)
}
