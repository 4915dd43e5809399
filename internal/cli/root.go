package cli

import (
	"fmt"
	"log"

	"github.com/787516/Matrimonial/internal/config"
	"github.com/787516/Matrimonial/internal/database"
	"github.com/787516/Matrimonial/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// loadConfig and openDB are replaced in tests.
var loadConfig = config.LoadConfig

var openDB = func() (*gorm.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return database.Connect(cfg)
}

var rootCmd = &cobra.Command{
	Use:   "matrimonyctl",
	Short: "Administrative tasks for the matrimonial API",
	Long: `matrimonyctl runs maintenance tasks against the matrimonial database:
schema migration, plan seeding, workbook imports, manual subscriptions and
API tokens for support staff and integration tests.

Database settings are read from the same environment variables the API
server uses (DB_HOST, DB_USER, DB_PASSWORD, ...), including a .env file in
the working directory.`,
	SilenceUsage: true,
}

// Execute loads the environment and runs the root command.
func Execute() error {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}
	logger.Init()
	defer logger.Sync()

	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(migrateCmd, seedPlansCmd, importCmd, plansCmd, subscribeCmd, tokenCmd)
}

func connect() (*gorm.DB, error) {
	db, err := openDB()
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}
