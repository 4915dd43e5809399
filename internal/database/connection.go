package database

import (
	"fmt"
	"time"

	"github.com/787516/Matrimonial/internal/config"
	"github.com/787516/Matrimonial/internal/models"
	"github.com/787516/Matrimonial/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Partial unique indexes closing the duplicate-creation race. Both
// Postgres and SQLite accept this syntax.
var relationshipIndexes = []string{
	// one active interest or chat request per unordered pair and type
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_rel_active_pair
		ON relationship_requests (pair_key, request_type)
		WHERE status IN ('pending', 'accepted', 'blocked') AND request_type <> 'block'`,
	// one standing block per blocker and target
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_rel_active_block
		ON relationship_requests (sender_id, receiver_id)
		WHERE request_type = 'block' AND status = 'blocked'`,
}

func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.GetDSN()

	var logLevel gormlogger.LogLevel
	if cfg.AppEnv == "development" {
		logLevel = gormlogger.Info
	} else {
		logLevel = gormlogger.Error
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		// unique violations surface as gorm.ErrDuplicatedKey
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetMaxOpenConns(200)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	logger.Info("Database connected successfully")
	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	logger.Info("Running database migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.ProfileDetail{},
		&models.PartnerPreference{},
		&models.PhotoGalleryEntry{},
		&models.RelationshipRequest{},
		&models.Activity{},
		&models.SubscriptionPlan{},
		&models.UserSubscription{},
		&models.ProfileView{},
	)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	for _, stmt := range relationshipIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create relationship index: %w", err)
		}
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// DefaultPlans are the plans every deployment starts with.
func DefaultPlans() []models.SubscriptionPlan {
	return []models.SubscriptionPlan{
		{
			Name:            models.PlanFree,
			Price:           0,
			DurationInDays:  30,
			MaxProfileViews: 1,
			SupportLevel:    "Basic",
		},
		{
			Name:              models.PlanSilver,
			Price:             2500,
			DurationInDays:    90,
			CanViewContacts:   true,
			MaxProfileViews:   100,
			ChatAllowed:       true,
			UnlimitedInterest: true,
			SupportLevel:      "Basic",
		},
		{
			Name:              models.PlanGold,
			Price:             4000,
			DurationInDays:    180,
			CanViewContacts:   true,
			MaxProfileViews:   300,
			ChatAllowed:       true,
			UnlimitedInterest: true,
			SupportLevel:      "Advanced",
		},
		{
			Name:                  models.PlanPlatinum,
			Price:                 8000,
			DurationInDays:        360,
			CanViewContacts:       true,
			UnlimitedProfileViews: true,
			ChatAllowed:           true,
			UnlimitedInterest:     true,
			SupportLevel:          "Dedicated",
		},
	}
}

// SeedPlans inserts any default plan that is not present yet. Existing
// plans are left untouched so operators can edit them.
func SeedPlans(db *gorm.DB) error {
	logger.Info("Checking subscription plans...")

	for _, plan := range DefaultPlans() {
		var existing models.SubscriptionPlan
		err := db.Where("name = ?", plan.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("failed to look up plan %s: %w", plan.Name, err)
		}

		logger.Info("Seeding subscription plan", "plan", plan.Name)
		if err := db.Create(&plan).Error; err != nil {
			return fmt.Errorf("failed to seed plan %s: %w", plan.Name, err)
		}
	}

	return nil
}
