package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"facility-booking-backend/config"
	"facility-booking-backend/internal/model"
)

// Init initializes the database connection and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	log.Println("Running database migrations...")
	if err := db.AutoMigrate(
		&model.Facility{},
		&model.Booking{},
		&model.ApprovalRecord{},
		&model.RecurringBookingRule{},
		&model.NotificationOutbox{},
		&model.PushSubscription{},
	); err != nil {
		return nil, fmt.Errorf("automigrate failed: %w", err)
	}

	if cfg.EnableSlotExclusion {
		log.Println("Applying slot exclusion DDL...")
		if err := applySlotExclusionDDL(db); err != nil {
			return nil, err
		}
	}

	log.Println("Database initialization complete.")
	return db, nil
}

// applySlotExclusionDDL installs a Postgres exclusion constraint over
// (facility_id, booking_date, [start_time, end_time)) for pending and
// confirmed rows. The application already re-checks for conflicts inside
// the reservation transaction; the constraint closes the window where two
// concurrent requests both pass that check before either inserts.
func applySlotExclusionDDL(db *gorm.DB) error {
	ddls := []string{
		"CREATE EXTENSION IF NOT EXISTS btree_gist;",

		// Postgres has no built-in range type over text.
		"DO $$ BEGIN CREATE TYPE textrange AS RANGE (subtype = text); " +
			"EXCEPTION WHEN duplicate_object THEN NULL; END $$;",

		"ALTER TABLE bookings DROP CONSTRAINT IF EXISTS bookings_slot_excl;",

		// Half-open text ranges over zero-padded HH:MM sort the same as the
		// minutes they encode, so && matches the interval overlap rule.
		"ALTER TABLE bookings ADD CONSTRAINT bookings_slot_excl " +
			"EXCLUDE USING GIST (" +
			"facility_id WITH =, " +
			"booking_date WITH =, " +
			"textrange(start_time, end_time, '[)') WITH &&" +
			") WHERE (status IN ('pending','confirmed'));",
	}

	for _, ddl := range ddls {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("DDL failed on %q: %w", ddl, err)
		}
	}
	return nil
}
