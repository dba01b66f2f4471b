package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/rshade/ghgledger/internal/emissions"
)

const migrationBackfillCategory = "2025-06-01_backfill_record_category"

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	name  string
	apply func(*gorm.DB) error
}

func applyMigrations(db *gorm.DB, logger zerolog.Logger) error {
	migrations := []migrationDefinition{
		{name: migrationBackfillCategory, apply: backfillCategory},
	}

	for _, m := range migrations {
		var rec migrationRecord
		err := db.Where("name = ?", m.name).Take(&rec).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err = m.apply(db); err != nil {
			return fmt.Errorf("migration %s: %w", m.name, err)
		}
		applied := migrationRecord{Name: m.name, AppliedAtSeconds: time.Now().UTC().Unix()}
		if err = db.Create(&applied).Error; err != nil {
			return err
		}
		logger.Info().Str("component", "store").Str("migration", m.name).Msg("database migration applied")
	}
	return nil
}

// backfillCategory fills the category column for rows written before it
// existed.
func backfillCategory(db *gorm.DB) error {
	for _, m := range emissions.AllMethods() {
		err := db.Model(&recordRow{}).
			Where("method = ? AND (category IS NULL OR category = '')", m.String()).
			Update("category", string(m.Category())).Error
		if err != nil {
			return err
		}
	}
	return nil
}
