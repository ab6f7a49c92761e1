package infra

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"peppolsheet/internal/model"
)

// NewDatabase opens the Supabase Postgres database through GORM (pgx driver),
// migrates the service's own tables and applies the idempotent SQL patches
// GORM cannot express.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(15)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates or updates the service tables. Also used by the
// integration tests against a throwaway container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.LegalEntity{},
		&model.PeppolIdentifier{},
		&model.Submission{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent DDL that AutoMigrate does not cover.
// Every statement is guarded so re-running on a patched schema is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"submissions status check", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_submissions_status') THEN
    ALTER TABLE submissions
      ADD CONSTRAINT chk_submissions_status CHECK (status IN ('sent', 'failed'));
  END IF;
END $$`},
		{"submissions document type check", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_submissions_document_type') THEN
    ALTER TABLE submissions
      ADD CONSTRAINT chk_submissions_document_type CHECK (document_type IN ('invoice', 'credit_note', 'order'));
  END IF;
END $$`},
		// failed sends are what support looks at first
		{"partial index on failed submissions", `
CREATE INDEX IF NOT EXISTS idx_submissions_failed
    ON submissions (tenant_id, created_at DESC)
    WHERE status = 'failed'`},
		{"legal entity gateway id unique per tenant", `
CREATE UNIQUE INDEX IF NOT EXISTS idx_legal_entities_tenant_storecove
    ON legal_entities (tenant_id, storecove_legal_entity_id)`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
