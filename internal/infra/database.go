package infra

import (
	"fmt"

	"movecaixa/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate
// for the domain models, then applies the idempotent SQL patches that GORM
// cannot express (partial indexes).
//
// TranslateError is enabled so unique-constraint violations surface as
// gorm.ErrDuplicatedKey — the repository layer depends on that to map the
// open-caixa conflict.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations creates/updates the schema. Also used by integration tests
// against a throwaway database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Caixa{},
		&model.Lancamento{},
		&model.Sangria{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot handle.
// The partial unique index below is what actually enforces the
// one-open-caixa-per-recebedor invariant: the service's read-then-create
// check alone would race under concurrent opens.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uni_caixas_recebedor_aberto') THEN
		    CREATE UNIQUE INDEX uni_caixas_recebedor_aberto
		        ON caixas (usuario_id)
		        WHERE status = 'aberto';
		  END IF;
		END $$`,
		// Listing indexes for the ordered per-caixa reads
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_lancamentos_caixa_created') THEN
		    CREATE INDEX idx_lancamentos_caixa_created
		        ON lancamentos (caixa_id, created_at);
		  END IF;
		END $$`,
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_sangrias_caixa_created') THEN
		    CREATE INDEX idx_sangrias_caixa_created
		        ON sangrias (caixa_id, created_at);
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
