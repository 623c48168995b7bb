package infra

import (
	"fmt"

	"invenfact/internal/config"
	"invenfact/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate
// to create/update all tables, then seeds the document sequences that the
// billing engine treats as configuration.
func NewDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
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

	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Categoria{},
		&model.Producto{},
		&model.Factura{},
		&model.FacturaItem{},
		&model.SecuenciaDocumento{},
		&model.HistorialPrecio{},
		&model.MovimientoStock{},
	); err != nil {
		return nil, fmt.Errorf("AutoMigrate: %w", err)
	}

	if err := SeedSecuencias(db, cfg); err != nil {
		return nil, fmt.Errorf("seed secuencias: %w", err)
	}

	return db, nil
}

// SeedSecuencias creates the FACTURA numbering row when missing. Idempotent:
// an existing row is never touched, so counters survive restarts and config
// changes do not renumber a live series.
func SeedSecuencias(db *gorm.DB, cfg *config.Config) error {
	return db.Exec(`
		INSERT INTO secuencias_documento (tipo, proximo_numero, prefijo, con_anio, relleno, updated_at)
		VALUES (?, 1, ?, ?, ?, NOW())
		ON CONFLICT (tipo) DO NOTHING
	`, string(model.DocFactura), cfg.FacturaPrefijo, cfg.FacturaConAnio, cfg.FacturaRelleno).Error
}
