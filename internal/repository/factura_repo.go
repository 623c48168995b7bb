package repository

import (
	"context"
	"time"

	"invenfact/internal/dto"
	"invenfact/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FacturaRepository interface {
	Create(ctx context.Context, tx *gorm.DB, f *model.Factura) error
	FindByID(ctx context.Context, id uint) (*model.Factura, error)
	// FindByIDForUpdateTx loads the invoice and its lines with a row lock on
	// the header, so two concurrent anulaciones serialize and only one wins.
	FindByIDForUpdateTx(tx *gorm.DB, id uint) (*model.Factura, error)
	// AnularTx flips estado and records motivo, acting user and timestamp.
	AnularTx(tx *gorm.DB, id uint, motivo string, usuarioID uint, at time.Time) error
	List(ctx context.Context, filter dto.FacturaFilter) ([]model.Factura, int64, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type facturaRepo struct{ db *gorm.DB }

func NewFacturaRepository(db *gorm.DB) FacturaRepository { return &facturaRepo{db: db} }

func (r *facturaRepo) DB() *gorm.DB { return r.db }

func (r *facturaRepo) Create(ctx context.Context, tx *gorm.DB, f *model.Factura) error {
	return tx.WithContext(ctx).Create(f).Error
}

func (r *facturaRepo) FindByID(ctx context.Context, id uint) (*model.Factura, error) {
	var f model.Factura
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Usuario").
		Preload("AnuladaPor").
		First(&f, id).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *facturaRepo) FindByIDForUpdateTx(tx *gorm.DB, id uint) (*model.Factura, error) {
	var f model.Factura
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&f, id).Error
	if err != nil {
		return nil, err
	}
	// Lines are loaded separately: FOR UPDATE cannot be combined with the
	// LEFT JOINs a Preload would add on some drivers.
	if err := tx.Where("factura_id = ?", id).Find(&f.Items).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *facturaRepo) AnularTx(tx *gorm.DB, id uint, motivo string, usuarioID uint, at time.Time) error {
	return tx.Model(&model.Factura{}).Where("id = ?", id).Updates(map[string]interface{}{
		"estado":           model.FacturaAnulada,
		"motivo_anulacion": motivo,
		"anulada_por_id":   usuarioID,
		"anulada_at":       at,
	}).Error
}

func (r *facturaRepo) List(ctx context.Context, filter dto.FacturaFilter) ([]model.Factura, int64, error) {
	var facturas []model.Factura
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Factura{})

	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.Fecha != "" {
		q = q.Where("DATE(emitida_at) = ?", filter.Fecha)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Items").Preload("Usuario").
		Order("emitida_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&facturas).Error

	return facturas, total, err
}
