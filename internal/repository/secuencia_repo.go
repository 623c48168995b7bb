package repository

import (
	"context"
	"errors"
	"time"

	"invenfact/internal/apierror"
	"invenfact/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SecuenciaRepository allocates document numbers. The allocation is always
// part of the CALLER's transaction: the counter advance only becomes durable
// when the caller commits, so a failed emisión never consumes a number.
type SecuenciaRepository interface {
	// AllocateNextTx locks the sequence row FOR UPDATE, formats the current
	// counter and advances it by 1 inside tx. Two concurrent emisiones
	// serialize on the row lock, so no number is ever issued twice.
	AllocateNextTx(tx *gorm.DB, tipo model.TipoDocumento) (string, error)

	FindByTipo(ctx context.Context, tipo model.TipoDocumento) (*model.SecuenciaDocumento, error)
}

type secuenciaRepo struct{ db *gorm.DB }

func NewSecuenciaRepository(db *gorm.DB) SecuenciaRepository { return &secuenciaRepo{db: db} }

func (r *secuenciaRepo) AllocateNextTx(tx *gorm.DB, tipo model.TipoDocumento) (string, error) {
	var seq model.SecuenciaDocumento
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tipo = ?", tipo).
		First(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apierror.NotFound("no hay secuencia configurada para el tipo de documento %s", tipo)
	}
	if err != nil {
		return "", apierror.Storage(err, "error leyendo la secuencia %s", tipo)
	}

	numero := seq.Format(seq.ProximoNumero, time.Now())

	if err := tx.Model(&model.SecuenciaDocumento{}).
		Where("id = ?", seq.ID).
		Update("proximo_numero", gorm.Expr("proximo_numero + 1")).Error; err != nil {
		return "", apierror.Storage(err, "error avanzando la secuencia %s", tipo)
	}
	return numero, nil
}

func (r *secuenciaRepo) FindByTipo(ctx context.Context, tipo model.TipoDocumento) (*model.SecuenciaDocumento, error) {
	var seq model.SecuenciaDocumento
	err := r.db.WithContext(ctx).Where("tipo = ?", tipo).First(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.NotFound("no hay secuencia configurada para el tipo de documento %s", tipo)
	}
	if err != nil {
		return nil, err
	}
	return &seq, nil
}
