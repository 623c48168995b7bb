package model

import "time"

// Producto is the catalog entry and the authoritative stock counter.
// Precios se guardan en centavos (int64) — nunca floats.
// StockActual solo se muta con deltas atómicos (ver producto_repo);
// una factura emitida jamás lo deja negativo.
type Producto struct {
	ID          uint   `gorm:"primaryKey"`
	Codigo      string `gorm:"uniqueIndex;not null"`
	Nombre      string `gorm:"index;not null"`
	Descripcion *string
	CategoriaID *uint `gorm:"index"`
	// PrecioCompra / PrecioVenta en centavos
	PrecioCompra int64 `gorm:"not null;default:0"`
	PrecioVenta  int64 `gorm:"not null;default:0"`
	StockActual  int   `gorm:"not null;default:0"`
	StockMinimo  int   `gorm:"not null;default:5"`
	Activo       bool  `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Categoria *Categoria `gorm:"foreignKey:CategoriaID"`
}

// TableName overrides GORM's default pluralization for Spanish names.
func (Producto) TableName() string { return "productos" }
