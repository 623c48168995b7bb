package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EstadoFactura is a closed enumeration — the only legal transition is
// emitida → anulada, exactly once.
type EstadoFactura string

const (
	FacturaEmitida EstadoFactura = "emitida"
	FacturaAnulada EstadoFactura = "anulada"
)

// Factura is the invoice header. Montos en centavos; siempre se cumple
// Subtotal + MontoIVA == Total (calculado, nunca editable por separado).
// Las facturas nunca se borran: anular es la única reversión.
type Factura struct {
	ID uint `gorm:"primaryKey"`
	// Numero is the human-facing sequential document number, e.g. FAC-2026-000001
	Numero        string `gorm:"uniqueIndex;not null"`
	UsuarioID     uint   `gorm:"index;not null"`
	ClienteNombre *string
	Subtotal      int64           `gorm:"not null"`
	TasaIVA       decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0;column:tasa_iva"`
	MontoIVA      int64           `gorm:"not null;default:0;column:monto_iva"`
	Total         int64           `gorm:"not null"`
	Notas         *string
	Estado        EstadoFactura `gorm:"type:varchar(20);not null;default:'emitida'"`

	MotivoAnulacion *string
	AnuladaPorID    *uint
	EmitidaAt       time.Time `gorm:"not null"`
	AnuladaAt       *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	Items      []FacturaItem `gorm:"foreignKey:FacturaID"`
	Usuario    *Usuario      `gorm:"foreignKey:UsuarioID"`
	AnuladaPor *Usuario      `gorm:"foreignKey:AnuladaPorID"`
}

func (Factura) TableName() string { return "facturas" }

// FacturaItem is one line of an invoice. Nombre, código y precio unitario
// son snapshots tomados al emitir — cambios posteriores del producto no
// alteran facturas ya emitidas.
type FacturaItem struct {
	ID             uint   `gorm:"primaryKey"`
	FacturaID      uint   `gorm:"index;not null"`
	ProductoID     uint   `gorm:"index;not null"`
	ProductoNombre string `gorm:"not null"`
	ProductoCodigo string `gorm:"not null"`
	Cantidad       int    `gorm:"not null"`
	// PrecioUnitario en centavos, precio de venta vigente al emitir
	PrecioUnitario int64 `gorm:"not null"`
	Subtotal       int64 `gorm:"not null"`
	CreatedAt      time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (FacturaItem) TableName() string { return "factura_items" }
