package model

import "time"

// MovimientoStock registra cada cambio de stock de un producto.
// Se crea automáticamente al emitir o anular una factura y en ajustes
// manuales. Cantidad con signo: positiva = entrada, negativa = salida.
type MovimientoStock struct {
	ID            uint   `gorm:"primaryKey"`
	ProductoID    uint   `gorm:"index;not null"`
	Tipo          string `gorm:"not null"` // "emision_factura" | "anulacion_factura" | "ajuste_manual"
	Cantidad      int    `gorm:"not null"`
	StockAnterior int    `gorm:"not null"`
	StockNuevo    int    `gorm:"not null"`
	Motivo        string
	// ReferenciaID apunta a la factura cuando aplica
	ReferenciaID *uint `gorm:"index"`
	CreatedAt    time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

// TableName overrides GORM's default pluralization (movimiento_stocks → movimientos_stock).
func (MovimientoStock) TableName() string { return "movimientos_stock" }
