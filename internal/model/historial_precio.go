package model

import "time"

// HistorialPrecio registra cada cambio real de precio de un producto.
// Los registros son inmutables — nunca se eliminan ni modifican. Solo se
// crea una fila cuando al menos uno de los dos precios cambió de valor.
type HistorialPrecio struct {
	ID         uint `gorm:"primaryKey"`
	ProductoID uint `gorm:"index;not null"`
	UsuarioID  uint `gorm:"index;not null"`
	// Montos en centavos
	CompraAntes   int64  `gorm:"not null"`
	CompraDespues int64  `gorm:"not null"`
	VentaAntes    int64  `gorm:"not null"`
	VentaDespues  int64  `gorm:"not null"`
	Motivo        string `gorm:"not null;default:'manual'"` // manual | actualizacion_masiva
	CreatedAt     time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
	Usuario  *Usuario  `gorm:"foreignKey:UsuarioID"`
}

func (HistorialPrecio) TableName() string { return "historial_precios" }
