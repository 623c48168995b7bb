package dto

import "github.com/shopspring/decimal"

// ─── Filter ──────────────────────────────────────────────────────────────────

type ProductoFilter struct {
	Codigo      string `form:"codigo"`
	Nombre      string `form:"nombre"`
	CategoriaID uint   `form:"categoria_id"`
	Activo      string `form:"activo"` // "", "false", "all"
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	Codigo      string  `json:"codigo"       validate:"required,min=1,max=50"`
	Nombre      string  `json:"nombre"       validate:"required,min=2,max=200"`
	Descripcion *string `json:"descripcion"  validate:"omitempty,max=1000"`
	CategoriaID *uint   `json:"categoria_id"`
	// Precios en centavos
	PrecioCompra int64 `json:"precio_compra" validate:"min=0"`
	PrecioVenta  int64 `json:"precio_venta"  validate:"min=0"`
	StockInicial int   `json:"stock_inicial" validate:"min=0"`
	StockMinimo  int   `json:"stock_minimo"  validate:"min=0"`
}

// ActualizarProductoRequest: nil = sin cambio. Un cambio de precio genera
// una entrada en el historial dentro de la misma transacción.
type ActualizarProductoRequest struct {
	Nombre       *string `json:"nombre"        validate:"omitempty,min=2,max=200"`
	Descripcion  *string `json:"descripcion"   validate:"omitempty,max=1000"`
	CategoriaID  *uint   `json:"categoria_id"`
	PrecioCompra *int64  `json:"precio_compra" validate:"omitempty,min=0"`
	PrecioVenta  *int64  `json:"precio_venta"  validate:"omitempty,min=0"`
	StockMinimo  *int    `json:"stock_minimo"  validate:"omitempty,min=0"`
	// Motivo queda registrado en el historial de precios
	Motivo string `json:"motivo" validate:"omitempty,max=200"`
}

type ActualizarPreciosMasivoRequest struct {
	CategoriaID uint `json:"categoria_id" validate:"required,min=1"`
	// Porcentaje aplicado a ambos precios, p.ej. 12.5 o -5
	Porcentaje decimal.Decimal `json:"porcentaje" validate:"required"`
	Motivo     string          `json:"motivo"     validate:"required,min=3,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID           uint    `json:"id"`
	Codigo       string  `json:"codigo"`
	Nombre       string  `json:"nombre"`
	Descripcion  *string `json:"descripcion,omitempty"`
	CategoriaID  *uint   `json:"categoria_id,omitempty"`
	Categoria    *string `json:"categoria,omitempty"`
	PrecioCompra int64   `json:"precio_compra"`
	PrecioVenta  int64   `json:"precio_venta"`
	StockActual  int     `json:"stock_actual"`
	StockMinimo  int     `json:"stock_minimo"`
	Activo       bool    `json:"activo"`
}

type ProductoListResponse struct {
	Data  []ProductoResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

type ActualizarPreciosMasivoResponse struct {
	CategoriaID          uint `json:"categoria_id"`
	ProductosActualizados int `json:"productos_actualizados"`
	EntradasHistorial    int  `json:"entradas_historial"`
}

// ConsultaPreciosResponse serves the public price-check endpoint.
type ConsultaPreciosResponse struct {
	Nombre          string `json:"nombre"`
	PrecioVenta     int64  `json:"precio_venta"`
	StockDisponible int    `json:"stock_disponible"`
}
