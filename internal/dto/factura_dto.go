package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// FacturaFilter is bound from query string of GET /v1/facturas.
type FacturaFilter struct {
	Fecha  string `form:"fecha"`                // YYYY-MM-DD; empty = sin filtro
	Estado string `form:"estado,default=all"`   // emitida | anulada | all
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemFacturaRequest struct {
	ProductoID uint `json:"producto_id" validate:"required,min=1"`
	Cantidad   int  `json:"cantidad"    validate:"required,min=1"`
}

type EmitirFacturaRequest struct {
	Items []ItemFacturaRequest `json:"items" validate:"required,min=1,dive"`
	// TasaIVA en porcentaje (p.ej. 19 o 10.5); cero u omitida = exenta
	TasaIVA       decimal.Decimal `json:"tasa_iva"       validate:"omitempty,min=0,max=100"`
	ClienteNombre *string         `json:"cliente_nombre" validate:"omitempty,max=200"`
	Notas         *string         `json:"notas"          validate:"omitempty,max=1000"`
}

type AnularFacturaRequest struct {
	Motivo string `json:"motivo" validate:"required,min=5"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemFacturaResponse struct {
	ProductoID     uint   `json:"producto_id"`
	Producto       string `json:"producto"`
	Codigo         string `json:"codigo"`
	Cantidad       int    `json:"cantidad"`
	PrecioUnitario int64  `json:"precio_unitario"`
	Subtotal       int64  `json:"subtotal"`
}

type FacturaResponse struct {
	ID              uint                  `json:"id"`
	Numero          string                `json:"numero"`
	UsuarioID       uint                  `json:"usuario_id"`
	ClienteNombre   *string               `json:"cliente_nombre,omitempty"`
	Items           []ItemFacturaResponse `json:"items"`
	Subtotal        int64                 `json:"subtotal"`
	TasaIVA         decimal.Decimal       `json:"tasa_iva"`
	MontoIVA        int64                 `json:"monto_iva"`
	Total           int64                 `json:"total"`
	Notas           *string               `json:"notas,omitempty"`
	Estado          string                `json:"estado"`
	MotivoAnulacion *string               `json:"motivo_anulacion,omitempty"`
	EmitidaAt       string                `json:"emitida_at"`
	AnuladaAt       *string               `json:"anulada_at,omitempty"`
}

type FacturaListResponse struct {
	Data  []FacturaResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
