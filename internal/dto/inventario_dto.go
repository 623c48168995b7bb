package dto

// ─── Ajuste manual ───────────────────────────────────────────────────────────

type AjusteStockRequest struct {
	// Cantidad con signo: positiva entra stock, negativa sale
	Cantidad int    `json:"cantidad" validate:"required"`
	Motivo   string `json:"motivo"   validate:"required,min=3,max=200"`
}

type AjusteStockResponse struct {
	ProductoID    uint `json:"producto_id"`
	StockAnterior int  `json:"stock_anterior"`
	StockNuevo    int  `json:"stock_nuevo"`
}

// ─── Alertas ─────────────────────────────────────────────────────────────────

type AlertaStockResponse struct {
	ProductoID  uint   `json:"producto_id"`
	Codigo      string `json:"codigo"`
	Nombre      string `json:"nombre"`
	StockActual int    `json:"stock_actual"`
	StockMinimo int    `json:"stock_minimo"`
}

// ─── Movimientos ─────────────────────────────────────────────────────────────

type MovimientoStockResponse struct {
	ID             uint   `json:"id"`
	ProductoID     uint   `json:"producto_id"`
	ProductoNombre string `json:"producto_nombre"`
	Tipo           string `json:"tipo"`
	Cantidad       int    `json:"cantidad"`
	StockAnterior  int    `json:"stock_anterior"`
	StockNuevo     int    `json:"stock_nuevo"`
	Motivo         string `json:"motivo"`
	ReferenciaID   *uint  `json:"referencia_id,omitempty"`
	CreatedAt      string `json:"created_at"`
}

type MovimientoStockListResponse struct {
	Data  []MovimientoStockResponse `json:"data"`
	Total int64                     `json:"total"`
	Page  int                       `json:"page"`
	Limit int                       `json:"limit"`
}

type MovimientoStockFilter struct {
	ProductoID uint   `form:"producto_id"`
	Tipo       string `form:"tipo"`
	Page       int    `form:"page,default=1"    validate:"min=1"`
	Limit      int    `form:"limit,default=100" validate:"min=1,max=500"`
}
