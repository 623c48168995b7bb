package dto

// ─── Historial de precios ─────────────────────────────────────────────────────

type HistorialPrecioItem struct {
	ID            uint    `json:"id"`
	ProductoID    uint    `json:"producto_id"`
	UsuarioID     uint    `json:"usuario_id"`
	UsuarioNombre *string `json:"usuario_nombre,omitempty"`
	CompraAntes   int64   `json:"compra_antes"`
	CompraDespues int64   `json:"compra_despues"`
	VentaAntes    int64   `json:"venta_antes"`
	VentaDespues  int64   `json:"venta_despues"`
	Motivo        string  `json:"motivo"`
	CreatedAt     string  `json:"created_at"`
}

type HistorialPrecioListResponse struct {
	Data  []HistorialPrecioItem `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}
