package handler

import (
	"net/http"

	"invenfact/internal/apierror"
	"invenfact/internal/dto"
	"invenfact/internal/middleware"
	"invenfact/internal/service"

	"github.com/gin-gonic/gin"
)

type InventarioHandler struct{ svc service.InventarioService }

func NewInventarioHandler(svc service.InventarioService) *InventarioHandler {
	return &InventarioHandler{svc: svc}
}

// AjustarStock godoc
// @Summary      Ajuste manual de stock
// @Description  Aplica un delta con signo al stock del producto y registra el movimiento. Una salida mayor al stock disponible se rechaza.
// @Tags         inventario
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path int                    true "ID del producto"
// @Param        body body dto.AjusteStockRequest true "Cantidad con signo y motivo"
// @Success      200  {object} dto.AjusteStockResponse
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/inventario/{id}/ajustar [post]
func (h *InventarioHandler) AjustarStock(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.AjusteStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	resp, err := h.svc.AjustarStock(c.Request.Context(), id, claims.UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerAlertas godoc
// @Summary      Alertas de stock bajo
// @Description  Productos activos cuyo stock actual está en o por debajo del mínimo configurado.
// @Tags         inventario
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.AlertaStockResponse
// @Router       /v1/inventario/alertas [get]
func (h *InventarioHandler) ObtenerAlertas(c *gin.Context) {
	resp, err := h.svc.ObtenerAlertas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarMovimientos godoc
// @Summary      Listar movimientos de stock
// @Description  Diario de movimientos (emisión, anulación, ajuste manual), más recientes primero.
// @Tags         inventario
// @Produce      json
// @Security     BearerAuth
// @Param        producto_id query int    false "ID del producto"
// @Param        tipo        query string false "emision_factura | anulacion_factura | ajuste_manual"
// @Param        page        query int    false "Página (default 1)"
// @Param        limit       query int    false "Registros por página (default 100)"
// @Success      200 {object} dto.MovimientoStockListResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/inventario/movimientos [get]
func (h *InventarioHandler) ListarMovimientos(c *gin.Context) {
	var filter dto.MovimientoStockFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.ListarMovimientos(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
