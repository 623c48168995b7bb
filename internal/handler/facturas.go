package handler

import (
	"net/http"

	"invenfact/internal/apierror"
	"invenfact/internal/dto"
	"invenfact/internal/middleware"
	"invenfact/internal/service"

	"github.com/gin-gonic/gin"
)

type FacturasHandler struct{ svc service.FacturacionService }

func NewFacturasHandler(svc service.FacturacionService) *FacturasHandler {
	return &FacturasHandler{svc: svc}
}

// EmitirFactura godoc
// @Summary      Emitir una factura
// @Description  Convierte un carrito en una factura ACID: asigna número correlativo sin huecos, descuenta stock y registra movimientos.
// @Tags         facturas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.EmitirFacturaRequest true "Detalle de la factura"
// @Success      201  {object} dto.FacturaResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/facturas [post]
func (h *FacturasHandler) EmitirFactura(c *gin.Context) {
	var req dto.EmitirFacturaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	resp, err := h.svc.EmitirFactura(c.Request.Context(), claims.UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// AnularFactura godoc
// @Summary      Anular factura
// @Description  Anula una factura emitida: restaura el stock de cada línea y marca la cabecera como anulada. Una factura solo se anula una vez.
// @Tags         facturas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     int                       true "ID de la factura"
// @Param        body body     dto.AnularFacturaRequest  true "Motivo de anulación"
// @Success      200  {object} dto.FacturaResponse
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/facturas/{id}/anular [post]
func (h *FacturasHandler) AnularFactura(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.AnularFacturaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	resp, err := h.svc.AnularFactura(c.Request.Context(), id, claims.UserID, req.Motivo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerFactura godoc
// @Summary      Obtener factura por ID
// @Tags         facturas
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "ID de la factura"
// @Success      200 {object} dto.FacturaResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/facturas/{id} [get]
func (h *FacturasHandler) ObtenerFactura(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerFactura(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarFacturas godoc
// @Summary      Listar facturas
// @Description  Retorna lista paginada de facturas filtrada por fecha y estado.
// @Tags         facturas
// @Produce      json
// @Security     BearerAuth
// @Param        fecha  query string false "Fecha YYYY-MM-DD"
// @Param        estado query string false "emitida | anulada | all"
// @Param        page   query int    false "Página (default 1)"
// @Param        limit  query int    false "Registros por página (default 50)"
// @Success      200    {object} dto.FacturaListResponse
// @Failure      400    {object} apierror.APIError
// @Router       /v1/facturas [get]
func (h *FacturasHandler) ListarFacturas(c *gin.Context) {
	var filter dto.FacturaFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.ListarFacturas(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
