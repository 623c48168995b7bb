package handler

import (
	"net/http"
	"strconv"

	"invenfact/internal/service"

	"github.com/gin-gonic/gin"
)

type HistorialPreciosHandler struct{ svc service.HistorialPrecioService }

func NewHistorialPreciosHandler(svc service.HistorialPrecioService) *HistorialPreciosHandler {
	return &HistorialPreciosHandler{svc: svc}
}

// ListarHistorial godoc
// @Summary      Historial de precios de un producto
// @Description  Entradas de auditoría de precios, más recientes primero. El historial es append-only: nunca se edita ni se borra.
// @Tags         historial
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  int true  "ID del producto"
// @Param        page  query int false "Página (default 1)"
// @Param        limit query int false "Registros por página (default 50)"
// @Success      200 {object} dto.HistorialPrecioListResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/productos/{id}/historial-precios [get]
func (h *HistorialPreciosHandler) ListarHistorial(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	resp, err := h.svc.ListarPorProducto(c.Request.Context(), id, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
