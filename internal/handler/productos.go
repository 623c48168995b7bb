package handler

import (
	"net/http"

	"invenfact/internal/apierror"
	"invenfact/internal/dto"
	"invenfact/internal/middleware"
	"invenfact/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductosHandler struct{ svc service.ProductoService }

func NewProductosHandler(svc service.ProductoService) *ProductosHandler {
	return &ProductosHandler{svc: svc}
}

// CrearProducto godoc
// @Summary      Crear producto
// @Tags         productos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearProductoRequest true "Datos del producto"
// @Success      201  {object} dto.ProductoResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/productos [post]
func (h *ProductosHandler) CrearProducto(c *gin.Context) {
	var req dto.CrearProductoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ObtenerProducto godoc
// @Summary      Obtener producto por ID
// @Tags         productos
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "ID del producto"
// @Success      200 {object} dto.ProductoResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/productos/{id} [get]
func (h *ProductosHandler) ObtenerProducto(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarProductos godoc
// @Summary      Listar productos
// @Description  Lista paginada con filtros por código, nombre, categoría y estado.
// @Tags         productos
// @Produce      json
// @Security     BearerAuth
// @Param        codigo       query string false "Código exacto"
// @Param        nombre       query string false "Búsqueda parcial por nombre"
// @Param        categoria_id query int    false "ID de categoría"
// @Param        activo       query string false "'' activos | false inactivos | all todos"
// @Param        page         query int    false "Página (default 1)"
// @Param        limit        query int    false "Registros por página (default 50)"
// @Success      200 {object} dto.ProductoListResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/productos [get]
func (h *ProductosHandler) ListarProductos(c *gin.Context) {
	var filter dto.ProductoFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ActualizarProducto godoc
// @Summary      Actualizar producto
// @Description  Actualización parcial. Un cambio de precio queda registrado en el historial dentro de la misma transacción.
// @Tags         productos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path int                           true "ID del producto"
// @Param        body body dto.ActualizarProductoRequest true "Campos a cambiar"
// @Success      200  {object} dto.ProductoResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/productos/{id} [put]
func (h *ProductosHandler) ActualizarProducto(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarProductoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	resp, err := h.svc.Actualizar(c.Request.Context(), id, claims.UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ActualizarPreciosMasivo godoc
// @Summary      Actualización masiva de precios por categoría
// @Description  Aplica un porcentaje a ambos precios de todos los productos activos de la categoría, con entrada de historial por producto, todo en una transacción.
// @Tags         productos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ActualizarPreciosMasivoRequest true "Categoría, porcentaje y motivo"
// @Success      200  {object} dto.ActualizarPreciosMasivoResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/productos/precios-masivo [post]
func (h *ProductosHandler) ActualizarPreciosMasivo(c *gin.Context) {
	var req dto.ActualizarPreciosMasivoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	resp, err := h.svc.ActualizarPreciosMasivo(c.Request.Context(), claims.UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DesactivarProducto godoc
// @Summary      Desactivar producto (borrado lógico)
// @Tags         productos
// @Security     BearerAuth
// @Param        id path int true "ID del producto"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /v1/productos/{id} [delete]
func (h *ProductosHandler) DesactivarProducto(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Desactivar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReactivarProducto godoc
// @Summary      Reactivar producto
// @Tags         productos
// @Security     BearerAuth
// @Param        id path int true "ID del producto"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /v1/productos/{id}/reactivar [post]
func (h *ProductosHandler) ReactivarProducto(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Reactivar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
