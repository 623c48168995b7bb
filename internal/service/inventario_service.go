package service

import (
	"context"
	"errors"
	"time"

	"invenfact/internal/apierror"
	"invenfact/internal/dto"
	"invenfact/internal/model"
	"invenfact/internal/repository"

	"gorm.io/gorm"
)

// InventarioService covers stock operations outside the billing flows:
// ajustes manuales, alertas de stock bajo y el listado de movimientos.
type InventarioService interface {
	AjustarStock(ctx context.Context, productoID uint, usuarioID uint, req dto.AjusteStockRequest) (*dto.AjusteStockResponse, error)
	ObtenerAlertas(ctx context.Context) ([]dto.AlertaStockResponse, error)
	ListarMovimientos(ctx context.Context, filter dto.MovimientoStockFilter) (*dto.MovimientoStockListResponse, error)
}

type inventarioService struct {
	productoRepo   repository.ProductoRepository
	movimientoRepo repository.MovimientoStockRepository
}

func NewInventarioService(
	productoRepo repository.ProductoRepository,
	movimientoRepo repository.MovimientoStockRepository,
) InventarioService {
	return &inventarioService{productoRepo: productoRepo, movimientoRepo: movimientoRepo}
}

// AjustarStock applies a signed manual delta. Una salida mayor al stock
// disponible se rechaza con conflict — el mismo guard condicional que usa
// la emisión de facturas.
func (s *inventarioService) AjustarStock(ctx context.Context, productoID uint, usuarioID uint, req dto.AjusteStockRequest) (*dto.AjusteStockResponse, error) {
	if req.Cantidad == 0 {
		return nil, apierror.Validation("la cantidad del ajuste no puede ser cero")
	}

	var resp *dto.AjusteStockResponse
	txErr := runTx(ctx, s.productoRepo.DB(), func(tx *gorm.DB) error {
		p, err := s.productoRepo.FindByIDTx(tx, productoID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("producto %d no encontrado", productoID)
			}
			return apierror.Storage(err, "error consultando el producto %d", productoID)
		}

		if req.Cantidad > 0 {
			err = s.productoRepo.ReponerStockTx(tx, productoID, req.Cantidad)
		} else {
			err = s.productoRepo.DescontarStockTx(tx, productoID, -req.Cantidad)
		}
		if err != nil {
			return err
		}

		mov := &model.MovimientoStock{
			ProductoID:    productoID,
			Tipo:          "ajuste_manual",
			Cantidad:      req.Cantidad,
			StockAnterior: p.StockActual,
			StockNuevo:    p.StockActual + req.Cantidad,
			Motivo:        req.Motivo,
		}
		if err := s.movimientoRepo.CreateTx(tx, mov); err != nil {
			return apierror.Storage(err, "error registrando el movimiento de stock")
		}

		resp = &dto.AjusteStockResponse{
			ProductoID:    productoID,
			StockAnterior: p.StockActual,
			StockNuevo:    p.StockActual + req.Cantidad,
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return resp, nil
}

func (s *inventarioService) ObtenerAlertas(ctx context.Context) ([]dto.AlertaStockResponse, error) {
	productos, err := s.productoRepo.BajoStock(ctx)
	if err != nil {
		return nil, apierror.Storage(err, "error consultando alertas de stock")
	}
	alertas := make([]dto.AlertaStockResponse, 0, len(productos))
	for _, p := range productos {
		alertas = append(alertas, dto.AlertaStockResponse{
			ProductoID:  p.ID,
			Codigo:      p.Codigo,
			Nombre:      p.Nombre,
			StockActual: p.StockActual,
			StockMinimo: p.StockMinimo,
		})
	}
	return alertas, nil
}

func (s *inventarioService) ListarMovimientos(ctx context.Context, filter dto.MovimientoStockFilter) (*dto.MovimientoStockListResponse, error) {
	repoFilter := repository.MovimientoStockFilter{
		ProductoID: filter.ProductoID,
		Tipo:       filter.Tipo,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}
	movimientos, total, err := s.movimientoRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, apierror.Storage(err, "error listando movimientos de stock")
	}

	items := make([]dto.MovimientoStockResponse, 0, len(movimientos))
	for _, m := range movimientos {
		item := dto.MovimientoStockResponse{
			ID:            m.ID,
			ProductoID:    m.ProductoID,
			Tipo:          m.Tipo,
			Cantidad:      m.Cantidad,
			StockAnterior: m.StockAnterior,
			StockNuevo:    m.StockNuevo,
			Motivo:        m.Motivo,
			ReferenciaID:  m.ReferenciaID,
			CreatedAt:     m.CreatedAt.Format(time.RFC3339),
		}
		if m.Producto != nil {
			item.ProductoNombre = m.Producto.Nombre
		}
		items = append(items, item)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 100
	}
	return &dto.MovimientoStockListResponse{
		Data:  items,
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}
