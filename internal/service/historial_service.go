package service

import (
	"context"
	"time"

	"invenfact/internal/apierror"
	"invenfact/internal/dto"
	"invenfact/internal/repository"
)

// HistorialPrecioService exposes the read side of the price audit trail.
// Las entradas se escriben únicamente desde ProductoService, dentro de la
// misma transacción que el cambio de precio.
type HistorialPrecioService interface {
	ListarPorProducto(ctx context.Context, productoID uint, page, limit int) (*dto.HistorialPrecioListResponse, error)
}

type historialPrecioService struct {
	repo         repository.HistorialPrecioRepository
	productoRepo repository.ProductoRepository
}

func NewHistorialPrecioService(
	repo repository.HistorialPrecioRepository,
	productoRepo repository.ProductoRepository,
) HistorialPrecioService {
	return &historialPrecioService{repo: repo, productoRepo: productoRepo}
}

func (s *historialPrecioService) ListarPorProducto(ctx context.Context, productoID uint, page, limit int) (*dto.HistorialPrecioListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	if _, err := s.productoRepo.FindByID(ctx, productoID); err != nil {
		return nil, apierror.NotFound("producto %d no encontrado", productoID)
	}

	entradas, total, err := s.repo.ListByProducto(ctx, productoID, page, limit)
	if err != nil {
		return nil, apierror.Storage(err, "error consultando el historial de precios del producto %d", productoID)
	}

	items := make([]dto.HistorialPrecioItem, 0, len(entradas))
	for _, h := range entradas {
		item := dto.HistorialPrecioItem{
			ID:            h.ID,
			ProductoID:    h.ProductoID,
			UsuarioID:     h.UsuarioID,
			CompraAntes:   h.CompraAntes,
			CompraDespues: h.CompraDespues,
			VentaAntes:    h.VentaAntes,
			VentaDespues:  h.VentaDespues,
			Motivo:        h.Motivo,
			CreatedAt:     h.CreatedAt.Format(time.RFC3339),
		}
		if h.Usuario != nil {
			item.UsuarioNombre = &h.Usuario.Nombre
		}
		items = append(items, item)
	}

	return &dto.HistorialPrecioListResponse{
		Data:  items,
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}
