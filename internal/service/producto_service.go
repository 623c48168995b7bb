package service

import (
	"context"
	"errors"

	"invenfact/internal/apierror"
	"invenfact/internal/dto"
	"invenfact/internal/model"
	"invenfact/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductoService defines the business logic contract for products.
// Toda actualización de precios pasa por el historial: si un precio cambió
// de valor, la entrada de auditoría se escribe en la MISMA transacción que
// el update del producto — nunca puede quedar un cambio sin registrar.
type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerPorID(ctx context.Context, id uint) (*dto.ProductoResponse, error)
	ObtenerPorCodigo(ctx context.Context, codigo string) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	Actualizar(ctx context.Context, id uint, usuarioID uint, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	// ActualizarPreciosMasivo aplica un porcentaje a ambos precios de todos
	// los productos activos de una categoría, con auditoría por producto.
	ActualizarPreciosMasivo(ctx context.Context, usuarioID uint, req dto.ActualizarPreciosMasivoRequest) (*dto.ActualizarPreciosMasivoResponse, error)
	Desactivar(ctx context.Context, id uint) error
	Reactivar(ctx context.Context, id uint) error
}

type productoService struct {
	repo          repository.ProductoRepository
	historialRepo repository.HistorialPrecioRepository
	rdb           *redis.Client
}

func NewProductoService(
	repo repository.ProductoRepository,
	historialRepo repository.HistorialPrecioRepository,
	rdb *redis.Client,
) ProductoService {
	return &productoService{repo: repo, historialRepo: historialRepo, rdb: rdb}
}

func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	p := &model.Producto{
		Codigo:       req.Codigo,
		Nombre:       req.Nombre,
		Descripcion:  req.Descripcion,
		CategoriaID:  req.CategoriaID,
		PrecioCompra: req.PrecioCompra,
		PrecioVenta:  req.PrecioVenta,
		StockActual:  req.StockInicial,
		StockMinimo:  req.StockMinimo,
		Activo:       true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, apierror.Storage(err, "error creando el producto")
	}
	return productoToResponse(p), nil
}

func (s *productoService) ObtenerPorID(ctx context.Context, id uint) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("producto %d no encontrado", id)
		}
		return nil, apierror.Storage(err, "error consultando el producto %d", id)
	}
	return productoToResponse(p), nil
}

func (s *productoService) ObtenerPorCodigo(ctx context.Context, codigo string) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByCodigo(ctx, codigo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("producto con código %s no encontrado", codigo)
		}
		return nil, apierror.Storage(err, "error consultando el producto %s", codigo)
	}
	return productoToResponse(p), nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apierror.Storage(err, "error listando productos")
	}
	items := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		items = append(items, *productoToResponse(&productos[i]))
	}
	return &dto.ProductoListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// Actualizar applies partial changes. Los valores "antes" se leen dentro de
// la transacción, así el par antes/después del historial no puede carrear
// con un update concurrente.
func (s *productoService) Actualizar(ctx context.Context, id uint, usuarioID uint, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	var actualizado *model.Producto

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p, err := s.repo.FindByIDTx(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("producto %d no encontrado", id)
			}
			return apierror.Storage(err, "error consultando el producto %d", id)
		}

		compraAntes := p.PrecioCompra
		ventaAntes := p.PrecioVenta

		if req.Nombre != nil {
			p.Nombre = *req.Nombre
		}
		if req.Descripcion != nil {
			p.Descripcion = req.Descripcion
		}
		if req.CategoriaID != nil {
			p.CategoriaID = req.CategoriaID
		}
		if req.PrecioCompra != nil {
			p.PrecioCompra = *req.PrecioCompra
		}
		if req.PrecioVenta != nil {
			p.PrecioVenta = *req.PrecioVenta
		}
		if req.StockMinimo != nil {
			p.StockMinimo = *req.StockMinimo
		}

		if err := s.repo.UpdateTx(tx, p); err != nil {
			return apierror.Storage(err, "error actualizando el producto %d", id)
		}

		motivo := req.Motivo
		if motivo == "" {
			motivo = "manual"
		}
		if _, err := s.registrarCambioPrecioTx(tx, p, compraAntes, ventaAntes, usuarioID, motivo); err != nil {
			return err
		}

		actualizado = p
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.invalidarCachePrecio(ctx, actualizado.Codigo)
	return productoToResponse(actualizado), nil
}

func (s *productoService) ActualizarPreciosMasivo(ctx context.Context, usuarioID uint, req dto.ActualizarPreciosMasivoRequest) (*dto.ActualizarPreciosMasivoResponse, error) {
	factor := decimal.NewFromInt(1).Add(req.Porcentaje.Div(decimal.NewFromInt(100)))
	if factor.IsNegative() {
		return nil, apierror.Validation("el porcentaje dejaría precios negativos")
	}

	resp := &dto.ActualizarPreciosMasivoResponse{CategoriaID: req.CategoriaID}
	var codigos []string

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		productos, err := s.repo.ListByCategoriaTx(tx, req.CategoriaID)
		if err != nil {
			return apierror.Storage(err, "error listando productos de la categoría %d", req.CategoriaID)
		}
		if len(productos) == 0 {
			return apierror.NotFound("la categoría %d no tiene productos activos", req.CategoriaID)
		}

		for i := range productos {
			p := &productos[i]
			compraAntes := p.PrecioCompra
			ventaAntes := p.PrecioVenta

			p.PrecioCompra = aplicarPorcentaje(compraAntes, factor)
			p.PrecioVenta = aplicarPorcentaje(ventaAntes, factor)

			if err := s.repo.UpdatePreciosTx(tx, p.ID, p.PrecioCompra, p.PrecioVenta); err != nil {
				return apierror.Storage(err, "error actualizando precios del producto %d", p.ID)
			}

			entry, err := s.registrarCambioPrecioTx(tx, p, compraAntes, ventaAntes, usuarioID, "actualizacion_masiva: "+req.Motivo)
			if err != nil {
				return err
			}
			if entry != nil {
				resp.EntradasHistorial++
			}
			resp.ProductosActualizados++
			codigos = append(codigos, p.Codigo)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	for _, codigo := range codigos {
		s.invalidarCachePrecio(ctx, codigo)
	}
	return resp, nil
}

func (s *productoService) Desactivar(ctx context.Context, id uint) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("producto %d no encontrado", id)
		}
		return apierror.Storage(err, "error consultando el producto %d", id)
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return apierror.Storage(err, "error desactivando el producto %d", id)
	}
	s.invalidarCachePrecio(ctx, p.Codigo)
	return nil
}

func (s *productoService) Reactivar(ctx context.Context, id uint) error {
	if err := s.repo.Reactivar(ctx, id); err != nil {
		return apierror.Storage(err, "error reactivando el producto %d", id)
	}
	return nil
}

// registrarCambioPrecioTx is the price audit recorder. Compara valores
// numéricos (centavos, no strings); si ningún precio cambió no escribe nada
// y devuelve nil — no-op idempotente, no un error. p ya contiene los
// valores "después".
func (s *productoService) registrarCambioPrecioTx(
	tx *gorm.DB,
	p *model.Producto,
	compraAntes, ventaAntes int64,
	usuarioID uint,
	motivo string,
) (*model.HistorialPrecio, error) {
	if compraAntes == p.PrecioCompra && ventaAntes == p.PrecioVenta {
		return nil, nil
	}
	h := &model.HistorialPrecio{
		ProductoID:    p.ID,
		UsuarioID:     usuarioID,
		CompraAntes:   compraAntes,
		CompraDespues: p.PrecioCompra,
		VentaAntes:    ventaAntes,
		VentaDespues:  p.PrecioVenta,
		Motivo:        motivo,
	}
	if err := s.historialRepo.CreateTx(tx, h); err != nil {
		return nil, apierror.Storage(err, "error registrando el cambio de precio del producto %d", p.ID)
	}
	return h, nil
}

// aplicarPorcentaje scales a price in centavos, redondeo half-up.
func aplicarPorcentaje(precio int64, factor decimal.Decimal) int64 {
	return decimal.NewFromInt(precio).Mul(factor).Round(0).IntPart()
}

// invalidarCachePrecio drops the public price-check cache entry. Best effort:
// a stale entry expires by TTL anyway.
func (s *productoService) invalidarCachePrecio(ctx context.Context, codigo string) {
	if s.rdb == nil {
		return
	}
	_ = s.rdb.Del(ctx, "precio:"+codigo).Err()
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	resp := &dto.ProductoResponse{
		ID:           p.ID,
		Codigo:       p.Codigo,
		Nombre:       p.Nombre,
		Descripcion:  p.Descripcion,
		CategoriaID:  p.CategoriaID,
		PrecioCompra: p.PrecioCompra,
		PrecioVenta:  p.PrecioVenta,
		StockActual:  p.StockActual,
		StockMinimo:  p.StockMinimo,
		Activo:       p.Activo,
	}
	if p.Categoria != nil {
		resp.Categoria = &p.Categoria.Nombre
	}
	return resp
}
