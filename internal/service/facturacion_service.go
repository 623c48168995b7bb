package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"invenfact/internal/apierror"
	"invenfact/internal/dto"
	"invenfact/internal/model"
	"invenfact/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FacturacionService is the transactional billing engine: emitir convierte un
// carrito en una factura persistida descontando stock, anular es su inversa
// exacta. Ambas operaciones son atómicas — cualquier falla deja la base como
// si la operación nunca hubiera ocurrido.
type FacturacionService interface {
	EmitirFactura(ctx context.Context, usuarioID uint, req dto.EmitirFacturaRequest) (*dto.FacturaResponse, error)
	AnularFactura(ctx context.Context, id uint, usuarioID uint, motivo string) (*dto.FacturaResponse, error)
	ObtenerFactura(ctx context.Context, id uint) (*dto.FacturaResponse, error)
	ListarFacturas(ctx context.Context, filter dto.FacturaFilter) (*dto.FacturaListResponse, error)
}

type facturacionService struct {
	facturaRepo    repository.FacturaRepository
	productoRepo   repository.ProductoRepository
	secuenciaRepo  repository.SecuenciaRepository
	movimientoRepo repository.MovimientoStockRepository
}

func NewFacturacionService(
	facturaRepo repository.FacturaRepository,
	productoRepo repository.ProductoRepository,
	secuenciaRepo repository.SecuenciaRepository,
	movimientoRepo repository.MovimientoStockRepository,
) FacturacionService {
	return &facturacionService{
		facturaRepo:    facturaRepo,
		productoRepo:   productoRepo,
		secuenciaRepo:  secuenciaRepo,
		movimientoRepo: movimientoRepo,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// calcularIVA computes the tax amount in centavos with round-half-up
// (decimal.Round redondea half away from zero, idéntico a half-up para los
// montos no negativos de este sistema): 333 al 19% → 63.27 → 63.
func calcularIVA(subtotal int64, tasa decimal.Decimal) int64 {
	if tasa.IsZero() {
		return 0
	}
	return decimal.NewFromInt(subtotal).
		Mul(tasa).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

// ── EmitirFactura ─────────────────────────────────────────────────────────────
// One ACID transaction:
//   1. Resolver cada producto (existe + activo), snapshot de nombre/código/precio
//   2. subtotal = Σ precio × cantidad; monto_iva = round(subtotal × tasa / 100); total
//   3. Asignar número de documento (fila de secuencia con lock FOR UPDATE)
//   4. Persistir cabecera + items con estado "emitida"
//   5. Descontar stock por línea (delta condicional) + movimiento de stock
//
// Todo visible junto o nada: una falla en cualquier paso revierte el número,
// el stock y la factura completa.

func (s *facturacionService) EmitirFactura(ctx context.Context, usuarioID uint, req dto.EmitirFacturaRequest) (*dto.FacturaResponse, error) {
	// Validación de forma, antes de abrir transacción
	if len(req.Items) == 0 {
		return nil, apierror.Validation("la factura debe tener al menos un item")
	}
	for _, item := range req.Items {
		if item.Cantidad <= 0 {
			return nil, apierror.Validation("la cantidad del producto %d debe ser positiva", item.ProductoID)
		}
		if item.ProductoID == 0 {
			return nil, apierror.Validation("producto_id es requerido en todos los items")
		}
	}
	if req.TasaIVA.IsNegative() {
		return nil, apierror.Validation("la tasa de IVA no puede ser negativa")
	}

	var factura model.Factura
	txErr := runTx(ctx, s.facturaRepo.DB(), func(tx *gorm.DB) error {
		// Resolver productos DENTRO de la transacción: el precio snapshot y
		// el stock descontado salen del mismo estado consistente.
		type lineaResuelta struct {
			producto *model.Producto
			cantidad int
			subtotal int64
		}
		resueltas := make([]lineaResuelta, 0, len(req.Items))
		var subtotal int64

		for _, item := range req.Items {
			p, err := s.productoRepo.FindByIDTx(tx, item.ProductoID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apierror.NotFound("producto %d no encontrado", item.ProductoID)
				}
				return apierror.Storage(err, "error consultando el producto %d", item.ProductoID)
			}
			if !p.Activo {
				return apierror.Validation("el producto %s está inactivo y no puede facturarse", p.Nombre)
			}
			lineSubtotal := p.PrecioVenta * int64(item.Cantidad)
			subtotal += lineSubtotal
			resueltas = append(resueltas, lineaResuelta{
				producto: p,
				cantidad: item.Cantidad,
				subtotal: lineSubtotal,
			})
		}

		montoIVA := calcularIVA(subtotal, req.TasaIVA)
		total := subtotal + montoIVA

		numero, err := s.secuenciaRepo.AllocateNextTx(tx, model.DocFactura)
		if err != nil {
			return err
		}

		factura = model.Factura{
			Numero:        numero,
			UsuarioID:     usuarioID,
			ClienteNombre: req.ClienteNombre,
			Subtotal:      subtotal,
			TasaIVA:       req.TasaIVA,
			MontoIVA:      montoIVA,
			Total:         total,
			Notas:         req.Notas,
			Estado:        model.FacturaEmitida,
			EmitidaAt:     time.Now(),
		}
		for _, r := range resueltas {
			factura.Items = append(factura.Items, model.FacturaItem{
				ProductoID:     r.producto.ID,
				ProductoNombre: r.producto.Nombre,
				ProductoCodigo: r.producto.Codigo,
				Cantidad:       r.cantidad,
				PrecioUnitario: r.producto.PrecioVenta,
				Subtotal:       r.subtotal,
			})
		}

		if err := s.facturaRepo.Create(ctx, tx, &factura); err != nil {
			return apierror.Storage(err, "error persistiendo la factura")
		}

		for _, r := range resueltas {
			if err := s.productoRepo.DescontarStockTx(tx, r.producto.ID, r.cantidad); err != nil {
				return err
			}
			facturaRef := factura.ID
			mov := &model.MovimientoStock{
				ProductoID:    r.producto.ID,
				Tipo:          "emision_factura",
				Cantidad:      -r.cantidad,
				StockAnterior: r.producto.StockActual,
				StockNuevo:    r.producto.StockActual - r.cantidad,
				Motivo:        fmt.Sprintf("Factura %s", numero),
				ReferenciaID:  &facturaRef,
			}
			if err := s.movimientoRepo.CreateTx(tx, mov); err != nil {
				return apierror.Storage(err, "error registrando el movimiento de stock")
			}
		}

		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return facturaToResponse(&factura), nil
}

// ── AnularFactura ─────────────────────────────────────────────────────────────
// Inversa exacta de la emisión: repone el stock de cada línea y marca la
// cabecera como anulada, una sola vez. La reposición es best-effort respecto
// del tiempo — suma las cantidades de las líneas, no reconstruye movimientos
// intermedios sobre los mismos productos.

func (s *facturacionService) AnularFactura(ctx context.Context, id uint, usuarioID uint, motivo string) (*dto.FacturaResponse, error) {
	txErr := runTx(ctx, s.facturaRepo.DB(), func(tx *gorm.DB) error {
		f, err := s.facturaRepo.FindByIDForUpdateTx(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("factura %d no encontrada", id)
			}
			return apierror.Storage(err, "error consultando la factura %d", id)
		}
		if f.Estado == model.FacturaAnulada {
			return apierror.Conflict("la factura %s ya está anulada", f.Numero)
		}

		for _, item := range f.Items {
			p, err := s.productoRepo.FindByIDTx(tx, item.ProductoID)
			if err != nil {
				return apierror.Storage(err, "error consultando el producto %d", item.ProductoID)
			}

			if err := s.productoRepo.ReponerStockTx(tx, item.ProductoID, item.Cantidad); err != nil {
				return err
			}

			facturaRef := f.ID
			mov := &model.MovimientoStock{
				ProductoID:    item.ProductoID,
				Tipo:          "anulacion_factura",
				Cantidad:      item.Cantidad,
				StockAnterior: p.StockActual,
				StockNuevo:    p.StockActual + item.Cantidad,
				Motivo:        fmt.Sprintf("Anulación factura %s — %s", f.Numero, motivo),
				ReferenciaID:  &facturaRef,
			}
			if err := s.movimientoRepo.CreateTx(tx, mov); err != nil {
				return apierror.Storage(err, "error registrando el movimiento de stock")
			}
		}

		if err := s.facturaRepo.AnularTx(tx, id, motivo, usuarioID, time.Now()); err != nil {
			return apierror.Storage(err, "error anulando la factura %d", id)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return s.ObtenerFactura(ctx, id)
}

func (s *facturacionService) ObtenerFactura(ctx context.Context, id uint) (*dto.FacturaResponse, error) {
	f, err := s.facturaRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("factura %d no encontrada", id)
		}
		return nil, apierror.Storage(err, "error consultando la factura %d", id)
	}
	return facturaToResponse(f), nil
}

func (s *facturacionService) ListarFacturas(ctx context.Context, filter dto.FacturaFilter) (*dto.FacturaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	facturas, total, err := s.facturaRepo.List(ctx, filter)
	if err != nil {
		return nil, apierror.Storage(err, "error listando facturas")
	}
	items := make([]dto.FacturaResponse, 0, len(facturas))
	for i := range facturas {
		items = append(items, *facturaToResponse(&facturas[i]))
	}
	return &dto.FacturaListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func facturaToResponse(f *model.Factura) *dto.FacturaResponse {
	items := make([]dto.ItemFacturaResponse, 0, len(f.Items))
	for _, item := range f.Items {
		items = append(items, dto.ItemFacturaResponse{
			ProductoID:     item.ProductoID,
			Producto:       item.ProductoNombre,
			Codigo:         item.ProductoCodigo,
			Cantidad:       item.Cantidad,
			PrecioUnitario: item.PrecioUnitario,
			Subtotal:       item.Subtotal,
		})
	}
	resp := &dto.FacturaResponse{
		ID:              f.ID,
		Numero:          f.Numero,
		UsuarioID:       f.UsuarioID,
		ClienteNombre:   f.ClienteNombre,
		Items:           items,
		Subtotal:        f.Subtotal,
		TasaIVA:         f.TasaIVA,
		MontoIVA:        f.MontoIVA,
		Total:           f.Total,
		Notas:           f.Notas,
		Estado:          string(f.Estado),
		MotivoAnulacion: f.MotivoAnulacion,
		EmitidaAt:       f.EmitidaAt.Format(time.RFC3339),
	}
	if f.AnuladaAt != nil {
		s := f.AnuladaAt.Format(time.RFC3339)
		resp.AnuladaAt = &s
	}
	return resp
}
