package repository

import (
	"context"

	"invenfact/internal/apierror"
	"invenfact/internal/dto"
	"invenfact/internal/model"

	"gorm.io/gorm"
)

// ProductoRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	FindByID(ctx context.Context, id uint) (*model.Producto, error)
	FindByCodigo(ctx context.Context, codigo string) (*model.Producto, error)
	List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error)
	SoftDelete(ctx context.Context, id uint) error
	Reactivar(ctx context.Context, id uint) error
	// BajoStock returns active products at or below their minimum threshold.
	BajoStock(ctx context.Context) ([]model.Producto, error)

	// Used inside transactions — callers must pass the tx instance
	FindByIDTx(tx *gorm.DB, id uint) (*model.Producto, error)
	ListByCategoriaTx(tx *gorm.DB, categoriaID uint) ([]model.Producto, error)
	UpdateTx(tx *gorm.DB, p *model.Producto) error
	UpdatePreciosTx(tx *gorm.DB, id uint, nuevaCompra, nuevaVenta int64) error

	// DescontarStockTx is the ledger's decrease primitive: a single
	// conditional UPDATE (never read-modify-write) that only fires when
	// stock suffices, so concurrent invoices serialize at the storage layer
	// and committed stock never goes negative.
	DescontarStockTx(tx *gorm.DB, id uint, cantidad int) error
	// ReponerStockTx is the increase primitive, likewise a single atomic delta.
	ReponerStockTx(tx *gorm.DB, id uint, cantidad int) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productoRepo) FindByID(ctx context.Context, id uint) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).Preload("Categoria").First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productoRepo) FindByCodigo(ctx context.Context, codigo string) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).Where("codigo = ? AND activo = true", codigo).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productoRepo) List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error) {
	var productos []model.Producto
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Producto{})

	// Activo filter: "false" = inactivos, "all" = todos, anything else = activos (default)
	switch filter.Activo {
	case "false":
		q = q.Where("activo = false")
	case "all":
		// no filter
	default:
		q = q.Where("activo = true")
	}

	if filter.Codigo != "" {
		q = q.Where("codigo = ?", filter.Codigo)
	}
	if filter.Nombre != "" {
		q = q.Where("nombre ILIKE ?", "%"+filter.Nombre+"%")
	}
	if filter.CategoriaID != 0 {
		q = q.Where("categoria_id = ?", filter.CategoriaID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("nombre ASC").Limit(filter.Limit).Offset(offset).Find(&productos).Error
	return productos, total, err
}

func (r *productoRepo) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&model.Producto{}).Where("id = ?", id).Update("activo", false).Error
}

func (r *productoRepo) Reactivar(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&model.Producto{}).Where("id = ?", id).Update("activo", true).Error
}

func (r *productoRepo) BajoStock(ctx context.Context) ([]model.Producto, error) {
	var productos []model.Producto
	err := r.db.WithContext(ctx).
		Where("activo = true AND stock_actual <= stock_minimo").
		Order("stock_actual ASC").
		Find(&productos).Error
	return productos, err
}

func (r *productoRepo) FindByIDTx(tx *gorm.DB, id uint) (*model.Producto, error) {
	var p model.Producto
	err := tx.First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productoRepo) ListByCategoriaTx(tx *gorm.DB, categoriaID uint) ([]model.Producto, error) {
	var productos []model.Producto
	err := tx.Where("categoria_id = ? AND activo = true", categoriaID).Find(&productos).Error
	return productos, err
}

func (r *productoRepo) UpdateTx(tx *gorm.DB, p *model.Producto) error {
	return tx.Save(p).Error
}

func (r *productoRepo) UpdatePreciosTx(tx *gorm.DB, id uint, nuevaCompra, nuevaVenta int64) error {
	return tx.Model(&model.Producto{}).Where("id = ?", id).Updates(map[string]interface{}{
		"precio_compra": nuevaCompra,
		"precio_venta":  nuevaVenta,
	}).Error
}

func (r *productoRepo) DescontarStockTx(tx *gorm.DB, id uint, cantidad int) error {
	res := tx.Model(&model.Producto{}).
		Where("id = ? AND stock_actual >= ?", id, cantidad).
		Update("stock_actual", gorm.Expr("stock_actual - ?", cantidad))
	if res.Error != nil {
		return apierror.Storage(res.Error, "error descontando stock del producto %d", id)
	}
	if res.RowsAffected == 0 {
		return apierror.Conflict("stock insuficiente para el producto %d", id)
	}
	return nil
}

func (r *productoRepo) ReponerStockTx(tx *gorm.DB, id uint, cantidad int) error {
	res := tx.Model(&model.Producto{}).
		Where("id = ?", id).
		Update("stock_actual", gorm.Expr("stock_actual + ?", cantidad))
	if res.Error != nil {
		return apierror.Storage(res.Error, "error reponiendo stock del producto %d", id)
	}
	return nil
}

func (r *productoRepo) DB() *gorm.DB { return r.db }
