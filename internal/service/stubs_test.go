package service

import (
	"context"
	"time"

	"invenfact/internal/apierror"
	"invenfact/internal/dto"
	"invenfact/internal/model"
	"invenfact/internal/repository"

	"gorm.io/gorm"
)

// ── In-memory stubs ───────────────────────────────────────────────────────────
// The repos return copies, like a real driver would: mutating a returned
// struct never changes the stored row unless written back explicitly.

type stubProductoRepo struct {
	productos map[uint]*model.Producto
	nextID    uint
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{productos: make(map[uint]*model.Producto)}
}

func (r *stubProductoRepo) seed(p model.Producto) *model.Producto {
	r.nextID++
	p.ID = r.nextID
	stored := p
	r.productos[p.ID] = &stored
	return &stored
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	r.nextID++
	p.ID = r.nextID
	stored := *p
	r.productos[p.ID] = &stored
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uint) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *p
	return &copia, nil
}

func (r *stubProductoRepo) FindByCodigo(_ context.Context, codigo string) (*model.Producto, error) {
	for _, p := range r.productos {
		if p.Codigo == codigo && p.Activo {
			copia := *p
			return &copia, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductoRepo) List(_ context.Context, _ dto.ProductoFilter) ([]model.Producto, int64, error) {
	out := make([]model.Producto, 0, len(r.productos))
	for _, p := range r.productos {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductoRepo) SoftDelete(_ context.Context, id uint) error {
	if p, ok := r.productos[id]; ok {
		p.Activo = false
	}
	return nil
}

func (r *stubProductoRepo) Reactivar(_ context.Context, id uint) error {
	if p, ok := r.productos[id]; ok {
		p.Activo = true
	}
	return nil
}

func (r *stubProductoRepo) BajoStock(_ context.Context) ([]model.Producto, error) {
	var out []model.Producto
	for _, p := range r.productos {
		if p.Activo && p.StockActual <= p.StockMinimo {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductoRepo) FindByIDTx(_ *gorm.DB, id uint) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *p
	return &copia, nil
}

func (r *stubProductoRepo) ListByCategoriaTx(_ *gorm.DB, categoriaID uint) ([]model.Producto, error) {
	var out []model.Producto
	for _, p := range r.productos {
		if p.CategoriaID != nil && *p.CategoriaID == categoriaID && p.Activo {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductoRepo) UpdateTx(_ *gorm.DB, p *model.Producto) error {
	stored := *p
	r.productos[p.ID] = &stored
	return nil
}

func (r *stubProductoRepo) UpdatePreciosTx(_ *gorm.DB, id uint, nuevaCompra, nuevaVenta int64) error {
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.PrecioCompra = nuevaCompra
	p.PrecioVenta = nuevaVenta
	return nil
}

func (r *stubProductoRepo) DescontarStockTx(_ *gorm.DB, id uint, cantidad int) error {
	p, ok := r.productos[id]
	if !ok || p.StockActual < cantidad {
		return apierror.Conflict("stock insuficiente para el producto %d", id)
	}
	p.StockActual -= cantidad
	return nil
}

func (r *stubProductoRepo) ReponerStockTx(_ *gorm.DB, id uint, cantidad int) error {
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.StockActual += cantidad
	return nil
}

func (r *stubProductoRepo) DB() *gorm.DB { return nil }

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

// ── Facturas ─────────────────────────────────────────────────────────────────

type stubFacturaRepo struct {
	facturas map[uint]*model.Factura
	nextID   uint
}

func newStubFacturaRepo() *stubFacturaRepo {
	return &stubFacturaRepo{facturas: make(map[uint]*model.Factura)}
}

func (r *stubFacturaRepo) Create(_ context.Context, _ *gorm.DB, f *model.Factura) error {
	r.nextID++
	f.ID = r.nextID
	for i := range f.Items {
		f.Items[i].ID = uint(i + 1)
		f.Items[i].FacturaID = f.ID
	}
	stored := *f
	stored.Items = append([]model.FacturaItem(nil), f.Items...)
	r.facturas[f.ID] = &stored
	return nil
}

func (r *stubFacturaRepo) FindByID(_ context.Context, id uint) (*model.Factura, error) {
	f, ok := r.facturas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *f
	copia.Items = append([]model.FacturaItem(nil), f.Items...)
	return &copia, nil
}

func (r *stubFacturaRepo) FindByIDForUpdateTx(_ *gorm.DB, id uint) (*model.Factura, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubFacturaRepo) AnularTx(_ *gorm.DB, id uint, motivo string, usuarioID uint, at time.Time) error {
	f, ok := r.facturas[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	f.Estado = model.FacturaAnulada
	f.MotivoAnulacion = &motivo
	f.AnuladaPorID = &usuarioID
	f.AnuladaAt = &at
	return nil
}

func (r *stubFacturaRepo) List(_ context.Context, _ dto.FacturaFilter) ([]model.Factura, int64, error) {
	out := make([]model.Factura, 0, len(r.facturas))
	for _, f := range r.facturas {
		out = append(out, *f)
	}
	return out, int64(len(out)), nil
}

func (r *stubFacturaRepo) DB() *gorm.DB { return nil }

var _ repository.FacturaRepository = (*stubFacturaRepo)(nil)

// ── Secuencias ───────────────────────────────────────────────────────────────

type stubSecuenciaRepo struct {
	seq *model.SecuenciaDocumento // nil = sin secuencia configurada
}

func newStubSecuenciaRepo() *stubSecuenciaRepo {
	return &stubSecuenciaRepo{
		seq: &model.SecuenciaDocumento{
			ID:            1,
			Tipo:          model.DocFactura,
			ProximoNumero: 1,
			Prefijo:       "FAC",
			ConAnio:       true,
			Relleno:       6,
		},
	}
}

func (r *stubSecuenciaRepo) AllocateNextTx(_ *gorm.DB, tipo model.TipoDocumento) (string, error) {
	if r.seq == nil || r.seq.Tipo != tipo {
		return "", apierror.NotFound("no hay secuencia configurada para el tipo de documento %s", tipo)
	}
	numero := r.seq.Format(r.seq.ProximoNumero, time.Now())
	r.seq.ProximoNumero++
	return numero, nil
}

func (r *stubSecuenciaRepo) FindByTipo(_ context.Context, tipo model.TipoDocumento) (*model.SecuenciaDocumento, error) {
	if r.seq == nil || r.seq.Tipo != tipo {
		return nil, apierror.NotFound("no hay secuencia configurada para el tipo de documento %s", tipo)
	}
	copia := *r.seq
	return &copia, nil
}

var _ repository.SecuenciaRepository = (*stubSecuenciaRepo)(nil)

// ── Movimientos de stock ─────────────────────────────────────────────────────

type stubMovimientoRepo struct {
	movimientos []model.MovimientoStock
}

func (r *stubMovimientoRepo) CreateTx(_ *gorm.DB, m *model.MovimientoStock) error {
	m.ID = uint(len(r.movimientos) + 1)
	m.CreatedAt = time.Now()
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubMovimientoRepo) List(_ context.Context, filter repository.MovimientoStockFilter) ([]model.MovimientoStock, int64, error) {
	var out []model.MovimientoStock
	for _, m := range r.movimientos {
		if filter.ProductoID != 0 && m.ProductoID != filter.ProductoID {
			continue
		}
		if filter.Tipo != "" && m.Tipo != filter.Tipo {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

var _ repository.MovimientoStockRepository = (*stubMovimientoRepo)(nil)

// ── Historial de precios ─────────────────────────────────────────────────────

type stubHistorialRepo struct {
	entradas []model.HistorialPrecio
}

func (r *stubHistorialRepo) CreateTx(_ *gorm.DB, h *model.HistorialPrecio) error {
	h.ID = uint(len(r.entradas) + 1)
	h.CreatedAt = time.Now()
	r.entradas = append(r.entradas, *h)
	return nil
}

func (r *stubHistorialRepo) ListByProducto(_ context.Context, productoID uint, _, _ int) ([]model.HistorialPrecio, int64, error) {
	var out []model.HistorialPrecio
	for i := len(r.entradas) - 1; i >= 0; i-- {
		if r.entradas[i].ProductoID == productoID {
			out = append(out, r.entradas[i])
		}
	}
	return out, int64(len(out)), nil
}

var _ repository.HistorialPrecioRepository = (*stubHistorialRepo)(nil)

// ── Usuarios ─────────────────────────────────────────────────────────────────

type stubUsuarioRepo struct {
	usuarios map[string]*model.Usuario
	nextID   uint
}

func newStubUsuarioRepo() *stubUsuarioRepo {
	return &stubUsuarioRepo{usuarios: make(map[string]*model.Usuario)}
}

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	r.nextID++
	u.ID = r.nextID
	stored := *u
	r.usuarios[u.Username] = &stored
	return nil
}

func (r *stubUsuarioRepo) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	u, ok := r.usuarios[username]
	if !ok || !u.Activo {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *u
	return &copia, nil
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uint) (*model.Usuario, error) {
	for _, u := range r.usuarios {
		if u.ID == id {
			copia := *u
			return &copia, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) List(_ context.Context) ([]model.Usuario, error) {
	var out []model.Usuario
	for _, u := range r.usuarios {
		if u.Activo {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUsuarioRepo) ListAll(_ context.Context) ([]model.Usuario, error) {
	var out []model.Usuario
	for _, u := range r.usuarios {
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	stored := *u
	r.usuarios[u.Username] = &stored
	return nil
}

func (r *stubUsuarioRepo) SoftDelete(_ context.Context, id uint) error {
	for _, u := range r.usuarios {
		if u.ID == id {
			u.Activo = false
		}
	}
	return nil
}

func (r *stubUsuarioRepo) Reactivar(_ context.Context, id uint) error {
	for _, u := range r.usuarios {
		if u.ID == id {
			u.Activo = true
		}
	}
	return nil
}

var _ repository.UsuarioRepository = (*stubUsuarioRepo)(nil)
