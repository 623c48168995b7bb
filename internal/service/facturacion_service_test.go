package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"invenfact/internal/apierror"
	"invenfact/internal/dto"
	"invenfact/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildFacturacionSvc() (FacturacionService, *stubFacturaRepo, *stubProductoRepo, *stubSecuenciaRepo, *stubMovimientoRepo) {
	facturaRepo := newStubFacturaRepo()
	productoRepo := newStubProductoRepo()
	secuenciaRepo := newStubSecuenciaRepo()
	movimientoRepo := &stubMovimientoRepo{}
	svc := NewFacturacionService(facturaRepo, productoRepo, secuenciaRepo, movimientoRepo)
	return svc, facturaRepo, productoRepo, secuenciaRepo, movimientoRepo
}

func TestCalcularIVA(t *testing.T) {
	cases := []struct {
		subtotal int64
		tasa     string
		want     int64
	}{
		{100, "19", 19},     // 19.00 exacto
		{333, "19", 63},     // 63.27 → 63
		{50, "19", 10},      // 9.5 → 10 (half-up)
		{9400, "0", 0},      // exenta
		{1000, "10.5", 105}, // tasa con decimales
		{0, "19", 0},
	}
	for _, tc := range cases {
		tasa, err := decimal.NewFromString(tc.tasa)
		require.NoError(t, err)
		assert.Equal(t, tc.want, calcularIVA(tc.subtotal, tasa),
			"subtotal=%d tasa=%s", tc.subtotal, tc.tasa)
	}
}

func TestEmitirFactura_TotalesYNumero(t *testing.T) {
	svc, _, productoRepo, _, movimientoRepo := buildFacturacionSvc()
	a := productoRepo.seed(model.Producto{Codigo: "A-001", Nombre: "Producto A", PrecioVenta: 2300, StockActual: 10, Activo: true})
	b := productoRepo.seed(model.Producto{Codigo: "B-001", Nombre: "Producto B", PrecioVenta: 2500, StockActual: 4, Activo: true})

	resp, err := svc.EmitirFactura(context.Background(), 1, dto.EmitirFacturaRequest{
		Items: []dto.ItemFacturaRequest{
			{ProductoID: a.ID, Cantidad: 3},
			{ProductoID: b.ID, Cantidad: 1},
		},
		TasaIVA: decimal.Zero,
	})
	require.NoError(t, err)

	// 3 × 2300 + 1 × 2500 = 9400, exenta
	assert.Equal(t, int64(9400), resp.Subtotal)
	assert.Equal(t, int64(0), resp.MontoIVA)
	assert.Equal(t, int64(9400), resp.Total)
	assert.Equal(t, "emitida", resp.Estado)
	assert.Equal(t, fmt.Sprintf("FAC-%d-000001", time.Now().Year()), resp.Numero)

	// Snapshot de nombre, código y precio en cada línea
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "Producto A", resp.Items[0].Producto)
	assert.Equal(t, "A-001", resp.Items[0].Codigo)
	assert.Equal(t, int64(2300), resp.Items[0].PrecioUnitario)
	assert.Equal(t, int64(6900), resp.Items[0].Subtotal)

	// Stock descontado
	assert.Equal(t, 7, productoRepo.productos[a.ID].StockActual)
	assert.Equal(t, 3, productoRepo.productos[b.ID].StockActual)

	// Un movimiento por línea, cantidad negativa, referencia a la factura
	require.Len(t, movimientoRepo.movimientos, 2)
	for _, m := range movimientoRepo.movimientos {
		assert.Equal(t, "emision_factura", m.Tipo)
		assert.Negative(t, m.Cantidad)
		require.NotNil(t, m.ReferenciaID)
		assert.Equal(t, resp.ID, *m.ReferenciaID)
	}
}

func TestEmitirFactura_ConIVA(t *testing.T) {
	svc, _, productoRepo, _, _ := buildFacturacionSvc()
	p := productoRepo.seed(model.Producto{Codigo: "C-001", Nombre: "Producto C", PrecioVenta: 333, StockActual: 5, Activo: true})

	resp, err := svc.EmitirFactura(context.Background(), 1, dto.EmitirFacturaRequest{
		Items:   []dto.ItemFacturaRequest{{ProductoID: p.ID, Cantidad: 1}},
		TasaIVA: decimal.NewFromInt(19),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(333), resp.Subtotal)
	assert.Equal(t, int64(63), resp.MontoIVA) // 63.27 redondea a 63
	assert.Equal(t, int64(396), resp.Total)
}

func TestEmitirFactura_NumerosConsecutivos(t *testing.T) {
	svc, _, productoRepo, _, _ := buildFacturacionSvc()
	p := productoRepo.seed(model.Producto{Codigo: "D-001", Nombre: "Producto D", PrecioVenta: 100, StockActual: 10, Activo: true})

	req := dto.EmitirFacturaRequest{
		Items: []dto.ItemFacturaRequest{{ProductoID: p.ID, Cantidad: 1}},
	}
	r1, err := svc.EmitirFactura(context.Background(), 1, req)
	require.NoError(t, err)
	r2, err := svc.EmitirFactura(context.Background(), 1, req)
	require.NoError(t, err)

	year := time.Now().Year()
	assert.Equal(t, fmt.Sprintf("FAC-%d-000001", year), r1.Numero)
	assert.Equal(t, fmt.Sprintf("FAC-%d-000002", year), r2.Numero)
}

func TestEmitirFactura_CarritoVacio(t *testing.T) {
	svc, _, _, _, _ := buildFacturacionSvc()
	_, err := svc.EmitirFactura(context.Background(), 1, dto.EmitirFacturaRequest{})
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestEmitirFactura_CantidadInvalida(t *testing.T) {
	svc, _, productoRepo, _, _ := buildFacturacionSvc()
	p := productoRepo.seed(model.Producto{Codigo: "E-001", Nombre: "Producto E", PrecioVenta: 100, StockActual: 10, Activo: true})

	_, err := svc.EmitirFactura(context.Background(), 1, dto.EmitirFacturaRequest{
		Items: []dto.ItemFacturaRequest{{ProductoID: p.ID, Cantidad: 0}},
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestEmitirFactura_ProductoInexistente(t *testing.T) {
	svc, _, _, _, _ := buildFacturacionSvc()
	_, err := svc.EmitirFactura(context.Background(), 1, dto.EmitirFacturaRequest{
		Items: []dto.ItemFacturaRequest{{ProductoID: 999, Cantidad: 1}},
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
}

func TestEmitirFactura_ProductoInactivo(t *testing.T) {
	svc, _, productoRepo, _, _ := buildFacturacionSvc()
	p := productoRepo.seed(model.Producto{Codigo: "F-001", Nombre: "Descontinuado", PrecioVenta: 100, StockActual: 10, Activo: false})

	_, err := svc.EmitirFactura(context.Background(), 1, dto.EmitirFacturaRequest{
		Items: []dto.ItemFacturaRequest{{ProductoID: p.ID, Cantidad: 1}},
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestEmitirFactura_StockInsuficiente(t *testing.T) {
	svc, _, productoRepo, _, _ := buildFacturacionSvc()
	p := productoRepo.seed(model.Producto{Codigo: "G-001", Nombre: "Producto G", PrecioVenta: 100, StockActual: 2, Activo: true})

	_, err := svc.EmitirFactura(context.Background(), 1, dto.EmitirFacturaRequest{
		Items: []dto.ItemFacturaRequest{{ProductoID: p.ID, Cantidad: 5}},
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))
	// El guard condicional nunca llegó a mutar el stock
	assert.Equal(t, 2, productoRepo.productos[p.ID].StockActual)
}

func TestEmitirFactura_SinSecuencia(t *testing.T) {
	svc, _, productoRepo, secuenciaRepo, _ := buildFacturacionSvc()
	secuenciaRepo.seq = nil
	p := productoRepo.seed(model.Producto{Codigo: "H-001", Nombre: "Producto H", PrecioVenta: 100, StockActual: 10, Activo: true})

	_, err := svc.EmitirFactura(context.Background(), 1, dto.EmitirFacturaRequest{
		Items: []dto.ItemFacturaRequest{{ProductoID: p.ID, Cantidad: 1}},
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
}

func TestAnularFactura_RestauraStock(t *testing.T) {
	svc, _, productoRepo, _, movimientoRepo := buildFacturacionSvc()
	p := productoRepo.seed(model.Producto{Codigo: "I-001", Nombre: "Producto I", PrecioVenta: 500, StockActual: 10, Activo: true})

	emitida, err := svc.EmitirFactura(context.Background(), 1, dto.EmitirFacturaRequest{
		Items: []dto.ItemFacturaRequest{{ProductoID: p.ID, Cantidad: 4}},
	})
	require.NoError(t, err)
	require.Equal(t, 6, productoRepo.productos[p.ID].StockActual)

	anulada, err := svc.AnularFactura(context.Background(), emitida.ID, 2, "error de carga")
	require.NoError(t, err)

	assert.Equal(t, "anulada", anulada.Estado)
	require.NotNil(t, anulada.MotivoAnulacion)
	assert.Equal(t, "error de carga", *anulada.MotivoAnulacion)
	assert.NotNil(t, anulada.AnuladaAt)

	// Stock restaurado exactamente
	assert.Equal(t, 10, productoRepo.productos[p.ID].StockActual)

	// Journal: un movimiento de emisión y uno inverso de anulación
	var reposicion *model.MovimientoStock
	for i := range movimientoRepo.movimientos {
		if movimientoRepo.movimientos[i].Tipo == "anulacion_factura" {
			reposicion = &movimientoRepo.movimientos[i]
		}
	}
	require.NotNil(t, reposicion)
	assert.Equal(t, 4, reposicion.Cantidad)
	require.NotNil(t, reposicion.ReferenciaID)
	assert.Equal(t, emitida.ID, *reposicion.ReferenciaID)
}

func TestAnularFactura_DobleAnulacion(t *testing.T) {
	svc, _, productoRepo, _, _ := buildFacturacionSvc()
	p := productoRepo.seed(model.Producto{Codigo: "J-001", Nombre: "Producto J", PrecioVenta: 500, StockActual: 10, Activo: true})

	emitida, err := svc.EmitirFactura(context.Background(), 1, dto.EmitirFacturaRequest{
		Items: []dto.ItemFacturaRequest{{ProductoID: p.ID, Cantidad: 2}},
	})
	require.NoError(t, err)

	_, err = svc.AnularFactura(context.Background(), emitida.ID, 2, "primera anulación")
	require.NoError(t, err)

	_, err = svc.AnularFactura(context.Background(), emitida.ID, 2, "segunda anulación")
	require.Error(t, err)
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))

	// La segunda anulación no volvió a reponer stock
	assert.Equal(t, 10, productoRepo.productos[p.ID].StockActual)
}

func TestAnularFactura_NoExiste(t *testing.T) {
	svc, _, _, _, _ := buildFacturacionSvc()
	_, err := svc.AnularFactura(context.Background(), 42, 1, "no existe")
	require.Error(t, err)
	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
}
