package router

import (
	"time"

	"invenfact/internal/config"
	"invenfact/internal/handler"
	"invenfact/internal/middleware"
	"invenfact/internal/repository"
	"invenfact/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	facturaRepo := repository.NewFacturaRepository(db)
	secuenciaRepo := repository.NewSecuenciaRepository(db)
	historialPrecioRepo := repository.NewHistorialPrecioRepository(db)
	movimientoStockRepo := repository.NewMovimientoStockRepository(db)
	categoriaRepo := repository.NewCategoriaRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	productoSvc := service.NewProductoService(productoRepo, historialPrecioRepo, rdb)
	inventarioSvc := service.NewInventarioService(productoRepo, movimientoStockRepo)
	facturacionSvc := service.NewFacturacionService(facturaRepo, productoRepo, secuenciaRepo, movimientoStockRepo)
	historialSvc := service.NewHistorialPrecioService(historialPrecioRepo, productoRepo)
	categoriaSvc := service.NewCategoriaService(categoriaRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	productosH := handler.NewProductosHandler(productoSvc)
	inventarioH := handler.NewInventarioHandler(inventarioSvc)
	facturasH := handler.NewFacturasHandler(facturacionSvc)
	historialPreciosH := handler.NewHistorialPreciosHandler(historialSvc)
	consultaH := handler.NewConsultaPreciosHandler(productoRepo, rdb)
	categoriasH := handler.NewCategoriasHandler(categoriaSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Price check — no auth required
	r.GET("/v1/precio/:codigo", consultaH.GetPrecioPorCodigo)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Facturas — cajero puede emitir y consultar, anular pide supervisor
		v1.POST("/facturas", middleware.RequireRole("cajero", "supervisor", "administrador"), facturasH.EmitirFactura)
		v1.GET("/facturas", middleware.RequireRole("cajero", "supervisor", "administrador"), facturasH.ListarFacturas)
		v1.GET("/facturas/:id", middleware.RequireRole("cajero", "supervisor", "administrador"), facturasH.ObtenerFactura)
		v1.POST("/facturas/:id/anular", middleware.RequireRole("supervisor", "administrador"), facturasH.AnularFactura)

		// Productos — lectura para todos los autenticados
		v1.GET("/productos", middleware.RequireRole("cajero", "supervisor", "administrador"), productosH.ListarProductos)
		v1.GET("/productos/:id", middleware.RequireRole("cajero", "supervisor", "administrador"), productosH.ObtenerProducto)
		v1.GET("/productos/:id/historial-precios", middleware.RequireRole("cajero", "supervisor", "administrador"), historialPreciosH.ListarHistorial)
		// Write operations — administrador only
		prods := v1.Group("/productos", middleware.RequireRole("administrador"))
		{
			prods.POST("", productosH.CrearProducto)
			prods.PUT("/:id", productosH.ActualizarProducto)
			prods.DELETE("/:id", productosH.DesactivarProducto)
			prods.POST("/:id/reactivar", productosH.ReactivarProducto)
			prods.POST("/precios-masivo", productosH.ActualizarPreciosMasivo)
		}

		inv := v1.Group("/inventario", middleware.RequireRole("administrador", "supervisor"))
		{
			inv.POST("/:id/ajustar", inventarioH.AjustarStock)
			inv.GET("/alertas", inventarioH.ObtenerAlertas)
			inv.GET("/movimientos", inventarioH.ListarMovimientos)
		}

		usuarios := v1.Group("/usuarios", middleware.RequireRole("administrador"))
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
			usuarios.PATCH("/:id/reactivar", usuariosH.Reactivar)
		}

		// Categorías — administrador can write, all authenticated can read
		v1.GET("/categorias", middleware.RequireRole("cajero", "supervisor", "administrador"), categoriasH.Listar)
		categorias := v1.Group("/categorias", middleware.RequireRole("administrador"))
		{
			categorias.POST("", categoriasH.Crear)
			categorias.PUT("/:id", categoriasH.Actualizar)
			categorias.DELETE("/:id", categoriasH.Desactivar)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
