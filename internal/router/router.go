package router

import (
	"time"

	"movecaixa/internal/config"
	"movecaixa/internal/handler"
	"movecaixa/internal/middleware"
	"movecaixa/internal/repository"
	"movecaixa/internal/service"
	"movecaixa/internal/worker"

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
	r.Use(middleware.CORS(cfg.CORSOrigin))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	caixaRepo := repository.NewCaixaRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	caixaSvc := service.NewCaixaService(caixaRepo, usuarioRepo, dispatcher, cfg)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	caixaH := handler.NewCaixaHandler(caixaSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/registrar", authH.Registrar)
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		v1.POST("/auth/senha", authH.AlterarSenha)

		caixa := v1.Group("/caixa")
		{
			caixa.POST("/abrir", caixaH.Abrir)
			caixa.GET("/ativo", caixaH.Ativo)
			caixa.POST("/lancamento", caixaH.RegistrarLancamento)
			caixa.POST("/sangria", caixaH.RegistrarSangria)
			caixa.POST("/fechar", caixaH.Fechar)
			caixa.GET("/:id/reporte", caixaH.ObterReporte)
		}

		v1.GET("/usuarios", middleware.RequireAdmin(), usuariosH.Listar)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
