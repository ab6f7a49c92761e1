package router

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"peppolsheet/internal/config"
	"peppolsheet/internal/handler"
	"peppolsheet/internal/infra"
	"peppolsheet/internal/middleware"
	"peppolsheet/internal/repository"
	"peppolsheet/internal/service"
)

// Deps are the clients built once in main and shared by every request.
type Deps struct {
	Config  *config.Config
	DB      *gorm.DB
	Redis   *redis.Client
	Gateway *infra.StorecoveClient
	// Emails is nil when SMTP is not configured.
	Emails service.EmailQueue
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis/Gateway
// ctx bounds background goroutines started by middleware.
func New(ctx context.Context, d Deps) *gin.Engine {
	cfg := d.Config
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(ctx, cfg.RateLimit, time.Minute))

	// ── Repositories ─────────────────────────────────────────────────────────
	entityRepo := repository.NewLegalEntityRepository(d.DB)
	identifierRepo := repository.NewPeppolIdentifierRepository(d.DB)
	submissionRepo := repository.NewSubmissionRepository(d.DB)

	// ── Services ─────────────────────────────────────────────────────────────
	documentSvc := service.NewDocumentService(entityRepo, identifierRepo, submissionRepo, d.Gateway, d.Emails)
	submissionSvc := service.NewSubmissionService(submissionRepo)
	idempotency := service.NewRedisIdempotencyStore(d.Redis, cfg.IdempotencyTTL)

	// ── Handlers ─────────────────────────────────────────────────────────────
	documentsH := handler.NewDocumentsHandler(documentSvc, idempotency)
	submissionsH := handler.NewSubmissionsHandler(submissionSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(d.DB, d.Redis, d.Gateway))

	api := r.Group("/api", middleware.JWTAuth(cfg.SupabaseJWTSecret))

	tenant := api.Group("", middleware.RequireTenant())
	{
		tenant.POST("/storecove/invoices/create-from-json", documentsH.CreateFromJSON)
		tenant.POST("/storecove/documents/validate", documentsH.Validate)
		tenant.POST("/storecove/documents/send-xml", documentsH.SendXML)

		tenant.GET("/submissions", submissionsH.List)
		tenant.GET("/submissions/:id", submissionsH.Get)
	}

	// Admin and support see every tenant
	admin := api.Group("/admin", middleware.RequireRole(cfg.Access, config.RoleAdmin, config.RoleSupport))
	{
		admin.GET("/submissions", submissionsH.ListAll)
	}

	return r
}
