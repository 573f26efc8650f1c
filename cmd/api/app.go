package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hugohenrick/warung-digital/docs"
	"github.com/hugohenrick/warung-digital/internal/adapter/api/controller"
	"github.com/hugohenrick/warung-digital/internal/adapter/api/route"
	"github.com/hugohenrick/warung-digital/internal/adapter/repository"
	"github.com/hugohenrick/warung-digital/internal/domain/storage"
	"github.com/hugohenrick/warung-digital/internal/infrastructure/database"
	cartsvc "github.com/hugohenrick/warung-digital/internal/service/cart"
	"github.com/hugohenrick/warung-digital/internal/service/catalog"
	"github.com/hugohenrick/warung-digital/internal/service/checkout"
	"github.com/hugohenrick/warung-digital/internal/service/report"
	"github.com/hugohenrick/warung-digital/internal/service/sales"
	"github.com/hugohenrick/warung-digital/internal/service/settings"
	"github.com/hugohenrick/warung-digital/pkg/auth"
	"github.com/hugohenrick/warung-digital/pkg/config"
	"github.com/hugohenrick/warung-digital/pkg/events"
	"github.com/hugohenrick/warung-digital/pkg/logger"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"
)

const version = "1.0.0"

// App representa a aplicação e suas dependências
type App struct {
	cfg    *config.Config
	logger logger.Logger
	router *gin.Engine
	server *http.Server

	db    *pgxpool.Pool
	redis *redis.Client
	store storage.Store
	bus   *events.Bus
	relay *events.RedisRelay

	// background roda ao lado do servidor HTTP durante Run
	background []func(context.Context) error

	catalog    *catalog.Manager
	settings   *settings.Manager
	jwtService *auth.JWTService

	authController     *controller.AuthController
	userController     *controller.UserController
	productController  *controller.ProductController
	cartController     *controller.CartController
	checkoutController *controller.CheckoutController
	salesController    *controller.SalesController
	settingsController *controller.SettingsController
	reportController   *controller.ReportController
	eventsController   *controller.EventsController
}

// NewApp cria uma nova instância do aplicativo
func NewApp(ctx context.Context, cfg *config.Config, log logger.Logger) (_ *App, err error) {
	app := &App{cfg: cfg, logger: log}
	defer func() {
		if err != nil {
			app.Close()
		}
	}()

	if err = app.openStore(ctx); err != nil {
		return nil, err
	}

	migrated, err := storage.MigrateLegacyKeys(ctx, app.store)
	if err != nil {
		return nil, fmt.Errorf("erro ao migrar chaves antigas: %w", err)
	}
	if len(migrated.Moved) > 0 || len(migrated.Dropped) > 0 {
		log.Info("chaves antigas migradas", "moved", migrated.Moved, "dropped", migrated.Dropped)
	}

	// Barramento de eventos; a origem distingue este processo dos demais no relay
	app.bus = events.NewBus(uuid.NewString(), log)
	if cfg.EventsRelay == config.BackendRedis {
		app.relay = events.NewRedisRelay(app.redis, events.DefaultChannel, app.bus, log)
		app.background = append(app.background, app.relay.Run)
	}

	jwtService, err := auth.NewJWTService(cfg.JWTSecretKey, cfg.JWTExpiration)
	if err != nil {
		return nil, err
	}
	app.jwtService = jwtService

	if err = app.buildServices(ctx); err != nil {
		return nil, err
	}

	app.router = newRouter(cfg)
	app.server = &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return app, nil
}

// openStore conecta ao backend de armazenamento configurado
func (a *App) openStore(ctx context.Context) error {
	if a.cfg.UsesRedis() {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     a.cfg.RedisAddr,
			Password: a.cfg.RedisPassword,
			DB:       a.cfg.RedisDB,
		})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("erro ao conectar ao redis: %w", err)
		}
	}

	switch a.cfg.StorageBackend {
	case config.BackendPostgres:
		if err := database.RunMigrations(a.cfg.DatabaseURL, a.logger); err != nil {
			return err
		}
		db, err := database.NewPostgresDB(ctx, a.cfg.DatabaseURL, database.DefaultPoolOptions())
		if err != nil {
			return err
		}
		a.db = db
		a.store = repository.NewPostgresStore(db)
	case config.BackendRedis:
		a.store = repository.NewRedisStore(a.redis, a.cfg.RedisPrefix)
	default:
		a.store = repository.NewMemoryStore()
	}

	a.logger.Info("armazenamento configurado", "backend", a.cfg.StorageBackend)
	return nil
}

// buildServices cria os serviços de domínio e os controllers
func (a *App) buildServices(ctx context.Context) error {
	loc := a.cfg.Location()

	catalogManager, err := catalog.NewManager(ctx, a.store, a.bus, a.logger)
	if err != nil {
		return fmt.Errorf("erro ao carregar catálogo: %w", err)
	}
	a.catalog = catalogManager

	settingsManager, err := settings.NewManager(ctx, a.store, a.bus, a.logger)
	if err != nil {
		return fmt.Errorf("erro ao carregar configurações: %w", err)
	}
	a.settings = settingsManager

	checkoutService, err := checkout.NewService(a.store, settingsManager, a.bus, a.logger)
	if err != nil {
		return err
	}

	salesService := sales.NewService(a.store, a.bus, a.logger)
	cartService := cartsvc.NewService(a.store, a.bus, a.logger)
	reportService := report.NewService(salesService, catalogManager, settingsManager, loc)
	userRepo := repository.NewUserRepository(a.store)

	a.authController = controller.NewAuthController(userRepo, a.jwtService, a.bus, a.logger)
	a.userController = controller.NewUserController(userRepo, a.bus, a.logger)
	a.productController = controller.NewProductController(catalogManager, settingsManager, a.logger)
	a.cartController = controller.NewCartController(cartService, catalogManager, a.logger)
	a.checkoutController = controller.NewCheckoutController(checkoutService, a.logger)
	a.salesController = controller.NewSalesController(salesService, loc, a.logger)
	a.settingsController = controller.NewSettingsController(settingsManager, a.logger)
	a.reportController = controller.NewReportController(reportService, loc, a.logger)
	a.eventsController = controller.NewEventsController(a.bus, a.logger)
	return nil
}

func newRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSOrigins) == 0 || (len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSOrigins
	}
	corsConfig.AddAllowHeaders("Authorization")
	router.Use(cors.New(corsConfig))

	return router
}

// SetupRoutes configura as rotas da aplicação
func (a *App) SetupRoutes() {
	basePath := a.cfg.BasePath
	docs.SwaggerInfo.BasePath = basePath

	a.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := a.router.Group(basePath)

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": version,
			"storage": a.cfg.StorageBackend,
		})
	})

	route.SetupAuthRoutes(api, a.authController, a.jwtService)
	route.SetupUserRoutes(api, a.userController, a.jwtService)
	route.SetupProductRoutes(api, a.productController, a.jwtService)
	route.SetupCartRoutes(api, a.cartController, a.checkoutController, a.jwtService)
	route.SetupSalesRoutes(api, a.salesController, a.reportController, a.jwtService)
	route.SetupSettingsRoutes(api, a.settingsController, a.jwtService)
	route.SetupEventsRoutes(api, a.eventsController, a.jwtService)
}

// Run atende HTTP e, se configurado, o relay de eventos até ctx ser cancelado ou um deles falhar.
// A falha de um encerra os demais.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("servidor HTTP iniciado", "addr", a.server.Addr, "base_path", a.cfg.BasePath)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("erro no servidor HTTP: %w", err)
		}
		return nil
	})

	for _, job := range a.background {
		job := job
		g.Go(func() error {
			return job(gctx)
		})
	}

	// Se qualquer parte falhar, o servidor HTTP também para
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("erro ao encerrar servidor HTTP", "error", err)
		}
		return nil
	})

	return g.Wait()
}

// Shutdown encerra o servidor HTTP aguardando as requisições em andamento
func (a *App) Shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// GetRouter retorna o router da aplicação
func (a *App) GetRouter() *gin.Engine {
	return a.router
}

// Close libera os recursos da aplicação
func (a *App) Close() {
	if a.catalog != nil {
		a.catalog.Close()
	}
	if a.settings != nil {
		a.settings.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("erro ao fechar redis", "error", err)
		}
	}
}
