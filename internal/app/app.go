package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"classroom_backend/internal/config"
	"classroom_backend/internal/controller"
	"classroom_backend/internal/repository"
	"classroom_backend/internal/service"
	"classroom_backend/pkg/database"
	"classroom_backend/pkg/logger"
	"classroom_backend/pkg/monitoring"
	"classroom_backend/pkg/security"
	"classroom_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
}

type repositories struct {
	user       *repository.UserRepository
	class      *repository.ClassRepository
	material   *repository.MaterialRepository
	quiz       *repository.QuizRepository
	result     *repository.ResultRepository
	checkpoint *repository.CheckpointRepository
	essay      *repository.EssayRepository
}

type services struct {
	auth       *service.AuthService
	user       *service.UserService
	class      *service.ClassService
	material   *service.MaterialService
	quiz       *service.QuizService
	attempt    *service.AttemptService
	checkpoint *service.CheckpointService
	grading    *service.EssayGradingService
	dashboard  *service.DashboardService
}

type controllers struct {
	auth      *controller.AuthController
	user      *controller.UserController
	class     *controller.ClassController
	material  *controller.MaterialController
	quiz      *controller.QuizController
	attempt   *controller.AttemptController
	grading   *controller.GradingController
	dashboard *controller.DashboardController
	health    *controller.HealthController
}

func initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		class:      repository.NewClassRepository(db),
		material:   repository.NewMaterialRepository(db),
		quiz:       repository.NewQuizRepository(db),
		result:     repository.NewResultRepository(db),
		checkpoint: repository.NewCheckpointRepository(db),
		essay:      repository.NewEssayRepository(db),
	}
}

func initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*services, error) {
	storage, err := service.NewStorageProvider(&cfg.Storage)
	if err != nil {
		return nil, err
	}

	access := service.NewAccessChecker(repos.class, repos.quiz)

	s := &services{}
	s.auth = service.NewAuthService(repos.user, &cfg.JWT)
	s.user = service.NewUserService(repos.user)
	s.class = service.NewClassService(repos.class, repos.user, access)
	s.material = service.NewMaterialService(repos.material, access, storage)
	s.quiz = service.NewQuizService(repos.quiz, access)
	s.attempt = service.NewAttemptService(repos.quiz, repos.result, repos.checkpoint, repos.essay, access, db)
	s.checkpoint = service.NewCheckpointService(repos.quiz, repos.result, repos.checkpoint, s.attempt)
	s.grading = service.NewEssayGradingService(repos.quiz, repos.result, repos.essay, access, db)
	s.dashboard = service.NewDashboardService(repos.class, repos.quiz, repos.result, repos.material, repos.user, s.attempt, access, rdb)
	s.grading.Reports = s.dashboard
	return s, nil
}

func initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:      controller.NewAuthController(s.auth, s.user),
		user:      controller.NewUserController(s.user),
		class:     controller.NewClassController(s.class),
		material:  controller.NewMaterialController(s.material),
		quiz:      controller.NewQuizController(s.quiz),
		attempt:   controller.NewAttemptController(s.attempt, s.checkpoint),
		grading:   controller.NewGradingController(s.grading),
		dashboard: controller.NewDashboardController(s.dashboard),
		health:    controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := initRepositories(db)
	svcs, err := initServices(repos, cfg, db, rdb)
	if err != nil {
		logger.Log.Fatal("Failed to initialize services", zap.Error(err))
	}
	ctrls := initControllers(svcs, db)

	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("classroom-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, ctrls, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
