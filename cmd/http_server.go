package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/attendance-management/api"
	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/attendance"
	attendancePostgres "github.com/frahmantamala/attendance-management/internal/attendance/postgres"
	"github.com/frahmantamala/attendance-management/internal/auth"
	authPostgres "github.com/frahmantamala/attendance-management/internal/auth/postgres"
	authRedis "github.com/frahmantamala/attendance-management/internal/auth/redis"
	"github.com/frahmantamala/attendance-management/internal/core/events"
	"github.com/frahmantamala/attendance-management/internal/leave"
	leavePostgres "github.com/frahmantamala/attendance-management/internal/leave/postgres"
	"github.com/frahmantamala/attendance-management/internal/organization"
	organizationPostgres "github.com/frahmantamala/attendance-management/internal/organization/postgres"
	"github.com/frahmantamala/attendance-management/internal/transport"
	"github.com/frahmantamala/attendance-management/internal/transport/middleware"
	"github.com/frahmantamala/attendance-management/internal/transport/rest"
	"github.com/frahmantamala/attendance-management/internal/user"
	userPostgres "github.com/frahmantamala/attendance-management/internal/user/postgres"
	"github.com/frahmantamala/attendance-management/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Gorm     *gorm.DB
	Redis    goredis.UniversalClient
	EventBus *events.EventBus
	Router   *chi.Mux
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		deps.Logger.Error("failed to set up routes", "error", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	// let in-flight notifications finish before their stores go away
	deps.EventBus.Wait()
	if deps.Redis != nil {
		if err := deps.Redis.Close(); err != nil {
			deps.Logger.Error("redis close error", "error", err)
		}
	}
	if err := deps.DB.Close(); err != nil {
		deps.Logger.Error("database close error", "error", err)
	}

	deps.Logger.Info("server stopped")
}

func setupRoutes(deps *Dependencies) error {
	cfg := deps.Config
	lg := deps.Logger
	base := transport.NewBaseHandler(lg)

	loc, err := cfg.Attendance.Location()
	if err != nil {
		return err
	}

	tokens, err := auth.NewJWTTokenService(cfg.Security.JWTSecret, cfg.Security.TokenDuration)
	if err != nil {
		return fmt.Errorf("token service: %w", err)
	}

	authService := auth.NewService(
		authPostgres.NewAuthRepository(deps.Gorm),
		tokens,
		newAttemptTracker(deps),
		auth.NewEventAuditRecorder(lg, deps.EventBus),
		cfg.Security.BCryptCost,
		lg,
	)

	leaveService := leave.NewService(
		leavePostgres.NewLeaveRepository(deps.Gorm),
		leave.Policy{AnnualLimitMinutes: cfg.Leave.AnnualLimitMinutes, FullDayMinutes: cfg.Leave.FullDayMinutes},
		deps.EventBus,
		loc,
		lg,
	)
	leave.NewEventHandler(leavePostgres.NewContactRepository(deps.Gorm), lg).RegisterEventHandlers(deps.EventBus)

	doc, err := api.Load(context.Background())
	if err != nil {
		return fmt.Errorf("load api document: %w", err)
	}
	contract, err := middleware.NewOpenAPIValidator(doc)
	if err != nil {
		return fmt.Errorf("api contract: %w", err)
	}

	rest.RegisterAllRoutes(deps.Router, rest.Handlers{
		Health:       rest.NewHealthHandler(deps.DB.DB, deps.Redis),
		Auth:         auth.NewHandler(base, authService),
		Organization: organization.NewHandler(base, organization.NewService(organizationPostgres.NewOrganizationRepository(deps.Gorm), lg)),
		User:         user.NewHandler(base, user.NewService(userPostgres.NewUserRepository(deps.Gorm), lg)),
		Attendance:   attendance.NewHandler(base, attendance.NewService(attendancePostgres.NewAttendanceRepository(deps.Gorm), loc, lg)),
		Leave:        leave.NewHandler(base, leaveService),
	}, rest.Options{
		AllowedOrigins: cfg.Server.Origins(),
		Contract:       contract,
	})
	return nil
}

// newAttemptTracker keeps lockout state in Redis when it is enabled so all replicas agree.
func newAttemptTracker(deps *Dependencies) auth.AttemptTracker {
	cfg := deps.Config.Lockout
	if !cfg.Enabled {
		deps.Logger.Warn("login lockout disabled")
		return auth.NopAttemptTracker{}
	}

	policy := auth.LockoutPolicy{
		MaxAttempts:  cfg.MaxAttempts,
		Window:       cfg.Window,
		LockDuration: cfg.LockDuration,
	}
	if deps.Redis != nil {
		return authRedis.NewAttemptTracker(deps.Redis, "login", policy)
	}
	return auth.NewMemoryAttemptTracker(policy, nil)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	lg := logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gdb, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	var redisClient goredis.UniversalClient
	if config.Redis.Enabled {
		redisClient, err = initRedis(config.Redis)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
	}

	return &Dependencies{
		Config:   config,
		Logger:   lg,
		DB:       db,
		Gorm:     gdb,
		Redis:    redisClient,
		EventBus: events.NewEventBus(lg),
		Router:   chi.NewRouter(),
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm shares the sqlx pool with gorm so both see the same connection limits.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
}

func initRedis(cfg internal.RedisConfig) (goredis.UniversalClient, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}
