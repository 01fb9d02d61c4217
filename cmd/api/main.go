package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/d1ma11/deposit-service/internal/adapter/codestore"
	"github.com/d1ma11/deposit-service/internal/adapter/gateway"
	httpadp "github.com/d1ma11/deposit-service/internal/adapter/http"
	idem "github.com/d1ma11/deposit-service/internal/adapter/middleware"
	"github.com/d1ma11/deposit-service/internal/adapter/notify"
	"github.com/d1ma11/deposit-service/internal/adapter/repository/mysql"
	"github.com/d1ma11/deposit-service/internal/config"
	domainConfirmation "github.com/d1ma11/deposit-service/internal/domain/confirmation"
	"github.com/d1ma11/deposit-service/internal/infrastructure/cache"
	"github.com/d1ma11/deposit-service/internal/infrastructure/db"
	"github.com/d1ma11/deposit-service/internal/usecase/confirmation"
	ledger "github.com/d1ma11/deposit-service/internal/usecase/deposit"
	"github.com/d1ma11/deposit-service/internal/usecase/rate"
	"github.com/d1ma11/deposit-service/internal/usecase/request"
	"github.com/d1ma11/deposit-service/internal/usecase/status"
)

const shutdownTimeout = 10 * time.Second

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.LogDevelopment {
		zc = zap.NewDevelopmentConfig()
	}
	lvl, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	gdb, err := db.OpenGorm(cfg.MySQLDSN(), log, db.ParseLogLevel(cfg.DBLogLevel))
	if err != nil {
		return err
	}
	if err := db.Migrate(gdb); err != nil {
		return err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()

	rdb, err := cache.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisDB, log)
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	e := newServer(cfg, log, gdb, rdb)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.Addr()))
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return e.Shutdown(sctx)
	})
	return g.Wait()
}

func newServer(cfg *config.Config, log *zap.Logger, gdb *gorm.DB, rdb *redis.Client) *echo.Echo {
	var store domainConfirmation.Store = codestore.NewRedisStore(rdb)
	if cfg.CodeStore == config.CodeStoreMemory {
		store = codestore.NewMemoryStore()
	}

	accounts := gateway.NewAccountClient(cfg.AccountServiceURL, cfg.GatewayTimeout, log)
	customers := gateway.NewCustomerClient(cfg.CustomerServiceURL, cfg.GatewayTimeout, log)

	calc := rate.NewCalculator(cfg.BaseRate)
	wf := request.NewWorkflow(request.Deps{
		UoW:       mysql.NewGormUoW(gdb),
		Requests:  mysql.NewRequestRepository(gdb),
		Statuses:  mysql.NewStatusRepository(gdb),
		Deposits:  mysql.NewDepositRepository(gdb),
		Customers: customers,
		Accounts:  accounts,
		Issuer:    confirmation.NewIssuer(store, notify.NewLogSender(log), cfg.CodeTTL, log),
		Tracker:   status.NewTracker(log),
		Ledger:    ledger.NewLedger(accounts, calc, log, ledger.WithRefillPolicy(calc.Policy(cfg.RefillPolicy))),
		Rates:     calc,
		Log:       log,
	})

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = httpadp.NewValidator()
	e.HTTPErrorHandler = httpadp.ErrorHandler(log)
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			)
			return nil
		},
	}))

	health := httpadp.NewHandler(
		httpadp.Check{Name: "mysql", Probe: func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}},
		httpadp.Check{Name: "redis", Probe: cache.Probe(rdb)},
	)
	confirm := idem.NewIdempotency(rdb, cfg.IdempotencyTTL(), log).Middleware()
	httpadp.Register(e, health, httpadp.NewDepositHandler(wf), confirm)
	return e
}
