package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/candy-pos/internal/application/exitorder"
	"github.com/jhoicas/candy-pos/internal/application/inventory"
	"github.com/jhoicas/candy-pos/internal/application/usecase"
	domaininv "github.com/jhoicas/candy-pos/internal/domain/inventory"
	"github.com/jhoicas/candy-pos/internal/domain/repository"
	"github.com/jhoicas/candy-pos/internal/domain/sequence"
	"github.com/jhoicas/candy-pos/internal/infrastructure/memory"
	"github.com/jhoicas/candy-pos/internal/infrastructure/metrics"
	"github.com/jhoicas/candy-pos/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/candy-pos/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/candy-pos/internal/interfaces/http"
	"github.com/jhoicas/candy-pos/pkg/config"
	"github.com/jhoicas/candy-pos/pkg/logger"
)

// storage lo que el resto de la app necesita del almacén elegido.
type storage struct {
	txRunner inventory.TxRunner
	repos    inventory.Repos
	counters repository.CounterRepository
	closers  []func()
}

func (s *storage) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Inventory.StorageDriver).
		Str("sequence", cfg.Inventory.SequenceDriver).
		Str("stock_policy", cfg.Inventory.StockPolicy).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	policy, err := domaininv.PolicyByName(cfg.Inventory.StockPolicy)
	if err != nil {
		log.Fatal().Err(err).Msg("política de stock")
	}

	prom := metrics.New()
	seq := sequence.NewGenerator(store.counters)
	ledger := inventory.NewLedger(
		store.txRunner, store.repos.Products, store.repos.Movements,
		seq, policy, prom, log.Zerolog(),
	)
	exitOrderUC := exitorder.NewUseCase(
		store.txRunner, store.repos.ExitOrders, ledger, seq, prom, log.Zerolog(),
	)
	adjustStockUC := inventory.NewAdjustStockUseCase(ledger)
	productUC := usecase.NewProductUseCase(store.repos.Products, ledger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	httpRouter.Router(app, httpRouter.RouterDeps{
		ExitOrderUC:   exitOrderUC,
		ProductUC:     productUC,
		AdjustStockUC: adjustStockUC,
		Ledger:        ledger,
		Metrics:       prom.Handler(),
		ServiceName:   cfg.App.Name,
		Storage:       cfg.Inventory.StorageDriver,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openStorage arma repositorios, TxRunner y contadores según STORAGE_DRIVER y SEQUENCE_DRIVER.
func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	s := &storage{}

	switch cfg.Inventory.StorageDriver {
	case config.DriverMemory:
		mem := memory.NewStore()
		s.txRunner = mem
		s.repos = mem.Repos()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, pool.Close)
		if cfg.DB.Migrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				s.close()
				return nil, err
			}
		}
		runner := postgres.NewTxRunner(pool)
		if cfg.Inventory.SequenceDriver == config.DriverPostgres {
			runner.WithTxCounters()
		}
		s.txRunner = runner
		s.repos = postgres.ReposFor(pool)
		s.counters = postgres.NewCounterRepository(pool)
	}

	switch cfg.Inventory.SequenceDriver {
	case config.DriverRedis:
		client, err := infraredis.NewClient(ctx, cfg.Redis, log.Component("redis"))
		if err != nil {
			s.close()
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = client.Close() })
		s.counters = infraredis.NewCounterRepository(client, cfg.Redis.KeyPrefix)
	case config.DriverMemory:
		s.counters = memory.NewCounterRepository()
	}
	return s, nil
}
