package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"retail_sales/api"
	"retail_sales/internal/config"
	"retail_sales/internal/metrics"
	"retail_sales/internal/notify"
	"retail_sales/internal/sales"
	"retail_sales/internal/sequence"
	"retail_sales/internal/storage/gormstore"
)

func main() {
	os.Exit(serve())
}

// serve returns the process exit code so deferred cleanup runs before os.Exit.
func serve() int {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("error loading configuration: %v", err))
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		panic(fmt.Errorf("error building logger: %v", err))
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return 1
	}
	return 0
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	storage, closeStorage, err := openStorage(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer closeStorage()

	m := metrics.New()
	publisher, closePublisher := newPublisher(cfg.Events, logger)
	defer closePublisher()

	opts := []sales.Option{
		sales.WithNumberAttempts(cfg.Sales.NumberAttempts),
		sales.WithPublishTimeout(cfg.Events.PublishTimeout),
	}
	if cfg.Sales.NumberSource == config.NumbersRedis {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
		}
		gen := sequence.NewRedisGenerator(client)
		if err := gen.Seed(ctx, storage.Sales); err != nil {
			return err
		}
		opts = append(opts, sales.WithNumberGenerator(gen))
	}

	salesService := sales.NewService(storage, m.Publisher(publisher), logger, opts...)
	catalog := sales.NewCatalog(storage, logger)

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	api.InitRoutes(r, salesService, catalog, m, logger)

	srv := &http.Server{Addr: cfg.HTTP.Addr, Handler: r}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error trying to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openStorage(cfg config.DatabaseConfig, logger *zap.Logger) (sales.Storage, func(), error) {
	if cfg.Driver == config.DriverMemory {
		logger.Warn("using in-memory storage; data is lost on restart")
		return sales.NewLocalStorage(), func() {}, nil
	}

	db, err := gormstore.Open(cfg.Driver, cfg.DSN, logger)
	if err != nil {
		return sales.Storage{}, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return sales.Storage{}, nil, err
	}
	return gormstore.New(db), func() { _ = sqlDB.Close() }, nil
}

func newPublisher(cfg config.EventsConfig, logger *zap.Logger) (sales.Publisher, func()) {
	logPublisher := sales.NewLogPublisher(logger)
	if cfg.Sink != config.SinkKafka {
		return logPublisher, func() {}
	}

	kafkaPublisher := notify.NewKafkaPublisher(notify.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic))
	logger.Info("publishing sale events to kafka",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.Topic),
	)
	return sales.MultiPublisher{logPublisher, kafkaPublisher}, func() {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Warn("failed to close kafka writer", zap.Error(err))
		}
	}
}
