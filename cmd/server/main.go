package main

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/rl1809/order-ledger/internal/adapter/handler"
	"github.com/rl1809/order-ledger/internal/adapter/messaging"
	"github.com/rl1809/order-ledger/internal/adapter/sink"
	"github.com/rl1809/order-ledger/internal/adapter/storage"
	"github.com/rl1809/order-ledger/internal/config"
	"github.com/rl1809/order-ledger/internal/core/service"
	"github.com/rl1809/order-ledger/internal/logger"
	"github.com/rl1809/order-ledger/internal/port"
)

const saveTimeout = 5 * time.Second

type schemaRepository interface {
	port.OrderRepository
	EnsureSchema(ctx context.Context) error
}

func main() {
	envLoaded := config.LoadEnv()
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	if !envLoaded {
		log.Info("no .env file found, using environment variables")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.TraceStdout {
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			log.Fatal("failed to create trace exporter", zap.Error(err))
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
		otel.SetTracerProvider(tp)
		defer tp.Shutdown(context.Background())
	}

	events := sink.NewMultiSink(sink.NewZapSink(log))

	// Initialize Redis
	var rdb *redis.Client
	var idempotency port.IdempotencyStore
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			PoolSize: 100,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal("failed to connect redis", zap.Error(err))
		}
		log.Info("connected to redis", zap.String("addr", cfg.RedisAddr))

		redisAdapter := storage.NewRedisAdapter(rdb, log)
		idempotency = redisAdapter
		events.Add(redisAdapter)
	}

	// Initialize Kafka
	var kafkaSink *messaging.KafkaSink
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink = messaging.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		events.Add(kafkaSink)
		log.Info("publishing events to kafka", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	// Initialize database
	var db *sql.DB
	var repo schemaRepository
	switch cfg.StoreDriver {
	case "mysql":
		db, err = sql.Open("mysql", cfg.MySQLDSN)
		repo = storage.NewMySQLAdapter(db)
	case "postgres":
		db, err = sql.Open("postgres", cfg.PostgresDSN)
		repo = storage.NewPostgresAdapter(db)
	case "":
		log.Info("no store driver configured, orders are kept in memory only")
	default:
		log.Fatal("unknown store driver", zap.String("driver", cfg.StoreDriver))
	}
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	if db != nil {
		db.SetMaxOpenConns(50)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.PingContext(ctx); err != nil {
			log.Fatal("failed to ping database", zap.Error(err))
		}
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatal("failed to prepare schema", zap.Error(err))
		}
		log.Info("connected to database", zap.String("driver", cfg.StoreDriver))
	}

	// Initialize ledger
	opts := []service.Option{service.WithEventSink(events)}
	if repo != nil {
		restored, err := repo.ListOrders(ctx)
		if err != nil {
			log.Fatal("failed to restore orders", zap.Error(err))
		}
		log.Info("restored orders", zap.Int("count", len(restored)))
		opts = append(opts, service.WithOrders(restored), service.WithPersistQueue(cfg.QueueSize))
	}
	ledger := service.NewOrderLedger(opts...)

	// Start worker pool
	var wg sync.WaitGroup
	if repo != nil {
		for i := 0; i < cfg.WorkerCount; i++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				service.PersistWorker(id, ledger.GetPersistQueue(), repo, log, saveTimeout)
			}(i)
		}
		log.Info("started persist workers", zap.Int("count", cfg.WorkerCount))
	}

	// Initialize gRPC server
	grpcServer := grpc.NewServer()
	handler.RegisterOrderLedgerServer(grpcServer, handler.NewGRPCHandler(ledger))

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatal("failed to listen", zap.String("addr", cfg.GRPCAddr), zap.Error(err))
	}

	go func() {
		log.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			log.Error("gRPC server error", zap.Error(err))
		}
	}()

	// Initialize HTTP server
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler.NewHTTPHandler(ledger, idempotency).Routes(),
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Info("HTTP server stopped")

	grpcServer.GracefulStop()
	log.Info("gRPC server stopped")

	// Close ledger and wait for workers to drain the queue
	ledger.Close()
	wg.Wait()
	log.Info("workers stopped")

	if kafkaSink != nil {
		kafkaSink.Close()
	}
	if rdb != nil {
		rdb.Close()
	}
	if db != nil {
		db.Close()
	}
	log.Info("connections closed")
}
