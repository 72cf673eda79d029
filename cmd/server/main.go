package main

import (
	"context"
	"database/sql"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"

	"github.com/rl1809/crm/internal/adapter/handler"
	"github.com/rl1809/crm/internal/adapter/handler/rpc"
	"github.com/rl1809/crm/internal/adapter/storage"
	"github.com/rl1809/crm/internal/config"
	"github.com/rl1809/crm/internal/core/service"
	"github.com/rl1809/crm/internal/logging"
	"github.com/rl1809/crm/internal/port"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.New("info").Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize datastore
	var store port.Store
	switch cfg.Store {
	case "memory":
		store = storage.NewMemoryAdapter()
		log.Warn("using in-memory store, data is lost on exit")
	default:
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Error("failed to open mysql", "err", err)
			os.Exit(1)
		}
		db.SetMaxOpenConns(50)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
		defer db.Close()

		if err := db.PingContext(ctx); err != nil {
			log.Error("failed to ping mysql", "err", err)
			os.Exit(1)
		}
		mysqlAdapter := storage.NewMySQLAdapter(db)
		if err := mysqlAdapter.Migrate(ctx); err != nil {
			log.Error("failed to migrate schema", "err", err)
			os.Exit(1)
		}
		store = mysqlAdapter
		log.Info("connected to mysql")
	}

	// Initialize Redis
	var cache port.CacheRepository
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			PoolSize: 100,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Error("failed to connect redis", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
		cache = storage.NewRedisAdapter(rdb)
		log.Info("connected to redis")
	}

	// Initialize services
	svc, err := service.New(store, cache, service.Config{
		PhoneMinDigits: cfg.Validation.PhoneMinDigits,
		BulkMode:       service.BulkMode(cfg.Bulk.Mode),
		Restock: service.RestockPolicy{
			Threshold: cfg.Restock.Threshold,
			Increment: cfg.Restock.Increment,
		},
	}, log)
	if err != nil {
		log.Error("failed to build services", "err", err)
		os.Exit(1)
	}

	schema, err := handler.NewSchema(svc, log)
	if err != nil {
		log.Error("failed to build graphql schema", "err", err)
		os.Exit(1)
	}

	// Initialize gRPC server
	grpcServer := grpc.NewServer()
	rpc.RegisterCRMServiceServer(grpcServer, handler.NewGRPCHandler(svc, log))

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Error("failed to listen", "addr", cfg.GRPCAddr, "err", err)
		os.Exit(1)
	}

	go func() {
		log.Info("gRPC server listening", "addr", cfg.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			log.Error("gRPC server error", "err", err)
		}
	}()

	// Initialize HTTP server
	httpHandler := handler.NewHTTPHandler(schema, store, log)
	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpHandler.Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Error("HTTP server error", "err", err)
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
}
