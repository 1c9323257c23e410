package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/rl1809/techstore/internal/adapter/handler"
	"github.com/rl1809/techstore/internal/adapter/mail"
	"github.com/rl1809/techstore/internal/adapter/storage"
	"github.com/rl1809/techstore/internal/config"
	"github.com/rl1809/techstore/internal/core/notify"
	"github.com/rl1809/techstore/internal/core/service"
	"github.com/rl1809/techstore/internal/logging"
	"github.com/rl1809/techstore/internal/port"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize storage
	var (
		db    port.DatabaseRepository
		sqlDB *sql.DB
	)
	switch cfg.Storage.Driver {
	case "memory":
		db = storage.NewMemoryAdapter()
		log.Println("using in-memory storage")
	default:
		dialect, err := storage.DialectFor(cfg.Storage.Driver)
		if err != nil {
			log.Fatalf("failed to select dialect: %v", err)
		}
		sqlDB, err = storage.Open(dialect, cfg.Storage.DSN)
		if err != nil {
			log.Fatalf("failed to connect %s: %v", dialect.Driver, err)
		}
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)

		if err := sqlDB.PingContext(ctx); err != nil {
			log.Fatalf("failed to ping %s: %v", dialect.Driver, err)
		}
		adapter := storage.NewSQLAdapter(sqlDB, dialect)
		if err := adapter.ApplySchema(ctx); err != nil {
			log.Fatalf("failed to apply schema: %v", err)
		}
		db = adapter
		log.Printf("connected to %s", dialect.Driver)
	}

	// Initialize Redis
	var (
		cache port.CacheRepository
		rdb   *redis.Client
	)
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("failed to connect redis: %v", err)
		}
		cache = storage.NewRedisAdapter(rdb)
		log.Println("connected to redis")
	} else if mem, ok := db.(*storage.MemoryAdapter); ok {
		cache = mem
	} else {
		cache = storage.NewMemoryAdapter()
	}

	// Initialize mail
	var mailer port.Mailer = mail.LogMailer{}
	if cfg.SMTP.Host != "" {
		mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}

	// Notification hub
	var hubOpts []notify.HubOption
	if cfg.IsolatedNotify {
		hubOpts = append(hubOpts, notify.WithIsolatedDelivery())
	}
	logger := logging.Default()
	hub := notify.NewHub(hubOpts...)
	hub.Attach(notify.NewEmailChannel(logger))
	hub.Attach(notify.NewSMSChannel(logger))
	if rdb != nil {
		hub.Attach(notify.NewPublishChannel(cache, logger))
	}

	// Initialize services
	catalog := service.NewCatalogService(db, service.NewProductFactory())
	registration := service.NewRegistrationService(db, mailer)
	orderService := service.NewOrderService(db, db, db, cache, hub, mailer)

	if cfg.SeedCatalog {
		if _, err := catalog.Seed(ctx); err != nil {
			log.Fatalf("failed to seed catalog: %v", err)
		}
	}

	// Initialize gRPC server
	grpcServer := grpc.NewServer()
	handler.RegisterStoreServiceServer(grpcServer, handler.NewGRPCHandler(registration, catalog, orderService))
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	go func() {
		log.Printf("gRPC server listening on %s", cfg.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			log.Printf("gRPC server error: %v", err)
		}
	}()

	// Initialize HTTP server
	router := gin.New()
	router.Use(gin.Recovery())
	handler.NewHTTPHandler(registration, catalog, orderService).Routes(router)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	healthServer.Shutdown()

	// Stop HTTP server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Println("HTTP server stopped")

	// Stop gRPC server
	grpcServer.GracefulStop()
	log.Println("gRPC server stopped")

	// Close connections
	if rdb != nil {
		rdb.Close()
	}
	if sqlDB != nil {
		sqlDB.Close()
	}
	log.Println("connections closed")
}
