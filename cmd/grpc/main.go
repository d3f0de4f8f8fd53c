package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-production-service/config"
	"github.com/fekuna/omnipos-production-service/internal/engine"
	"github.com/fekuna/omnipos-production-service/internal/rpc"
	"github.com/fekuna/omnipos-production-service/internal/store/memory"
	"github.com/fekuna/omnipos-production-service/pkg/broker"
	"github.com/fekuna/omnipos-production-service/pkg/cache"
	"github.com/fekuna/omnipos-production-service/pkg/database/postgres"
	"github.com/fekuna/omnipos-production-service/pkg/logger"

	"github.com/fekuna/omnipos-production-service/internal/consolidation"
	consH "github.com/fekuna/omnipos-production-service/internal/consolidation/handler"
	consRepoPkg "github.com/fekuna/omnipos-production-service/internal/consolidation/repository"
	consUCPkg "github.com/fekuna/omnipos-production-service/internal/consolidation/usecase"

	"github.com/fekuna/omnipos-production-service/internal/dashboard"
	dashH "github.com/fekuna/omnipos-production-service/internal/dashboard/handler"
	dashRepoPkg "github.com/fekuna/omnipos-production-service/internal/dashboard/repository"
	dashUCPkg "github.com/fekuna/omnipos-production-service/internal/dashboard/usecase"

	"github.com/fekuna/omnipos-production-service/internal/machine"
	machH "github.com/fekuna/omnipos-production-service/internal/machine/handler"
	machRepoPkg "github.com/fekuna/omnipos-production-service/internal/machine/repository"
	machUCPkg "github.com/fekuna/omnipos-production-service/internal/machine/usecase"

	"github.com/fekuna/omnipos-production-service/internal/order"
	orderH "github.com/fekuna/omnipos-production-service/internal/order/handler"
	orderListenerPkg "github.com/fekuna/omnipos-production-service/internal/order/listener"
	orderRepoPkg "github.com/fekuna/omnipos-production-service/internal/order/repository"
	orderUCPkg "github.com/fekuna/omnipos-production-service/internal/order/usecase"

	"github.com/fekuna/omnipos-production-service/internal/production"
	prodH "github.com/fekuna/omnipos-production-service/internal/production/handler"
	prodRepoPkg "github.com/fekuna/omnipos-production-service/internal/production/repository"
	prodUCPkg "github.com/fekuna/omnipos-production-service/internal/production/usecase"

	"github.com/fekuna/omnipos-production-service/internal/rawmaterial"
	rmH "github.com/fekuna/omnipos-production-service/internal/rawmaterial/handler"
	rmRepoPkg "github.com/fekuna/omnipos-production-service/internal/rawmaterial/repository"
	rmUCPkg "github.com/fekuna/omnipos-production-service/internal/rawmaterial/usecase"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"
)

type repositories struct {
	orders        order.Repository
	consolidation consolidation.Repository
	production    production.Repository
	machines      machine.Repository
	rawMaterials  rawmaterial.Repository
	dashboard     dashboard.Repository
}

func postgresRepositories(db *sqlx.DB) repositories {
	return repositories{
		orders:        orderRepoPkg.NewPGRepository(db),
		consolidation: consRepoPkg.NewPGRepository(db),
		production:    prodRepoPkg.NewPGRepository(db),
		machines:      machRepoPkg.NewPGRepository(db),
		rawMaterials:  rmRepoPkg.NewPGRepository(db),
		dashboard:     dashRepoPkg.NewPGRepository(db),
	}
}

func memoryRepositories(st *memory.Store) repositories {
	return repositories{
		orders:        st.Orders(),
		consolidation: st.Consolidation(),
		production:    st.Production(),
		machines:      st.Machines(),
		rawMaterials:  st.RawMaterials(),
		dashboard:     st.Dashboard(),
	}
}

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize Storage
	var repos repositories
	switch cfg.Storage.Driver {
	case "memory":
		repos = memoryRepositories(memory.New())
		appLogger.Warn("Using in-memory storage; data is lost on restart")
	case "postgres":
		db, err := postgres.NewPostgres(&postgres.Config{
			Host:            cfg.Postgres.Host,
			Port:            cfg.Postgres.Port,
			User:            cfg.Postgres.User,
			Password:        cfg.Postgres.Password,
			DBName:          cfg.Postgres.DBName,
			SSLMode:         cfg.Postgres.SSLMode,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
			ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
		})
		if err != nil {
			appLogger.Fatal("Could not connect to database", zap.Error(err))
		}
		defer db.Close()
		appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

		if cfg.Postgres.AutoMigrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				appLogger.Fatal("Could not apply schema", zap.Error(err))
			}
		}
		repos = postgresRepositories(db)
	default:
		appLogger.Fatal("Unknown storage driver", zap.String("driver", cfg.Storage.Driver))
	}

	// 4. Initialize Redis (engine lock + schedule cache)
	var redisClient *cache.RedisClient
	var locker engine.Locker
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(&cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			appLogger.Fatal("Could not connect to Redis", zap.Error(err))
		}
		defer client.Close()
		redisClient = client
		locker = client
		appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
	}

	// 5. Initialize Kafka
	var kafkaConsumer *broker.KafkaConsumer
	var publisher production.EventPublisher
	if cfg.Kafka.Enabled {
		kafkaConsumer = broker.NewConsumer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.OrderTopic,
			GroupID: cfg.Kafka.GroupID,
		})
		defer kafkaConsumer.Close()

		producer := broker.NewProducer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.PlanTopic,
		})
		defer producer.Close()
		publisher = producer
		appLogger.Info("Connected to Kafka",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("order_topic", cfg.Kafka.OrderTopic),
			zap.String("plan_topic", cfg.Kafka.PlanTopic),
		)
	}

	// 6. Initialize UseCases
	guard := engine.NewGuard(locker, time.Duration(cfg.Scheduler.EngineLockTTLSeconds)*time.Second, appLogger)

	orderUC := orderUCPkg.NewOrderUseCase(repos.orders, guard, redisClient, appLogger)
	consUC := consUCPkg.NewConsolidationUseCase(repos.consolidation, guard, redisClient, appLogger)
	var scheduleCache production.ScheduleCache
	if redisClient != nil {
		scheduleCache = engine.NewScheduleCache(redisClient, time.Duration(cfg.Scheduler.ScheduleCacheTTLSeconds)*time.Second, appLogger)
	}
	prodUC := prodUCPkg.NewProductionUseCase(repos.production, guard, scheduleCache, publisher, cfg.Scheduler, appLogger)
	machUC := machUCPkg.NewMachineUseCase(repos.machines, appLogger)
	rmUC := rmUCPkg.NewRawMaterialUseCase(repos.rawMaterials, appLogger)
	dashUC := dashUCPkg.NewDashboardUseCase(repos.dashboard, appLogger)

	// 7. Start Listeners
	if kafkaConsumer != nil {
		orderListener := orderListenerPkg.NewOrderListener(kafkaConsumer, orderUC, appLogger)
		go orderListener.Start(ctx)
	}

	// 8. Initialize Handlers
	services := []rpc.Service{
		orderH.NewOrderHandler(orderUC, appLogger),
		consH.NewConsolidationHandler(consUC, appLogger),
		prodH.NewProductionHandler(prodUC, appLogger),
		machH.NewMachineHandler(machUC, appLogger),
		rmH.NewRawMaterialHandler(rmUC, appLogger),
		dashH.NewDashboardHandler(dashUC, appLogger),
	}

	// 9. Start gRPC Server
	port := cfg.Server.GRPCPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	lis, err := net.Listen("tcp", port)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(rpc.LoggingInterceptor(appLogger)),
	)

	// Register Services
	for _, svc := range services {
		rpc.Register(grpcServer, svc)
	}

	// Register Reflection
	reflection.Register(grpcServer)

	appLogger.Info("Starting gRPC server", zap.String("port", port))

	// Graceful Shutdown
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	cancel()
	grpcServer.GracefulStop()
	appLogger.Info("Server stopped")
}
