package main

import (
	"flag"
	"fmt"

	"github.com/ayushm3018/Vechicle-Request-System/internal/common/config"
	"github.com/ayushm3018/Vechicle-Request-System/internal/common/db"
	"github.com/ayushm3018/Vechicle-Request-System/internal/common/logger"
	"github.com/ayushm3018/Vechicle-Request-System/internal/common/middleware"
	"github.com/ayushm3018/Vechicle-Request-System/internal/common/server"
	"github.com/ayushm3018/Vechicle-Request-System/internal/common/tracing"
	"github.com/ayushm3018/Vechicle-Request-System/internal/notify"
	"github.com/ayushm3018/Vechicle-Request-System/internal/request"
	"github.com/ayushm3018/Vechicle-Request-System/internal/user"
	"github.com/ayushm3018/Vechicle-Request-System/internal/vehicle"
	"github.com/gin-gonic/gin"
)

var (
	configPath      = flag.String("config", "configs/requisition-service.json", "配置文件路径")
	consulConfigKey = flag.String("consul-config-key", "", "从 Consul KV 加载配置的 key，留空则只用本地配置文件")
)

func main() {
	flag.Parse()

	// 加载配置
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 初始化日志
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	// 指定了 KV key 时优先用 Consul 上的配置，本地文件提供 Consul 地址并兜底
	if *consulConfigKey != "" {
		kvCfg, kvErr := config.LoadConfigFromConsulKV(cfg.Consul, *consulConfigKey)
		if kvErr != nil {
			log.Warnf("failed to load config from consul kv, falling back to local config: %v", kvErr)
		} else {
			cfg = kvCfg
		}
	}

	// 初始化链路追踪
	tracer, closer, err := tracing.InitTracer(
		cfg.Server.Name,
		cfg.Jaeger.Endpoint,
		cfg.Jaeger.Sampler,
	)
	if err != nil {
		log.Warnf("failed to init tracer: %v", err)
	} else {
		defer closer.Close()
	}
	_ = tracer

	// 初始化数据库
	gormDB, err := db.NewMySQL(
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Database,
		cfg.Database.MaxIdle,
		cfg.Database.MaxOpen,
	)
	if err != nil {
		log.Fatalf("failed to init mysql: %v", err)
	}
	if err := gormDB.AutoMigrate(
		&user.User{},
		&vehicle.Vehicle{},
		&request.Request{},
		&request.Approval{},
	); err != nil {
		log.Fatalf("failed to migrate mysql schema: %v", err)
	}

	// 组装依赖：repo -> service -> handler，全部显式注入，不走包级单例
	userRepo := user.NewRepo(gormDB)
	userSvc := user.NewService(userRepo, cfg.Auth)
	userHandler := user.NewHandler(userSvc, log)

	vehicleRepo := vehicle.NewRepo(gormDB)
	vehicleSvc := vehicle.NewService(vehicleRepo)
	vehicleHandler := vehicle.NewHandler(vehicleSvc, log)

	var notifier request.Notifier
	if cfg.SMTP.Enabled {
		notifier = notify.NewMailer(cfg.SMTP, log)
	} else {
		notifier = notify.NewNoop(log)
	}

	requestRepo := request.NewRepo(gormDB)
	requestSvc := request.NewService(requestRepo, userRepo, notifier, log, cfg.Approval)
	requestHandler := request.NewHandler(requestSvc, log)

	// 启动统一的 HTTP 服务模板
	if err := server.RunHTTPServer(cfg, log, func(r *gin.Engine) error {
		api := r.Group("/api")

		if cfg.RateLimit.Enabled {
			bucket := middleware.NewTokenBucket(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate)
			api.Use(middleware.RateLimit(bucket))
		}

		// 公开路由（注册 / 登录）
		userHandler.RegisterRoutes(api)

		// 鉴权路由
		authed := api.Group("", middleware.JWTAuth(cfg.Auth, log))
		userHandler.RegisterAuthedRoutes(authed)
		requestHandler.RegisterRoutes(authed)

		adminOnly := authed.Group("", middleware.RequireRole(string(user.RoleAdmin)))
		vehicleHandler.RegisterRoutes(adminOnly)

		return nil
	}); err != nil {
		log.Fatalf("requisition-service exited with error: %v", err)
	}
}
