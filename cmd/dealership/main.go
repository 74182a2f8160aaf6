package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/VelocityMotors/VelocityMotors/internal/admin"
	"github.com/VelocityMotors/VelocityMotors/internal/auditlog"
	"github.com/VelocityMotors/VelocityMotors/internal/catalog"
	"github.com/VelocityMotors/VelocityMotors/internal/common/config"
	"github.com/VelocityMotors/VelocityMotors/internal/common/db"
	"github.com/VelocityMotors/VelocityMotors/internal/common/logger"
	"github.com/VelocityMotors/VelocityMotors/internal/common/server"
	"github.com/VelocityMotors/VelocityMotors/internal/common/tracing"
	"github.com/VelocityMotors/VelocityMotors/internal/intake"
	"github.com/VelocityMotors/VelocityMotors/internal/order"
	"github.com/VelocityMotors/VelocityMotors/internal/payment"
	"github.com/gin-gonic/gin"
)

var (
	configPath = flag.String("config", "configs/dealership.json", "配置文件路径")
	consulKV   = flag.String("consul-kv", "", "从 Consul KV 读取配置的键（设置后优先于 -config）")
)

func main() {
	flag.Parse()

	// 加载配置
	var cfg *config.Config
	var err error
	if *consulKV != "" {
		bootstrap, berr := config.LoadConfig(*configPath)
		if berr != nil {
			panic(fmt.Sprintf("failed to load bootstrap config: %v", berr))
		}
		cfg, err = config.LoadConfigFromConsulKV(bootstrap.Consul.Host, bootstrap.Consul.Port, *consulKV)
	} else {
		cfg, err = config.LoadConfig(*configPath)
	}
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 初始化日志
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
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
	gormDB, err := db.New(cfg.Database)
	if err != nil {
		log.Fatalf("failed to init database: %v", err)
	}
	if err := gormDB.AutoMigrate(
		&catalog.Car{},
		&intake.Contact{},
		&intake.Inquiry{},
		&order.Order{},
		&payment.Payment{},
		&auditlog.Entry{},
		&admin.Account{},
	); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 目录与种子数据
	catalogSvc := catalog.NewService(catalog.NewRepo(gormDB))
	if n, err := catalogSvc.SeedIfEmpty(ctx); err != nil {
		log.Warnf("failed to seed catalog: %v", err)
	} else if n > 0 {
		log.Infof("seeded %d cars", n)
	}

	// 管理员引导账号
	adminSvc := admin.NewService(admin.NewRepo(gormDB), cfg.Auth)
	if err := adminSvc.SeedDefault(ctx); err != nil {
		log.Warnf("failed to seed admin account: %v", err)
	}

	// 线索
	intakeSvc := intake.NewService(intake.NewRepo(gormDB), catalogSvc)

	// 订单与支付：两条路径共用同一张订单锁表
	orderRepo := order.NewRepo(gormDB)
	orderSvc := order.NewService(orderRepo, catalogSvc, nil)

	paymentRepo := payment.NewRepo(gormDB)
	auditRepo := auditlog.NewRepo(gormDB)
	gateway := payment.NewGateway(cfg.Gateway)
	processor := payment.NewProcessor(paymentRepo, orderRepo, gateway,
		orderSvc.Locks(), cfg.Gateway, cfg.Payment, log)

	// 对账器：修复入账与订单状态脱节的残留
	reconciler := payment.NewReconciler(paymentRepo, orderRepo, auditRepo,
		orderSvc.Locks(), cfg.Payment.ReconcileInterval(), log)
	go reconciler.Run(ctx)

	catalogHandler := catalog.NewHTTPHandlerWithService(catalogSvc)
	intakeHandler := intake.NewHTTPHandler(intakeSvc, cfg.Auth)
	orderHandler := order.NewHTTPHandler(orderSvc, cfg.Auth)
	paymentHandler := payment.NewHTTPHandler(processor, paymentRepo, cfg.Auth)
	auditHandler := auditlog.NewHTTPHandler(auditRepo, cfg.Auth)
	adminHandler := admin.NewHTTPHandler(adminSvc, cfg.Auth)

	if err := server.RunHTTPServer(cfg, log, func(r *gin.Engine) {
		catalogHandler.RegisterRoutes(r)
		intakeHandler.RegisterRoutes(r)
		orderHandler.RegisterRoutes(r)
		paymentHandler.RegisterRoutes(r)
		auditHandler.RegisterRoutes(r)
		adminHandler.RegisterRoutes(r)
	}); err != nil {
		log.Fatalf("dealership exited with error: %v", err)
	}
}
