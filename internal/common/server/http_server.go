package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/VelocityMotors/VelocityMotors/internal/common/config"
	"github.com/VelocityMotors/VelocityMotors/internal/common/discovery"
	"github.com/VelocityMotors/VelocityMotors/internal/common/logger"
	"github.com/VelocityMotors/VelocityMotors/internal/common/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// HTTPRegisterFunc 用于注册业务路由（各领域包的 RegisterRoutes）。
type HTTPRegisterFunc func(r *gin.Engine)

type RunOptions struct {
	EnableOpsGRPC    bool          // 是否同时起运维 gRPC 端口（health/反射）
	EnableReflection bool
	ShutdownTimeout  time.Duration
}

func defaultRunOptions() RunOptions {
	return RunOptions{
		EnableOpsGRPC:    true,
		EnableReflection: true,
		ShutdownTimeout:  5 * time.Second,
	}
}

// RunHTTPServer 统一的服务启动模板：
// - 初始化 gin engine（recovery / tracing / access log / CORS）
// - 注册 /health 与业务路由
// - 起运维 gRPC 端口（标准 health 服务，供 Consul GRPC check）
// - 两个端口都注册到 Consul
// - 优雅退出
func RunHTTPServer(cfg *config.Config, log logger.Logger, register HTTPRegisterFunc, opts ...func(*RunOptions)) error {
	if cfg == nil {
		return fmt.Errorf("cfg is nil")
	}
	if log == nil {
		return fmt.Errorf("log is nil")
	}

	o := defaultRunOptions()
	for _, apply := range opts {
		if apply != nil {
			apply(&o)
		}
	}

	// 初始化 Consul 客户端（失败不阻塞服务启动）
	consulClient, err := discovery.NewConsulClient(cfg.Consul.Host, cfg.Consul.Port)
	if err != nil {
		log.Warnf("failed to connect to Consul: %v", err)
		consulClient = nil
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(
		middleware.Recovery(log),                // 异常恢复，避免服务崩溃
		middleware.Tracing(cfg.Server.Name),     // 链路追踪
		middleware.AccessLog(log),               // 访问日志
		cors.New(corsConfig()),                  // 前端跨域
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "OK",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	if register != nil {
		register(r)
	}

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// 运维 gRPC 端口：标准 health + 反射，供 Consul GRPC check 和 grpcurl 探测
	var grpcSrv *grpc.Server
	if o.EnableOpsGRPC {
		grpcSrv = grpc.NewServer()
		healthServer := health.NewServer()
		grpc_health_v1.RegisterHealthServer(grpcSrv, healthServer)
		healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
		if o.EnableReflection {
			reflection.Register(grpcSrv)
		}
	}

	// 注册到 Consul（成功才 defer 注销）
	if consulClient != nil {
		httpID := fmt.Sprintf("%s-http-%s", cfg.Server.Name, uuid.New().String())
		httpRegistry := discovery.NewServiceRegistry(
			consulClient, httpID, cfg.Server.Name,
			cfg.Server.Host, cfg.Server.HTTPPort,
			[]string{"http", "storefront"},
			discovery.HTTPCheck(cfg.Server.Host, cfg.Server.HTTPPort, "/health"),
		)
		if err := httpRegistry.Register(); err != nil {
			log.Warnf("failed to register http service to Consul: %v", err)
		} else {
			log.Infof("HTTP service registered to Consul: %s", httpID)
			defer func() {
				if err := httpRegistry.Deregister(); err != nil {
					log.Warnf("failed to deregister http service from Consul: %v", err)
				}
			}()
		}

		if grpcSrv != nil {
			grpcID := fmt.Sprintf("%s-grpc-%s", cfg.Server.Name, uuid.New().String())
			grpcRegistry := discovery.NewServiceRegistry(
				consulClient, grpcID, cfg.Server.Name+"-ops",
				cfg.Server.Host, cfg.Server.GRPCPort,
				[]string{"grpc", "ops"},
				discovery.GRPCCheck(cfg.Server.Host, cfg.Server.GRPCPort),
			)
			if err := grpcRegistry.Register(); err != nil {
				log.Warnf("failed to register grpc service to Consul: %v", err)
			} else {
				log.Infof("gRPC ops service registered to Consul: %s", grpcID)
				defer func() {
					if err := grpcRegistry.Deregister(); err != nil {
						log.Warnf("failed to deregister grpc service from Consul: %v", err)
					}
				}()
			}
		}
	}

	serveErr := make(chan error, 2)

	go func() {
		log.Infof("%s http listening on %s", cfg.Server.Name, httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- fmt.Errorf("http serve failed: %w", err)
			return
		}
		serveErr <- nil
	}()

	if grpcSrv != nil {
		lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.GRPCPort))
		if err != nil {
			return fmt.Errorf("failed to listen grpc: %w", err)
		}
		go func() {
			log.Infof("%s ops grpc listening on %s:%d", cfg.Server.Name, cfg.Server.Host, cfg.Server.GRPCPort)
			if err := grpcSrv.Serve(lis); err != nil {
				serveErr <- fmt.Errorf("grpc serve failed: %w", err)
				return
			}
			serveErr <- nil
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Infof("received signal %v, shutting down...", sig)
	case err := <-serveErr:
		if err != nil {
			return err
		}
		return nil
	}

	// 优雅关闭
	ctx, cancel := context.WithTimeout(context.Background(), o.ShutdownTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Warnf("http shutdown: %v", err)
	} else {
		log.Info("http server stopped gracefully")
	}

	if grpcSrv != nil {
		stopped := make(chan struct{})
		go func() {
			grpcSrv.GracefulStop()
			close(stopped)
		}()
		select {
		case <-ctx.Done():
			log.Warn("grpc shutdown timeout, forcing stop...")
			grpcSrv.Stop()
		case <-stopped:
			log.Info("grpc server stopped gracefully")
		}
	}

	return nil
}

// WithShutdownTimeout 修改优雅退出等待时间。
func WithShutdownTimeout(d time.Duration) func(*RunOptions) {
	return func(o *RunOptions) {
		if d > 0 {
			o.ShutdownTimeout = d
		}
	}
}

// WithOpsGRPC 控制是否启用运维 gRPC 端口。
func WithOpsGRPC(enable bool) func(*RunOptions) {
	return func(o *RunOptions) {
		o.EnableOpsGRPC = enable
	}
}

func corsConfig() cors.Config {
	return cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
}
