package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Config 应用配置
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Consul   ConsulConfig   `json:"consul"`
	Jaeger   JaegerConfig   `json:"jaeger"`
	Gateway  GatewayConfig  `json:"gateway"`
	Payment  PaymentConfig  `json:"payment"`
	Auth     AuthConfig     `json:"auth"`
	Log      LogConfig      `json:"log"`
}

// ServerConfig 服务配置
type ServerConfig struct {
	Name     string `json:"name"`      // 服务名称
	Host     string `json:"host"`      // 服务地址
	HTTPPort int    `json:"http_port"` // 门店 REST 端口
	GRPCPort int    `json:"grpc_port"` // 运维 gRPC 端口（health/反射）
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver   string `json:"driver"`   // mysql / postgres
	Host     string `json:"host"`     // 数据库地址
	Port     int    `json:"port"`     // 数据库端口
	User     string `json:"user"`     // 用户名
	Password string `json:"password"` // 密码（可被 DB_PASSWORD 环境变量覆盖）
	Database string `json:"database"` // 数据库名
	MaxIdle  int    `json:"max_idle"` // 最大空闲连接
	MaxOpen  int    `json:"max_open"` // 最大打开连接
}

// ConsulConfig Consul配置
type ConsulConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// JaegerConfig Jaeger配置
type JaegerConfig struct {
	Endpoint string  `json:"endpoint"`
	Sampler  float64 `json:"sampler"` // 采样率 0.0-1.0
}

// GatewayConfig 支付网关配置
type GatewayConfig struct {
	Mode         string `json:"mode"`          // simulate / http
	BaseURL      string `json:"base_url"`      // 网关地址（http 模式）
	SecretKey    string `json:"secret_key"`    // 商户密钥（可被 GATEWAY_SECRET_KEY 覆盖）
	PublicKey    string `json:"public_key"`    // 商户公钥
	TestMode     bool   `json:"test_mode"`     // 真实端点上的测试模式
	TimeoutMS    int    `json:"timeout_ms"`    // 单次调用超时
	MaxRetries   int    `json:"max_retries"`   // 网关错误最大重试次数
	BackoffMS    int    `json:"backoff_ms"`    // 重试退避基数
	SimDelayMS   int    `json:"sim_delay_ms"`  // simulate 模式的固定延迟
	BreakerLimit int    `json:"breaker_limit"` // 熔断前允许的连续失败次数
}

// Timeout 网关调用超时时间。
func (g GatewayConfig) Timeout() time.Duration {
	if g.TimeoutMS <= 0 {
		return 10 * time.Second
	}
	return time.Duration(g.TimeoutMS) * time.Millisecond
}

// Backoff 重试退避基数。
func (g GatewayConfig) Backoff() time.Duration {
	if g.BackoffMS <= 0 {
		return 200 * time.Millisecond
	}
	return time.Duration(g.BackoffMS) * time.Millisecond
}

// PaymentConfig 支付处理策略
type PaymentConfig struct {
	FailOrderOnMismatch bool `json:"fail_order_on_mismatch"` // 金额不符时订单是否转 failed
	ReconcileIntervalS  int  `json:"reconcile_interval_s"`   // 对账轮询间隔（秒），0 关闭
}

// ReconcileInterval 对账轮询间隔。
func (p PaymentConfig) ReconcileInterval() time.Duration {
	return time.Duration(p.ReconcileIntervalS) * time.Second
}

// AuthConfig 管理端鉴权配置
type AuthConfig struct {
	Enabled           bool   `json:"enabled"`
	JWTSecret         string `json:"jwt_secret"` // 可被 JWT_SECRET 环境变量覆盖
	Issuer            string `json:"issuer"`
	Audience          string `json:"audience"`
	TokenTTLMinutes   int    `json:"token_ttl_minutes"`
	BootstrapUsername string `json:"bootstrap_username"` // 首次启动时种入的管理员
	BootstrapPassword string `json:"bootstrap_password"` // 可被 ADMIN_BOOTSTRAP_PASSWORD 覆盖
	LoginRatePerMin   int    `json:"login_rate_per_min"` // 登录限流（令牌桶补充速率）
}

// TokenTTL 管理端 token 有效期。
func (a AuthConfig) TokenTTL() time.Duration {
	if a.TokenTTLMinutes <= 0 {
		return 12 * time.Hour
	}
	return time.Duration(a.TokenTTLMinutes) * time.Minute
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
	Output string `json:"output"` // stdout, file
	Path   string `json:"path"`   // 日志文件路径
}

var (
	globalConfig *Config
	configOnce   sync.Once
)

// LoadConfig 加载配置：JSON 文件 + 环境变量覆盖。
// 配置文件不存在时回退到默认配置（开发环境可直接起服务）。
func LoadConfig(configPath string) (*Config, error) {
	var err error
	configOnce.Do(func() {
		globalConfig = &Config{}
		if _, err = os.Stat(configPath); os.IsNotExist(err) {
			logrus.Warnf("Config file not found: %s, using default config", configPath)
			globalConfig = defaultConfig()
			err = nil
			applyEnvOverrides(globalConfig)
			return
		}

		data, readErr := os.ReadFile(configPath)
		if readErr != nil {
			err = fmt.Errorf("failed to read config file: %w", readErr)
			return
		}

		if unmarshalErr := json.Unmarshal(data, globalConfig); unmarshalErr != nil {
			err = fmt.Errorf("failed to parse config file: %w", unmarshalErr)
			return
		}
		applyEnvOverrides(globalConfig)
	})

	if err != nil {
		return nil, err
	}

	return globalConfig, nil
}

// GetConfig 获取全局配置
func GetConfig() *Config {
	if globalConfig == nil {
		return defaultConfig()
	}
	return globalConfig
}

// applyEnvOverrides 敏感项允许通过环境变量覆盖，避免写入配置文件。
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if p, convErr := strconv.Atoi(v); convErr == nil {
			cfg.Database.Port = p
		}
	}
	if v := os.Getenv("DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.Database.Database = v
	}
	if v := os.Getenv("GATEWAY_SECRET_KEY"); v != "" {
		cfg.Gateway.SecretKey = v
	}
	if v := os.Getenv("GATEWAY_PUBLIC_KEY"); v != "" {
		cfg.Gateway.PublicKey = v
	}
	if v := os.Getenv("GATEWAY_BASE_URL"); v != "" {
		cfg.Gateway.BaseURL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("ADMIN_BOOTSTRAP_PASSWORD"); v != "" {
		cfg.Auth.BootstrapPassword = v
	}
}

// defaultConfig 默认配置（开发环境）
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name:     "dealership-service",
			Host:     "0.0.0.0",
			HTTPPort: 8080,
			GRPCPort: 50051,
		},
		Database: DatabaseConfig{
			Driver:   "mysql",
			Host:     "localhost",
			Port:     3306,
			User:     "root",
			Password: "root",
			Database: "car_dealership",
			MaxIdle:  10,
			MaxOpen:  100,
		},
		Consul: ConsulConfig{
			Host: "localhost",
			Port: 8500,
		},
		Jaeger: JaegerConfig{
			Endpoint: "localhost:6831",
			Sampler:  1.0,
		},
		Gateway: GatewayConfig{
			Mode:         "simulate",
			BaseURL:      "https://gateway.example.com/api/v2",
			SecretKey:    "test_secret_key",
			PublicKey:    "test_public_key",
			TestMode:     true,
			TimeoutMS:    10000,
			MaxRetries:   3,
			BackoffMS:    200,
			SimDelayMS:   2000,
			BreakerLimit: 5,
		},
		Payment: PaymentConfig{
			FailOrderOnMismatch: true,
			ReconcileIntervalS:  60,
		},
		Auth: AuthConfig{
			Enabled:           true,
			JWTSecret:         "dev-only-secret",
			Issuer:            "velocitymotors",
			Audience:          "velocitymotors-admin",
			TokenTTLMinutes:   12 * 60,
			BootstrapUsername: "admin",
			BootstrapPassword: "admin",
			LoginRatePerMin:   10,
		},
		Log: LogConfig{
			Level:  "debug",
			Format: "text",
			Output: "stdout",
			Path:   "logs/app.log",
		},
	}
}
