package discovery

import (
	"fmt"

	"github.com/hashicorp/consul/api"
)

// ServiceRegistry Consul服务注册。
// 门店服务会注册两个实例：HTTP 端口（HTTP check 探测 /health）
// 和运维 gRPC 端口（GRPC check 探测标准 health 服务）。
type ServiceRegistry struct {
	client    *api.Client
	serviceID string
	service   string
	address   string
	port      int
	tags      []string
	check     *api.AgentServiceCheck
}

// NewServiceRegistry 创建服务注册器
func NewServiceRegistry(client *api.Client, serviceID, service, address string, port int, tags []string, check *api.AgentServiceCheck) *ServiceRegistry {
	return &ServiceRegistry{
		client:    client,
		serviceID: serviceID,
		service:   service,
		address:   address,
		port:      port,
		tags:      tags,
		check:     check,
	}
}

// GRPCCheck 标准 gRPC health check（Consul 直接探测 grpc_health_v1）。
func GRPCCheck(address string, port int) *api.AgentServiceCheck {
	return &api.AgentServiceCheck{
		GRPC:                           fmt.Sprintf("%s:%d", address, port),
		Interval:                       "10s",
		Timeout:                        "5s",
		DeregisterCriticalServiceAfter: "30s",
	}
}

// HTTPCheck HTTP health check（探测 REST 服务的 /health）。
func HTTPCheck(address string, port int, path string) *api.AgentServiceCheck {
	if path == "" {
		path = "/health"
	}
	return &api.AgentServiceCheck{
		HTTP:                           fmt.Sprintf("http://%s:%d%s", address, port, path),
		Method:                         "GET",
		Interval:                       "10s",
		Timeout:                        "5s",
		DeregisterCriticalServiceAfter: "30s",
	}
}

// Register 注册服务
func (r *ServiceRegistry) Register() error {
	registration := &api.AgentServiceRegistration{
		ID:      r.serviceID,
		Name:    r.service,
		Tags:    r.tags,
		Address: r.address,
		Port:    r.port,
		Check:   r.check,
	}

	return r.client.Agent().ServiceRegister(registration)
}

// Deregister 注销服务
func (r *ServiceRegistry) Deregister() error {
	return r.client.Agent().ServiceDeregister(r.serviceID)
}

// NewConsulClient 创建Consul客户端
func NewConsulClient(host string, port int) (*api.Client, error) {
	config := api.DefaultConfig()
	config.Address = fmt.Sprintf("%s:%d", host, port)
	return api.NewClient(config)
}
