package consul

import (
	"fmt"
	"strconv"

	consulapi "github.com/hashicorp/consul/api"
)

// NewClient builds a Consul API client for the given agent address.
func NewClient(address string) (*consulapi.Client, error) {
	cfg := consulapi.DefaultConfig()
	cfg.Address = address
	client, err := consulapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating consul client: %w", err)
	}
	return client, nil
}

// RegisterService registers this instance with an HTTP health check on /ping.
func RegisterService(client *consulapi.Client, serviceName, host, port string) error {
	portInt, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("invalid service port %q: %w", port, err)
	}

	registration := &consulapi.AgentServiceRegistration{
		ID:      serviceName + "-" + host + "-" + port,
		Name:    serviceName,
		Address: host,
		Port:    portInt,
		Check: &consulapi.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%s/ping", host, port),
			Interval:                       "10s",
			Timeout:                        "2s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}

	if err := client.Agent().ServiceRegister(registration); err != nil {
		return fmt.Errorf("registering service with consul: %w", err)
	}
	return nil
}

// DeregisterService removes the instance registration on shutdown.
func DeregisterService(client *consulapi.Client, serviceName, host, port string) error {
	return client.Agent().ServiceDeregister(serviceName + "-" + host + "-" + port)
}
