package consul

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/hashicorp/consul/api"
)

type Client struct {
	client      *api.Client
	serviceName string
	servicePort int
	hostname    string
}

// NewClient creates a Consul client for registering the HTTP listener bound
// to httpAddr (host:port or :port).
func NewClient(consulHost, serviceName, httpAddr string) (*Client, error) {
	_, portStr, err := net.SplitHostPort(httpAddr)
	if err != nil {
		return nil, fmt.Errorf("invalid http address %q: %w", httpAddr, err)
	}
	servicePort, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid http port %q: %w", portStr, err)
	}

	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("failed to get hostname: %w", err)
	}

	config := api.DefaultConfig()
	config.Address = fmt.Sprintf("%s:8500", consulHost)

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}

	return &Client{
		client:      client,
		serviceName: serviceName,
		servicePort: servicePort,
		hostname:    hostname,
	}, nil
}

func (c *Client) serviceID() string {
	return fmt.Sprintf("%s-%s", c.serviceName, c.hostname)
}

func (c *Client) registration() *api.AgentServiceRegistration {
	return &api.AgentServiceRegistration{
		ID:      c.serviceID(),
		Name:    c.serviceName,
		Port:    c.servicePort,
		Address: c.hostname,
		Check: &api.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d/health", c.hostname, c.servicePort),
			Interval:                       "10s",
			Timeout:                        "3s",
			DeregisterCriticalServiceAfter: "30s",
		},
	}
}

// RegisterService registers the service with a health check on /health
func (c *Client) RegisterService() error {
	if err := c.client.Agent().ServiceRegister(c.registration()); err != nil {
		return fmt.Errorf("failed to register service: %w", err)
	}
	return nil
}

func (c *Client) DeregisterService() error {
	if err := c.client.Agent().ServiceDeregister(c.serviceID()); err != nil {
		return fmt.Errorf("failed to deregister service: %w", err)
	}
	return nil
}
