package registry

import (
	"fmt"

	consulapi "github.com/hashicorp/consul/api"
	"go.uber.org/zap"
)

type consulRegistry struct {
	client *consulapi.Client
	logger *zap.SugaredLogger
}

var _ ServiceRegistry = (*consulRegistry)(nil)

// NewConsulRegistry connects to the Consul agent at address and checks
// that it answers.
func NewConsulRegistry(address string, logger *zap.SugaredLogger) (ServiceRegistry, error) {
	consulConfig := consulapi.DefaultConfig()
	consulConfig.Address = address

	client, err := consulapi.NewClient(consulConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}
	if _, err := client.Agent().NodeName(); err != nil {
		return nil, fmt.Errorf("cannot connect to consul agent at %s: %w", address, err)
	}
	logger.Infow("Connected to Consul agent", "address", address)

	return &consulRegistry{
		client: client,
		logger: logger.Named("ConsulRegistry"),
	}, nil
}

func (r *consulRegistry) Register(reg *consulapi.AgentServiceRegistration) error {
	if err := r.client.Agent().ServiceRegister(reg); err != nil {
		return fmt.Errorf("failed to register service '%s': %w", reg.Name, err)
	}
	r.logger.Infow("Registered service with Consul", "service_id", reg.ID, "service_name", reg.Name, "address", reg.Address, "port", reg.Port)
	return nil
}

func (r *consulRegistry) Deregister(id string) error {
	if err := r.client.Agent().ServiceDeregister(id); err != nil {
		return fmt.Errorf("failed to deregister service '%s': %w", id, err)
	}
	r.logger.Infow("Deregistered service from Consul", "service_id", id)
	return nil
}

// RegisterAll registers every endpoint and returns a function that
// deregisters the ones that succeeded. On error the already registered
// endpoints are deregistered before returning.
func RegisterAll(r ServiceRegistry, healthPath string, endpoints ...Endpoint) (func(), error) {
	var registered []string
	deregister := func() {
		for _, id := range registered {
			_ = r.Deregister(id)
		}
	}
	for _, e := range endpoints {
		reg, err := e.Registration(healthPath)
		if err != nil {
			deregister()
			return nil, err
		}
		if err := r.Register(reg); err != nil {
			deregister()
			return nil, err
		}
		registered = append(registered, reg.ID)
	}
	return deregister, nil
}
