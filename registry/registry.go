package registry

import (
	"fmt"

	consulapi "github.com/hashicorp/consul/api"
)

// ServiceRegistry registers this process's endpoints with a service catalog.
type ServiceRegistry interface {
	Register(reg *consulapi.AgentServiceRegistration) error
	Deregister(id string) error
}

// Endpoint describes one listener of the admin service.
type Endpoint struct {
	ServiceName string
	Protocol    string // "http" or "grpc"
	Host        string
	Port        int
}

// ID is unique per service, protocol, host and port.
func (e Endpoint) ID() string {
	return fmt.Sprintf("%s-%s-%s-%d", e.ServiceName, e.Protocol, e.Host, e.Port)
}

// Name is the catalog name, e.g. "admin-http".
func (e Endpoint) Name() string {
	return e.ServiceName + "-" + e.Protocol
}

// Registration builds the Consul registration of e. HTTP endpoints are
// checked through healthPath, gRPC endpoints through the gRPC health
// protocol.
func (e Endpoint) Registration(healthPath string) (*consulapi.AgentServiceRegistration, error) {
	var check *consulapi.AgentServiceCheck
	switch e.Protocol {
	case "http":
		check = CreateHTTPCheck(e.ID(), e.Host, e.Port, healthPath, "10s", "2s")
	case "grpc":
		check = CreateGRPCCheck(e.ID(), fmt.Sprintf("%s:%d", e.Host, e.Port), "10s", "2s", false)
	default:
		return nil, fmt.Errorf("unsupported protocol %q", e.Protocol)
	}
	return &consulapi.AgentServiceRegistration{
		ID:      e.ID(),
		Name:    e.Name(),
		Tags:    []string{e.Protocol, e.ServiceName},
		Port:    e.Port,
		Address: e.Host,
		Check:   check,
		Meta:    map[string]string{"protocol": e.Protocol},
	}, nil
}

// CreateHTTPCheck creates a Consul HTTP health check hitting
// http://serviceHost:servicePort/checkPath.
func CreateHTTPCheck(serviceID, serviceHost string, servicePort int, checkPath string, interval, timeout string) *consulapi.AgentServiceCheck {
	return &consulapi.AgentServiceCheck{
		CheckID:                        fmt.Sprintf("check_%s_http", serviceID),
		Name:                           fmt.Sprintf("HTTP Check for %s", serviceID),
		HTTP:                           fmt.Sprintf("http://%s:%d%s", serviceHost, servicePort, checkPath),
		Method:                         "GET",
		Interval:                       interval,
		Timeout:                        timeout,
		DeregisterCriticalServiceAfter: "1m",
	}
}

// CreateGRPCCheck creates a Consul check using the gRPC health protocol
// against grpcTarget ("host:port").
func CreateGRPCCheck(serviceID, grpcTarget string, interval, timeout string, useTLS bool) *consulapi.AgentServiceCheck {
	return &consulapi.AgentServiceCheck{
		CheckID:                        fmt.Sprintf("check_%s_grpc", serviceID),
		Name:                           fmt.Sprintf("gRPC Check for %s", serviceID),
		GRPC:                           grpcTarget,
		GRPCUseTLS:                     useTLS,
		Interval:                       interval,
		Timeout:                        timeout,
		DeregisterCriticalServiceAfter: "1m",
	}
}
