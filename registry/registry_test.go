package registry

import (
	"errors"
	"testing"

	consulapi "github.com/hashicorp/consul/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRegistry struct {
	registered map[string]*consulapi.AgentServiceRegistration
	failOn     string
}

func (f *fakeRegistry) Register(reg *consulapi.AgentServiceRegistration) error {
	if reg.Name == f.failOn {
		return errors.New("agent unavailable")
	}
	f.registered[reg.ID] = reg
	return nil
}

func (f *fakeRegistry) Deregister(id string) error {
	delete(f.registered, id)
	return nil
}

func TestEndpointRegistration(t *testing.T) {
	httpEndpoint := Endpoint{ServiceName: "admin", Protocol: "http", Host: "10.0.0.5", Port: 8000}
	reg, err := httpEndpoint.Registration("/healthz")
	require.NoError(t, err)
	assert.Equal(t, "admin-http", reg.Name)
	assert.Equal(t, "admin-http-10.0.0.5-8000", reg.ID)
	assert.Equal(t, "http://10.0.0.5:8000/healthz", reg.Check.HTTP)

	grpcEndpoint := Endpoint{ServiceName: "admin", Protocol: "grpc", Host: "10.0.0.5", Port: 50051}
	reg, err = grpcEndpoint.Registration("/healthz")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5:50051", reg.Check.GRPC)
	assert.Empty(t, reg.Check.HTTP)

	_, err = Endpoint{ServiceName: "admin", Protocol: "smtp"}.Registration("")
	assert.Error(t, err)
}

func TestRegisterAll(t *testing.T) {
	endpoints := []Endpoint{
		{ServiceName: "admin", Protocol: "http", Host: "127.0.0.1", Port: 8000},
		{ServiceName: "admin", Protocol: "grpc", Host: "127.0.0.1", Port: 50051},
	}

	f := &fakeRegistry{registered: map[string]*consulapi.AgentServiceRegistration{}}
	deregister, err := RegisterAll(f, "/healthz", endpoints...)
	require.NoError(t, err)
	assert.Len(t, f.registered, 2)
	deregister()
	assert.Empty(t, f.registered)

	f = &fakeRegistry{registered: map[string]*consulapi.AgentServiceRegistration{}, failOn: "admin-grpc"}
	_, err = RegisterAll(f, "/healthz", endpoints...)
	assert.Error(t, err)
	assert.Empty(t, f.registered, "partial registration is rolled back")
}
