package docker

import (
	"testing"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishPort(t *testing.T) {
	set, bindings, err := publishPort(8505)
	require.NoError(t, err)

	port, err := nat.NewPort("tcp", "8505")
	require.NoError(t, err)

	_, exposed := set[port]
	assert.True(t, exposed)

	require.Len(t, bindings[port], 1)
	assert.Equal(t, "0.0.0.0", bindings[port][0].HostIP)
	assert.Equal(t, "8505", bindings[port][0].HostPort)
}

func TestPublishPortInvalid(t *testing.T) {
	_, _, err := publishPort(-1)
	assert.Error(t, err)
}

func TestToDomain(t *testing.T) {
	c := types.Container{
		ID:     "abcdef1234567890",
		Names:  []string{"/dashboard"},
		Image:  "slipway-1a2b3c4d",
		Status: "Up 5 minutes",
		State:  "running",
		Ports: []types.Port{
			{PrivatePort: 8505, PublicPort: 8505, Type: "tcp"},
		},
		NetworkSettings: &types.SummaryNetworkSettings{
			Networks: map[string]*network.EndpointSettings{
				"bridge": {IPAddress: "172.17.0.2"},
			},
		},
	}

	got := toDomain(c)
	assert.Equal(t, "abcdef123456", got.ID)
	assert.Equal(t, "dashboard", got.Name)
	assert.Equal(t, "slipway-1a2b3c4d", got.Image)
	assert.Equal(t, "running", got.State)
	assert.Equal(t, 8505, got.HostPort)
	assert.Equal(t, "172.17.0.2", got.IPAddress)
	assert.True(t, got.Running())
}

func TestToDomainUnpublished(t *testing.T) {
	c := types.Container{
		ID:    "abcdef1234567890",
		Ports: []types.Port{{PrivatePort: 8505, Type: "tcp"}},
	}

	got := toDomain(c)
	assert.Equal(t, 0, got.HostPort)
	assert.Empty(t, got.Name)
	assert.False(t, got.Running())
}
