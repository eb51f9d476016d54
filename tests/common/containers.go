// Package common provides shared test infrastructure: one container per
// backend per test process, started on first use.
package common

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// RequireDocker skips the test unless container tests are enabled.
func RequireDocker(t *testing.T) {
	t.Helper()
	if os.Getenv("FEEDPULSE_TEST_DOCKER") != "true" {
		t.Skip("Docker tests disabled (set FEEDPULSE_TEST_DOCKER=true to enable)")
	}
}

// Container is a running backend shared by every test in the process.
type Container struct {
	name      string
	container testcontainers.Container
	host      string
	port      string
}

// Host returns the mapped host.
func (c *Container) Host() string { return c.host }

// Port returns the mapped port.
func (c *Container) Port() string { return c.port }

// Cleanup terminates the container. Call from TestMain if needed.
func (c *Container) Cleanup() {
	if c != nil && c.container != nil {
		c.container.Terminate(context.Background())
	}
}

// shared starts req at most once and hands every caller the same result.
type shared struct {
	once sync.Once
	c    *Container
	err  error
}

func (s *shared) start(t *testing.T, name string, port nat.Port, req testcontainers.ContainerRequest) *Container {
	t.Helper()
	RequireDocker(t)

	s.once.Do(func() {
		s.c, s.err = startContainer(context.Background(), name, port, req)
	})
	if s.err != nil {
		t.Fatalf("%s container failed: %v", name, s.err)
	}
	return s.c
}

func startContainer(ctx context.Context, name string, port nat.Port, req testcontainers.ContainerRequest) (*Container, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start %s container: %w", name, err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("get %s host: %w", name, err)
	}

	mapped, err := container.MappedPort(ctx, port)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("get %s port: %w", name, err)
	}

	return &Container{name: name, container: container, host: host, port: mapped.Port()}, nil
}

var (
	redis   shared
	surreal shared
)

// RedisContainer is the shared Redis instance.
type RedisContainer struct{ *Container }

// StartRedis starts the shared Redis container.
func StartRedis(t *testing.T) *RedisContainer {
	t.Helper()
	c := redis.start(t, "Redis", "6379/tcp", testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("6379/tcp"),
			wait.ForLog("Ready to accept connections"),
		).WithDeadline(60 * time.Second),
	})
	return &RedisContainer{c}
}

// Addr returns host:port for go-redis.
func (c *RedisContainer) Addr() string {
	return c.host + ":" + c.port
}

// SurrealDBContainer is the shared SurrealDB instance.
type SurrealDBContainer struct{ *Container }

// StartSurrealDB starts the shared SurrealDB container, root/root credentials.
func StartSurrealDB(t *testing.T) *SurrealDBContainer {
	t.Helper()
	c := surreal.start(t, "SurrealDB", "8000/tcp", testcontainers.ContainerRequest{
		Image:        "surrealdb/surrealdb:v3.0.0",
		ExposedPorts: []string{"8000/tcp"},
		Cmd:          []string{"start", "--user", "root", "--pass", "root"},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("8000/tcp"),
			wait.ForLog("Started web server"),
		).WithDeadline(60 * time.Second),
	})
	return &SurrealDBContainer{c}
}

// Address returns the WebSocket RPC address.
func (c *SurrealDBContainer) Address() string {
	return fmt.Sprintf("ws://%s:%s/rpc", c.host, c.port)
}
