package bootstrap

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTestConfig(t *testing.T, httpPort, grpcPort int) string {
	t.Helper()
	raw := fmt.Sprintf(`service:
  id: flow-roles-vault-test
  http_port: %d
  grpc_port: %d
keeper:
  poll_interval_seconds: 1
`, httpPort, grpcPort)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestNewRuntimeBindsNoListeners(t *testing.T) {
	httpPort, grpcPort := 18097, 19097
	path := writeTestConfig(t, httpPort, grpcPort)

	if _, err := NewRuntime(context.Background(), path); err != nil {
		t.Fatalf("new runtime: %v", err)
	}

	// Both ports must still be free after construction; only RunAPI binds.
	for _, port := range []int{httpPort, grpcPort} {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err != nil {
			t.Fatalf("port %d held after construction: %v", port, err)
		}
		_ = lis.Close()
	}
}

func TestRunKeeperCoexistsWithBoundPorts(t *testing.T) {
	httpPort, grpcPort := 18098, 19098
	path := writeTestConfig(t, httpPort, grpcPort)

	// Another process (the API) already owns both ports.
	for _, port := range []int{httpPort, grpcPort} {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err != nil {
			t.Fatalf("pre-bind port %d: %v", port, err)
		}
		defer lis.Close()
	}

	runtime, err := NewRuntime(context.Background(), path)
	if err != nil {
		t.Fatalf("new runtime with ports taken: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runtime.RunKeeper(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run keeper: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("keeper did not stop on cancel")
	}
}
