package grpc

import (
	"context"

	"github.com/tymchak1/flow-roles/internal/application"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"
)

type VaultInternalServer struct {
	grpc_health_v1.UnimplementedHealthServer
	service *application.Service
}

func NewVaultInternalServer(service *application.Service) *VaultInternalServer {
	return &VaultInternalServer{service: service}
}

func Register(server grpc.ServiceRegistrar, svc *VaultInternalServer) {
	grpc_health_v1.RegisterHealthServer(server, svc)
}

func (s *VaultInternalServer) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	_ = ctx
	_ = req
	return &grpc_health_v1.HealthCheckResponse{Status: grpc_health_v1.HealthCheckResponse_SERVING}, nil
}

func (s *VaultInternalServer) Watch(req *grpc_health_v1.HealthCheckRequest, stream grpc_health_v1.Health_WatchServer) error {
	_ = req
	return stream.Send(&grpc_health_v1.HealthCheckResponse{Status: grpc_health_v1.HealthCheckResponse_SERVING})
}
