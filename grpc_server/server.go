package grpcserver

import (
	"admin-restful/auth"
	"admin-restful/interceptors"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	reflectionpb "google.golang.org/grpc/reflection/grpc_reflection_v1"
	reflectionv1alphapb "google.golang.org/grpc/reflection/grpc_reflection_v1alpha"
)

// PublicMethods skip token authentication. Health checkers and reflection
// carry no credentials.
var PublicMethods = []string{
	LoginMethod,
	VerifyMethod,
	healthpb.Health_Check_FullMethodName,
	healthpb.Health_Watch_FullMethodName,
	reflectionpb.ServerReflection_ServerReflectionInfo_FullMethodName,
	reflectionv1alphapb.ServerReflection_ServerReflectionInfo_FullMethodName,
}

// NewServer builds the gRPC server with recovery, logging and auth
// interceptors, AccessService, the health service and reflection. The
// returned health server is SERVING for "" and AccessServiceName.
func NewServer(access AccessServiceServer, authn *auth.Authenticator, logger *zap.Logger) (*grpc.Server, *health.Server) {
	server := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			interceptors.RecoveryInterceptor(logger),
			interceptors.ZapLoggingInterceptor(logger),
			interceptors.AuthInterceptor(authn, logger, PublicMethods...),
		),
		grpc.ChainStreamInterceptor(
			interceptors.RecoveryStreamInterceptor(logger),
			interceptors.ZapLoggingStreamInterceptor(logger),
			interceptors.AuthStreamInterceptor(authn, logger, PublicMethods...),
		),
	)

	RegisterAccessServiceServer(server, access)

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(AccessServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)

	reflection.Register(server)
	return server, healthServer
}
