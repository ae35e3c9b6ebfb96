package grpcserver

import (
	"context"
	"errors"

	"admin-restful/auth"
	"admin-restful/interceptors"
	"admin-restful/models"
	"admin-restful/services"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type accessServiceServer struct {
	authService services.AuthService
	authn       *auth.Authenticator
	logger      *zap.Logger
}

var _ AccessServiceServer = (*accessServiceServer)(nil)

func NewAccessServiceServer(authService services.AuthService, authn *auth.Authenticator, logger *zap.Logger) AccessServiceServer {
	return &accessServiceServer{authService: authService, authn: authn, logger: logger}
}

func (s *accessServiceServer) Login(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error) {
	input := &services.LoginInput{
		Email:    stringField(req, "email"),
		Password: stringField(req, "password"),
	}
	token, _, err := s.authService.Login(ctx, input)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return wrapperspb.String(token), nil
}

func (s *accessServiceServer) Verify(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	user, err := s.authn.Verify(ctx, req.GetValue())
	if err != nil {
		return nil, s.toStatus(err)
	}
	out, err := principalStruct(user)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return out, nil
}

func (s *accessServiceServer) CheckAccess(ctx context.Context, req *structpb.Struct) (*wrapperspb.BoolValue, error) {
	user, ok := interceptors.PrincipalFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, auth.ErrUnauthenticated.Error())
	}
	resource := stringField(req, "resource")
	if resource == "" {
		return nil, status.Error(codes.InvalidArgument, "resource is required")
	}
	var verb auth.VerbClass
	switch stringField(req, "verb") {
	case "read":
		verb = auth.Read
	case "write":
		verb = auth.Write
	default:
		return nil, status.Error(codes.InvalidArgument, `verb must be "read" or "write"`)
	}
	return wrapperspb.Bool(auth.Authorize(user, resource, verb)), nil
}

func stringField(s *structpb.Struct, name string) string {
	return s.GetFields()[name].GetStringValue()
}

func principalStruct(user *models.User) (*structpb.Struct, error) {
	var role any
	if user.Role != nil {
		role = user.Role.Name
	}
	perms := make([]any, 0)
	for _, name := range user.Role.PermissionNames() {
		perms = append(perms, name)
	}
	return structpb.NewStruct(map[string]any{
		"user_id":     float64(user.ID),
		"email":       user.Email,
		"role":        role,
		"permissions": perms,
	})
}

// toStatus maps domain errors onto gRPC status codes.
func (s *accessServiceServer) toStatus(err error) error {
	switch {
	case auth.IsAuthenticationError(err), errors.Is(err, services.ErrInvalidLogin):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, auth.ErrAccessDenied):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, services.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	}
	s.logger.Error("access service failure", zap.Error(err))
	return status.Error(codes.Internal, "internal error")
}
