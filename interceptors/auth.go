package interceptors

import (
	"context"

	"admin-restful/auth"
	"admin-restful/models"

	grpcmw "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors"
	grpcauth "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/selector"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// PrincipalKey is the context key for the authenticated *models.User.
const PrincipalKey contextKey = "principal"

// AuthInterceptor verifies the "authorization: Bearer" metadata of every
// unary call except the public methods, and stores the principal in the
// context.
func AuthInterceptor(authn *auth.Authenticator, logger *zap.Logger, publicMethods ...string) grpc.UnaryServerInterceptor {
	return selector.UnaryServerInterceptor(
		grpcauth.UnaryServerInterceptor(authFunc(authn, logger)),
		requiresAuth(publicMethods),
	)
}

// AuthStreamInterceptor is AuthInterceptor for streaming calls.
func AuthStreamInterceptor(authn *auth.Authenticator, logger *zap.Logger, publicMethods ...string) grpc.StreamServerInterceptor {
	return selector.StreamServerInterceptor(
		grpcauth.StreamServerInterceptor(authFunc(authn, logger)),
		requiresAuth(publicMethods),
	)
}

func authFunc(authn *auth.Authenticator, logger *zap.Logger) grpcauth.AuthFunc {
	return func(ctx context.Context) (context.Context, error) {
		token, err := grpcauth.AuthFromMD(ctx, "bearer")
		if err != nil {
			return nil, err
		}
		user, err := authn.Verify(ctx, token)
		if err != nil {
			if auth.IsAuthenticationError(err) {
				return nil, status.Error(codes.Unauthenticated, err.Error())
			}
			logger.Error("authentication lookup failed", zap.Error(err))
			return nil, status.Error(codes.Internal, "internal error")
		}
		return context.WithValue(ctx, PrincipalKey, user), nil
	}
}

func requiresAuth(publicMethods []string) selector.Matcher {
	public := make(map[string]bool, len(publicMethods))
	for _, m := range publicMethods {
		public[m] = true
	}
	return selector.MatchFunc(func(_ context.Context, c grpcmw.CallMeta) bool {
		return !public[c.FullMethod()]
	})
}

// PrincipalFromContext returns the user stored by AuthInterceptor.
func PrincipalFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(PrincipalKey).(*models.User)
	return user, ok && user != nil
}
