package auth

import (
	"errors"
	"net/http"
	"strings"

	"admin-restful/models"

	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

// PrincipalAttribute is the request attribute holding the authenticated *models.User.
const PrincipalAttribute = "principal"

// TokensFromRequest returns the access tokens carried by r in the order
// they are tried: the named cookie, then an "Authorization: Bearer" header.
func TokensFromRequest(r *http.Request, cookieName string) []string {
	var tokens []string
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		tokens = append(tokens, c.Value)
	}
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if token = strings.TrimSpace(token); ok && strings.EqualFold(scheme, "bearer") && token != "" {
		if len(tokens) == 0 || tokens[0] != token {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// verifyRequest accepts the first token that verifies. A stale cookie does
// not shadow a valid bearer header. Lookup failures stop the search.
func verifyRequest(r *http.Request, authn *Authenticator, cookieName string) (*models.User, error) {
	tokens := TokensFromRequest(r, cookieName)
	if len(tokens) == 0 {
		return nil, ErrUnauthenticated
	}
	var firstErr error
	for _, token := range tokens {
		user, err := authn.Verify(r.Context(), token)
		if err == nil {
			return user, nil
		}
		if !IsAuthenticationError(err) {
			return nil, err
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

// AuthFilter authenticates the request and stores the principal in the
// request attributes. Every failure is answered with 401.
func AuthFilter(authn *Authenticator, cookieName string, logger *zap.Logger) restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		user, err := verifyRequest(req.Request, authn, cookieName)
		if err != nil {
			if !IsAuthenticationError(err) {
				logger.Error("authentication lookup failed", zap.Error(err))
				_ = resp.WriteHeaderAndJson(http.StatusInternalServerError, map[string]string{"message": "Internal Server Error"}, restful.MIME_JSON)
				return
			}
			logger.Debug("authentication rejected",
				zap.String("path", req.Request.URL.Path),
				zap.String("reason", err.Error()),
			)
			_ = resp.WriteHeaderAndJson(http.StatusUnauthorized, map[string]string{"message": authMessage(err)}, restful.MIME_JSON)
			return
		}

		req.SetAttribute(PrincipalAttribute, user)
		chain.ProcessFilter(req, resp)
	}
}

// AccessFilter authorizes the selected route of an authenticated request.
// It must run after AuthFilter.
func AccessFilter(e *Evaluator, logger *zap.Logger) restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		user, ok := PrincipalFrom(req)
		if !ok {
			_ = resp.WriteHeaderAndJson(http.StatusUnauthorized, map[string]string{"message": authMessage(ErrUnauthenticated)}, restful.MIME_JSON)
			return
		}
		if err := e.Check(user, req.Request.Method, req.SelectedRoutePath()); err != nil {
			logger.Info("access denied",
				zap.Uint("user_id", user.ID),
				zap.String("method", req.Request.Method),
				zap.String("route", req.SelectedRoutePath()),
				zap.Error(err),
			)
			_ = resp.WriteHeaderAndJson(http.StatusForbidden, map[string]string{"message": "Forbidden"}, restful.MIME_JSON)
			return
		}
		chain.ProcessFilter(req, resp)
	}
}

// PrincipalFrom returns the user stored by AuthFilter.
func PrincipalFrom(req *restful.Request) (*models.User, bool) {
	user, ok := req.Attribute(PrincipalAttribute).(*models.User)
	return user, ok && user != nil
}

func authMessage(err error) string {
	switch {
	case errors.Is(err, ErrCredentialExpired):
		return "credential expired"
	case errors.Is(err, ErrPrincipalNotFound):
		return "user not found"
	case errors.Is(err, ErrInvalidCredential):
		return "invalid credential"
	}
	return "un-authenticated"
}
