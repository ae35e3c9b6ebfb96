package auth

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable(t *testing.T) *AccessTable {
	t.Helper()
	rules := append(ResourceRules("/api/products", "products"),
		Rule{Method: http.MethodGet, Path: "/api/user"},
	)
	table, err := NewAccessTable(rules...)
	require.NoError(t, err)
	return table
}

func TestAccessTableLookup(t *testing.T) {
	table := testTable(t)

	r, ok := table.Lookup("get", "/api/products/{id}")
	require.True(t, ok)
	assert.Equal(t, "products", r.Resource)
	assert.Equal(t, Read, r.Verb)

	r, ok = table.Lookup(http.MethodDelete, "/api/products/{id}")
	require.True(t, ok)
	assert.Equal(t, Write, r.Verb)

	_, ok = table.Lookup(http.MethodPatch, "/api/products/{id}")
	assert.False(t, ok)
	assert.Len(t, table.Rules(), 6)
}

func TestRouteRuleDerivesVerb(t *testing.T) {
	assert.Equal(t, Read, RouteRule(http.MethodGet, "/api/chart", "orders").Verb)
	assert.Equal(t, Write, RouteRule(http.MethodPatch, "/api/orders/{id}", "orders").Verb)
	assert.Empty(t, RouteRule(http.MethodGet, "/api/user", "").Resource)
}

func TestAccessTableRejectsDuplicates(t *testing.T) {
	_, err := NewAccessTable(
		Rule{Method: "GET", Path: "/api/x", Resource: "x"},
		Rule{Method: "get", Path: "/api/x", Resource: "y"},
	)
	assert.Error(t, err)
}

func TestEvaluatorCheck(t *testing.T) {
	e := NewEvaluator(testTable(t))
	viewer := userWithPermissions("view_products")
	noRole := userWithPermissions()
	noRole.Role = nil

	assert.NoError(t, e.Check(viewer, http.MethodGet, "/api/products"))
	assert.NoError(t, e.Check(viewer, http.MethodGet, "/api/products/{id}"))
	assert.ErrorIs(t, e.Check(viewer, http.MethodPost, "/api/products"), ErrAccessDenied)
	assert.ErrorIs(t, e.Check(viewer, http.MethodPut, "/api/products/{id}"), ErrAccessDenied)

	// authenticated-only routes admit principals without a role
	assert.NoError(t, e.Check(noRole, http.MethodGet, "/api/user"))
	assert.ErrorIs(t, e.Check(noRole, http.MethodGet, "/api/products"), ErrAccessDenied)

	// unmapped routes are denied
	assert.ErrorIs(t, e.Check(viewer, http.MethodGet, "/api/orders"), ErrAccessDenied)
	assert.ErrorIs(t, e.Check(nil, http.MethodGet, "/api/user"), ErrUnauthenticated)
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(ErrUnauthenticated))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(ErrInvalidCredential))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(ErrCredentialExpired))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(ErrPrincipalNotFound))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(ErrAccessDenied))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(ErrInvalidPermissionSet))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrPasswordMismatch))
	assert.Equal(t, 0, HTTPStatus(assert.AnError))
}
