package auth

import (
	"fmt"
	"net/http"
	"strings"

	"admin-restful/models"
)

// Rule binds a route to the capability it requires. An empty Resource
// admits any authenticated principal.
type Rule struct {
	Method   string
	Path     string
	Resource string
	Verb     VerbClass
}

type routeKey struct {
	method string
	path   string
}

// AccessTable is the declarative mapping from (method, route path) to the
// resource and verb class checked by the Evaluator.
type AccessTable struct {
	rules map[routeKey]Rule
}

// NewAccessTable indexes rules. Registering the same route twice is an error.
func NewAccessTable(rules ...Rule) (*AccessTable, error) {
	t := &AccessTable{rules: make(map[routeKey]Rule, len(rules))}
	for _, r := range rules {
		key := routeKey{method: strings.ToUpper(r.Method), path: r.Path}
		if _, dup := t.rules[key]; dup {
			return nil, fmt.Errorf("auth: duplicate access rule for %s %s", key.method, key.path)
		}
		r.Method = key.method
		t.rules[key] = r
	}
	return t, nil
}

// Lookup returns the rule registered for a route.
func (t *AccessTable) Lookup(method, path string) (Rule, bool) {
	if t == nil {
		return Rule{}, false
	}
	r, ok := t.rules[routeKey{method: strings.ToUpper(method), path: path}]
	return r, ok
}

// Rules returns a copy of the registered rules.
func (t *AccessTable) Rules() []Rule {
	out := make([]Rule, 0, len(t.rules))
	for _, r := range t.rules {
		out = append(out, r)
	}
	return out
}

// RouteRule guards (method, path) with resource, deriving the verb class
// from the method.
func RouteRule(method, path, resource string) Rule {
	return Rule{Method: method, Path: path, Resource: resource, Verb: VerbClassForMethod(method)}
}

// ResourceRules returns the rules of a conventional collection: list and
// create on base, retrieve, update and delete on base/{id}.
func ResourceRules(base, resource string) []Rule {
	item := base + "/{id}"
	return []Rule{
		RouteRule(http.MethodGet, base, resource),
		RouteRule(http.MethodPost, base, resource),
		RouteRule(http.MethodGet, item, resource),
		RouteRule(http.MethodPut, item, resource),
		RouteRule(http.MethodDelete, item, resource),
	}
}

// Evaluator authorizes requests against an AccessTable.
type Evaluator struct {
	table *AccessTable
}

func NewEvaluator(table *AccessTable) *Evaluator {
	return &Evaluator{table: table}
}

// Check authorizes user for the route (method, path). Routes missing from
// the table are denied.
func (e *Evaluator) Check(user *models.User, method, path string) error {
	if user == nil {
		return ErrUnauthenticated
	}
	rule, ok := e.table.Lookup(method, path)
	if !ok {
		return fmt.Errorf("%w: no access rule for %s %s", ErrAccessDenied, method, path)
	}
	if rule.Resource == "" {
		return nil
	}
	if !Authorize(user, rule.Resource, rule.Verb) {
		return fmt.Errorf("%w: %s %s", ErrAccessDenied, rule.Verb, rule.Resource)
	}
	return nil
}
