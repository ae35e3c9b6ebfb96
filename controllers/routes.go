package controllers

import (
	"net/http"

	"admin-restful/auth"
)

// APIRoot is the path prefix of every API route.
const APIRoot = "/api"

// publicRoutes are served without authentication.
var publicRoutes = map[string]bool{
	http.MethodPost + " " + APIRoot + "/register": true,
	http.MethodPost + " " + APIRoot + "/login":    true,
	http.MethodPost + " " + APIRoot + "/logout":   true,
}

// AccessRules maps every guarded route to the resource and verb class it
// requires. Routes with an empty resource only need a valid token.
func AccessRules() []auth.Rule {
	var rules []auth.Rule
	rules = append(rules, auth.ResourceRules(APIRoot+"/users", "users")...)
	rules = append(rules, auth.ResourceRules(APIRoot+"/roles", "roles")...)
	rules = append(rules, auth.ResourceRules(APIRoot+"/products", "products")...)
	rules = append(rules,
		auth.RouteRule(http.MethodGet, APIRoot+"/orders", "orders"),
		auth.RouteRule(http.MethodGet, APIRoot+"/orders/{id}", "orders"),
		auth.RouteRule(http.MethodGet, APIRoot+"/chart", "orders"),
		auth.RouteRule(http.MethodGet, APIRoot+"/user", ""),
		auth.RouteRule(http.MethodGet, APIRoot+"/permissions", ""),
	)
	return rules
}
