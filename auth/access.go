package auth

import (
	"net/http"
	"strings"

	"admin-restful/models"
)

// VerbClass is the coarse classification of an operation.
type VerbClass int

const (
	Read VerbClass = iota
	Write
)

func (v VerbClass) String() string {
	switch v {
	case Read:
		return "read"
	case Write:
		return "write"
	}
	return "unknown"
}

// VerbClassForMethod classifies an HTTP method. Only safe methods read.
func VerbClassForMethod(method string) VerbClass {
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return Read
	}
	return Write
}

// Grants is the set of capabilities held by a role.
type Grants map[Capability]struct{}

// GrantsFor builds the grant set of role from its permission names.
// Names that do not follow the "<action>_<resource>" convention grant nothing.
func GrantsFor(role *models.Role) Grants {
	if role == nil {
		return nil
	}
	grants := make(Grants, len(role.Permissions))
	for _, p := range role.Permissions {
		c, err := ParseCapability(p.Name)
		if err != nil {
			continue
		}
		grants[c] = struct{}{}
	}
	return grants
}

// Has reports whether the set contains exactly (action, resource).
func (g Grants) Has(action Action, resource string) bool {
	_, ok := g[Capability{Action: action, Resource: resource}]
	return ok
}

// Allows applies the view/edit rule: edit implies view, and only edit writes.
func (g Grants) Allows(resource string, verb VerbClass) bool {
	if resource == "" {
		return false
	}
	switch verb {
	case Read:
		return g.Has(ActionView, resource) || g.Has(ActionEdit, resource)
	case Write:
		return g.Has(ActionEdit, resource)
	}
	return false
}

// Authorize decides whether user may perform verb on resource. A user
// without a loaded role is always denied.
func Authorize(user *models.User, resource string, verb VerbClass) bool {
	if user == nil || user.Role == nil {
		return false
	}
	return GrantsFor(user.Role).Allows(resource, verb)
}
