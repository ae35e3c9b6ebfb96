package auth

import (
	"fmt"
	"strings"
)

// Action is the verb half of a permission name.
type Action string

const (
	ActionView Action = "view"
	ActionEdit Action = "edit"
)

// Capability is a parsed permission name. Its string form is
// "<action>_<resource>", for example "edit_products".
type Capability struct {
	Action   Action
	Resource string
}

// String formats c as a permission name.
func (c Capability) String() string {
	return string(c.Action) + "_" + c.Resource
}

// ParseCapability splits a permission name at its first underscore.
// Only the view and edit actions are recognised.
func ParseCapability(name string) (Capability, error) {
	action, resource, ok := strings.Cut(name, "_")
	if !ok || resource == "" {
		return Capability{}, fmt.Errorf("auth: malformed permission name %q", name)
	}
	switch Action(action) {
	case ActionView, ActionEdit:
	default:
		return Capability{}, fmt.Errorf("auth: unknown action in permission name %q", name)
	}
	return Capability{Action: Action(action), Resource: resource}, nil
}

// CatalogFor returns the view and edit capabilities of each resource.
func CatalogFor(resources ...string) []Capability {
	caps := make([]Capability, 0, 2*len(resources))
	for _, r := range resources {
		caps = append(caps,
			Capability{Action: ActionView, Resource: r},
			Capability{Action: ActionEdit, Resource: r},
		)
	}
	return caps
}
