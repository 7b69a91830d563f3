// AngelaMos | 2026
// authz.go

package authz

import (
	"fmt"
	"sort"
	"strings"
)

type Resource string

type Action string

const (
	Users    Resource = "users"
	Products Resource = "products"
	Orders   Resource = "orders"
	Roles    Resource = "roles"
	Tenant   Resource = "tenant"
)

const (
	View         Action = "view"
	ViewAll      Action = "viewAll"
	Create       Action = "create"
	Edit         Action = "edit"
	Delete       Action = "delete"
	Cancel       Action = "cancel"
	UpdateStatus Action = "updateStatus"
	ManageStock  Action = "manageStock"
)

// catalog lists every capability that exists. Anything outside it is
// rejected when a role is written.
var catalog = map[Resource][]Action{
	Users:    {View, Create, Edit, Delete},
	Products: {View, Create, Edit, Delete, ManageStock},
	Orders:   {View, ViewAll, Create, Edit, Cancel, UpdateStatus},
	Roles:    {View, Create, Edit, Delete},
	Tenant:   {View, Edit},
}

// Permission is a capability token of the form resource:action.
type Permission string

func P(r Resource, a Action) Permission {
	return Permission(string(r) + ":" + string(a))
}

func (p Permission) Split() (Resource, Action, bool) {
	r, a, ok := strings.Cut(string(p), ":")
	if !ok {
		return "", "", false
	}
	return Resource(r), Action(a), true
}

func (p Permission) Valid() bool {
	r, a, ok := p.Split()
	if !ok {
		return false
	}
	for _, known := range catalog[r] {
		if known == a {
			return true
		}
	}
	return false
}

// Set is the capability set of a role. The zero value grants nothing.
type Set map[Permission]struct{}

func NewSet(perms ...Permission) Set {
	s := make(Set, len(perms))
	for _, p := range perms {
		s[p] = struct{}{}
	}
	return s
}

// Parse builds a Set from stored tokens, failing on any unknown entry.
func Parse(tokens []string) (Set, error) {
	s := make(Set, len(tokens))
	var unknown []string
	for _, t := range tokens {
		p := Permission(t)
		if !p.Valid() {
			unknown = append(unknown, t)
			continue
		}
		s[p] = struct{}{}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown permissions: %s", strings.Join(unknown, ", "))
	}
	return s, nil
}

// FromStrings keeps only the known tokens. Used when reading roles back
// from storage, where an unknown token must simply grant nothing.
func FromStrings(tokens []string) Set {
	s := make(Set, len(tokens))
	for _, t := range tokens {
		if p := Permission(t); p.Valid() {
			s[p] = struct{}{}
		}
	}
	return s
}

func (s Set) Has(r Resource, a Action) bool {
	_, ok := s[P(r, a)]
	return ok
}

func (s Set) Strings() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, string(p))
	}
	sort.Strings(out)
	return out
}

// Matrix renders the set as resource -> action -> granted for every known
// capability, the shape clients use to draw permission editors.
func (s Set) Matrix() map[string]map[string]bool {
	m := make(map[string]map[string]bool, len(catalog))
	for r, actions := range catalog {
		row := make(map[string]bool, len(actions))
		for _, a := range actions {
			row[string(a)] = s.Has(r, a)
		}
		m[string(r)] = row
	}
	return m
}

func All() Set {
	s := make(Set)
	for r, actions := range catalog {
		for _, a := range actions {
			s[P(r, a)] = struct{}{}
		}
	}
	return s
}
