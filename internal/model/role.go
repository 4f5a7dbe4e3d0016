package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"sort"
)

// Role is a permission class held by a user. The set is closed.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Roles lists every known role, in display order.
var Roles = []Role{RoleAdmin, RoleUser}

// RoleInfo is what GET /roles returns.
type RoleInfo struct {
	Code        Role   `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DefaultRoles describes the closed role set for clients
var DefaultRoles = []RoleInfo{
	{
		Code:        RoleAdmin,
		Name:        "Administrator",
		Description: "Full CMS access, sees drafts, manages users and roles",
	},
	{
		Code:        RoleUser,
		Name:        "User",
		Description: "Regular account, sees published content only",
	},
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	}
	return false
}

// RoleSet is an unordered set of roles. The zero value is an empty set.
type RoleSet map[Role]struct{}

// NewRoleSet builds a set from roles, dropping unknown tags.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		if r.Valid() {
			set[r] = struct{}{}
		}
	}
	return set
}

// ParseRoleSet builds a set from raw strings. Unknown values are ignored,
// malformed input yields an empty set rather than an error.
func ParseRoleSet(raw []string) RoleSet {
	roles := make([]Role, 0, len(raw))
	for _, s := range raw {
		roles = append(roles, Role(s))
	}
	return NewRoleSet(roles...)
}

func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

// Union returns a new set holding the members of s and roles.
func (s RoleSet) Union(roles ...Role) RoleSet {
	out := make(RoleSet, len(s)+len(roles))
	for r := range s {
		out[r] = struct{}{}
	}
	for _, r := range roles {
		if r.Valid() {
			out[r] = struct{}{}
		}
	}
	return out
}

// Slice returns the members sorted, for stable JSON and storage.
func (s RoleSet) Slice() []Role {
	out := make([]Role, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Strings is Slice as plain strings (JWT claims).
func (s RoleSet) Strings() []string {
	roles := s.Slice()
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

func (s RoleSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

func (s *RoleSet) UnmarshalJSON(data []byte) error {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		*s = RoleSet{}
		return nil
	}
	*s = ParseRoleSet(raw)
	return nil
}

// Value stores the set as a JSON array.
func (s RoleSet) Value() (driver.Value, error) {
	b, err := json.Marshal(s.Slice())
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan reads a JSON array. Anything unreadable becomes the empty set.
func (s *RoleSet) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*s = RoleSet{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("roles: unsupported column type")
	}
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		*s = RoleSet{}
		return nil
	}
	*s = ParseRoleSet(raw)
	return nil
}
