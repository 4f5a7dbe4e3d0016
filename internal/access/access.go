// Package access decides, per requester and per collection, whether an
// operation is permitted. Predicates take the requester explicitly and never
// touch storage; the repository layer applies the filters they return.
package access

import (
	"go-media-cms/internal/model"
)

// Field names a filterable document attribute in the query language
// understood by the repositories.
type Field string

// FieldStatus is the draft/published lifecycle field.
const FieldStatus Field = "_status"

// Where is an equality condition that must be pushed down into the query.
type Where struct {
	Field Field
	Value string
}

type outcome uint8

const (
	outcomeDeny outcome = iota
	outcomeAllow
	outcomeFilter
)

// Decision is the result of evaluating a rule: allow, deny, or allow only the
// rows matching a condition.
type Decision struct {
	outcome outcome
	where   Where
}

// Allow permits the operation without restriction.
func Allow() Decision { return Decision{outcome: outcomeAllow} }

// Deny refuses the operation.
func Deny() Decision { return Decision{outcome: outcomeDeny} }

// Filtered permits the operation on rows matching w only.
func Filtered(w Where) Decision { return Decision{outcome: outcomeFilter, where: w} }

// Permitted reports whether the operation may proceed at all.
func (d Decision) Permitted() bool { return d.outcome != outcomeDeny }

// Unrestricted reports an Allow with no row filter.
func (d Decision) Unrestricted() bool { return d.outcome == outcomeAllow }

// Condition returns the mandatory filter, if any.
func (d Decision) Condition() (Where, bool) {
	if d.outcome != outcomeFilter {
		return Where{}, false
	}
	return d.where, true
}

func (d Decision) String() string {
	switch d.outcome {
	case outcomeAllow:
		return "allow"
	case outcomeFilter:
		return "filter(" + string(d.where.Field) + "=" + d.where.Value + ")"
	}
	return "deny"
}

// HasAnyRole reports whether user holds at least one of required.
// A nil user holds no roles.
func HasAnyRole(user *model.User, required ...model.Role) bool {
	if user == nil {
		return false
	}
	for _, r := range required {
		if user.Roles.Has(r) {
			return true
		}
	}
	return false
}

// IsAdmin is HasAnyRole(user, admin).
func IsAdmin(user *model.User) bool {
	return HasAnyRole(user, model.RoleAdmin)
}
