package access

import "go-media-cms/internal/model"

// Rule evaluates one verb for a requester (nil when anonymous).
type Rule func(requester *model.User) Decision

// Anyone allows every requester, anonymous included.
func Anyone(*model.User) Decision { return Allow() }

// Authenticated allows any signed-in requester.
func Authenticated(requester *model.User) Decision {
	if requester == nil {
		return Deny()
	}
	return Allow()
}

// Admins allows requesters holding the admin role.
func Admins(requester *model.User) Decision {
	if IsAdmin(requester) {
		return Allow()
	}
	return Deny()
}

// AdminOrPublished lets admins read everything and restricts everyone else
// to published documents.
func AdminOrPublished(requester *model.User) Decision {
	if IsAdmin(requester) {
		return Allow()
	}
	return Filtered(Where{Field: FieldStatus, Value: string(model.StatusPublished)})
}

// CanRead is the read rule shared by every content collection.
func CanRead(requester *model.User) Decision {
	return Content.Read(requester)
}

// Operation is a CRUD verb.
type Operation string

const (
	OpCreate Operation = "create"
	OpRead   Operation = "read"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// CollectionPolicy holds one rule per verb.
type CollectionPolicy struct {
	Create Rule
	Read   Rule
	Update Rule
	Delete Rule
}

// Evaluate runs the rule for op. Unknown verbs are denied.
func (p CollectionPolicy) Evaluate(op Operation, requester *model.User) Decision {
	var rule Rule
	switch op {
	case OpCreate:
		rule = p.Create
	case OpRead:
		rule = p.Read
	case OpUpdate:
		rule = p.Update
	case OpDelete:
		rule = p.Delete
	}
	if rule == nil {
		return Deny()
	}
	return rule(requester)
}

// FieldPolicy gates a single field on top of its collection policy. A nil
// rule adds no restriction, so the collection rule alone decides.
type FieldPolicy struct {
	Read   Rule
	Create Rule
	Update Rule
}

// Allows reports whether requester may perform op on the field.
func (f FieldPolicy) Allows(op Operation, requester *model.User) bool {
	var rule Rule
	switch op {
	case OpRead:
		rule = f.Read
	case OpCreate:
		rule = f.Create
	case OpUpdate:
		rule = f.Update
	}
	if rule == nil {
		return true
	}
	return rule(requester).Permitted()
}

// Content is the single policy for movies, series, episodes and posts.
var Content = CollectionPolicy{
	Create: Authenticated,
	Read:   AdminOrPublished,
	Update: Authenticated,
	Delete: Authenticated,
}

// ContentViews gates the views counter, which anyone who can see the
// document may bump.
var ContentViews = FieldPolicy{
	Update: Anyone,
}

// Users gates the users collection.
var Users = CollectionPolicy{
	Create: Authenticated,
	Read:   Authenticated,
	Update: Authenticated,
	Delete: Authenticated,
}

// UserRoles gates the roles field on users.
var UserRoles = FieldPolicy{
	Read:   Admins,
	Create: Admins,
	Update: Admins,
}

// AdminPanel decides who may use the CMS surface (user management, stats).
var AdminPanel Rule = Admins

// Taxonomy gates genres and cast members.
var Taxonomy = CollectionPolicy{
	Create: Authenticated,
	Read:   Anyone,
	Update: Authenticated,
	Delete: Authenticated,
}
