package access

import (
	"context"
	"errors"
	"fmt"

	"go-media-cms/internal/model"
)

// ErrBootstrapUnavailable means the first-admin check could not complete;
// the write it guards must be rejected.
var ErrBootstrapUnavailable = errors.New("first admin check unavailable")

// AdminLedger records, atomically, that the system has its first admin.
//
// ClaimFirstAdmin returns true to exactly one caller over the lifetime of the
// store: the one that flips "admin exists" from unset to set. Every later
// caller, and every caller after an admin already exists, gets false.
type AdminLedger interface {
	ClaimFirstAdmin(ctx context.Context) (bool, error)
}

// EnsureFirstUserIsAdmin is the pre-write hook on the users roles field.
//
// On create it adds admin to the proposed roles when this is the first admin
// in the system. Updates pass through untouched. When the ledger fails the
// error is returned and the caller must abort the write.
func EnsureFirstUserIsAdmin(ctx context.Context, op Operation, proposed model.RoleSet, ledger AdminLedger) (model.RoleSet, error) {
	if op != OpCreate {
		return proposed, nil
	}
	claimed, err := ledger.ClaimFirstAdmin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBootstrapUnavailable, err)
	}
	if !claimed {
		return proposed, nil
	}
	return proposed.Union(model.RoleAdmin), nil
}
