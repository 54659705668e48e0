package identity

import (
	"context"

	"github.com/google/uuid"
)

// Role names understood by the booking workflow. Authentication itself
// happens upstream (gateway); this package only models the decisions the
// core has to make with the claims it is handed.
const (
	RoleResident = "resident"
	RoleApprover = "facility_approver"
	RoleManager  = "facility_manager"
)

// Actor is the authenticated identity performing an operation. It is
// passed explicitly into every service call; nothing reads it from ambient
// state.
type Actor struct {
	ID    string
	Roles []string
}

// Has reports whether the actor carries any of the given role claims.
func (a Actor) Has(roles ...string) bool {
	for _, want := range roles {
		for _, r := range a.Roles {
			if r == want {
				return true
			}
		}
	}
	return false
}

// RoleChecker answers whether an actor holds one of the required roles for
// a facility scope.
type RoleChecker interface {
	HasRole(ctx context.Context, actor Actor, roles []string, facilityID uuid.UUID) (bool, error)
}

// ClaimsChecker trusts the role claims carried by the actor. The gateway
// in front of this service authenticates users and injects their roles;
// facility-scoped role grants would need a store-backed implementation.
type ClaimsChecker struct{}

func (ClaimsChecker) HasRole(_ context.Context, actor Actor, roles []string, _ uuid.UUID) (bool, error) {
	return actor.Has(roles...), nil
}
