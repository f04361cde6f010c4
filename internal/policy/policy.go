package policy

import (
	"salesops/pkg/apperr"

	"github.com/google/uuid"
)

// Principal identifies the requesting account for every policy check. It is
// built once per request from the verified JWT claims and passed explicitly;
// business logic never reads ambient session state.
type Principal struct {
	AccountID uuid.UUID
	Role      string
}

// Is reports whether the principal holds the given role.
func (p Principal) Is(role string) bool {
	return p.Role == role
}

// RequireRole fails closed unless the principal holds one of the given roles.
func RequireRole(p Principal, roles ...string) error {
	for _, r := range roles {
		if p.Role == r {
			return nil
		}
	}
	return apperr.ErrDenied
}

// RequireOwner fails closed unless the principal is the owner of the entity.
func RequireOwner(p Principal, ownerID uuid.UUID) error {
	if p.AccountID != ownerID {
		return apperr.ErrDenied
	}
	return nil
}

// RequireOwnerOrRole allows the owning account or any of the listed roles.
func RequireOwnerOrRole(p Principal, ownerID uuid.UUID, roles ...string) error {
	if p.AccountID == ownerID {
		return nil
	}
	return RequireRole(p, roles...)
}
