package policy

import (
	"testing"

	"salesops/pkg/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRequireRole(t *testing.T) {
	p := Principal{AccountID: uuid.New(), Role: "Zone Manager"}

	assert.NoError(t, RequireRole(p, "Zone Manager"))
	assert.NoError(t, RequireRole(p, "Admin", "Zone Manager"))
	assert.ErrorIs(t, RequireRole(p, "Admin"), apperr.ErrDenied)
	// no roles listed fails closed
	assert.ErrorIs(t, RequireRole(p), apperr.ErrDenied)
}

func TestRequireOwner(t *testing.T) {
	owner := uuid.New()
	p := Principal{AccountID: owner, Role: "Area Sales Manager"}

	assert.NoError(t, RequireOwner(p, owner))
	assert.ErrorIs(t, RequireOwner(p, uuid.New()), apperr.ErrDenied)
}

func TestRequireOwnerOrRole(t *testing.T) {
	owner := uuid.New()
	other := Principal{AccountID: uuid.New(), Role: "Admin"}
	stranger := Principal{AccountID: uuid.New(), Role: "Partner"}

	assert.NoError(t, RequireOwnerOrRole(Principal{AccountID: owner}, owner))
	assert.NoError(t, RequireOwnerOrRole(other, owner, "Admin"))
	assert.ErrorIs(t, RequireOwnerOrRole(stranger, owner, "Admin"), apperr.ErrDenied)
}
