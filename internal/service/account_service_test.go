package service

import (
	"context"
	"testing"

	"salesops/internal/model"
	"salesops/internal/repository"
	"salesops/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAccountService(db *gorm.DB) AccountService {
	return NewAccountService(
		repository.NewAccountRepository(db),
		repository.NewTokenRepository(db),
		repository.NewGeographyRepository(db),
	)
}

func seedAdmin(t *testing.T, db *gorm.DB) *model.Account {
	t.Helper()
	return createAccount(t, db, model.RoleAdmin, "admin1")
}

func TestLoginAndRefreshRotation(t *testing.T) {
	db := newTestDB(t)
	admin := seedAdmin(t, db)
	svc := newAccountService(db)

	created, err := svc.CreateAccount(context.Background(), principalFor(admin), CreateAccountRequest{
		Username: "zm1",
		FullName: "Zone One",
		Email:    "zm1@example.com",
		Password: "secret123",
		Role:     model.RoleZoneManager,
	})
	require.NoError(t, err)
	assert.Equal(t, "/zone-manager-dashboard", created.Dashboard)

	tokens, err := svc.Login(context.Background(), LoginRequest{Username: "zm1", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.Token)
	assert.Equal(t, model.RoleZoneManager, tokens.Role)

	_, err = svc.Login(context.Background(), LoginRequest{Username: "zm1", Password: "wrong"})
	assert.Error(t, err)

	rotated, err := svc.RefreshToken(context.Background(), RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	// the old refresh token is single-use
	_, err = svc.RefreshToken(context.Background(), RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	assert.Error(t, err)
}

func TestLoginInactiveAccountDenied(t *testing.T) {
	db := newTestDB(t)
	admin := seedAdmin(t, db)
	svc := newAccountService(db)

	created, err := svc.CreateAccount(context.Background(), principalFor(admin), CreateAccountRequest{
		Username: "asm1",
		Email:    "asm1@example.com",
		Password: "secret123",
		Role:     model.RoleAreaSalesManager,
	})
	require.NoError(t, err)

	inactive := false
	_, err = svc.UpdateAccount(context.Background(), principalFor(admin), created.ID, UpdateAccountRequest{IsActive: &inactive})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginRequest{Username: "asm1", Password: "secret123"})
	assert.ErrorIs(t, err, apperr.ErrDenied)
}

func TestCreateAccountUniquenessAndRole(t *testing.T) {
	db := newTestDB(t)
	admin := seedAdmin(t, db)
	svc := newAccountService(db)

	req := CreateAccountRequest{
		Username: "asm1",
		Email:    "asm1@example.com",
		Password: "secret123",
		Role:     model.RoleAreaSalesManager,
	}
	_, err := svc.CreateAccount(context.Background(), principalFor(admin), req)
	require.NoError(t, err)

	_, err = svc.CreateAccount(context.Background(), principalFor(admin), req)
	verr, ok := apperr.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, verr.Message, "already exists")

	req.Username = "asm2"
	req.Email = "asm2@example.com"
	req.Role = "Janitor"
	_, err = svc.CreateAccount(context.Background(), principalFor(admin), req)
	_, ok = apperr.AsValidation(err)
	assert.True(t, ok)

	// creation is Admin-only
	stranger := createAccount(t, db, model.RoleZoneManager, "zm1")
	req.Role = model.RoleAreaSalesManager
	_, err = svc.CreateAccount(context.Background(), principalFor(stranger), req)
	assert.ErrorIs(t, err, apperr.ErrDenied)
}

func TestLogoutRevokesAllRefreshTokens(t *testing.T) {
	db := newTestDB(t)
	admin := seedAdmin(t, db)
	svc := newAccountService(db)

	created, err := svc.CreateAccount(context.Background(), principalFor(admin), CreateAccountRequest{
		Username: "zm1",
		Email:    "zm1@example.com",
		Password: "secret123",
		Role:     model.RoleZoneManager,
	})
	require.NoError(t, err)

	first, err := svc.Login(context.Background(), LoginRequest{Username: "zm1", Password: "secret123"})
	require.NoError(t, err)
	second, err := svc.Login(context.Background(), LoginRequest{Username: "zm1", Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), created.ID))

	_, err = svc.RefreshToken(context.Background(), RefreshTokenRequest{RefreshToken: first.RefreshToken})
	assert.Error(t, err)
	_, err = svc.RefreshToken(context.Background(), RefreshTokenRequest{RefreshToken: second.RefreshToken})
	assert.Error(t, err)
}

func TestLookupFiltersRoleAndName(t *testing.T) {
	db := newTestDB(t)
	zmUser := createAccount(t, db, model.RoleZoneManager, "zm1")
	createAccount(t, db, model.RoleAreaSalesManager, "ravi")
	createAccount(t, db, model.RoleAreaSalesManager, "rahul")
	createAccount(t, db, model.RolePartner, "raj")

	svc := newAccountService(db)
	results, err := svc.Lookup(context.Background(), principalFor(zmUser), model.RoleAreaSalesManager, "ra")
	require.NoError(t, err)
	assert.Len(t, results, 2)

	// the match ignores case
	results, err = svc.Lookup(context.Background(), principalFor(zmUser), model.RoleAreaSalesManager, "RA")
	require.NoError(t, err)
	assert.Len(t, results, 2)

	_, err = svc.Lookup(context.Background(), principalFor(zmUser), "Janitor", "ra")
	_, ok := apperr.AsValidation(err)
	assert.True(t, ok)

	partner := createAccount(t, db, model.RolePartner, "p-caller")
	_, err = svc.Lookup(context.Background(), principalFor(partner), model.RoleAreaSalesManager, "ra")
	assert.ErrorIs(t, err, apperr.ErrDenied)
}
