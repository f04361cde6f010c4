package service

import (
	"testing"
	"time"

	"salesops/internal/database"
	"salesops/internal/model"
	"salesops/internal/policy"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// The in-memory database is per-connection; pin the pool to one.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func createAccount(t *testing.T, db *gorm.DB, role, username string) *model.Account {
	t.Helper()
	account := &model.Account{
		Username: username,
		FullName: username,
		Email:    username + "@example.com",
		Password: "hashed",
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, db.Create(account).Error)
	return account
}

func createZMProfile(t *testing.T, db *gorm.DB, zmUser *model.Account, asms ...*model.Account) *model.ZonalManager {
	t.Helper()
	profile := &model.ZonalManager{UserID: zmUser.ID}
	for _, a := range asms {
		profile.ASMs = append(profile.ASMs, *a)
	}
	require.NoError(t, db.Create(profile).Error)
	return profile
}

func createASMProfile(t *testing.T, db *gorm.DB, asmUser *model.Account, partners ...*model.Account) *model.ASMProfile {
	t.Helper()
	profile := &model.ASMProfile{UserID: asmUser.ID}
	for _, p := range partners {
		profile.Partners = append(profile.Partners, *p)
	}
	require.NoError(t, db.Create(profile).Error)
	return profile
}

func principalFor(account *model.Account) policy.Principal {
	return policy.Principal{AccountID: account.ID, Role: account.Role}
}

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}
