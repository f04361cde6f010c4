package database

import (
	"log"

	"salesops/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	// TranslateError maps driver unique-violation errors to
	// gorm.ErrDuplicatedKey so services can match on the kind.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}

// Migrate auto-migrates every persisted model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Account{},
		&model.RefreshToken{},
		&model.State{},
		&model.District{},
		&model.Office{},
		&model.PincodeData{},
		&model.ASMProfile{},
		&model.ZonalManager{},
		&model.DailyTarget{},
		&model.SDCollection{},
		&model.TaskCategory{},
		&model.Task{},
		&model.TaskNote{},
		&model.AuditLog{},
	)
}
