package database

import (
	"fundraiser/src/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func SetupGormDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(DSN(cfg)), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return db, nil
}
