package db

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Opts carries connection settings for the relational store.
type Opts struct {
	Driver             string // "mysql" or "postgres"
	DSN                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
}

// New returns a connected GORM DB instance with pool limits applied.
func New(o Opts) (*gorm.DB, error) {
	var dial gorm.Dialector
	switch o.Driver {
	case "mysql":
		dial = mysql.Open(o.DSN)
	case "postgres":
		dial = postgres.Open(o.DSN)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", o.Driver)
	}

	// TranslateError turns driver duplicate-key errors into
	// gorm.ErrDuplicatedKey so services can map them to conflicts.
	db, err := gorm.Open(dial, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", o.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(o.MaxOpenConns)
	sqlDB.SetMaxIdleConns(o.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(o.ConnMaxLifetimeMin) * time.Minute)

	return db, nil
}
