package model

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pixai-app/pixai-api/common"
	"github.com/pixai-app/pixai-api/common/config"
	"github.com/pixai-app/pixai-api/common/env"
	"github.com/pixai-app/pixai-api/common/logger"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

func chooseDB(envName string) (*gorm.DB, error) {
	dsn := os.Getenv(envName)
	switch {
	case strings.HasPrefix(dsn, "postgres://"):
		logger.SysLog("using PostgreSQL as database")
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: true,
		})
	case dsn != "":
		logger.SysLog("using MySQL as database")
		return gorm.Open(mysql.Open(dsn), &gorm.Config{
			PrepareStmt: true,
		})
	default:
		logger.SysLog("SQL_DSN not set, using SQLite as database")
		return OpenSQLite(fmt.Sprintf("%s?_busy_timeout=%d", common.SQLitePath, common.SQLiteBusyTimeout))
	}
}

// OpenSQLite opens a SQLite database. Tests use it with an in-memory DSN.
func OpenSQLite(dsn string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
}

func InitDB(envName string) (db *gorm.DB, err error) {
	db, err = chooseDB(envName)
	if err != nil {
		logger.FatalLog(err)
		return
	}
	if config.DebugSQLEnabled {
		db = db.Debug()
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(env.Int("SQL_MAX_IDLE_CONNS", 100))
	sqlDB.SetMaxOpenConns(env.Int("SQL_MAX_OPEN_CONNS", 1000))
	sqlDB.SetConnMaxLifetime(time.Second * time.Duration(env.Int("SQL_MAX_LIFETIME", 60)))

	if err = Migrate(db); err != nil {
		return nil, err
	}
	logger.SysLog("database migrated")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	logger.SysLog("database migration started")
	return db.AutoMigrate(&User{}, &Log{}, &ChargeOrder{})
}

// SeedUser creates a development account so the proxy can be exercised
// without the external account service.
func SeedUser(id string, credit int64) error {
	if id == "" {
		return nil
	}
	_, err := GetUserById(context.Background(), id)
	if !errors.Is(err, ErrUserNotFound) {
		return err
	}
	user := User{
		Id:            id,
		Username:      id,
		CreditBalance: credit,
	}
	if err = user.Insert(); err != nil {
		return err
	}
	logger.SysLog(fmt.Sprintf("seeded user %s with %d credits", id, credit))
	return nil
}

func CloseDB() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
