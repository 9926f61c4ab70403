package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenGorm connects to MySQL and verifies the connection with a ping.
func OpenGorm(dsn, logLevel string, log logrus.FieldLogger) (*gorm.DB, error) {
	lvl, err := ParseLogLevel(logLevel)
	if err != nil {
		return nil, err
	}
	gdb, err := OpenGormWithDialector(mysql.Open(dsn), lvl)
	if err != nil {
		return nil, err
	}
	log.Info("gorm: connected")
	return gdb, nil
}

// OpenGormWithDialector applies the pool settings and pings; tests pass a
// dialector over sqlmock.
func OpenGormWithDialector(dial gorm.Dialector, lvl ...logger.LogLevel) (*gorm.DB, error) {
	level := logger.Warn
	if len(lvl) > 0 {
		level = lvl[0]
	}
	cfg := &gorm.Config{
		Logger:  logger.Default.LogMode(level),
		NowFunc: func() time.Time { return time.Now().UTC() },
		// pinged below, after the pool is configured
		DisableAutomaticPing: true,
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

func ParseLogLevel(s string) (logger.LogLevel, error) {
	switch strings.ToLower(s) {
	case "silent":
		return logger.Silent, nil
	case "error":
		return logger.Error, nil
	case "", "warn":
		return logger.Warn, nil
	case "info":
		return logger.Info, nil
	}
	return 0, fmt.Errorf("unknown gorm log level %q", s)
}
