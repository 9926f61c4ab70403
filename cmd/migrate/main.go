// Command migrate applies the embedded schema migrations.
//
//	migrate up            apply all pending migrations
//	migrate down [n]      roll back n migrations (default 1)
//	migrate version       print the current version
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/sirupsen/logrus"

	"homeloan-backend/internal/config"
	"homeloan-backend/internal/infrastructure/db"
	"homeloan-backend/internal/infrastructure/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.WithError(err).Fatal("logger")
	}
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: migrate up | down [n] | version")
		os.Exit(2)
	}

	src, err := db.Source()
	if err != nil {
		log.WithError(err).Fatal("migration source")
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, cfg.MigrateURL())
	if err != nil {
		log.WithError(err).Fatal("connect")
	}
	defer m.Close()

	if err := run(m, os.Args[1:], log); err != nil {
		log.WithError(err).Fatal("migrate")
	}
}

func run(m *migrate.Migrate, args []string, log logrus.FieldLogger) error {
	switch args[0] {
	case "up":
		if err := db.MigrateUp(m); err != nil {
			return err
		}
	case "down":
		n := 1
		if len(args) > 1 {
			v, err := strconv.Atoi(args[1])
			if err != nil || v < 1 {
				return fmt.Errorf("invalid step count %q", args[1])
			}
			n = v
		}
		if err := m.Steps(-n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migrate down: %w", err)
		}
	case "version":
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}

	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		log.Info("no migrations applied")
		return nil
	}
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"version": v, "dirty": dirty}).Info("schema version")
	return nil
}
