package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"

	"pairconnect/api/config"
	"pairconnect/api/migrations"
)

const usage = `Usage: migrate [command]

Commands:
    up          apply all pending migrations (default)
    down        roll back the latest migration
    status      print the status of every migration
    version     print the current schema version
`

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	if err := run(command, log); err != nil {
		log.WithError(err).WithField("command", command).Fatal("migration failed")
	}
}

func run(command string, log *logrus.Logger) error {
	dsn, err := config.LoadDatabaseURL()
	if err != nil {
		return err
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping db: %w", err)
	}

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(log)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	switch command {
	case "up":
		err = goose.Up(db, ".")
	case "down":
		err = goose.Down(db, ".")
	case "status":
		err = goose.Status(db, ".")
	case "version":
		err = goose.Version(db, ".")
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
	if err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	log.WithField("command", command).Info("migrations done")
	return nil
}
