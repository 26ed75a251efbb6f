package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"grocerify/internal/cli"
	"grocerify/internal/config"
	"grocerify/internal/db"
	"grocerify/internal/logger"
	"grocerify/repository"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	auditLog, closeLog, err := logger.New(cfg.Env, cfg.Log.Level, cfg.Log.File)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() {
		if err := closeLog.Close(); err != nil {
			log.Printf("close log: %v", err)
		}
	}()
	auditLog.Debugf("configuration loaded: %v", cfg)

	// Open DB
	d, err := db.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer func() {
		if err := d.Close(); err != nil {
			log.Printf("close db: %v", err)
		}
	}()

	ctx := context.Background()
	users := repository.NewUserRepository(d)
	items := repository.NewItemRepository(d)
	if err := users.EnsureDefaultAdmin(ctx); err != nil {
		log.Fatalf("seed admin: %v", err)
	}

	app := &cli.App{
		Users:    users,
		Items:    items,
		Log:      auditLog,
		Out:      os.Stdout,
		Err:      os.Stderr,
		Username: cfg.Session.Username,
		Password: cfg.Session.Password,
	}
	if err := app.Run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", cli.Message(err))
		return 1
	}
	return 0
}
