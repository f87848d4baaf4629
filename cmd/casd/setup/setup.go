package setup

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rizesql/cas/internal/cas"
	"github.com/rizesql/cas/internal/casdb"
	"github.com/rizesql/cas/internal/o11y/logging"
	"github.com/rizesql/cas/internal/shutdown"
)

func Run(ctx context.Context, cfg Config) error {
	logger := logging.New()
	logger.Info("Initializing CAS database",
		"db", cfg.DBPath,
	)

	shutdowns := shutdown.New()

	db, err := casdb.New(casdb.Config{DSN: cfg.DBPath, Logger: logger})
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	shutdowns.Register(db.Close)

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	logger.Info("Schema applied")

	if err := casdb.Query.SetOption(ctx, db, cas.OptionExpiration, strconv.FormatInt(cfg.Expiration, 10)); err != nil {
		return fmt.Errorf("failed to set expiration option: %w", err)
	}

	logger.Info("CAS database initialized successfully")
	if errs := shutdowns.Shutdown(ctx); len(errs) > 0 {
		err := &shutdown.ShutdownError{Errors: errs}
		logger.Error("shutdown failed", "error", err)
		return err
	}

	return nil
}
