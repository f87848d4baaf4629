package start

import (
	"context"
	"fmt"
	"net"
	"runtime/debug"
	"strings"

	"github.com/rizesql/cas/internal/cas"
	cas_http "github.com/rizesql/cas/internal/cas/http"
	"github.com/rizesql/cas/internal/casdb"
	"github.com/rizesql/cas/internal/clock"
	"github.com/rizesql/cas/internal/crypto"
	"github.com/rizesql/cas/internal/directory"
	"github.com/rizesql/cas/internal/o11y/logging"
	"github.com/rizesql/cas/internal/o11y/metrics"
	"github.com/rizesql/cas/internal/server"
	"github.com/rizesql/cas/internal/session"
	"github.com/rizesql/cas/internal/shutdown"
	"github.com/rizesql/cas/internal/store"
	"github.com/rizesql/cas/internal/ticket"
)

func Run(ctx context.Context, cfg Config) error {
	logger := logging.New()
	clk := clock.New()

	shutdowns := shutdown.New()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic",
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
	}()

	db, err := casdb.New(casdb.Config{
		DSN:    cfg.DBPath,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	shutdowns.Register(db.Close)

	signer, err := crypto.NewSigner(cfg.Secret)
	if err != nil {
		return err
	}

	ticketStore, err := openStore(cfg.StoreDSN, db, clk)
	if err != nil {
		return fmt.Errorf("failed to open ticket store: %w", err)
	}
	shutdowns.Register(ticketStore.Close)

	dir := directory.New(db, logger)
	codec := ticket.NewCodec(signer, dir, clk, logger)

	casCfg := cas.LoadOptions(ctx, db, logger, cas.Config{
		AuthURL: cfg.AuthURL,
		HomeURL: cfg.HomeURL,
	})

	platform := cas.NewPlatform(
		clk,
		logger,
		metrics.New(),
		ticketStore,
		dir,
		session.NewCookie(codec, dir, logger, 0),
		session.NewNonces(ticketStore, signer, 0),
		codec,
	)

	srv := server.New(logger)
	shutdowns.RegisterCtx(srv.Shutdown)

	cas_http.Register(srv, platform, casCfg, nil)

	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		logger.Error("failed to listen",
			"addr", cfg.Listen,
			"error", err,
		)
		return err
	}

	go func() {
		if err := srv.Listen(ctx, ln); err != nil {
			panic(err)
		}
	}()

	logger.Info("Press Ctrl+C to shut down")
	if err := shutdowns.WaitForSignal(ctx); err != nil {
		logger.Error("shutdown failed", "error", err)
		return fmt.Errorf("shutdown failed: %w", err)
	}

	logger.Info("Server shutdown complete")
	return nil
}

func openStore(dsn string, db casdb.Database, clk clock.Clock) (store.Store, error) {
	switch {
	case dsn == "memory":
		return store.NewMemory(clk), nil
	case dsn == "sqlite":
		return store.NewSQL(db, clk), nil
	case strings.HasPrefix(dsn, "leveldb://"):
		return store.OpenLevelDB(dsn, nil, clk)
	default:
		return nil, fmt.Errorf("unknown ticket store dsn %q", dsn)
	}
}
