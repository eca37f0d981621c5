package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-print"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/goliatone/go-accounts"
	"github.com/goliatone/go-accounts/config"
	"github.com/goliatone/go-accounts/server"
)

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("accounts"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	if err := run(lgr); err != nil {
		lgr.GetLogger("main").Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run(lgr *glog.BaseLogger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.Debug {
		fmt.Println("============")
		fmt.Println(print.MaybeHighlightJSON(cfg.Sanitized()))
		fmt.Println("============")
	}

	ctx := context.Background()

	sqlDB, err := sql.Open(sqliteshim.ShimName, cfg.DatabaseDSN)
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to open database")
	}

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	defer db.Close()

	if err := accounts.Migrate(ctx, sqlDB); err != nil {
		return err
	}

	repo := accounts.NewRepositoryManager(db)
	repo.MustValidate()

	if cfg.SeedDemo {
		if err := accounts.Seed(ctx, repo, lgr.GetLogger("seed")); err != nil {
			return err
		}
	}

	tokens := accounts.NewTokenService(
		[]byte(cfg.TokenSigningSecret),
		cfg.TokenExpirationHours,
		cfg.TokenIssuer,
		lgr.GetLogger("tokens"),
	)

	provider := accounts.NewUserProvider(repo.Users()).
		WithLogger(lgr.GetLogger("auth:prv"))

	srv := server.New(cfg, repo, tokens, provider, lgr.GetLogger("server"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen()
	}()

	select {
	case err := <-errCh:
		return err
	case sig := <-waitExitSignal():
		lgr.GetLogger("main").Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func waitExitSignal() chan os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return ch
}
