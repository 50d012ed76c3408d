package main

import (
	"context"
	"fmt"
	"sync"

	"cozylogic-backend/internal/config"
	"cozylogic-backend/internal/database"
	"cozylogic-backend/internal/logger"
	"cozylogic-backend/internal/services"
	"cozylogic-backend/internal/supabase"

	"github.com/google/uuid"
)

// operator is the set of maintenance actions the CLI exposes.
type operator interface {
	Migrate(ctx context.Context) ([]string, error)
	Prune(ctx context.Context, userID uuid.UUID) (services.PruneResult, error)
	Sweep(ctx context.Context, userID uuid.UUID) (int, error)
	SetUsage(ctx context.Context, userID uuid.UUID, used int) error
	Close() error
}

type commandContext struct {
	open func(verbose bool) (operator, error)

	verbose bool

	once sync.Once
	op   operator
	err  error
}

func newCommandContext(open func(verbose bool) (operator, error)) *commandContext {
	return &commandContext{open: open}
}

func (c *commandContext) operator() (operator, error) {
	c.once.Do(func() {
		c.op, c.err = c.open(c.verbose)
	})
	return c.op, c.err
}

func (c *commandContext) close() error {
	if c.op == nil {
		return nil
	}
	return c.op.Close()
}

type liveOperator struct {
	db        *supabase.DatabaseClient
	migrator  *database.Migrator
	ledger    *services.Ledger
	retention *services.RetentionService
	log       *logger.Logger
}

func openOperator(verbose bool) (operator, error) {
	cfg, err := config.LoadOperator()
	if err != nil {
		return nil, err
	}

	log := logger.Nop()
	if verbose {
		if log, err = logger.New(cfg.Environment); err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		log = log.WithSalt(cfg.LogHashSalt)
	}

	db, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	sb, err := supabase.NewClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &liveOperator{
		db:        db,
		migrator:  database.NewMigrator(db.DB(), log),
		ledger:    services.NewLedger(db, log),
		retention: services.NewRetentionService(db, db, sb.Storage, cfg.OutputsBucket, cfg.PruneHardDelete, log),
		log:       log,
	}, nil
}

func (o *liveOperator) Migrate(ctx context.Context) ([]string, error) {
	return o.migrator.Run(ctx)
}

func (o *liveOperator) Prune(ctx context.Context, userID uuid.UUID) (services.PruneResult, error) {
	return o.retention.Prune(ctx, userID)
}

func (o *liveOperator) Sweep(ctx context.Context, userID uuid.UUID) (int, error) {
	return o.retention.SweepHardDeletes(ctx, userID)
}

func (o *liveOperator) SetUsage(ctx context.Context, userID uuid.UUID, used int) error {
	return o.ledger.SetUsage(ctx, userID, used)
}

func (o *liveOperator) Close() error {
	o.log.Sync()
	return o.db.Close()
}
