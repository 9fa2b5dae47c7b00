package uow

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"table-booking/internal/infra"
	"table-booking/internal/infra/db"
	"table-booking/internal/infra/repository"
	"table-booking/internal/pkg/errs"
	"table-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	errTransactionBegin  = errs.New("failed to begin transaction")
	errTransactionCommit = errs.New("failed to commit transaction")
)

type PostgresUoW struct {
	pool             *pgxpool.Pool
	policy           shared.RetryPolicy
	statementTimeout time.Duration
	logger           *slog.Logger
}

// NewPostgresUoW does not own pool; the caller closes it.
func NewPostgresUoW(pool *pgxpool.Pool, policy shared.RetryPolicy, statementTimeout time.Duration, logger *slog.Logger) *PostgresUoW {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUoW{
		pool:             pool,
		policy:           policy,
		statementTimeout: statementTimeout,
		logger:           logger,
	}
}

// Serializable so two bookings racing for one table cannot both see it free;
// the loser gets 40001 and is re-run.
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return shared.RunWithRetry(ctx, u.policy, infra.IsRetryable, func(ctx context.Context) error {
		return u.runInTxWithOptions(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable}, fn)
	})
}

// Read-only transaction for consistent multi-table snapshots
func (u *PostgresUoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.runInTxWithOptions(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, fn)
}

func (u *PostgresUoW) Migrate(ctx context.Context) error {
	if err := db.Migrate(ctx, u.pool); err != nil {
		return infra.WrapRepoErr(u.logger, infra.KindDBFailure, "failed to apply schema", err)
	}
	return nil
}

func (u *PostgresUoW) Close() error {
	return nil
}

// One attempt: begin, run fn, commit. The rollback runs before returning so
// no connection is held across a retry backoff.
func (u *PostgresUoW) runInTxWithOptions(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, tx shared.Tx) error) error {
	pgxTx, err := u.pool.BeginTx(ctx, options)
	if err != nil {
		return u.classify(errs.Mark(err, errTransactionBegin))
	}

	err = u.applyStatementTimeout(ctx, pgxTx)
	if err == nil {
		err = fn(ctx, &pgTx{dbtx: pgxTx, uow: u})
	}
	if err == nil {
		if err = pgxTx.Commit(ctx); err == nil {
			return nil
		}
		err = errs.Mark(err, errTransactionCommit)
	}

	if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil {
		if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			u.logger.Warn("rollback failed", "error", rollbackErr.Error())
		}
	}
	return u.classify(err)
}

func (u *PostgresUoW) applyStatementTimeout(ctx context.Context, tx pgx.Tx) error {
	if u.statementTimeout <= 0 {
		return nil
	}
	ms := strconv.FormatInt(u.statementTimeout.Milliseconds(), 10)
	if _, err := tx.Exec(ctx, `SELECT set_config('statement_timeout', $1, true)`, ms); err != nil {
		return infra.WrapRepoErr(u.logger, infra.KindDBFailure, "failed to set statement timeout", err)
	}
	return nil
}

// classify tags serialization failures surfacing at COMMIT, which no
// repository saw.
func (u *PostgresUoW) classify(err error) error {
	if err == nil || infra.IsKind(err, infra.KindRetryable) {
		return err
	}
	if repository.IsContention(err) {
		return infra.WrapRepoErr(u.logger, infra.KindRetryable, "transaction aborted", err)
	}
	return err
}

type pgTx struct {
	dbtx repository.DBTX
	uow  *PostgresUoW

	// Lazy-initialized repositories
	tableRepo       shared.TableRepository
	customerRepo    shared.CustomerRepository
	reservationRepo shared.ReservationRepository
}

func (t *pgTx) Tables() shared.TableRepository {
	if t.tableRepo == nil {
		t.tableRepo = repository.NewTableRepository(t.dbtx, t.uow.logger)
	}
	return t.tableRepo
}

func (t *pgTx) Customers() shared.CustomerRepository {
	if t.customerRepo == nil {
		t.customerRepo = repository.NewCustomerRepository(t.dbtx, t.uow.logger)
	}
	return t.customerRepo
}

func (t *pgTx) Reservations() shared.ReservationRepository {
	if t.reservationRepo == nil {
		t.reservationRepo = repository.NewReservationRepository(t.dbtx, t.uow.logger)
	}
	return t.reservationRepo
}

func (t *pgTx) LockTable(ctx context.Context, tableID uuid.UUID) error {
	var id uuid.UUID
	err := t.dbtx.QueryRow(ctx, `SELECT id FROM venue_tables WHERE id = $1 FOR UPDATE`, tableID).Scan(&id)
	if err != nil {
		return repository.WrapPgErr(t.uow.logger, "failed to lock table", err)
	}
	return nil
}
