package gormstore

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"table-booking/internal/infra"
	"table-booking/internal/usecase/shared"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	mysqlErrDeadlock        = 1213
	mysqlErrLockWaitTimeout = 1205
)

type UoW struct {
	db     *gorm.DB
	policy shared.RetryPolicy
	logger *slog.Logger
}

func NewUoW(db *gorm.DB, policy shared.RetryPolicy, logger *slog.Logger) *UoW {
	if logger == nil {
		logger = slog.Default()
	}
	return &UoW{db: db, policy: policy, logger: logger}
}

// Within runs fn in one transaction, re-running it when the database reports
// lock contention. MySQL runs it SERIALIZABLE; sqlite takes the write lock up
// front (BEGIN IMMEDIATE), which is already serial.
func (u *UoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return shared.RunWithRetry(ctx, u.policy, infra.IsRetryable, func(ctx context.Context) error {
		err := u.db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
			return fn(ctx, &gormTx{db: gtx, logger: u.logger})
		}, u.txOptions(false))
		return u.classify(err)
	})
}

func (u *UoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	err := u.db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
		return fn(ctx, &gormTx{db: gtx, logger: u.logger, readOnly: true})
	}, u.txOptions(true))
	return u.classify(err)
}

func (u *UoW) Migrate(ctx context.Context) error {
	if err := u.db.WithContext(ctx).AutoMigrate(allModels()...); err != nil {
		return infra.WrapRepoErr(u.logger, infra.KindDBFailure, "auto-migrate", err)
	}
	return nil
}

func (u *UoW) Close() error {
	sqlDB, err := u.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (u *UoW) txOptions(readOnly bool) *sql.TxOptions {
	if u.db.Dialector.Name() != dialectMySQL {
		return nil
	}
	if readOnly {
		return &sql.TxOptions{ReadOnly: true}
	}
	return &sql.TxOptions{Isolation: sql.LevelSerializable}
}

// classify tags contention surfacing at BEGIN or COMMIT, which no repository saw.
func (u *UoW) classify(err error) error {
	if err == nil || infra.IsKind(err, infra.KindRetryable) {
		return err
	}
	if isContention(err) {
		return infra.WrapRepoErr(u.logger, infra.KindRetryable, "transaction aborted", err)
	}
	return err
}

func isContention(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlErrDeadlock || myErr.Number == mysqlErrLockWaitTimeout
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked
	}
	return false
}

type gormTx struct {
	db       *gorm.DB
	logger   *slog.Logger
	readOnly bool
}

func (t *gormTx) Tables() shared.TableRepository {
	return &tableRepository{tx: t}
}

func (t *gormTx) Customers() shared.CustomerRepository {
	return &customerRepository{tx: t}
}

func (t *gormTx) Reservations() shared.ReservationRepository {
	return &reservationRepository{tx: t}
}

// LockTable takes a row lock on MySQL. sqlite drops the locking clause; its
// immediate transaction already holds the database write lock.
func (t *gormTx) LockTable(ctx context.Context, tableID uuid.UUID) error {
	var m tableModel
	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", tableID.String()).
		Take(&m).Error
	if err != nil {
		return t.wrap("lock table", err)
	}
	return nil
}

func (t *gormTx) writable() error {
	if t.readOnly {
		return infra.WrapRepoErr(t.logger, infra.KindDBFailure, "write in read-only transaction", nil)
	}
	return nil
}

func (t *gormTx) wrap(msg string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return infra.WrapRepoErr(t.logger, infra.KindNotFound, msg, err)
	case isContention(err):
		return infra.WrapRepoErr(t.logger, infra.KindRetryable, msg, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return infra.WrapRepoErr(t.logger, infra.KindDuplicateKey, msg, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return infra.WrapRepoErr(t.logger, infra.KindForeignKeyViolated, msg, err)
	default:
		return infra.WrapRepoErr(t.logger, infra.KindDBFailure, msg, err)
	}
}
