package components

import (
	"context"
	"fmt"
	"log/slog"

	"table-booking/internal/infra/gormstore"
	"table-booking/internal/infra/memory"
	"table-booking/internal/infra/notify"
	"table-booking/internal/infra/uow"
	"table-booking/internal/pkg/config"
	"table-booking/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewUnitOfWork,
		fx.Annotate(
			notify.NewLogNotifier,
			fx.As(new(shared.Notifier)),
		),
	),
)

type UnitOfWorkParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	Pool      *pgxpool.Pool `optional:"true"`
	Policy    shared.RetryPolicy
	Logger    *slog.Logger
}

// NewUnitOfWork picks the storage adapter named by STORAGE_DRIVER.
func NewUnitOfWork(p UnitOfWorkParams) (shared.UnitOfWork, error) {
	var u shared.UnitOfWork
	storage := p.Config.Storage
	switch storage.Driver {
	case config.DriverMemory:
		u = memory.NewUoW(p.Logger)
	case config.DriverSQLite, config.DriverMySQL:
		gdb, err := gormstore.Open(storage, p.Logger)
		if err != nil {
			return nil, err
		}
		u = gormstore.NewUoW(gdb, p.Policy, p.Logger)
	case config.DriverPostgres:
		if p.Pool == nil {
			return nil, fmt.Errorf("postgres storage requires a database pool")
		}
		u = uow.NewPostgresUoW(p.Pool, p.Policy, storage.OpTimeout, p.Logger)
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", storage.Driver)
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !storage.AutoMigrate {
				return nil
			}
			p.Logger.Info("applying schema", "driver", storage.Driver)
			return u.Migrate(ctx)
		},
		OnStop: func(_ context.Context) error {
			return u.Close()
		},
	})
	return u, nil
}
