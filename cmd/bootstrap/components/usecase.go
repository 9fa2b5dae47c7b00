package components

import (
	"time"

	"table-booking/internal/pkg/clock"
	"table-booking/internal/pkg/config"
	"table-booking/internal/usecase/commands"
	"table-booking/internal/usecase/queries"
	"table-booking/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	func(cfg config.Config) commands.Settings {
		return commands.Settings{
			OpTimeout:       cfg.Storage.OpTimeout,
			DefaultDuration: cfg.Venue.DefaultDuration,
		}
	},
	func(cfg config.Config, venue *time.Location) queries.Settings {
		return queries.Settings{
			Location:      venue,
			UpcomingLimit: cfg.Venue.UpcomingLimit,
			OpTimeout:     cfg.Storage.OpTimeout,
		}
	},
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewReservationUseCase,
		commands.NewTableUseCase,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewReservationQueries,
		func(u shared.UnitOfWork, cfg config.Config) queries.TableQueries {
			return queries.NewTableQueries(u, cfg.Storage.OpTimeout, cfg.Venue.DefaultDuration)
		},
	),
)
