package bootstrap

import (
	"time"

	"table-booking/internal/pkg/config"
	"table-booking/internal/usecase/shared"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
		NewVenueLocation,
		NewRetryPolicy,
	),
)

// NewVenueLocation is the zone wall-clock booking times are read in.
func NewVenueLocation(cfg config.Config) (*time.Location, error) {
	return cfg.Venue.Location()
}

func NewRetryPolicy(cfg config.Config) shared.RetryPolicy {
	policy := shared.DefaultRetryPolicy()
	if cfg.Storage.MaxRetries >= 0 {
		policy.MaxRetries = cfg.Storage.MaxRetries
	}
	return policy
}
