package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"table-booking/cmd/bootstrap"
	"table-booking/internal/handler/middleware"
	"table-booking/internal/pkg/config"
	"table-booking/internal/usecase/commands"
	"table-booking/internal/usecase/queries"
	"table-booking/internal/usecase/shared"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

// runOnce starts the core graph, hands the populated targets to fn and stops.
func runOnce(ctx context.Context, fn func(ctx context.Context) error, opts ...fx.Option) error {
	base := []fx.Option{
		bootstrap.CoreModule,
		fx.NopLogger,
		fx.Decorate(func(cfg config.Config) *slog.Logger {
			return middleware.NewLoggerTo(os.Stderr, cfg.Log).GetSlogLogger()
		}),
	}
	app := fx.New(append(base, opts...)...)
	if err := app.Start(ctx); err != nil {
		return err
	}
	runErr := fn(ctx)
	if err := app.Stop(context.Background()); err != nil && runErr == nil {
		return err
	}
	return runErr
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Install the default floor plan when no table exists",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var tables commands.TableCommands
			return runOnce(cmd.Context(), func(ctx context.Context) error {
				n, err := tables.SeedDefaultTables(ctx)
				if err != nil {
					return err
				}
				if n == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "tables already present, nothing seeded")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d tables\n", n)
				return nil
			}, fx.Populate(&tables))
		},
	}
}

func newExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every reservation as CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var q queries.ReservationQueries
			return runOnce(cmd.Context(), func(ctx context.Context) error {
				var w io.Writer = cmd.OutOrStdout()
				if out != "" {
					f, err := os.Create(out)
					if err != nil {
						return fmt.Errorf("create %s: %w", out, err)
					}
					defer f.Close()
					w = f
				}
				return q.Export(ctx, w)
			}, fx.Populate(&q))
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the storage schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var u shared.UnitOfWork
			return runOnce(cmd.Context(), func(ctx context.Context) error {
				if err := u.Migrate(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
				return nil
			},
				fx.Decorate(func(cfg config.Config) config.Config {
					cfg.Storage.AutoMigrate = false
					return cfg
				}),
				fx.Populate(&u),
			)
		},
	}
}
