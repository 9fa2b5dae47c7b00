//go:build e2e

package e2e

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"table-booking/cmd/bootstrap"
	"table-booking/cmd/bootstrap/components"
	"table-booking/internal/infra/db"
	"table-booking/internal/pkg/config"
	"table-booking/internal/usecase/shared"
	"table-booking/tests/common/dbtest"

	"github.com/docker/go-connections/nat"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/fx"
)

const (
	pgImage     = "postgres:17"
	pgPort      = nat.Port("5432/tcp")
	pgUser      = "test"
	pgPassword  = "testpass"
	venueZone   = "Europe/Moscow"
	startupWait = 60 * time.Second
)

var (
	pgOnce      sync.Once
	pgContainer testcontainers.Container
	pgStartErr  error
)

// postgresEnv is one per-process database inside the shared container.
type postgresEnv struct {
	Host   string
	Port   nat.Port
	DBName string
}

func (e postgresEnv) dsn(database string) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", pgUser, pgPassword, e.Host, e.Port.Port(), database)
}

func (e postgresEnv) dbConfig() config.DBConfig {
	return config.DBConfig{
		Host:     e.Host,
		Port:     e.Port.Port(),
		User:     pgUser,
		Password: pgPassword,
		DBName:   e.DBName,
		SSLMode:  "disable",
		TimeZone: "UTC",
	}
}

// ------------------------------------------------------------
// コンテナ: プロセス内で一度だけ起動
// ------------------------------------------------------------
func startPostgres(t *testing.T) postgresEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	pgOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
		defer cancel()

		pgContainer, pgStartErr = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        pgImage,
				ExposedPorts: []string{string(pgPort)},
				Env: map[string]string{
					"POSTGRES_USER":     pgUser,
					"POSTGRES_PASSWORD": pgPassword,
					"POSTGRES_DB":       "postgres",
				},
				// データはRAMに載せ、耐久性よりも速度を優先
				Tmpfs: map[string]string{"/var/lib/postgresql/data": "rw,size=256m"},
				Cmd: []string{
					"postgres",
					"-c", "fsync=off",
					"-c", "synchronous_commit=off",
					"-c", "full_page_writes=off",
					"-c", "max_connections=200",
				},
				WaitingFor: wait.ForSQL(pgPort, "pgx", func(host string, port nat.Port) string {
					return postgresEnv{Host: host, Port: port}.dsn("postgres")
				}).WithStartupTimeout(startupWait),
				Labels: map[string]string{"purpose": "e2e-tests"},
			},
			Started: true,
		})
		if pgStartErr != nil {
			return
		}

		// コンテナ自体は ryuk が片付けるが、最初に起動したテストの終了時にも止める
		t.Cleanup(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := pgContainer.Terminate(ctx); err != nil {
				slog.Warn("PostgreSQLコンテナの終了に失敗しました", "error", err.Error())
			}
		})
	})
	require.NoError(t, pgStartErr, "PostgreSQLコンテナの起動に失敗")

	ctx := context.Background()
	port, err := pgContainer.MappedPort(ctx, pgPort)
	require.NoError(t, err, "PostgreSQLコンテナ情報の取得に失敗")
	host, err := pgContainer.Host(ctx)
	require.NoError(t, err, "PostgreSQLコンテナ情報の取得に失敗")

	return postgresEnv{Host: host, Port: port}
}

// ------------------------------------------------------------
// データベース: プロセス毎に作成し、スキーマを適用
// ------------------------------------------------------------
func createDatabase(t *testing.T, env postgresEnv) (*pgxpool.Pool, postgresEnv) {
	t.Helper()
	env.DBName = "booking_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	admin, err := pgxpool.New(ctx, env.dsn("postgres"))
	require.NoError(t, err, "管理者接続に失敗")
	defer admin.Close()

	// 並列実行時は template1 のロック競合で失敗することがあるため再試行
	policy := shared.RetryPolicy{MaxRetries: 4, Base: 250 * time.Millisecond}
	err = shared.RunWithRetry(ctx, policy, func(error) bool { return true }, func(ctx context.Context) error {
		_, err := admin.Exec(ctx, "CREATE DATABASE "+env.DBName)
		return err
	})
	require.NoError(t, err, "テスト用データベースの作成に失敗")

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		admin, err := pgxpool.New(ctx, env.dsn("postgres"))
		if err != nil {
			slog.Warn("クリーンアップ用のデータベース接続に失敗しました", "database", env.DBName, "error", err.Error())
			return
		}
		defer admin.Close()
		if _, err := admin.Exec(ctx, "DROP DATABASE IF EXISTS "+env.DBName+" WITH (FORCE)"); err != nil {
			slog.Warn("テストデータベースの削除に失敗しました", "database", env.DBName, "error", err.Error())
		}
	})

	pool, cleanup, err := db.Connect(env.dbConfig())
	require.NoError(t, err, "データベース接続に失敗")
	// DROP DATABASE より先に閉じる
	t.Cleanup(cleanup)

	require.NoError(t, db.Migrate(ctx, pool), "データベースマイグレーションに失敗")
	return pool, env
}

// SetupPostgres prepares an empty, migrated database without the HTTP stack.
func SetupPostgres(t *testing.T) *pgxpool.Pool {
	pool, _ := createDatabase(t, startPostgres(t))
	return pool
}

// ------------------------------------------------------------
// E2Eテスト用アプリケーション: 本番と同じ fx モジュールを Postgres で起動
// ------------------------------------------------------------
func buildApp(t *testing.T, pool *pgxpool.Pool, env postgresEnv) (*gin.Engine, config.Config) {
	t.Helper()

	cfg := config.NewTestConfig()
	cfg.Storage.Driver = config.DriverPostgres
	// スキーマは createDatabase で適用済み
	cfg.Storage.AutoMigrate = false
	cfg.DB = env.dbConfig()
	cfg.Venue.TimeZone = venueZone

	var router *gin.Engine
	app := fx.New(
		fx.Supply(cfg, pool),
		fx.Provide(
			func() *gin.Engine { return gin.New() },
			bootstrap.NewVenueLocation,
			bootstrap.NewRetryPolicy,
		),
		bootstrap.LoggerModule,
		components.PersistenceModule,
		components.UseCaseModule,
		components.HandlerModule,
		fx.Populate(&router),
		fx.NopLogger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, app.Start(ctx), "fxアプリケーションの起動に失敗しました")

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.Stop(ctx); err != nil {
			slog.Warn("fxアプリケーションの停止に失敗しました", "error", err.Error())
		}
	})
	return router, cfg
}

// ------------------------------------------------------------
// E2Eテストスイートで共通のセットアップ
// ------------------------------------------------------------
type SharedSuite struct {
	suite.Suite
	Router *gin.Engine
	DB     *pgxpool.Pool // 各テストで使う DB 接続
	Config config.Config
}

func (s *SharedSuite) SetupSuite() {
	t := s.T()
	env := startPostgres(t)
	pool, env := createDatabase(t, env)
	s.DB = pool
	s.Router, s.Config = buildApp(t, pool, env)
	require.NotNil(t, s.Router, "Routerのセットアップに失敗")

	slog.Info("E2E環境の準備が完了しました",
		"postgres_host", env.Host,
		"postgres_port", env.Port.Port(),
		"database", env.DBName)
}

func (s *SharedSuite) SetupSubTest() {
	// TRUNCATE で各サブテストを空の状態から始める
	err := dbtest.ResetDB(s.DB)
	require.NoError(s.T(), err, "Failed to reset database state")
}
