//go:build unit

package table_test

import (
	"testing"
	"time"

	"table-booking/internal/domain/table"
	"table-booking/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCase struct {
	name   string
	mutate func(*builder.TableBuilder)
	errIs  error
}

func runCases(t *testing.T, cases []testCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := builder.NewTableBuilder()
			tc.mutate(b)
			got, err := b.BuildDomain()
			if tc.errIs != nil {
				require.ErrorIs(t, err, tc.errIs)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, got)
		})
	}
}

func TestTable(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		actual, err := table.New(5, 8, "  ", time.Now(), "private room", "private room", " ", "tv")
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, actual.ID())
		assert.Equal(t, table.DefaultLocation, actual.Location())
		assert.Equal(t, table.StatusAvailable, actual.Status())
		assert.Nil(t, actual.CurrentReservationID())
		assert.Equal(t, []string{"private room", "tv"}, actual.Features(), "features behave as a set")
		assert.Equal(t, 30*time.Minute, actual.MinDuration())
		assert.Equal(t, 120*time.Minute, actual.MaxDuration())
	})

	t.Run("validation", func(t *testing.T) {
		runCases(t, []testCase{
			{name: "capacity one", mutate: func(b *builder.TableBuilder) { b.WithCapacity(1) }},
			{name: "zero capacity", mutate: func(b *builder.TableBuilder) { b.WithCapacity(0) }, errIs: table.ErrInvalidCapacity},
			{name: "zero number", mutate: func(b *builder.TableBuilder) { b.WithNumber(0) }, errIs: table.ErrInvalidNumber},
			{name: "inverted limits", mutate: func(b *builder.TableBuilder) { b.MinDuration, b.MaxDuration = time.Hour, time.Minute }, errIs: table.ErrInvalidLimits},
		})
	})

	t.Run("reserve occupy release keep holder consistent", func(t *testing.T) {
		tbl := builder.NewTableBuilder().MustBuild()
		holder := uuid.New()

		tbl.Reserve(holder)
		assert.Equal(t, table.StatusReserved, tbl.Status())
		assert.Equal(t, holder, *tbl.CurrentReservationID())

		tbl.Occupy(holder)
		assert.Equal(t, table.StatusOccupied, tbl.Status())
		assert.Equal(t, holder, *tbl.CurrentReservationID())

		tbl.Release()
		assert.True(t, tbl.IsAvailable())
		assert.Nil(t, tbl.CurrentReservationID())
	})

	t.Run("maintenance only from available", func(t *testing.T) {
		tbl := builder.NewTableBuilder().WithStatus(table.StatusReserved).MustBuild()
		assert.ErrorIs(t, tbl.EnterMaintenance(), table.ErrNotAvailable)

		tbl.Release()
		require.NoError(t, tbl.EnterMaintenance())
		assert.False(t, tbl.IsAvailable())
		assert.ErrorIs(t, tbl.EnterMaintenance(), table.ErrNotAvailable)

		require.NoError(t, tbl.LeaveMaintenance())
		assert.ErrorIs(t, tbl.LeaveMaintenance(), table.ErrNotInMaintenance)
	})

	t.Run("fits and duration limits", func(t *testing.T) {
		tbl := builder.NewTableBuilder().WithCapacity(4).MustBuild()
		assert.True(t, tbl.Fits(4))
		assert.False(t, tbl.Fits(5))
		assert.True(t, tbl.AllowsDuration(90*time.Minute))
		assert.True(t, tbl.AllowsDuration(30*time.Minute))
		assert.False(t, tbl.AllowsDuration(29*time.Minute))
		assert.False(t, tbl.AllowsDuration(121*time.Minute))
	})
}

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"available", "reserved", "occupied", "maintenance"} {
		got, err := table.ParseStatus(s)
		require.NoError(t, err)
		assert.Equal(t, s, got.String())
	}
	_, err := table.ParseStatus("broken")
	assert.ErrorIs(t, err, table.ErrInvalidStatus)
}
