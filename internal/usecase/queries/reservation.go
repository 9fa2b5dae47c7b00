package queries

import (
	"context"
	"io"
	"math"
	"time"

	"table-booking/internal/domain/customer"
	"table-booking/internal/domain/reservation"
	"table-booking/internal/domain/table"
	"table-booking/internal/infra"
	"table-booking/internal/infra/export"
	"table-booking/internal/pkg/clock"
	"table-booking/internal/pkg/errs"
	"table-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type ReservationQueries interface {
	Get(ctx context.Context, id uuid.UUID) (*ReservationView, error)
	Active(ctx context.Context) ([]*ReservationView, error)
	// Today lists active reservations starting on the venue's current local date.
	Today(ctx context.Context) ([]*ReservationView, error)
	Upcoming(ctx context.Context, limit int) ([]*ReservationView, error)
	ByCustomer(ctx context.Context, customerID uuid.UUID) ([]*ReservationView, error)
	ByTable(ctx context.Context, tableID uuid.UUID, day *time.Time) ([]*ReservationView, error)
	Stats(ctx context.Context) (*Stats, error)
	Export(ctx context.Context, w io.Writer) error
}

type reservationQueriesImpl struct {
	uow      shared.UnitOfWork
	clock    clock.Clock
	settings Settings
}

func NewReservationQueries(uow shared.UnitOfWork, clk clock.Clock, settings Settings) ReservationQueries {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if settings.UpcomingLimit <= 0 {
		settings.UpcomingLimit = defaultUpcomingLimit
	}
	return &reservationQueriesImpl{uow: uow, clock: clk, settings: settings}
}

func (q *reservationQueriesImpl) Get(ctx context.Context, id uuid.UUID) (*ReservationView, error) {
	var view *ReservationView
	err := q.read(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := tx.Reservations().Get(ctx, id)
		if err != nil {
			return classify(err, errs.ErrReservationNotFound)
		}
		views, err := newViewBuilder(tx, q.clock.Now()).build(ctx, []*reservation.Reservation{res})
		if err != nil {
			return err
		}
		view = views[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (q *reservationQueriesImpl) Active(ctx context.Context) ([]*ReservationView, error) {
	return q.list(ctx, func(ctx context.Context, tx shared.Tx) ([]*reservation.Reservation, error) {
		return tx.Reservations().ListActive(ctx)
	})
}

func (q *reservationQueriesImpl) Today(ctx context.Context) ([]*ReservationView, error) {
	dayStart, dayEnd := clock.DayBounds(q.clock.Now(), q.settings.Location)
	return q.list(ctx, func(ctx context.Context, tx shared.Tx) ([]*reservation.Reservation, error) {
		active, err := tx.Reservations().ListActive(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]*reservation.Reservation, 0, len(active))
		for _, r := range active {
			if !r.StartTime().Before(dayStart) && r.StartTime().Before(dayEnd) {
				out = append(out, r)
			}
		}
		return out, nil
	})
}

func (q *reservationQueriesImpl) Upcoming(ctx context.Context, limit int) ([]*ReservationView, error) {
	if limit <= 0 {
		limit = q.settings.UpcomingLimit
	}
	now := q.clock.Now()
	return q.list(ctx, func(ctx context.Context, tx shared.Tx) ([]*reservation.Reservation, error) {
		return tx.Reservations().ListUpcoming(ctx, now, limit)
	})
}

func (q *reservationQueriesImpl) ByCustomer(ctx context.Context, customerID uuid.UUID) ([]*ReservationView, error) {
	return q.list(ctx, func(ctx context.Context, tx shared.Tx) ([]*reservation.Reservation, error) {
		if _, err := tx.Customers().Get(ctx, customerID); err != nil {
			return nil, classify(err, errs.ErrCustomerNotFound)
		}
		return tx.Reservations().ListByCustomer(ctx, customerID)
	})
}

func (q *reservationQueriesImpl) ByTable(ctx context.Context, tableID uuid.UUID, day *time.Time) ([]*ReservationView, error) {
	return q.list(ctx, func(ctx context.Context, tx shared.Tx) ([]*reservation.Reservation, error) {
		if _, err := tx.Tables().Get(ctx, tableID); err != nil {
			return nil, classify(err, errs.ErrTableNotFound)
		}
		return tx.Reservations().ListByTable(ctx, tableID, day)
	})
}

func (q *reservationQueriesImpl) Stats(ctx context.Context) (*Stats, error) {
	var counts shared.ReservationCounts
	err := q.read(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		counts, err = tx.Reservations().Stats(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &Stats{
		Total:          counts.Total,
		Completed:      counts.Completed,
		Cancelled:      counts.Cancelled,
		NoShow:         counts.NoShow,
		CompletionRate: completionRate(counts.Completed, counts.Total),
	}, nil
}

// Export writes every reservation as CSV, most recent first.
func (q *reservationQueriesImpl) Export(ctx context.Context, w io.Writer) error {
	views, err := q.list(ctx, func(ctx context.Context, tx shared.Tx) ([]*reservation.Reservation, error) {
		return tx.Reservations().ListAll(ctx)
	})
	if err != nil {
		return err
	}

	rows := make([]export.Row, 0, len(views))
	for _, v := range views {
		comment := ""
		if len(v.SpecialRequests) > 0 {
			comment = v.SpecialRequests[0]
		}
		rows = append(rows, export.Row{
			ID:        v.ID,
			Start:     v.Start,
			PartySize: v.PartySize,
			Name:      v.CustomerName,
			Phone:     v.CustomerPhone,
			Status:    v.Status,
			Source:    v.Source,
			Comment:   comment,
		})
	}
	if err := export.WriteCSV(w, q.settings.Location, rows); err != nil {
		return errs.Wrap(err, "failed to write reservations export")
	}
	return nil
}

func (q *reservationQueriesImpl) list(
	ctx context.Context,
	load func(ctx context.Context, tx shared.Tx) ([]*reservation.Reservation, error),
) ([]*ReservationView, error) {
	var views []*ReservationView
	err := q.read(ctx, func(ctx context.Context, tx shared.Tx) error {
		rs, err := load(ctx, tx)
		if err != nil {
			return err
		}
		views, err = newViewBuilder(tx, q.clock.Now()).build(ctx, rs)
		return err
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

func (q *reservationQueriesImpl) read(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return readOnly(ctx, q.uow, q.settings.OpTimeout, fn)
}

func readOnly(ctx context.Context, uow shared.UnitOfWork, timeout time.Duration, fn func(ctx context.Context, tx shared.Tx) error) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return classify(uow.WithinReadOnly(ctx, fn), errs.ErrNotFound)
}

func classify(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errs.Class(err) != nil:
		return err
	case infra.IsKind(err, infra.KindNotFound):
		return errs.Mark(err, notFound)
	default:
		return errs.Mark(err, errs.ErrStorage)
	}
}

func completionRate(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(completed)/float64(total)*100*100) / 100
}

// viewBuilder resolves customers and tables once per read.
type viewBuilder struct {
	tx        shared.Tx
	now       time.Time
	customers map[uuid.UUID]*customer.Customer
	tables    map[uuid.UUID]*table.Table
}

func newViewBuilder(tx shared.Tx, now time.Time) *viewBuilder {
	return &viewBuilder{
		tx:        tx,
		now:       now,
		customers: make(map[uuid.UUID]*customer.Customer),
		tables:    make(map[uuid.UUID]*table.Table),
	}
}

func (b *viewBuilder) build(ctx context.Context, rs []*reservation.Reservation) ([]*ReservationView, error) {
	out := make([]*ReservationView, 0, len(rs))
	for _, r := range rs {
		c, err := b.customer(ctx, r.CustomerID())
		if err != nil {
			return nil, err
		}
		v := &ReservationView{
			ID:                 r.ID(),
			CustomerID:         r.CustomerID(),
			CustomerName:       c.Name(),
			CustomerPhone:      c.Phone(),
			TableID:            r.TableID(),
			Start:              r.StartTime(),
			End:                r.EndTime(),
			DurationMinutes:    int(r.Duration() / time.Minute),
			PartySize:          r.PartySize(),
			Status:             r.Status().String(),
			Source:             r.Source().String(),
			SpecialRequests:    r.SpecialRequests(),
			Overdue:            r.IsOverdue(b.now),
			CreatedAt:          r.CreatedAt(),
			ConfirmedAt:        r.ConfirmedAt(),
			SeatedAt:           r.SeatedAt(),
			CompletedAt:        r.CompletedAt(),
			CancelledAt:        r.CancelledAt(),
			NoShowAt:           r.NoShowAt(),
			CancellationReason: r.CancellationReason(),
		}
		if r.TableID() != nil {
			t, err := b.table(ctx, *r.TableID())
			if err != nil {
				return nil, err
			}
			n := t.Number()
			v.TableNumber = &n
		}
		out = append(out, v)
	}
	return out, nil
}

func (b *viewBuilder) customer(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	if c, ok := b.customers[id]; ok {
		return c, nil
	}
	c, err := b.tx.Customers().Get(ctx, id)
	if err != nil {
		return nil, classify(err, errs.ErrCustomerNotFound)
	}
	b.customers[id] = c
	return c, nil
}

func (b *viewBuilder) table(ctx context.Context, id uuid.UUID) (*table.Table, error) {
	if t, ok := b.tables[id]; ok {
		return t, nil
	}
	t, err := b.tx.Tables().Get(ctx, id)
	if err != nil {
		return nil, classify(err, errs.ErrTableNotFound)
	}
	b.tables[id] = t
	return t, nil
}
