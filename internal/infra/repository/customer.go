package repository

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"table-booking/internal/domain/customer"
	"table-booking/internal/infra"
	"table-booking/internal/infra/repository/converter"
	"table-booking/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type CustomerRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewCustomerRepository(db DBTX, logger *slog.Logger) *CustomerRepository {
	return &CustomerRepository{db: db, logger: logger}
}

// UpsertByPhone returns the customer owning the phone, creating it when absent.
// An existing customer keeps its name; a missing email or external id is filled in.
func (r *CustomerRepository) UpsertByPhone(ctx context.Context, contact customer.Contact, now time.Time) (*customer.Customer, error) {
	contact.Phone = strings.TrimSpace(contact.Phone)
	if contact.Phone == "" {
		return nil, customer.ErrPhoneRequired
	}

	existing, err := converter.ScanCustomer(r.db.QueryRow(ctx,
		`SELECT `+converter.CustomerColumns+` FROM customers WHERE phone = $1 FOR UPDATE`, contact.Phone))
	switch {
	case err == nil:
		if !existing.Merge(contact) {
			return existing, nil
		}
		if _, err := r.db.Exec(ctx,
			`UPDATE customers SET email = $2, external_id = $3 WHERE id = $1`,
			existing.ID(), pgconv.StringPtrToPgtype(existing.Email()), pgconv.StringPtrToPgtype(existing.ExternalID()),
		); err != nil {
			return nil, WrapPgErr(r.logger, "failed to backfill customer", err)
		}
		return existing, nil
	case !pgconv.IsNoRows(err):
		return nil, WrapPgErr(r.logger, "failed to find customer by phone", err)
	}

	fresh, err := customer.FromContact(contact, now.UTC())
	if err != nil {
		return nil, err
	}

	// a concurrent insert of the same phone merges instead of failing
	c, err := converter.ScanCustomer(r.db.QueryRow(ctx,
		`INSERT INTO customers (id, name, phone, email, external_id, visit_count, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, 0, '{}', $6)
		ON CONFLICT (phone) DO UPDATE
		SET email = COALESCE(customers.email, EXCLUDED.email),
			external_id = COALESCE(customers.external_id, EXCLUDED.external_id)
		RETURNING `+converter.CustomerColumns,
		fresh.ID(), fresh.Name(), fresh.Phone(),
		pgconv.StringPtrToPgtype(fresh.Email()), pgconv.StringPtrToPgtype(fresh.ExternalID()), fresh.CreatedAt(),
	))
	if err != nil {
		return nil, WrapPgErr(r.logger, "failed to upsert customer", err)
	}
	return c, nil
}

func (r *CustomerRepository) Get(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	c, err := converter.ScanCustomer(r.db.QueryRow(ctx,
		`SELECT `+converter.CustomerColumns+` FROM customers WHERE id = $1`, id))
	if err != nil {
		return nil, WrapPgErr(r.logger, "customer not found", err)
	}
	return c, nil
}

func (r *CustomerRepository) IncrementVisits(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE customers SET visit_count = visit_count + 1 WHERE id = $1`, id)
	if err != nil {
		return WrapPgErr(r.logger, "failed to increment visits", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(r.logger, infra.KindNotFound, "customer not found", nil)
	}
	return nil
}
