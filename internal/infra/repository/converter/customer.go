package converter

import (
	"time"

	"table-booking/internal/domain/customer"
	"table-booking/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const CustomerColumns = `id, name, phone, email, external_id, visit_count, notes, created_at`

func ScanCustomer(row pgx.Row) (*customer.Customer, error) {
	var (
		id                uuid.UUID
		name, phone       string
		email, externalID pgtype.Text
		visits            int
		notes             []string
		createdAt         time.Time
	)
	if err := row.Scan(&id, &name, &phone, &email, &externalID, &visits, &notes, &createdAt); err != nil {
		return nil, err
	}
	return customer.Reconstruct(
		id, name, phone,
		pgconv.StringPtrFromPgtype(email), pgconv.StringPtrFromPgtype(externalID),
		visits, notes, createdAt.UTC(),
	), nil
}
