// Package export renders reservations for spreadsheet tools.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// Header is the fixed first line of every export.
var Header = []string{"ID", "Date", "Time", "Guests", "Name", "Phone", "Status", "Source", "Comment"}

const shortIDLen = 8

type Row struct {
	ID        uuid.UUID
	Start     time.Time
	PartySize int
	Name      string
	Phone     string
	Status    string
	Source    string
	Comment   string
}

// WriteCSV writes rows in the given order with dates rendered in loc.
func WriteCSV(w io.Writer, loc *time.Location, rows []Row) error {
	if loc == nil {
		loc = time.UTC
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return errors.Wrap(err, "write header")
	}
	for _, r := range rows {
		start := r.Start.In(loc)
		record := []string{
			r.ID.String()[:shortIDLen],
			start.Format("2006-01-02"),
			start.Format("15:04"),
			strconv.Itoa(r.PartySize),
			r.Name,
			r.Phone,
			r.Status,
			r.Source,
			r.Comment,
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrapf(err, "write row %s", r.ID)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush")
}
