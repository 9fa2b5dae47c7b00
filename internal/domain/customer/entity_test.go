//go:build unit

package customer_test

import (
	"testing"
	"time"

	"table-booking/internal/domain/customer"
	"table-booking/tests/common/builder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomer(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		c, err := builder.NewCustomerBuilder().WithName("  Ivan ").BuildDomain()
		require.NoError(t, err)

		assert.Equal(t, "Ivan", c.Name())
		assert.Equal(t, 0, c.VisitCount())
		assert.Nil(t, c.ExternalID())
		assert.Empty(t, c.Notes())
	})

	t.Run("phone and name are required", func(t *testing.T) {
		_, err := builder.NewCustomerBuilder().WithPhone("   ").BuildDomain()
		assert.ErrorIs(t, err, customer.ErrPhoneRequired)

		_, err = builder.NewCustomerBuilder().WithName("").BuildDomain()
		assert.ErrorIs(t, err, customer.ErrNameRequired)
	})

	t.Run("external id is only backfilled when missing", func(t *testing.T) {
		c, err := builder.NewCustomerBuilder().BuildDomain()
		require.NoError(t, err)

		empty := " "
		assert.False(t, c.BackfillExternalID(&empty))
		assert.False(t, c.BackfillExternalID(nil))

		first, second := "tg-1", "tg-2"
		assert.True(t, c.BackfillExternalID(&first))
		assert.False(t, c.BackfillExternalID(&second))
		assert.Equal(t, "tg-1", *c.ExternalID())
	})

	t.Run("merge fills missing contact details only", func(t *testing.T) {
		c, err := builder.NewCustomerBuilder().WithName("Olga").BuildDomain()
		require.NoError(t, err)

		email, ext := "olga@example.com", "tg-7"
		changed := c.Merge(customer.Contact{Name: "Someone Else", Email: &email, ExternalID: &ext})
		assert.True(t, changed)
		assert.Equal(t, "Olga", c.Name())
		require.NotNil(t, c.Email())
		assert.Equal(t, "olga@example.com", *c.Email())

		other := "new@example.com"
		assert.False(t, c.Merge(customer.Contact{Email: &other}))
		assert.Equal(t, "olga@example.com", *c.Email())
	})

	t.Run("from contact keeps email and stamps the given time", func(t *testing.T) {
		now := time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)
		email := " guest@example.com "

		c, err := customer.FromContact(customer.Contact{Name: "Guest", Phone: "+7000", Email: &email}, now)
		require.NoError(t, err)

		require.NotNil(t, c.Email())
		assert.Equal(t, "guest@example.com", *c.Email())
		assert.Equal(t, now, c.CreatedAt())
	})

	t.Run("visits accumulate", func(t *testing.T) {
		c, err := builder.NewCustomerBuilder().BuildDomain()
		require.NoError(t, err)

		c.AddVisit()
		c.AddVisit()

		assert.Equal(t, 2, c.VisitCount())
	})
}
