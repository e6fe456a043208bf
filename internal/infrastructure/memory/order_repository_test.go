package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/minicart/orderflow/internal/domain/order"
)

type sequenceIDs struct{ n int }

func (s *sequenceIDs) NewID() string {
	s.n++
	return fmt.Sprintf("o-%d", s.n)
}

func TestOrderRepository_Create(t *testing.T) {
	repo := NewOrderRepository(&sequenceIDs{})
	items := []domain.LineItem{{ProductID: "p1", Price: 500, Quantity: 3}}

	created, err := repo.Create(context.Background(), "c1", items)
	require.NoError(t, err)
	assert.Equal(t, "o-1", created.ID)
	assert.Equal(t, "c1", created.CustomerID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
	assert.Equal(t, int64(1500), created.Total())

	t.Run("stored copy is detached", func(t *testing.T) {
		created.LineItems[0].Quantity = 99

		stored, err := repo.Get(context.Background(), "o-1")
		require.NoError(t, err)
		assert.Equal(t, 3, stored.LineItems[0].Quantity)
	})

	t.Run("requires customer id", func(t *testing.T) {
		_, err := repo.Create(context.Background(), "", items)
		assert.ErrorIs(t, err, domain.ErrInvalidCustomer)
	})

	t.Run("requires line items", func(t *testing.T) {
		_, err := repo.Create(context.Background(), "c1", nil)
		assert.ErrorIs(t, err, domain.ErrNoLineItems)
	})
}

func TestOrderRepository_Get(t *testing.T) {
	repo := NewOrderRepository(&sequenceIDs{})

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
