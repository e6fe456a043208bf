package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/minicart/orderflow/internal/domain/customer"
)

func TestCustomerRepository_FindByID(t *testing.T) {
	repo := NewCustomerRepository()
	repo.Seed(&domain.Customer{ID: "c1", Name: "Ada"})

	found, err := repo.FindByID(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", found.Name)

	_, err = repo.FindByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
