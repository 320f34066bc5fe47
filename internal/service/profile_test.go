package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileService_Update(t *testing.T) {
	db := newMemDB()
	svc := NewProfileService(memCustomers{db})
	ctx := context.Background()
	id := db.seedCustomer("An", "an@example.com")

	c, err := svc.Update(ctx, id, " 0905123456 ", "12 Le Loi")
	require.NoError(t, err)
	assert.Equal(t, "0905123456", c.Phone)

	c, err = svc.Update(ctx, id, "", "  ")
	require.NoError(t, err)
	assert.Equal(t, "0905123456", c.Phone)
	assert.Equal(t, "12 Le Loi", c.Address)

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "12 Le Loi", got.Address)
}

func TestProfileService_RequiresCustomer(t *testing.T) {
	svc := NewProfileService(memCustomers{newMemDB()})
	_, err := svc.Get(context.Background(), anonymous)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = svc.Get(context.Background(), adminID)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}
