package models_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linemk/shop-orders/internal/domain/models"
)

func TestEffectivePrice(t *testing.T) {
	p := &models.Product{Price: decimal.RequireFromString("20")}
	assert.True(t, decimal.RequireFromString("20").Equal(p.EffectivePrice()))

	p.DiscountPrice = decimal.NewNullDecimal(decimal.RequireFromString("15"))
	assert.True(t, decimal.RequireFromString("15").Equal(p.EffectivePrice()))

	// нулевая скидка тоже скидка
	p.DiscountPrice = decimal.NewNullDecimal(decimal.Zero)
	assert.True(t, p.EffectivePrice().IsZero())
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	p := &models.Product{
		ID:            2,
		Name:          "B",
		Price:         decimal.RequireFromString("20"),
		DiscountPrice: decimal.NewNullDecimal(decimal.RequireFromString("15")),
		Images:        []string{"b.jpg"},
	}
	snap := p.Snapshot()

	p.Images[0] = "changed.jpg"
	p.DiscountPrice = decimal.NullDecimal{}

	assert.Equal(t, []string{"b.jpg"}, snap.Images)
	require.NotNil(t, snap.DiscountPrice)
	assert.True(t, decimal.RequireFromString("15").Equal(*snap.DiscountPrice))
}

func TestOrderStatusTransitions(t *testing.T) {
	all := []models.OrderStatus{
		models.OrderStatusPending,
		models.OrderStatusProcessing,
		models.OrderStatusShipped,
		models.OrderStatusDelivered,
		models.OrderStatusCancelled,
	}
	allowed := map[models.OrderStatus][]models.OrderStatus{
		models.OrderStatusPending:    {models.OrderStatusProcessing, models.OrderStatusCancelled},
		models.OrderStatusProcessing: {models.OrderStatusShipped, models.OrderStatusCancelled},
		models.OrderStatusShipped:    {models.OrderStatusDelivered, models.OrderStatusCancelled},
	}

	for _, from := range all {
		assert.True(t, from.Valid())
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}

	assert.True(t, models.OrderStatusDelivered.Terminal())
	assert.True(t, models.OrderStatusCancelled.Terminal())
	assert.False(t, models.OrderStatusShipped.Terminal())
	assert.False(t, models.OrderStatus("pending").Valid())
}

func TestOrderItemSubtotal(t *testing.T) {
	item := &models.OrderItem{Quantity: 3, PriceAtOrder: decimal.RequireFromString("9.99")}
	assert.True(t, decimal.RequireFromString("29.97").Equal(item.Subtotal()))
}

func TestIsPrivilegedRole(t *testing.T) {
	assert.True(t, models.IsPrivilegedRole(models.RoleAdmin))
	assert.True(t, models.IsPrivilegedRole(models.RoleOperator))
	assert.False(t, models.IsPrivilegedRole(models.RoleUser))
	assert.False(t, models.IsPrivilegedRole(""))
}
