package service_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/linemk/shop-orders/internal/domain/models"
	"github.com/linemk/shop-orders/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const strangerID = int64(2)

func newQueryService() (service.OrderQueryService, *fakeOrderRepo) {
	orders := newFakeOrderRepo()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return service.NewOrderQueryService(logger, orders), orders
}

func TestGetOrderByID_Access(t *testing.T) {
	svc, orders := newQueryService()
	seedOrder(orders, 1, buyerID, models.OrderStatusPending)

	tests := []struct {
		name    string
		actorID int64
		role    string
		wantErr error
	}{
		{"owner", buyerID, models.RoleUser, nil},
		{"admin", 99, models.RoleAdmin, nil},
		{"operator", 98, models.RoleOperator, nil},
		{"stranger", strangerID, models.RoleUser, service.ErrAccessDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.GetOrderByID(context.Background(), 1, tt.actorID, tt.role)
			if tt.wantErr != nil {
				assert.Nil(t, resp)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(1), resp.ID)
			require.Len(t, resp.Items, 2)
			assert.True(t, dec("20").Equal(resp.Items[0].Subtotal))
			assert.True(t, dec("15").Equal(resp.Items[1].Subtotal))
		})
	}
}

func TestGetOrderByID_NotFoundBeforeAccessCheck(t *testing.T) {
	svc, _ := newQueryService()

	_, err := svc.GetOrderByID(context.Background(), 404, strangerID, models.RoleUser)
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.NotErrorIs(t, err, service.ErrAccessDenied)
}

func TestListOrdersForUser_OnlyOwnNewestFirst(t *testing.T) {
	svc, orders := newQueryService()
	seedOrder(orders, 1, buyerID, models.OrderStatusDelivered)
	seedOrder(orders, 2, strangerID, models.OrderStatusPending)
	seedOrder(orders, 3, buyerID, models.OrderStatusPending)

	resp, err := svc.ListOrdersForUser(context.Background(), buyerID)
	require.NoError(t, err)
	require.Len(t, resp, 2)
	assert.Equal(t, int64(3), resp[0].ID)
	assert.Equal(t, int64(1), resp[1].ID)
	for _, o := range resp {
		assert.Equal(t, buyerID, o.UserID)
		assert.Nil(t, o.User, "owner info is only attached for the admin listing")
	}
}

func TestListOrdersForUser_Empty(t *testing.T) {
	svc, _ := newQueryService()

	resp, err := svc.ListOrdersForUser(context.Background(), buyerID)
	require.NoError(t, err)
	assert.NotNil(t, resp, "empty list should serialize as []")
	assert.Empty(t, resp)
}

func TestListAllOrders(t *testing.T) {
	svc, orders := newQueryService()
	seedOrder(orders, 1, buyerID, models.OrderStatusPending)
	seedOrder(orders, 2, strangerID, models.OrderStatusShipped)
	orders.owners[buyerID] = &models.OrderOwner{ID: buyerID, Email: "buyer@example.com", Name: "Buyer"}
	orders.owners[strangerID] = &models.OrderOwner{ID: strangerID, Email: "other@example.com", Name: "Other"}

	t.Run("user denied", func(t *testing.T) {
		resp, err := svc.ListAllOrders(context.Background(), models.RoleUser)
		assert.Nil(t, resp)
		assert.ErrorIs(t, err, service.ErrAccessDenied)
	})

	for _, role := range []string{models.RoleAdmin, models.RoleOperator} {
		t.Run(role, func(t *testing.T) {
			resp, err := svc.ListAllOrders(context.Background(), role)
			require.NoError(t, err)
			require.Len(t, resp, 2)
			assert.Equal(t, int64(2), resp[0].ID)
			require.NotNil(t, resp[0].User)
			assert.Equal(t, "other@example.com", resp[0].User.Email)
			assert.Equal(t, "Buyer", resp[1].User.Name)
		})
	}
}
