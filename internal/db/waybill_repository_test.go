package db

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tOgg1/waybill/internal/models"
)

func seedWaybills(t *testing.T, repo *WaybillRepository, wbType models.WaybillType, status models.OrderStatus, n int) {
	t.Helper()
	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		require.NoError(t, repo.Create(context.Background(), &models.Waybill{
			OrderNo:     fmt.Sprintf("%s-%s-%02d", wbType, status, i),
			WaybillType: wbType,
			Status:      status,
			Company:     "SF",
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}))
	}
}

func TestWaybillRepositoryQueryPaginates(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	defer database.Close()
	repo := NewWaybillRepository(database)

	seedWaybills(t, repo, models.WaybillTypeShip, models.OrderStatusCollect, 15)
	seedWaybills(t, repo, models.WaybillTypeShip, models.OrderStatusReceived, 10)
	seedWaybills(t, repo, models.WaybillTypeReceipt, models.OrderStatusReceived, 3)

	page, err := repo.Query(ctx, WaybillQuery{WaybillType: models.WaybillTypeShip, PageNum: 1, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, 25, page.Total)
	require.Len(t, page.Items, 10)

	page, err = repo.Query(ctx, WaybillQuery{WaybillType: models.WaybillTypeShip, PageNum: 3, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 5)

	page, err = repo.Query(ctx, WaybillQuery{
		WaybillType: models.WaybillTypeShip,
		Status:      models.OrderStatusCollect,
		PageNum:     2,
		PageSize:    10,
	})
	require.NoError(t, err)
	require.Equal(t, 15, page.Total)
	require.Len(t, page.Items, 5)
	for _, w := range page.Items {
		require.Equal(t, models.OrderStatusCollect, w.Status)
	}
}

func TestWaybillRepositoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	defer database.Close()
	repo := NewWaybillRepository(database)
	seedWaybills(t, repo, models.WaybillTypeReceipt, models.OrderStatusWaitPickup, 3)

	page, err := repo.Query(ctx, WaybillQuery{WaybillType: models.WaybillTypeReceipt})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	require.Equal(t, "receipt-wait_pickup-02", page.Items[0].OrderNo)
}

func TestWaybillRepositoryCreateRejectsInvalidAndDuplicate(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	defer database.Close()
	repo := NewWaybillRepository(database)

	require.ErrorIs(t, repo.Create(ctx, &models.Waybill{WaybillType: models.WaybillTypeShip, Status: models.OrderStatusCollect}), models.ErrInvalidOrderNo)

	w := &models.Waybill{OrderNo: "ORD1", WaybillType: models.WaybillTypeShip, Status: models.OrderStatusWaitCollect, Cancelable: true}
	require.NoError(t, repo.Create(ctx, w))
	require.NotEmpty(t, w.ID)

	dup := &models.Waybill{OrderNo: "ORD1", WaybillType: models.WaybillTypeShip, Status: models.OrderStatusCollect}
	require.ErrorIs(t, repo.Create(ctx, dup), ErrWaybillExists)
}

func TestWaybillRepositoryGetAndDelete(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	defer database.Close()
	repo := NewWaybillRepository(database)

	w := &models.Waybill{OrderNo: "ORD123", WaybillType: models.WaybillTypeShip, Status: models.OrderStatusWaitCollect, Cancelable: true, ReceiverPhone: "13812345678"}
	require.NoError(t, repo.Create(ctx, w))

	got, err := repo.GetByOrderNo(ctx, "ORD123")
	require.NoError(t, err)
	require.True(t, got.Cancelable)
	require.Equal(t, "13812345678", got.ReceiverPhone)
	require.Equal(t, w.ID, got.ID)

	nos, err := repo.OrderNos(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"ORD123"}, nos)

	require.NoError(t, repo.DeleteByOrderNo(ctx, "ORD123"))
	require.ErrorIs(t, repo.DeleteByOrderNo(ctx, "ORD123"), ErrWaybillNotFound)
	_, err = repo.GetByOrderNo(ctx, "ORD123")
	require.ErrorIs(t, err, ErrWaybillNotFound)
}
