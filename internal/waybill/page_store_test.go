package waybill

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tOgg1/waybill/internal/db"
	"github.com/tOgg1/waybill/internal/events"
	"github.com/tOgg1/waybill/internal/models"
	"github.com/tOgg1/waybill/internal/store"
)

func newStorePage(t *testing.T, route RouteParams) (*Page, *store.WaybillStore, *fakeHost, *db.WaybillRepository) {
	t.Helper()
	ctx := context.Background()

	database, err := db.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	_, err = database.MigrateUp(ctx)
	require.NoError(t, err)

	waybills := db.NewWaybillRepository(database)
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		require.NoError(t, waybills.Create(ctx, &models.Waybill{
			OrderNo:     fmt.Sprintf("SHIP%03d", i),
			WaybillType: models.WaybillTypeShip,
			Status:      models.OrderStatusWaitCollect,
			Company:     "顺丰速运",
			Cancelable:  true,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}))
	}
	for i := 0; i < 3; i++ {
		require.NoError(t, waybills.Create(ctx, &models.Waybill{
			OrderNo:     fmt.Sprintf("RECV%03d", i),
			WaybillType: models.WaybillTypeReceipt,
			Status:      models.OrderStatusWaitPickup,
			Company:     "中通快递",
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}))
	}

	s := store.New(waybills, db.NewPopupRepository(database), store.WithSynchronous(), store.WithPageSize(10))
	host := &fakeHost{}
	page, err := NewPage(route, Options{
		Store:   s,
		Host:    host,
		Storage: db.NewKVRepository(database),
		Bus:     events.NewInMemoryPublisher(),
	})
	require.NoError(t, err)
	unsubscribe := s.Subscribe(page.ObserveStore)
	t.Cleanup(unsubscribe)

	require.NoError(t, page.Mount(ctx))
	t.Cleanup(page.Unmount)
	return page, s, host, waybills
}

func TestStoreBackedCategorySwitch(t *testing.T) {
	page, _, host, _ := newStorePage(t, RouteParams{})

	cards := page.CardList()
	require.Len(t, cards, 3)
	require.Equal(t, "待取件", cards[0].StatusText)
	require.False(t, page.State().HasMore)
	require.Equal(t, 1, host.count("showLoading"))

	page.SelectCategory(1)
	cards = page.CardList()
	require.Len(t, cards, 10)
	require.Equal(t, "SHIP011", cards[0].OrderNo)
	require.True(t, page.State().HasMore)
	require.False(t, page.State().IsLoading)

	page.LoadMore()
	require.Len(t, page.CardList(), 12)
	require.False(t, page.State().HasMore)
}

func TestStoreBackedCancel(t *testing.T) {
	page, s, host, waybills := newStorePage(t, RouteParams{Type: "1"})
	ctx := context.Background()

	cards := page.CardList()
	require.NotEmpty(t, cards)
	target := cards[0]
	require.True(t, target.Cancel)

	page.RequestCancel(target.OrderNo)
	require.True(t, page.State().IsPopOpen())
	require.NoError(t, page.ConfirmCancel(ctx))

	require.False(t, page.State().IsPopOpen())
	require.Equal(t, "已删除", host.toasts[len(host.toasts)-1].Title)
	for _, c := range page.CardList() {
		require.NotEqual(t, target.OrderNo, c.OrderNo)
	}
	require.Equal(t, 11, s.Snapshot().Status.ListCount)

	_, err := waybills.GetByOrderNo(ctx, target.OrderNo)
	require.ErrorIs(t, err, db.ErrWaybillNotFound)

	// A second attempt reports the business error.
	page.RequestCancel(target.OrderNo)
	require.ErrorIs(t, page.ConfirmCancel(ctx), store.ErrOrderNotFound)
	require.Equal(t, "运单不存在", host.toasts[len(host.toasts)-1].Title)
}

func TestStoreBackedGuideUsesKVStamp(t *testing.T) {
	page, _, _, _ := newStorePage(t, RouteParams{})
	// show_guide defaults on for a fresh database.
	require.True(t, page.State().IsRecommendPopupOpen())
}
