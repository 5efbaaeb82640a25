package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tOgg1/waybill/internal/db"
	"github.com/tOgg1/waybill/internal/models"
)

type fixture struct {
	db       *db.DB
	waybills *db.WaybillRepository
	popups   *db.PopupRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	database, err := db.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	_, err = database.MigrateUp(context.Background())
	require.NoError(t, err)

	return &fixture{
		db:       database,
		waybills: db.NewWaybillRepository(database),
		popups:   db.NewPopupRepository(database),
	}
}

func (f *fixture) seed(t *testing.T, wbType models.WaybillType, status models.OrderStatus, n int) []string {
	t.Helper()

	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	var orderNos []string
	for i := 0; i < n; i++ {
		w := &models.Waybill{
			OrderNo:     fmt.Sprintf("%s-%s-%02d", wbType, status, i),
			WaybillType: wbType,
			Status:      status,
			Company:     "顺丰速运",
			Cancelable:  status == models.OrderStatusWaitCollect,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, f.waybills.Create(context.Background(), w))
		orderNos = append(orderNos, w.OrderNo)
	}
	return orderNos
}

func TestQueryOrderListReplacesThenAppends(t *testing.T) {
	f := newFixture(t)
	f.seed(t, models.WaybillTypeShip, models.OrderStatusCollect, 25)
	s := New(f.waybills, f.popups, WithSynchronous(), WithPageSize(10))

	var seen []models.FetchStatus
	unsubscribe := s.Subscribe(func(snap models.StoreSnapshot) { seen = append(seen, snap.Status) })
	defer unsubscribe()

	ctx := context.Background()
	s.QueryOrderList(ctx, models.ListQuery{WaybillType: models.WaybillTypeShip, PageNum: 1})

	snap := s.Snapshot()
	require.Len(t, snap.Orders, 10)
	require.Equal(t, models.FetchStatus{PageNum: 1, PageSize: 10, ListCount: 25}, snap.Status)
	require.True(t, snap.Status.HasMore())
	require.Len(t, seen, 2)
	require.True(t, seen[0].IsLoading)
	require.False(t, seen[1].IsLoading)

	s.QueryOrderList(ctx, models.ListQuery{WaybillType: models.WaybillTypeShip, PageNum: 2})
	s.QueryOrderList(ctx, models.ListQuery{WaybillType: models.WaybillTypeShip, PageNum: 3})

	snap = s.Snapshot()
	require.Len(t, snap.Orders, 25)
	require.Equal(t, 3, snap.Status.PageNum)
	require.False(t, snap.Status.HasMore())

	s.QueryOrderList(ctx, models.ListQuery{WaybillType: models.WaybillTypeShip, PageNum: 1})
	require.Len(t, s.Snapshot().Orders, 10)
}

func TestQueryOrderListFiltersByStatus(t *testing.T) {
	f := newFixture(t)
	f.seed(t, models.WaybillTypeShip, models.OrderStatusCollect, 3)
	f.seed(t, models.WaybillTypeShip, models.OrderStatusWaitCollect, 2)
	f.seed(t, models.WaybillTypeReceipt, models.OrderStatusReceived, 4)
	s := New(f.waybills, f.popups, WithSynchronous())

	s.QueryOrderList(context.Background(), models.ListQuery{
		WaybillType: models.WaybillTypeShip,
		OrderStatus: models.OrderStatusWaitCollect,
		PageNum:     1,
	})
	snap := s.Snapshot()
	require.Len(t, snap.Orders, 2)
	require.Equal(t, 2, snap.Status.ListCount)
	for _, w := range snap.Orders {
		require.Equal(t, models.OrderStatusWaitCollect, w.Status)
	}
}

func TestQueryOrderListDropsStaleResults(t *testing.T) {
	f := newFixture(t)
	f.seed(t, models.WaybillTypeShip, models.OrderStatusCollect, 3)
	f.seed(t, models.WaybillTypeReceipt, models.OrderStatusReceived, 5)
	s := New(f.waybills, f.popups, WithQueryDelay(50*time.Millisecond))

	ctx := context.Background()
	s.QueryOrderList(ctx, models.ListQuery{WaybillType: models.WaybillTypeShip, PageNum: 1})
	s.QueryOrderList(ctx, models.ListQuery{WaybillType: models.WaybillTypeReceipt, PageNum: 1})
	s.Close()

	snap := s.Snapshot()
	require.False(t, snap.Status.IsLoading)
	require.Len(t, snap.Orders, 5)
	for _, w := range snap.Orders {
		require.Equal(t, models.WaybillTypeReceipt, w.WaybillType)
	}
}

func TestQueryOrderListCanceledContextClearsLoading(t *testing.T) {
	f := newFixture(t)
	s := New(f.waybills, f.popups, WithSynchronous(), WithQueryDelay(time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.QueryOrderList(ctx, models.ListQuery{WaybillType: models.WaybillTypeShip, PageNum: 1})

	snap := s.Snapshot()
	require.False(t, snap.Status.IsLoading)
	require.Empty(t, snap.Orders)
}

func TestCancelOrder(t *testing.T) {
	f := newFixture(t)
	waiting := f.seed(t, models.WaybillTypeShip, models.OrderStatusWaitCollect, 1)
	collected := f.seed(t, models.WaybillTypeShip, models.OrderStatusCollect, 1)
	s := New(f.waybills, f.popups, WithSynchronous())
	ctx := context.Background()

	err := s.CancelOrder(ctx, "missing")
	var bizErr *models.BusinessError
	require.True(t, errors.As(err, &bizErr))
	require.Equal(t, "运单不存在", bizErr.Message)
	require.ErrorIs(t, err, ErrOrderNotFound)

	err = s.CancelOrder(ctx, collected[0])
	require.ErrorIs(t, err, ErrNotCancelable)

	require.NoError(t, s.CancelOrder(ctx, waiting[0]))
	_, err = f.waybills.GetByOrderNo(ctx, waiting[0])
	require.ErrorIs(t, err, db.ErrWaybillNotFound)
}

func TestRemoveItemByID(t *testing.T) {
	f := newFixture(t)
	orderNos := f.seed(t, models.WaybillTypeShip, models.OrderStatusWaitCollect, 3)
	s := New(f.waybills, f.popups, WithSynchronous())
	s.QueryOrderList(context.Background(), models.ListQuery{WaybillType: models.WaybillTypeShip, PageNum: 1})
	before := s.Snapshot()

	s.RemoveItemByID(orderNos[1])

	after := s.Snapshot()
	require.Len(t, after.Orders, 2)
	require.Equal(t, 2, after.Status.ListCount)
	require.NotEqual(t, before.OrdersRevision, after.OrdersRevision)
	for _, w := range after.Orders {
		require.NotEqual(t, orderNos[1], w.OrderNo)
	}
	// The earlier snapshot is unaffected.
	require.Len(t, before.Orders, 3)

	s.RemoveItemByID("unknown")
	require.Equal(t, after.OrdersRevision, s.Snapshot().OrdersRevision)
}

func TestPopupInfoAndRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.popups.Create(ctx, &models.HomePopup{Company: "中通快递", Title: "常用快递公司"}))
	now := time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)
	s := New(f.waybills, f.popups, WithSynchronous(), WithClock(func() time.Time { return now }))

	s.GetPopupInfo(ctx)
	snap := s.Snapshot()
	require.Len(t, snap.HomePopups, 1)
	require.True(t, snap.ShowGuide)

	require.NoError(t, s.SetPopupRead(ctx))
	require.Empty(t, s.Snapshot().HomePopups)

	unread, err := f.popups.Unread(ctx)
	require.NoError(t, err)
	require.Empty(t, unread)
}

func TestSubscribeUnsubscribe(t *testing.T) {
	f := newFixture(t)
	s := New(f.waybills, f.popups, WithSynchronous())

	calls := 0
	unsubscribe := s.Subscribe(func(models.StoreSnapshot) { calls++ })
	s.QueryOrderList(context.Background(), models.ListQuery{WaybillType: models.WaybillTypeShip, PageNum: 1})
	require.Equal(t, 2, calls)

	unsubscribe()
	s.QueryOrderList(context.Background(), models.ListQuery{WaybillType: models.WaybillTypeShip, PageNum: 1})
	require.Equal(t, 2, calls)
}

func TestConcurrentChangesDeliverInOrder(t *testing.T) {
	f := newFixture(t)
	f.seed(t, models.WaybillTypeShip, models.OrderStatusCollect, 3)
	ctx := context.Background()
	require.NoError(t, f.popups.Create(ctx, &models.HomePopup{Company: "中通快递", Title: "常用快递公司"}))

	for i := 0; i < 200; i++ {
		s := New(f.waybills, f.popups)

		var (
			mu       sync.Mutex
			active   atomic.Int32
			overlaps atomic.Int32
			seqs     []uint64
			last     models.StoreSnapshot
		)
		s.Subscribe(func(snap models.StoreSnapshot) {
			if active.Add(1) != 1 {
				overlaps.Add(1)
			}
			defer active.Add(-1)

			mu.Lock()
			seqs = append(seqs, snap.Seq)
			last = snap
			mu.Unlock()
		})

		// Same order as a page mount: popup info, then the first page.
		s.GetPopupInfo(ctx)
		s.QueryOrderList(ctx, models.ListQuery{WaybillType: models.WaybillTypeShip, PageNum: 1})
		s.Close()

		require.Zero(t, overlaps.Load(), "listeners overlapped")
		mu.Lock()
		require.Len(t, seqs, 3)
		require.True(t, slices.IsSorted(seqs), "out of order delivery: %v", seqs)
		require.Equal(t, s.Snapshot().Status, last.Status)
		require.False(t, last.Status.IsLoading)
		require.Len(t, last.Orders, 3)
		require.Len(t, last.HomePopups, 1)
		mu.Unlock()
	}
}

func TestChangeFromListenerIsDeliveredAfterIt(t *testing.T) {
	f := newFixture(t)
	f.seed(t, models.WaybillTypeShip, models.OrderStatusCollect, 2)
	s := New(f.waybills, f.popups, WithSynchronous())
	ctx := context.Background()

	var trace []string
	s.Subscribe(func(snap models.StoreSnapshot) {
		trace = append(trace, fmt.Sprintf("begin %d", snap.Seq))
		if snap.Seq == 2 {
			s.RemoveItemByID("ship-collect-00")
		}
		trace = append(trace, fmt.Sprintf("end %d", snap.Seq))
	})

	s.QueryOrderList(ctx, models.ListQuery{WaybillType: models.WaybillTypeShip, PageNum: 1})

	require.Equal(t, []string{"begin 1", "end 1", "begin 2", "end 2", "begin 3", "end 3"}, trace)
	require.Len(t, s.Snapshot().Orders, 1)
}
