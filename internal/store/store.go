// Package store provides the SQLite-backed waybill list store: paginated
// queries with loading status, order cancellation, and home popup info.
package store

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tOgg1/waybill/internal/db"
	"github.com/tOgg1/waybill/internal/logging"
	"github.com/tOgg1/waybill/internal/models"
)

// Business errors returned by CancelOrder. Message is shown to the user.
var (
	ErrOrderNotFound = &models.BusinessError{Code: "order_not_found", Message: "运单不存在"}
	ErrNotCancelable = &models.BusinessError{Code: "not_cancelable", Message: "该运单已揽件，无法取消发货"}
)

// DefaultPageSize is used when no page size is configured.
const DefaultPageSize = 10

// Listener receives a snapshot after every store change.
type Listener func(models.StoreSnapshot)

// Option configures a WaybillStore.
type Option func(*WaybillStore)

// WithPageSize sets the number of waybills per page.
func WithPageSize(n int) Option {
	return func(s *WaybillStore) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithQueryDelay delays every query, simulating a slow backend.
func WithQueryDelay(d time.Duration) Option {
	return func(s *WaybillStore) {
		s.queryDelay = d
	}
}

// WithSynchronous runs queries on the caller's goroutine.
func WithSynchronous() Option {
	return func(s *WaybillStore) {
		s.synchronous = true
	}
}

// WithLogger overrides the store logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *WaybillStore) {
		s.logger = logger
	}
}

// WithClock overrides the time source used for read stamps.
func WithClock(now func() time.Time) Option {
	return func(s *WaybillStore) {
		s.now = now
	}
}

// WaybillStore holds the current list, its fetch status and the home popup
// info. Queries are tagged with a generation number; results of a query that
// was superseded by a newer one are dropped.
//
// Every change is queued as a snapshot while the lock is held and delivered
// to listeners one at a time, in the order the changes were made.
type WaybillStore struct {
	waybills *db.WaybillRepository
	popups   *db.PopupRepository

	pageSize    int
	queryDelay  time.Duration
	synchronous bool
	now         func() time.Time
	logger      zerolog.Logger

	mu         sync.RWMutex
	orders     []models.Waybill
	revision   uint64
	status     models.FetchStatus
	homePopups []models.HomePopup
	showGuide  bool
	generation uint64
	listeners  map[int]Listener
	nextID     int
	closed     bool
	seq        uint64
	pending    []models.StoreSnapshot
	delivering bool

	wg sync.WaitGroup
}

// New creates a WaybillStore over the given repositories.
func New(waybills *db.WaybillRepository, popups *db.PopupRepository, opts ...Option) *WaybillStore {
	s := &WaybillStore{
		waybills:  waybills,
		popups:    popups,
		pageSize:  DefaultPageSize,
		now:       time.Now,
		logger:    logging.Component("store"),
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.status = models.FetchStatus{PageNum: 1, PageSize: s.pageSize}
	return s
}

// Subscribe registers fn for change notifications and returns a function
// that removes it. Listeners run on a goroutine that made a change, never
// two at once. A change made from inside a listener is delivered after the
// listener returns.
func (s *WaybillStore) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Snapshot returns a copy of the current store state.
func (s *WaybillStore) Snapshot() models.StoreSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *WaybillStore) snapshotLocked() models.StoreSnapshot {
	return models.StoreSnapshot{
		Orders:         slices.Clone(s.orders),
		OrdersRevision: s.revision,
		Status:         s.status,
		HomePopups:     slices.Clone(s.homePopups),
		ShowGuide:      s.showGuide,
		Seq:            s.seq,
	}
}

// publishLocked queues a snapshot of the current state. Callers hold mu and
// call flush after releasing it.
func (s *WaybillStore) publishLocked() {
	s.seq++
	s.pending = append(s.pending, s.snapshotLocked())
}

// QueryOrderList starts a paginated query. The status switches to loading
// immediately; page 1 replaces the list and later pages append to it.
func (s *WaybillStore) QueryOrderList(ctx context.Context, q models.ListQuery) {
	pageNum := max(q.PageNum, 1)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.generation++
	gen := s.generation
	s.status = models.FetchStatus{
		IsLoading: true,
		PageNum:   pageNum,
		PageSize:  s.pageSize,
		ListCount: s.status.ListCount,
	}
	s.publishLocked()
	s.mu.Unlock()

	s.logger.Debug().
		Str("waybill_type", string(q.WaybillType)).
		Str("order_status", string(q.OrderStatus)).
		Int("page_num", pageNum).
		Uint64("generation", gen).
		Msg("query order list")
	s.flush()

	s.run(func() { s.finishQuery(ctx, gen, q, pageNum) })
}

func (s *WaybillStore) finishQuery(ctx context.Context, gen uint64, q models.ListQuery, pageNum int) {
	var (
		page *db.WaybillPage
		err  error
	)
	if err = sleepWithContext(ctx, s.queryDelay); err == nil {
		page, err = s.waybills.Query(ctx, db.WaybillQuery{
			WaybillType: q.WaybillType,
			Status:      q.OrderStatus,
			PageNum:     pageNum,
			PageSize:    s.pageSize,
		})
	}

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		s.logger.Debug().Uint64("generation", gen).Msg("dropping stale query result")
		return
	}
	s.status.IsLoading = false
	if err != nil {
		s.publishLocked()
		s.mu.Unlock()
		s.logger.Error().Err(err).Int("page_num", pageNum).Msg("query order list failed")
		s.flush()
		return
	}

	items := make([]models.Waybill, 0, len(page.Items))
	for _, w := range page.Items {
		items = append(items, *w)
	}
	if pageNum == 1 {
		s.orders = items
	} else {
		s.orders = append(slices.Clone(s.orders), items...)
	}
	s.revision++
	s.status.ListCount = page.Total
	s.publishLocked()
	s.mu.Unlock()

	s.flush()
}

// CancelOrder cancels a shipment awaiting collection. It returns
// ErrOrderNotFound or ErrNotCancelable as *models.BusinessError values; the
// list itself is left untouched so the caller can remove the item.
func (s *WaybillStore) CancelOrder(ctx context.Context, orderNo string) error {
	w, err := s.waybills.GetByOrderNo(ctx, orderNo)
	if errors.Is(err, db.ErrWaybillNotFound) {
		return ErrOrderNotFound
	}
	if err != nil {
		return err
	}
	if !w.Cancelable || w.Status != models.OrderStatusWaitCollect {
		return ErrNotCancelable
	}
	if err := s.waybills.DeleteByOrderNo(ctx, orderNo); err != nil {
		if errors.Is(err, db.ErrWaybillNotFound) {
			return ErrOrderNotFound
		}
		return err
	}
	log := logging.WithOrder(orderNo)
	log.Info().Msg("order cancelled")
	return nil
}

// RemoveItemByID drops the waybill whose ID or order number equals id from
// the current list.
func (s *WaybillStore) RemoveItemByID(id string) {
	s.mu.Lock()
	i := slices.IndexFunc(s.orders, func(w models.Waybill) bool {
		return w.ID == id || w.OrderNo == id
	})
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.orders = slices.Delete(slices.Clone(s.orders), i, i+1)
	s.revision++
	if s.status.ListCount > 0 {
		s.status.ListCount--
	}
	s.publishLocked()
	s.mu.Unlock()

	s.flush()
}

// GetPopupInfo loads the unread home popups and the guide flag.
func (s *WaybillStore) GetPopupInfo(ctx context.Context) {
	s.run(func() {
		popups, err := s.popups.Unread(ctx)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to load home popups")
			return
		}
		show, err := s.popups.ShowGuide(ctx)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to load guide flag")
			return
		}

		s.mu.Lock()
		s.homePopups = popups
		s.showGuide = show
		s.publishLocked()
		s.mu.Unlock()

		s.flush()
	})
}

// SetPopupRead marks every home popup read and clears the list.
func (s *WaybillStore) SetPopupRead(ctx context.Context) error {
	if err := s.popups.MarkAllRead(ctx, s.now()); err != nil {
		return err
	}

	s.mu.Lock()
	s.homePopups = nil
	s.publishLocked()
	s.mu.Unlock()

	s.flush()
	return nil
}

// Close stops accepting queries and waits for in-flight ones to finish.
func (s *WaybillStore) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *WaybillStore) run(fn func()) {
	if s.synchronous {
		fn()
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
}

// flush delivers queued snapshots. If another call is already delivering,
// it picks up whatever was queued here.
func (s *WaybillStore) flush() {
	s.mu.Lock()
	if s.delivering {
		s.mu.Unlock()
		return
	}
	s.delivering = true
	for len(s.pending) > 0 {
		snap := s.pending[0]
		s.pending[0] = models.StoreSnapshot{}
		s.pending = s.pending[1:]
		listeners := s.listenersLocked()
		s.mu.Unlock()

		for _, fn := range listeners {
			fn(snap)
		}

		s.mu.Lock()
	}
	s.pending = nil
	s.delivering = false
	s.mu.Unlock()
}

func (s *WaybillStore) listenersLocked() []Listener {
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	listeners := make([]Listener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, s.listeners[id])
	}
	return listeners
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
