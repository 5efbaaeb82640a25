package waybill

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/tOgg1/waybill/internal/models"
)

// Coordinator errors.
var (
	ErrUnknownCategory = errors.New("unknown waybill category")
	ErrUnknownFilter   = errors.New("unknown order filter")
)

type queryKey struct {
	category int
	filter   int
}

// Coordinator derives list queries from the view state and issues them.
type Coordinator struct {
	catalog models.Catalog
	store   ListStore
	logger  zerolog.Logger

	last   queryKey
	issued bool
}

// NewCoordinator creates a Coordinator over store.
func NewCoordinator(catalog models.Catalog, store ListStore, logger zerolog.Logger) *Coordinator {
	return &Coordinator{catalog: catalog, store: store, logger: logger}
}

// Params derives the query for page pageNum of the selected category and
// filter. The "all" filter carries no status.
func (c *Coordinator) Params(s ViewState, pageNum int) (models.ListQuery, error) {
	cat, ok := c.catalog.Category(s.CurrentWaybillType)
	if !ok {
		return models.ListQuery{}, ErrUnknownCategory
	}
	f, ok := c.catalog.Filter(s.CurrentWaybillType, s.CurrentOrderType)
	if !ok {
		return models.ListQuery{}, ErrUnknownFilter
	}
	return models.ListQuery{
		WaybillType: cat.Code,
		OrderStatus: f.Status,
		PageNum:     pageNum,
	}, nil
}

// Sync fetches page 1 when the (category, filter) pair differs from the one
// last fetched. It reports whether a query was issued.
func (c *Coordinator) Sync(ctx context.Context, s ViewState) bool {
	key := queryKey{category: s.CurrentWaybillType, filter: s.CurrentOrderType}
	if c.issued && key == c.last {
		return false
	}
	return c.fetch(ctx, s, 1)
}

// LoadMore fetches the page after status.PageNum. It is ignored while a
// load is in flight or when no further pages exist.
func (c *Coordinator) LoadMore(ctx context.Context, s ViewState, status models.FetchStatus) bool {
	if status.IsLoading || s.IsLoading || !s.HasMore {
		return false
	}
	return c.fetch(ctx, s, status.PageNum+1)
}

// Refresh refetches page 1 unconditionally.
func (c *Coordinator) Refresh(ctx context.Context, s ViewState) bool {
	return c.fetch(ctx, s, 1)
}

func (c *Coordinator) fetch(ctx context.Context, s ViewState, pageNum int) bool {
	q, err := c.Params(s, pageNum)
	if err != nil {
		c.logger.Warn().Err(err).
			Int("waybill_type", s.CurrentWaybillType).
			Int("order_type", s.CurrentOrderType).
			Msg("skipping list query")
		return false
	}
	c.last = queryKey{category: s.CurrentWaybillType, filter: s.CurrentOrderType}
	c.issued = true
	c.store.QueryOrderList(ctx, q)
	return true
}
