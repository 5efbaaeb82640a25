package waybill

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tOgg1/waybill/internal/events"
	"github.com/tOgg1/waybill/internal/logging"
	"github.com/tOgg1/waybill/internal/models"
)

// Defaults applied by NewPage.
const (
	DefaultPageID          = "waybill"
	DefaultGuideStorageKey = "waybill.guide.lastday"
	DefaultToastDuration   = time.Second
)

// Page errors.
var (
	ErrNilStore       = errors.New("page requires a list store")
	ErrNilHost        = errors.New("page requires a host")
	ErrNilStorage     = errors.New("page requires storage")
	ErrAlreadyMounted = errors.New("page already mounted")
)

// Options configures a Page.
type Options struct {
	Catalog models.Catalog
	Store   ListStore
	Host    Host
	Storage Storage
	// Bus is optional; without it the page has no cross-page signals.
	Bus events.Bus

	PageID          string
	GuideStorageKey string
	ToastDuration   time.Duration
	Clock           func() time.Time
	Logger          *zerolog.Logger
}

// Page owns the view state. Every input is applied through a FIFO queue, so
// an action dispatched while another is being applied runs after it.
//
// A Page is not safe for concurrent use; drive it from one goroutine.
type Page struct {
	opts   Options
	logger zerolog.Logger
	coord  *Coordinator
	sync   *Synchronizer

	state    ViewState
	snapshot models.StoreSnapshot
	system   SystemInfo

	ctx     context.Context
	cancel  context.CancelFunc
	mounted bool

	queue   []func()
	running bool

	observers []func(prev, next ViewState)

	cards      []Card
	cardsRev   uint64
	cardsValid bool
}

// NewPage builds a page for the given route. Indexes outside the catalog
// fall back to 0.
func NewPage(route RouteParams, opts Options) (*Page, error) {
	if opts.Store == nil {
		return nil, ErrNilStore
	}
	if opts.Host == nil {
		return nil, ErrNilHost
	}
	if opts.Storage == nil {
		return nil, ErrNilStorage
	}
	if len(opts.Catalog.Categories) == 0 {
		opts.Catalog = models.DefaultCatalog()
	}
	if err := opts.Catalog.Validate(); err != nil {
		return nil, err
	}
	if opts.PageID == "" {
		opts.PageID = DefaultPageID
	}
	if opts.GuideStorageKey == "" {
		opts.GuideStorageKey = DefaultGuideStorageKey
	}
	if opts.ToastDuration <= 0 {
		opts.ToastDuration = DefaultToastDuration
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	logger := logging.WithPage(opts.PageID)
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	state := NewViewState(route)
	if _, ok := opts.Catalog.Category(state.CurrentWaybillType); !ok {
		state.CurrentWaybillType = 0
	}
	if _, ok := opts.Catalog.Filter(state.CurrentWaybillType, state.CurrentOrderType); !ok {
		state.CurrentOrderType = 0
	}

	return &Page{
		opts:   opts,
		logger: logger,
		coord:  NewCoordinator(opts.Catalog, opts.Store, logger),
		sync:   newSynchronizer(opts, logger),
		state:  state,
		ctx:    context.Background(),
	}, nil
}

// State returns the current view state.
func (p *Page) State() ViewState { return p.state }

// Snapshot returns the last store snapshot the page observed.
func (p *Page) Snapshot() models.StoreSnapshot { return p.snapshot }

// SystemInfo returns the display info captured at mount.
func (p *Page) SystemInfo() SystemInfo { return p.system }

// Catalog returns the page vocabulary.
func (p *Page) Catalog() models.Catalog { return p.opts.Catalog }

// ID returns the page id used on the bus.
func (p *Page) ID() string { return p.opts.PageID }

// OnChange registers fn to run after every transition that changes state.
func (p *Page) OnChange(fn func(prev, next ViewState)) {
	p.observers = append(p.observers, fn)
}

// Dispatch applies a to the state.
func (p *Page) Dispatch(a Action) {
	p.run(func() { p.apply(a) })
}

func (p *Page) run(fn func()) {
	p.queue = append(p.queue, fn)
	if p.running {
		return
	}
	p.running = true
	defer func() { p.running = false }()

	for len(p.queue) > 0 {
		next := p.queue[0]
		p.queue = p.queue[1:]
		next()
	}
}

func (p *Page) apply(a Action) {
	prev := p.state
	next := Reduce(prev, a)
	p.state = next

	if patch, ok := a.(ListUpdated); ok {
		p.logger.Debug().Str("action", Kind(a)).Stringer("patch", patch.Patch).Msg("dispatch")
	} else {
		p.logger.Debug().Str("action", Kind(a)).Str("popup", next.Popup.String()).Msg("dispatch")
	}

	if prev == next {
		return
	}
	p.sync.StateChanged(p.ctx, prev, next)
	for _, fn := range p.observers {
		fn(prev, next)
	}
	if p.mounted && (prev.CurrentWaybillType != next.CurrentWaybillType || prev.CurrentOrderType != next.CurrentOrderType) {
		p.coord.Sync(p.ctx, next)
	}
}

// Mount starts the page: it captures system info, subscribes to the bus,
// requests popup info and issues the initial page-1 query.
func (p *Page) Mount(ctx context.Context) error {
	if p.mounted {
		return ErrAlreadyMounted
	}
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.system = p.sync.Mount(p.ctx)
	if err := p.sync.Subscribe(p); err != nil {
		p.cancel()
		return err
	}
	p.mounted = true

	p.opts.Store.GetPopupInfo(p.ctx)
	p.ObserveStore(p.opts.Store.Snapshot())
	p.run(func() { p.coord.Sync(p.ctx, p.state) })
	return nil
}

// Unmount unsubscribes from the bus and cancels in-flight store work.
func (p *Page) Unmount() {
	if !p.mounted {
		return
	}
	p.sync.Unsubscribe()
	p.cancel()
	p.mounted = false
	p.opts.Host.HideLoading()
}

// NotifyShown publishes this page's page.show event.
func (p *Page) NotifyShown(ctx context.Context) {
	p.publish(ctx, models.EventTypePageShown)
}

// NotifyHidden publishes this page's page.hide event.
func (p *Page) NotifyHidden(ctx context.Context) {
	p.publish(ctx, models.EventTypePageHidden)
}

func (p *Page) publish(ctx context.Context, t models.EventType) {
	if p.opts.Bus == nil {
		return
	}
	p.opts.Bus.Publish(ctx, &models.Event{Type: t, PageID: p.opts.PageID})
}

// ObserveStore feeds a store snapshot into the page.
func (p *Page) ObserveStore(snap models.StoreSnapshot) {
	p.run(func() {
		p.snapshot = snap
		p.sync.Observe(p.ctx, p, snap)
	})
}

// CardList returns the card projection of the current orders. It is
// recomputed only when the store replaces the order list.
func (p *Page) CardList() []Card {
	if p.cardsValid && p.cardsRev == p.snapshot.OrdersRevision {
		return p.cards
	}
	p.cards = BuildCards(p.snapshot.Orders, p.opts.Catalog)
	p.cardsRev = p.snapshot.OrdersRevision
	p.cardsValid = true
	return p.cards
}

// SelectCategory switches to category i. Selecting the current category or
// an unknown index does nothing.
func (p *Page) SelectCategory(i int) {
	p.run(func() {
		if i == p.state.CurrentWaybillType {
			return
		}
		if _, ok := p.opts.Catalog.Category(i); !ok {
			p.logger.Warn().Int("waybill_type", i).Msg("ignoring unknown category")
			return
		}
		p.apply(WaybillTypeChanged{Index: i})
	})
}

// SelectFilter switches to filter j of the current category.
func (p *Page) SelectFilter(j int) {
	p.run(func() {
		if j == p.state.CurrentOrderType {
			return
		}
		if _, ok := p.opts.Catalog.Filter(p.state.CurrentWaybillType, j); !ok {
			p.logger.Warn().Int("order_type", j).Msg("ignoring unknown filter")
			return
		}
		p.apply(OrderTypeSet{Index: j})
	})
}

// Refresh marks a pull-to-refresh and refetches page 1.
func (p *Page) Refresh() {
	p.run(func() {
		p.apply(RefreshingSet{Refreshing: true})
		if !p.coord.Refresh(p.ctx, p.state) {
			p.apply(RefreshingSet{Refreshing: false})
		}
	})
}

// LoadMore fetches the next page when one exists and nothing is loading.
func (p *Page) LoadMore() {
	p.run(func() {
		p.coord.LoadMore(p.ctx, p.state, p.snapshot.Status)
	})
}

// RequestCancel opens the cancel confirmation for orderNo.
func (p *Page) RequestCancel(orderNo string) {
	p.Dispatch(CancelModalShown{OrderNo: orderNo})
}

// DismissCancel closes the cancel confirmation without cancelling.
func (p *Page) DismissCancel() {
	p.Dispatch(PopOpenSet{Open: false})
}

// BeginCancel closes the confirmation and returns the order to cancel.
func (p *Page) BeginCancel() string {
	orderNo := p.state.CancelOrderNo
	p.Dispatch(PopOpenSet{Open: false})
	return orderNo
}

// CompleteCancel reports the outcome of cancelling orderNo. Business errors
// are shown verbatim; success removes the card.
func (p *Page) CompleteCancel(orderNo string, err error) {
	log := logging.WithOrder(orderNo)
	if err != nil {
		title := ToastCancelError
		var bizErr *models.BusinessError
		if errors.As(err, &bizErr) {
			title = bizErr.Message
			log.Info().Str("code", bizErr.Code).Msg("cancel rejected")
		} else {
			log.Error().Err(err).Msg("cancel failed")
		}
		p.toast(title)
		return
	}
	p.toast(ToastDeleted)
	p.opts.Store.RemoveItemByID(orderNo)
}

// ConfirmCancel cancels the order awaiting confirmation.
func (p *Page) ConfirmCancel(ctx context.Context) error {
	orderNo := p.BeginCancel()
	err := p.opts.Store.CancelOrder(ctx, orderNo)
	p.CompleteCancel(orderNo, err)
	return err
}

// ConfirmFavCompany opens the company list, then marks the popups read.
// The popup stays open if navigation fails.
func (p *Page) ConfirmFavCompany(ctx context.Context) error {
	if err := p.opts.Host.NavigateTo(ctx, FavCompanyURL); err != nil {
		p.logger.Warn().Err(err).Str("url", FavCompanyURL).Msg("navigation failed")
		return err
	}
	return p.closeFavCompany(ctx)
}

// DismissFavCompany marks the popups read and closes the popup.
func (p *Page) DismissFavCompany(ctx context.Context) error {
	return p.closeFavCompany(ctx)
}

func (p *Page) closeFavCompany(ctx context.Context) error {
	err := p.opts.Store.SetPopupRead(ctx)
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to mark home popups read")
	}
	p.Dispatch(FavCompanyPopupSet{Open: false})
	return err
}

// ConfirmRecommend opens company selection, then closes the popup.
func (p *Page) ConfirmRecommend(ctx context.Context) error {
	if err := p.opts.Host.NavigateTo(ctx, RecommendURL); err != nil {
		p.logger.Warn().Err(err).Str("url", RecommendURL).Msg("navigation failed")
		return err
	}
	p.Dispatch(RecommendPopupSet{Open: false})
	return nil
}

// DismissRecommend closes the recommend popup and opens its aftermath notice.
func (p *Page) DismissRecommend() {
	p.Dispatch(RecommendPopupClosed{})
}

// AcknowledgeAftermath closes the aftermath notice and restores the tab bar.
func (p *Page) AcknowledgeAftermath() {
	p.Dispatch(RecommendAfterCloseSet{Open: false})
	p.opts.Host.ShowTabBar()
}

// OpenDetail navigates to the detail view of c.
func (p *Page) OpenDetail(ctx context.Context, c Card) error {
	return p.opts.Host.NavigateTo(ctx, DetailLink(c))
}

// OpenQuery navigates to the waybill query view.
func (p *Page) OpenQuery(ctx context.Context) error {
	return p.opts.Host.NavigateTo(ctx, QueryURL)
}

func (p *Page) toast(title string) {
	p.opts.Host.ShowToast(Toast{Title: title, Icon: ToastIconNone, Duration: p.opts.ToastDuration})
}
