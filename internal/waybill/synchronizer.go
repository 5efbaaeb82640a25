package waybill

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tOgg1/waybill/internal/events"
	"github.com/tOgg1/waybill/internal/models"
)

// pageHandle is the part of the page the synchronizer drives.
type pageHandle interface {
	State() ViewState
	Dispatch(a Action)
	SelectCategory(i int)
}

// DayStamp formats t as month-day without padding, e.g. "3-7".
func DayStamp(t time.Time) string {
	return fmt.Sprintf("%d-%d", int(t.Month()), t.Day())
}

// Synchronizer turns store snapshots, bus events and first-run checks into
// actions and host requests.
type Synchronizer struct {
	host     Host
	storage  Storage
	bus      events.Bus
	now      func() time.Time
	pageID   string
	guideKey string
	logger   zerolog.Logger

	observed      bool
	last          models.FetchStatus
	hadPromos     bool
	guideEligible bool
	pendingStamp  string
	subscriptions []string
}

func newSynchronizer(opts Options, logger zerolog.Logger) *Synchronizer {
	return &Synchronizer{
		host:     opts.Host,
		storage:  opts.Storage,
		bus:      opts.Bus,
		now:      opts.Clock,
		pageID:   opts.PageID,
		guideKey: opts.GuideStorageKey,
		logger:   logger,
	}
}

// Observe applies the rules that react to a store snapshot. Favourite-company
// eligibility is evaluated before the recommend guide, so when both fire on
// the same snapshot the recommend popup waits behind the other one.
func (s *Synchronizer) Observe(ctx context.Context, p pageHandle, snap models.StoreSnapshot) {
	s.syncFetchStatus(p, snap.Status)
	s.syncPromos(p, snap.HomePopups)
	s.syncGuide(ctx, p, snap.ShowGuide)
}

func (s *Synchronizer) syncFetchStatus(p pageHandle, st models.FetchStatus) {
	if s.observed && st.IsLoading == s.last.IsLoading && st.PageNum == s.last.PageNum && st.ListCount == s.last.ListCount {
		return
	}
	s.observed = true
	s.last = st

	if st.IsLoading {
		p.Dispatch(LoadingSet{Loading: true})
		if st.PageNum == 1 && !p.State().IsRefreshing {
			s.host.ShowLoading(Loading{Title: LoadingTitle, Mask: true})
		}
		return
	}

	p.Dispatch(ListUpdated{Patch: Patch{
		IsRefreshing: Bool(false),
		IsLoading:    Bool(false),
		HasMore:      Bool(st.HasMore()),
	}})
	s.host.HideLoading()
}

func (s *Synchronizer) syncPromos(p pageHandle, promos []models.HomePopup) {
	has := len(promos) > 0
	if has && !s.hadPromos {
		s.logger.Debug().Int("count", len(promos)).Msg("home popups available")
		p.Dispatch(FavCompanyPopupSet{Open: true})
	}
	s.hadPromos = has
}

func (s *Synchronizer) syncGuide(ctx context.Context, p pageHandle, show bool) {
	if show && !s.guideEligible {
		s.openGuide(ctx, p)
	}
	s.guideEligible = show
}

// openGuide shows the recommend popup at most once per calendar day. The day
// is stamped once the popup surfaces, so a popup still waiting behind
// another one is offered again after a remount.
func (s *Synchronizer) openGuide(ctx context.Context, p pageHandle) {
	stamp := DayStamp(s.now())
	last, ok, err := s.storage.Get(ctx, s.guideKey)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", s.guideKey).Msg("failed to read guide stamp")
		return
	}
	if ok && last == stamp {
		return
	}

	s.pendingStamp = stamp
	p.Dispatch(RecommendPopupSet{Open: true})
}

// StateChanged stamps the guide day when the recommend popup surfaces.
func (s *Synchronizer) StateChanged(ctx context.Context, prev, next ViewState) {
	if s.pendingStamp == "" || prev.IsRecommendPopupOpen() || !next.IsRecommendPopupOpen() {
		return
	}
	stamp := s.pendingStamp
	s.pendingStamp = ""
	if err := s.storage.Set(ctx, s.guideKey, stamp); err != nil {
		s.logger.Warn().Err(err).Str("key", s.guideKey).Msg("failed to write guide stamp")
	}
}

// Mount queries system info. Failures are logged and ignored.
func (s *Synchronizer) Mount(ctx context.Context) SystemInfo {
	info, err := s.host.SystemInfo(ctx)
	if err != nil {
		s.logger.Debug().Err(err).Msg("system info unavailable")
		return SystemInfo{}
	}
	s.logger.Debug().
		Str("platform", info.Platform).
		Int("width", info.Width).
		Int("height", info.Height).
		Msg("system info")
	return info
}

// Subscribe registers the page's bus handlers: page.show shows the tab bar,
// page.hide hides the loading indicator, and waybill.active selects a
// category the same way a tap on its tab does.
func (s *Synchronizer) Subscribe(p pageHandle) error {
	if s.bus == nil {
		return nil
	}

	handlers := []struct {
		id      string
		filter  events.Filter
		handler events.EventHandler
	}{
		{
			id:      s.pageID + "." + string(models.EventTypePageShown),
			filter:  events.Filter{EventTypes: []models.EventType{models.EventTypePageShown}, PageID: s.pageID},
			handler: func(*models.Event) { s.host.ShowTabBar() },
		},
		{
			id:      s.pageID + "." + string(models.EventTypePageHidden),
			filter:  events.Filter{EventTypes: []models.EventType{models.EventTypePageHidden}, PageID: s.pageID},
			handler: func(*models.Event) { s.host.HideLoading() },
		},
		{
			id:     s.pageID + "." + string(models.EventTypeWaybillActivated),
			filter: events.Filter{EventTypes: []models.EventType{models.EventTypeWaybillActivated}},
			handler: func(e *models.Event) {
				s.logger.Debug().Int("waybill_type", e.WaybillType).Msg("waybill category activated")
				p.SelectCategory(e.WaybillType)
			},
		},
	}

	for _, h := range handlers {
		if err := s.bus.Subscribe(h.id, h.filter, h.handler); err != nil {
			s.Unsubscribe()
			return fmt.Errorf("subscribe %s: %w", h.id, err)
		}
		s.subscriptions = append(s.subscriptions, h.id)
	}
	return nil
}

// Unsubscribe removes every handler registered by Subscribe.
func (s *Synchronizer) Unsubscribe() {
	for _, id := range s.subscriptions {
		if err := s.bus.Unsubscribe(id); err != nil && !errors.Is(err, events.ErrSubscriptionNotFound) {
			s.logger.Warn().Err(err).Str("subscription", id).Msg("failed to unsubscribe")
		}
	}
	s.subscriptions = nil
	s.pendingStamp = ""
}
