// Package waybill holds the view-state machine of the waybill list page: a
// single reducer-owned state value, the actions that transition it, and the
// coordinator and synchronizer that connect it to the list store and host.
package waybill

import (
	"strconv"
	"strings"
)

// Popup identifies the popup currently surfaced by the page.
type Popup uint8

const (
	PopupNone Popup = iota
	PopupCancelConfirm
	PopupFavCompany
	PopupRecommend
	PopupRecommendAftermath
)

func (p Popup) String() string {
	switch p {
	case PopupNone:
		return "none"
	case PopupCancelConfirm:
		return "cancel-confirm"
	case PopupFavCompany:
		return "fav-company"
	case PopupRecommend:
		return "recommend"
	case PopupRecommendAftermath:
		return "recommend-aftermath"
	default:
		return "popup(" + strconv.Itoa(int(p)) + ")"
	}
}

// surfaceOrder is the order in which deferred popups are surfaced once the
// active popup closes. The cancel confirmation never waits: it pre-empts.
var surfaceOrder = []Popup{PopupFavCompany, PopupRecommend, PopupRecommendAftermath}

// popupSet is a bitmask of deferred popups.
type popupSet uint8

func (s popupSet) has(p Popup) bool { return s&(1<<p) != 0 }
func (s popupSet) with(p Popup) popupSet { return s | 1<<p }
func (s popupSet) without(p Popup) popupSet { return s &^ (1 << p) }

// ViewState is the complete UI state of the page. It is a value: every
// transition produces a new ViewState through Reduce.
type ViewState struct {
	CurrentWaybillType int
	CurrentOrderType   int

	// Popup is the single surfaced popup.
	Popup    Popup
	deferred popupSet

	IsRefreshing bool
	IsLoading    bool
	HasMore      bool

	// CancelOrderNo is the order awaiting cancel confirmation.
	CancelOrderNo string
}

// RouteParams are the raw query parameters the page was opened with.
type RouteParams struct {
	Type      string
	OrderType string
}

// NewViewState builds the initial state from route parameters. Missing or
// malformed indexes default to 0.
func NewViewState(route RouteParams) ViewState {
	return ViewState{
		CurrentWaybillType: parseIndex(route.Type),
		CurrentOrderType:   parseIndex(route.OrderType),
	}
}

func parseIndex(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// IsPopOpen reports whether the cancel confirmation is surfaced.
func (s ViewState) IsPopOpen() bool { return s.Popup == PopupCancelConfirm }

// IsFavCompanyPopupOpen reports whether the favourite-company popup is surfaced.
func (s ViewState) IsFavCompanyPopupOpen() bool { return s.Popup == PopupFavCompany }

// IsRecommendPopupOpen reports whether the recommend popup is surfaced.
func (s ViewState) IsRecommendPopupOpen() bool { return s.Popup == PopupRecommend }

// IsRecommendAfterCloseOpen reports whether the recommend aftermath notice is surfaced.
func (s ViewState) IsRecommendAfterCloseOpen() bool { return s.Popup == PopupRecommendAftermath }

// Pending reports whether p is waiting behind the active popup.
func (s ViewState) Pending(p Popup) bool { return s.deferred.has(p) }

// request surfaces p, or defers it when another popup is active.
func (s ViewState) request(p Popup) ViewState {
	switch {
	case p == PopupNone || s.Popup == p:
	case s.Popup == PopupNone:
		s.Popup = p
		s.deferred = s.deferred.without(p)
	default:
		s.deferred = s.deferred.with(p)
	}
	return s
}

// preempt surfaces p immediately, deferring whatever was active.
func (s ViewState) preempt(p Popup) ViewState {
	if s.Popup != PopupNone && s.Popup != p {
		s.deferred = s.deferred.with(s.Popup)
	}
	s.Popup = p
	s.deferred = s.deferred.without(p)
	return s
}

// dismiss closes p if active (surfacing the next deferred popup) or drops it
// from the deferred set.
func (s ViewState) dismiss(p Popup) ViewState {
	if p == PopupCancelConfirm {
		s.CancelOrderNo = ""
	}
	if s.Popup != p {
		s.deferred = s.deferred.without(p)
		return s
	}
	s.Popup = PopupNone
	for _, next := range surfaceOrder {
		if s.deferred.has(next) {
			s.Popup = next
			s.deferred = s.deferred.without(next)
			break
		}
	}
	return s
}
