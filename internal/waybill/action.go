package waybill

import "fmt"

// Action is a state-transition request. The set of actions is closed: only
// the types in this file implement it.
type Action interface {
	kind() string
}

// Kind returns the name of an action, for logging.
func Kind(a Action) string {
	if a == nil {
		return "<nil>"
	}
	return a.kind()
}

// WaybillTypeChanged selects a category and resets the status filter.
// Callers skip it when Index already equals the current category.
type WaybillTypeChanged struct{ Index int }

// CancelModalShown opens the cancel confirmation for OrderNo.
type CancelModalShown struct{ OrderNo string }

// Patch lists the fields a batched update sets. Nil fields are left alone.
type Patch struct {
	IsRefreshing *bool
	IsLoading    *bool
	HasMore      *bool
}

// ListUpdated applies Patch as a single transition.
type ListUpdated struct{ Patch Patch }

// RecommendPopupClosed closes the recommend popup and opens its aftermath
// notice in the same transition.
type RecommendPopupClosed struct{}

// PopOpenSet opens or closes the cancel confirmation.
type PopOpenSet struct{ Open bool }

// FavCompanyPopupSet requests or closes the favourite-company popup.
type FavCompanyPopupSet struct{ Open bool }

// RecommendPopupSet requests or closes the recommend popup.
type RecommendPopupSet struct{ Open bool }

// RecommendAfterCloseSet requests or closes the recommend aftermath notice.
type RecommendAfterCloseSet struct{ Open bool }

// LoadingSet mirrors the store's loading flag.
type LoadingSet struct{ Loading bool }

// RefreshingSet marks a pull-to-refresh in progress.
type RefreshingSet struct{ Refreshing bool }

// OrderTypeSet selects a status filter within the current category.
type OrderTypeSet struct{ Index int }

func (WaybillTypeChanged) kind() string     { return "waybillTypeChange" }
func (CancelModalShown) kind() string       { return "showCancelModal" }
func (ListUpdated) kind() string            { return "listUpdated" }
func (RecommendPopupClosed) kind() string   { return "recommendPopupClose" }
func (PopOpenSet) kind() string             { return "isPopOpen" }
func (FavCompanyPopupSet) kind() string     { return "isFavCompanyPopupOpen" }
func (RecommendPopupSet) kind() string      { return "isRecommendPopupOpen" }
func (RecommendAfterCloseSet) kind() string { return "isRecommendAfterCloseOpen" }
func (LoadingSet) kind() string             { return "isLoading" }
func (RefreshingSet) kind() string          { return "isRefreshing" }
func (OrderTypeSet) kind() string           { return "currentOrderType" }

// Bool returns a pointer to b, for building a Patch.
func Bool(b bool) *bool {
	return &b
}

func (p Patch) String() string {
	show := func(b *bool) string {
		if b == nil {
			return "-"
		}
		return fmt.Sprint(*b)
	}
	return fmt.Sprintf("refreshing=%s loading=%s hasMore=%s", show(p.IsRefreshing), show(p.IsLoading), show(p.HasMore))
}
