package waybill

// Reduce returns the state that results from applying a to s. It is pure and
// total: unknown or nil actions return s unchanged.
//
// Reduce does not suppress a WaybillTypeChanged that repeats the current
// category; it still resets the filter. Callers guard against that.
func Reduce(s ViewState, a Action) ViewState {
	switch a := a.(type) {
	case WaybillTypeChanged:
		s.CurrentWaybillType = a.Index
		s.CurrentOrderType = 0
	case CancelModalShown:
		s = s.preempt(PopupCancelConfirm)
		s.CancelOrderNo = a.OrderNo
	case ListUpdated:
		if a.Patch.IsRefreshing != nil {
			s.IsRefreshing = *a.Patch.IsRefreshing
		}
		if a.Patch.IsLoading != nil {
			s.IsLoading = *a.Patch.IsLoading
		}
		if a.Patch.HasMore != nil {
			s.HasMore = *a.Patch.HasMore
		}
	case RecommendPopupClosed:
		if s.Popup == PopupRecommend {
			s.Popup = PopupRecommendAftermath
		} else {
			s.deferred = s.deferred.without(PopupRecommend)
		}
	case PopOpenSet:
		if a.Open {
			s = s.preempt(PopupCancelConfirm)
		} else {
			s = s.dismiss(PopupCancelConfirm)
		}
	case FavCompanyPopupSet:
		s = togglePopup(s, PopupFavCompany, a.Open)
	case RecommendPopupSet:
		s = togglePopup(s, PopupRecommend, a.Open)
	case RecommendAfterCloseSet:
		s = togglePopup(s, PopupRecommendAftermath, a.Open)
	case LoadingSet:
		s.IsLoading = a.Loading
	case RefreshingSet:
		s.IsRefreshing = a.Refreshing
	case OrderTypeSet:
		if a.Index < 0 {
			a.Index = 0
		}
		s.CurrentOrderType = a.Index
	}
	return s
}

func togglePopup(s ViewState, p Popup, open bool) ViewState {
	if open {
		return s.request(p)
	}
	return s.dismiss(p)
}
