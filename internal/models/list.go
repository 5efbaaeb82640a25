package models

// FetchStatus is the list store's progress on the current paginated query.
type FetchStatus struct {
	IsLoading bool `json:"is_loading"`
	PageNum   int  `json:"page_num"`
	PageSize  int  `json:"page_size"`
	ListCount int  `json:"list_count"`
}

// HasMore reports whether pages beyond PageNum exist:
// PageNum < ceil(ListCount / PageSize).
func (s FetchStatus) HasMore() bool {
	if s.PageSize <= 0 {
		return false
	}
	pages := (s.ListCount + s.PageSize - 1) / s.PageSize
	return s.PageNum < pages
}

// ListQuery is the parameter set of one paginated fetch.
type ListQuery struct {
	WaybillType WaybillType `json:"waybill_type"`
	// OrderStatus is omitted for the "all" filter.
	OrderStatus OrderStatus `json:"order_status,omitempty"`
	PageNum     int         `json:"page_num"`
}

// HasStatus reports whether the query narrows by status.
func (q ListQuery) HasStatus() bool {
	return q.OrderStatus != OrderStatusAll
}

// StoreSnapshot is an immutable view of the list store.
type StoreSnapshot struct {
	Orders []Waybill `json:"orders"`
	// OrdersRevision changes whenever Orders is replaced.
	OrdersRevision uint64      `json:"orders_revision"`
	Status         FetchStatus `json:"status"`
	HomePopups     []HomePopup `json:"home_popups,omitempty"`
	ShowGuide      bool        `json:"show_guide"`
	// Seq increases with every published change.
	Seq uint64 `json:"seq"`
}

// BusinessError is a user-facing failure returned by store operations.
// Message is safe to show verbatim.
type BusinessError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *BusinessError) Error() string {
	return e.Message
}
