package models

import "fmt"

// WaybillType is the wire code of a top-level waybill category.
type WaybillType string

const (
	WaybillTypeReceipt WaybillType = "receipt"
	WaybillTypeShip    WaybillType = "ship"
)

// OrderStatus is the wire code of a shipment status filter.
// The empty status means "all statuses" and is never sent to the store.
type OrderStatus string

const (
	OrderStatusAll         OrderStatus = ""
	OrderStatusWaitCollect OrderStatus = "wait_collect"
	OrderStatusCollect     OrderStatus = "collect"
	OrderStatusWaitPickup  OrderStatus = "wait_pickup"
	OrderStatusReceived    OrderStatus = "received"
)

// Filter is one status tab inside a category.
type Filter struct {
	Label  string      `yaml:"label" mapstructure:"label"`
	Status OrderStatus `yaml:"status" mapstructure:"status"`
}

// IsAll reports whether the filter selects every status.
func (f Filter) IsAll() bool {
	return f.Status == OrderStatusAll
}

// Category is one top-level tab with its own status filters.
type Category struct {
	Label   string      `yaml:"label" mapstructure:"label"`
	Code    WaybillType `yaml:"code" mapstructure:"code"`
	Filters []Filter    `yaml:"filters" mapstructure:"filters"`
}

// Catalog is the tab vocabulary of the waybill page.
type Catalog struct {
	Categories []Category `yaml:"categories" mapstructure:"categories"`
}

// DefaultCatalog returns the built-in receiving/shipping vocabulary.
// Only shipping has the "awaiting collection" filter.
func DefaultCatalog() Catalog {
	common := []Filter{
		{Label: "已揽件", Status: OrderStatusCollect},
		{Label: "待取件", Status: OrderStatusWaitPickup},
		{Label: "已签收", Status: OrderStatusReceived},
	}
	all := Filter{Label: "全部", Status: OrderStatusAll}

	receipt := append([]Filter{all}, common...)
	ship := append([]Filter{all, {Label: "待揽件", Status: OrderStatusWaitCollect}}, common...)

	return Catalog{
		Categories: []Category{
			{Label: "收件", Code: WaybillTypeReceipt, Filters: receipt},
			{Label: "发件", Code: WaybillTypeShip, Filters: ship},
		},
	}
}

// Category returns the category at index i.
func (c Catalog) Category(i int) (Category, bool) {
	if i < 0 || i >= len(c.Categories) {
		return Category{}, false
	}
	return c.Categories[i], true
}

// Filters returns the status filters of category i, or nil when i is out of range.
func (c Catalog) Filters(i int) []Filter {
	cat, ok := c.Category(i)
	if !ok {
		return nil
	}
	return cat.Filters
}

// Filter returns filter j of category i.
func (c Catalog) Filter(i, j int) (Filter, bool) {
	filters := c.Filters(i)
	if j < 0 || j >= len(filters) {
		return Filter{}, false
	}
	return filters[j], true
}

// IndexOf returns the index of the category with the given code, or -1.
func (c Catalog) IndexOf(code WaybillType) int {
	for i, cat := range c.Categories {
		if cat.Code == code {
			return i
		}
	}
	return -1
}

// StatusLabel returns the display label for a status in any category.
func (c Catalog) StatusLabel(status OrderStatus) string {
	for _, cat := range c.Categories {
		for _, f := range cat.Filters {
			if f.Status == status {
				return f.Label
			}
		}
	}
	return string(status)
}

// Validate checks the catalog is usable by the page.
func (c Catalog) Validate() error {
	v := &ValidationErrors{}
	if len(c.Categories) == 0 {
		v.Add("categories", ErrEmptyCatalog)
		return v.Err()
	}
	seen := make(map[WaybillType]bool, len(c.Categories))
	for i, cat := range c.Categories {
		field := fmt.Sprintf("categories[%d]", i)
		if cat.Code == "" {
			v.AddMessage(field+".code", "code is required")
		} else if seen[cat.Code] {
			v.AddMessage(field+".code", fmt.Sprintf("duplicate code %q", cat.Code))
		}
		seen[cat.Code] = true
		if len(cat.Filters) == 0 {
			v.AddMessage(field+".filters", "at least one filter is required")
		}
	}
	return v.Err()
}
