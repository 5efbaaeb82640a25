package models

import "time"

// EventType categorizes cross-page signals.
type EventType string

const (
	EventTypePageShown        EventType = "page.show"
	EventTypePageHidden       EventType = "page.hide"
	EventTypeWaybillActivated EventType = "waybill.active"
)

// Event is a signal published on the host's bus.
type Event struct {
	// ID is the unique identifier for the event.
	ID string `json:"id"`

	// Timestamp is when the event was published.
	Timestamp time.Time `json:"timestamp"`

	Type EventType `json:"type"`

	// PageID scopes page.show / page.hide to one page.
	PageID string `json:"page_id,omitempty"`

	// WaybillType is the category index carried by waybill.active.
	WaybillType int `json:"waybill_type"`

	Metadata map[string]string `json:"metadata,omitempty"`
}

// Topic returns the dotted topic the event was historically published under,
// e.g. "page.show.waybill".
func (e *Event) Topic() string {
	if e.PageID == "" {
		return string(e.Type)
	}
	return string(e.Type) + "." + e.PageID
}
