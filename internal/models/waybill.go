package models

import (
	"strings"
	"time"
)

// Waybill is a shipment record as stored by the list store.
type Waybill struct {
	ID            string      `json:"id"`
	OrderNo       string      `json:"order_no"`
	WaybillType   WaybillType `json:"waybill_type"`
	Status        OrderStatus `json:"status"`
	Company       string      `json:"company"`
	Sender        string      `json:"sender,omitempty"`
	Receiver      string      `json:"receiver,omitempty"`
	ReceiverPhone string      `json:"receiver_phone,omitempty"`
	Address       string      `json:"address,omitempty"`
	Cancelable    bool        `json:"cancelable"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// Validate checks the fields the store relies on.
func (w *Waybill) Validate() error {
	v := &ValidationErrors{}
	if strings.TrimSpace(w.OrderNo) == "" {
		v.Add("order_no", ErrInvalidOrderNo)
	}
	switch w.WaybillType {
	case WaybillTypeReceipt, WaybillTypeShip:
	default:
		v.Add("waybill_type", ErrInvalidWaybillType)
	}
	switch w.Status {
	case OrderStatusWaitCollect, OrderStatusCollect, OrderStatusWaitPickup, OrderStatusReceived:
	default:
		v.Add("status", ErrInvalidOrderStatus)
	}
	return v.Err()
}

// HomePopup is a promotional entry shown in the favourite-company popup.
type HomePopup struct {
	ID        string     `json:"id"`
	Company   string     `json:"company"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
}
