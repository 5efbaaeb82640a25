package waybill

import (
	"net/url"
	"strings"

	"github.com/tOgg1/waybill/internal/models"
)

// Card is the presentation projection of one waybill.
type Card struct {
	ID         string `json:"id"`
	OrderNo    string `json:"order_no"`
	Title      string `json:"title"`
	StatusText string `json:"status_text"`
	Subtitle   string `json:"subtitle,omitempty"`
	Time       string `json:"time,omitempty"`
	// Cancel is set for shipments still awaiting collection.
	Cancel bool `json:"cancel"`
}

// BuildCards projects orders into cards, preserving order.
func BuildCards(orders []models.Waybill, catalog models.Catalog) []Card {
	cards := make([]Card, 0, len(orders))
	for _, w := range orders {
		cards = append(cards, BuildCard(w, catalog))
	}
	return cards
}

// BuildCard projects a single waybill.
func BuildCard(w models.Waybill, catalog models.Catalog) Card {
	var subtitle []string
	switch w.WaybillType {
	case models.WaybillTypeShip:
		if w.Receiver != "" {
			subtitle = append(subtitle, "收件人 "+w.Receiver)
		}
	default:
		if w.Sender != "" {
			subtitle = append(subtitle, "寄件人 "+w.Sender)
		}
	}
	if w.Address != "" {
		subtitle = append(subtitle, w.Address)
	}

	card := Card{
		ID:         w.ID,
		OrderNo:    w.OrderNo,
		Title:      strings.TrimSpace(w.Company + " " + w.OrderNo),
		StatusText: catalog.StatusLabel(w.Status),
		Subtitle:   strings.Join(subtitle, " · "),
		Cancel: w.WaybillType == models.WaybillTypeShip &&
			w.Status == models.OrderStatusWaitCollect &&
			w.Cancelable,
	}
	if !w.CreatedAt.IsZero() {
		card.Time = w.CreatedAt.Local().Format("2006-01-02 15:04")
	}
	return card
}

// DetailLink is the navigation target of a card. isShipWait tells the
// detail page whether the shipment can still be cancelled.
func DetailLink(c Card) string {
	shipWait := "0"
	if c.Cancel {
		shipWait = "1"
	}
	return DetailURL + "?orderNo=" + url.QueryEscape(c.OrderNo) + "&isShipWait=" + shipWait
}
