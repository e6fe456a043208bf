package order

import "time"

// OrderCreatedEvent is emitted after an order has been committed. It is
// intended for interested listeners outside the create workflow (e.g. the
// stock watcher).
type OrderCreatedEvent struct {
	OrderID    string
	CustomerID string
	LineItems  []LineItem
	Total      int64
	OccurredAt time.Time
}

func (OrderCreatedEvent) EventName() string { return "order.created" }

func NewOrderCreatedEvent(o *Order) OrderCreatedEvent {
	return OrderCreatedEvent{
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		LineItems:  append([]LineItem(nil), o.LineItems...),
		Total:      o.Total(),
		OccurredAt: time.Now().UTC(),
	}
}
