package catalog

import "time"

// StockReservedEvent is emitted after units of a product were taken out of stock.
type StockReservedEvent struct {
	ProductID  int64
	Quantity   int
	Remaining  int
	OccurredAt time.Time
}

func (StockReservedEvent) EventName() string { return "inventory.stock_reserved" }

func NewStockReservedEvent(productID int64, quantity, remaining int) StockReservedEvent {
	return StockReservedEvent{
		ProductID:  productID,
		Quantity:   quantity,
		Remaining:  remaining,
		OccurredAt: time.Now().UTC(),
	}
}

// StockReleasedEvent is emitted after units were returned to stock (cancellation, compensation).
type StockReleasedEvent struct {
	ProductID  int64
	Quantity   int
	Remaining  int
	OccurredAt time.Time
}

func (StockReleasedEvent) EventName() string { return "inventory.stock_released" }

func NewStockReleasedEvent(productID int64, quantity, remaining int) StockReleasedEvent {
	return StockReleasedEvent{
		ProductID:  productID,
		Quantity:   quantity,
		Remaining:  remaining,
		OccurredAt: time.Now().UTC(),
	}
}
