package warehouse

import (
	"fmt"
	"time"

	"class-composer/store"
)

// Location is a bin inside a warehouse.
type Location struct {
	Aisle string `json:"aisle"`
	Shelf int    `json:"shelf"`
}

func (l Location) Describe() string {
	return fmt.Sprintf("%s-%d", l.Aisle, l.Shelf)
}

// StockItem is the stock of one product at one location.
type StockItem struct {
	store.Entity
	Location

	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

func NewStockItem(id, productID int64, loc Location) StockItem {
	return StockItem{Entity: store.Entity{ID: id}, Location: loc, ProductID: productID}
}

// Reserve takes qty units out of stock.
func (s *StockItem) Reserve(qty int) error {
	if qty > s.Quantity {
		return fmt.Errorf("only %d units in stock", s.Quantity)
	}

	s.Quantity -= qty

	return nil
}

// ShipmentOption configures a Shipment.
type ShipmentOption func(*Shipment)

// Shipment carries an order out of the warehouse.
type Shipment struct {
	store.Entity
	store.Timestamps

	OrderID  int64  `json:"order_id"`
	Carrier  string `json:"carrier"`
	Tracking string `json:"tracking,omitempty"`
}

func NewShipment(id, orderID int64, opts ...ShipmentOption) *Shipment {
	s := &Shipment{Entity: store.Entity{ID: id}, OrderID: orderID}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Dispatch hands the shipment to the carrier.
func (s *Shipment) Dispatch(carrier string, at time.Time, _ bool) {
	s.Carrier = carrier
	s.Touch(at, "dispatch")
}
